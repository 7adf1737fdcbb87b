// Package cache provides the key/value stores behind cacheable containers.
//
// A store is created from a Config naming its eviction policy:
//
//   - none: unbounded, entries live until deleted or flushed
//   - ttl:  entries expire after Config.TTL (patrickmn/go-cache)
//   - size: least recently used entries are evicted beyond Config.Size
//     (hashicorp/golang-lru); a TTL may be combined with it
//
// A Manager hands out one named store per container namespace.
package cache
