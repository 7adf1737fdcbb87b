// Package handler implements the cardinality handlers that merge container
// results into targets, and the disassemble handler that expands nested
// objects.
//
//   - OneToOne: the key property holds one key mapped to one value.
//   - OneToMany: the key property holds one key mapped to a collection.
//   - ManyToMany: the key property holds several keys, looked up one by one.
//
// Handlers replace what they write instead of appending to it, so merging the
// same result twice leaves the target unchanged.
package handler
