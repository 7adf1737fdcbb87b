package cache

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Policy -linecomment

// Policy selects how cache entries are evicted.
type Policy int

const (
	PolicyNone Policy = iota // none
	PolicyTTL                // ttl
	PolicySize               // size
)

// ParsePolicy parses a policy name. An empty name yields PolicyNone.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyNone.String():
		return PolicyNone, nil
	case PolicyTTL.String():
		return PolicyTTL, nil
	case PolicySize.String():
		return PolicySize, nil
	default:
		return PolicyNone, fmt.Errorf("unknown cache policy %q", name)
	}
}
