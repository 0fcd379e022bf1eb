package uow

import (
	"fmt"
	"strings"
)

// Policy decides what an identity cache hands back on a lookup.
type Policy string

const (
	// PolicyCopy returns an independent clone of the canonical instance on
	// every lookup. Mutating a loaded record never affects other callers.
	PolicyCopy Policy = "copy"
	// PolicyShared returns the canonical instance itself, so every caller in
	// the scope sees every other caller's in-memory mutations.
	PolicyShared Policy = "shared"
)

const DefaultPolicy = PolicyCopy

func (p Policy) Valid() bool {
	return p == PolicyCopy || p == PolicyShared
}

func (p Policy) String() string { return string(p) }

// ParsePolicy accepts "copy" or "shared" (case-insensitive). Empty input
// yields DefaultPolicy.
func ParsePolicy(raw string) (Policy, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultPolicy, nil
	}
	p := Policy(raw)
	if !p.Valid() {
		return "", fmt.Errorf("unknown cache policy %q (want copy|shared)", raw)
	}
	return p, nil
}
