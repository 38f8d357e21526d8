// Package suffix decides from a file name whether it denotes an encrypted
// document and derives the logical name used for format detection.
package suffix

import "strings"

// DefaultSuffixes is the suffix set used when none is configured.
var DefaultSuffixes = []string{"ordo", "pgp", "gpg"}

// Policy is an ordered, immutable set of recognized suffixes.
// The zero value recognizes nothing.
type Policy struct {
	suffixes []string
}

// New builds a Policy from suffixes, keeping their order. Leading dots and
// surrounding whitespace are trimmed; empty entries and duplicates are dropped.
func New(suffixes []string) Policy {
	seen := make(map[string]bool, len(suffixes))
	out := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		s = strings.TrimLeft(strings.TrimSpace(s), ".")
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return Policy{suffixes: out}
}

// Default returns a Policy over DefaultSuffixes.
func Default() Policy {
	return New(DefaultSuffixes)
}

// Suffixes returns a copy of the configured suffixes in order.
func (p Policy) Suffixes() []string {
	return append([]string(nil), p.suffixes...)
}

// Default returns the first configured suffix, or "" for an empty policy.
func (p Policy) Default() string {
	if len(p.suffixes) == 0 {
		return ""
	}
	return p.suffixes[0]
}

// Match returns the first configured suffix s such that name ends in "."+s.
func (p Policy) Match(name string) (string, bool) {
	for _, s := range p.suffixes {
		if len(name) > len(s) && strings.HasSuffix(name, "."+s) {
			return s, true
		}
	}
	return "", false
}

// HasSuffix reports whether name ends in "." plus a recognized suffix.
func (p Policy) HasSuffix(name string) bool {
	_, ok := p.Match(name)
	return ok
}

// StripSuffix returns name without its recognized suffix, or name unchanged
// when nothing matches. The first configured match wins.
func (p Policy) StripSuffix(name string) string {
	s, ok := p.Match(name)
	if !ok {
		return name
	}
	return name[:len(name)-len(s)-1]
}
