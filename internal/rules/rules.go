// Package rules evaluates ready files against the ordered organization
// rule set. First enabled match wins; extension matching is
// case-insensitive and name patterns use doublestar globs.
package rules

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/Hari-N-2005/FileOps/internal/config"
	"github.com/Hari-N-2005/FileOps/internal/pipeline"
)

// Rule is one compiled matching rule. Priority is its position in the set.
type Rule struct {
	Name        string
	Destination string
	Enabled     bool

	extensions []string // normalized: lowercase, leading dot
	patterns   []string // doublestar globs matched against the base name
}

// Matches reports whether f matches this rule. The enabled flag is
// checked by the caller.
func (r *Rule) Matches(f pipeline.ReadyFile) bool {
	ext := strings.ToLower(f.Ext)
	for _, e := range r.extensions {
		if e == ext {
			return true
		}
	}

	base := strings.ToLower(f.Base)
	for _, p := range r.patterns {
		if ok, err := doublestar.Match(p, base); err == nil && ok {
			return true
		}
	}

	return false
}

// Set is an immutable ordered collection of rules. A reload builds a new
// Set and swaps it in wholesale; a Set is never mutated after creation.
type Set struct {
	rules []Rule
}

// NewSet compiles configuration rules into a Set, preserving order.
func NewSet(cfgRules []config.Rule) (*Set, error) {
	s := &Set{rules: make([]Rule, 0, len(cfgRules))}

	for _, cr := range cfgRules {
		r := Rule{
			Name:        cr.Name,
			Destination: cr.Destination,
			Enabled:     cr.Enabled,
		}

		for _, e := range cr.Extensions {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			r.extensions = append(r.extensions, e)
		}

		for _, p := range cr.NamePatterns {
			p = strings.ToLower(p)
			if !doublestar.ValidatePattern(p) {
				return nil, errors.Errorf("rule %q: invalid pattern %q", cr.Name, p)
			}
			r.patterns = append(r.patterns, p)
		}

		s.rules = append(s.rules, r)
	}

	return s, nil
}

// Len returns the number of rules in the set.
func (s *Set) Len() int { return len(s.rules) }

// EnabledCount returns how many rules are enabled.
func (s *Set) EnabledCount() int {
	n := 0
	for _, r := range s.rules {
		if r.Enabled {
			n++
		}
	}
	return n
}
