package rules

import (
	"sync/atomic"

	"github.com/Hari-N-2005/FileOps/internal/pipeline"
)

// Engine holds the live rule set behind an atomic pointer. Reload swaps
// the whole snapshot, so an in-flight evaluation always sees one
// fully-formed set and never a partially-updated one.
type Engine struct {
	set atomic.Pointer[Set]
}

func NewEngine(set *Set) *Engine {
	e := &Engine{}
	e.set.Store(set)
	return e
}

// Swap installs a new rule set atomically.
func (e *Engine) Swap(set *Set) {
	e.set.Store(set)
}

// Current returns the active snapshot.
func (e *Engine) Current() *Set {
	return e.set.Load()
}

// Evaluate walks the rules in priority order and returns the destination
// of the first enabled rule that matches, along with its name. ok is
// false when no enabled rule matches; an unmatched file is not an error
// and is left untouched by the caller.
func (e *Engine) Evaluate(f pipeline.ReadyFile) (destination, ruleName string, ok bool) {
	set := e.set.Load()
	for i := range set.rules {
		r := &set.rules[i]
		if !r.Enabled {
			continue
		}
		if r.Matches(f) {
			return r.Destination, r.Name, true
		}
	}
	return "", "", false
}
