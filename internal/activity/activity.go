// Package activity is the append-only record of pipeline outcomes.
// Both the organizing loop and the backup loop write here; reporting
// layers read it through Snapshot and the counters.
package activity

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Category string

const (
	CategoryMove              Category = "MOVE"
	CategoryBackupFull        Category = "BACKUP-FULL"
	CategoryBackupIncremental Category = "BACKUP-INCREMENTAL"
	CategoryEngineStarted     Category = "ENGINE-STARTED"
	CategoryEngineStopped     Category = "ENGINE-STOPPED"
	CategoryWatch             Category = "WATCH"
	CategoryRules             Category = "RULES"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailed  Outcome = "FAILED"
)

// Entry is one recorded outcome. Immutable once appended.
type Entry struct {
	Time     time.Time
	Category Category
	Outcome  Outcome
	Detail   string
}

// defaultMaxEntries bounds the in-memory tail kept for readers. The
// total counter keeps counting past the trim point.
const defaultMaxEntries = 1000

// Sink serializes concurrent appends from both engine loops.
type Sink struct {
	mu      sync.Mutex
	entries []Entry
	max     int
	total   uint64
	lastAt  time.Time

	log zerolog.Logger
}

func NewSink(log zerolog.Logger) *Sink {
	return &Sink{
		max: defaultMaxEntries,
		log: log.With().Str("component", "activity").Logger(),
	}
}

// Record appends one entry and mirrors it to the log.
func (s *Sink) Record(cat Category, out Outcome, detail string) {
	now := time.Now()

	s.mu.Lock()
	s.entries = append(s.entries, Entry{Time: now, Category: cat, Outcome: out, Detail: detail})
	if len(s.entries) > s.max {
		// keep the newest half; counters are unaffected
		s.entries = append([]Entry(nil), s.entries[len(s.entries)-s.max/2:]...)
	}
	s.total++
	s.lastAt = now
	s.mu.Unlock()

	ev := s.log.Info()
	if out == OutcomeFailed {
		ev = s.log.Error()
	}
	ev.Str("category", string(cat)).Str("outcome", string(out)).Msg(detail)
}

// Recordf is Record with fmt-style formatting of the detail string.
func (s *Sink) Recordf(cat Category, out Outcome, format string, args ...any) {
	s.Record(cat, out, fmt.Sprintf(format, args...))
}

// Snapshot returns a copy of the retained entries, oldest first.
func (s *Sink) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Total is the number of entries ever recorded, including trimmed ones.
func (s *Sink) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// LastActivity reports when the most recent entry was appended.
func (s *Sink) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAt
}
