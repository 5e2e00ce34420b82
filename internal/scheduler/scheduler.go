// Package scheduler fires backup runs at each target's configured
// time-of-day. Missed fire times (the process was down at the instant)
// are not run retroactively; the next occurrence simply fires.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/Hari-N-2005/FileOps/internal/backup"
	"github.com/Hari-N-2005/FileOps/internal/config"
)

// BackupRunner is the slice of the backup engine the scheduler invokes.
type BackupRunner interface {
	Run(ctx context.Context, target config.BackupTarget) (*backup.Run, error)
}

// Scheduler owns one cron instance with a daily entry per enabled
// target. Runs execute synchronously inside the cron job, so a single
// target never overlaps itself.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	runner  BackupRunner
	log     zerolog.Logger
	ctx     context.Context
	running bool
}

func New(runner BackupRunner, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		log:    log.With().Str("component", "scheduler").Logger(),
	}
}

// SpecFor converts an "HH:MM" clock time into a daily cron spec.
func SpecFor(clock string) (string, error) {
	hour, minute, err := config.ParseClock(clock)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// Start registers every enabled target and starts the timer loop. ctx
// is passed through to backup runs; cancelling it stops new work while
// Stop waits out anything in flight.
func (s *Scheduler) Start(ctx context.Context, targets []config.BackupTarget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}

	s.ctx = ctx
	s.cron = cron.New()

	for _, t := range targets {
		if !t.Enabled {
			continue
		}

		spec, err := SpecFor(t.ScheduleTime)
		if err != nil {
			return errors.Errorf("target %s: %w", t.Name, err)
		}

		target := t
		if _, err := s.cron.AddFunc(spec, func() { s.fire(target) }); err != nil {
			return errors.Errorf("target %s: scheduling: %w", t.Name, err)
		}
		s.log.Info().Str("target", t.Name).Str("at", t.ScheduleTime).Str("mode", t.Mode).Msg("backup scheduled daily")
	}

	s.cron.Start()
	s.running = true
	return nil
}

func (s *Scheduler) fire(target config.BackupTarget) {
	if s.ctx.Err() != nil {
		return
	}
	s.log.Info().Str("target", target.Name).Msg("scheduled backup starting")
	if _, err := s.runner.Run(s.ctx, target); err != nil {
		s.log.Error().Err(err).Str("target", target.Name).Msg("scheduled backup failed")
	}
}

// Stop halts the timer loop and blocks until any in-flight run returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
}

// Reload replaces the schedule with a new target list. In-flight runs
// finish under the old schedule before the swap completes.
func (s *Scheduler) Reload(ctx context.Context, targets []config.BackupTarget) error {
	s.Stop()
	return s.Start(ctx, targets)
}
