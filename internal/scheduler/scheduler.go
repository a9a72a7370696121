package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/familyscout/familyscout/internal/models"
)

// Runner is the orchestration entry point the scheduler drives. Scheduled
// and manual triggers go through the identical path.
type Runner interface {
	Run(ctx context.Context, trigger string) (*models.RunReport, error)
}

// RunHistory answers when ingestion last ran, for the catch-up decision.
type RunHistory interface {
	LastStartedAt(ctx context.Context) (time.Time, error)
}

// Clock abstracts wall-clock access so the trigger path is testable without
// waiting.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock returns a Clock backed by the system clock.
func RealClock() Clock { return realClock{} }

// Scheduler triggers a full ingestion run once per day at a fixed local time.
// It is started once at process init and stopped at shutdown. A failed run is
// surfaced through the run report, not silently re-attempted.
type Scheduler struct {
	runner   Runner
	history  RunHistory
	logger   *slog.Logger
	clock    Clock
	loc      *time.Location
	hour     int
	minute   int
	stopChan chan struct{}
}

// New creates a scheduler firing daily at hour:minute in the named timezone.
func New(runner Runner, history RunHistory, logger *slog.Logger, clock Clock, timezone string, hour, minute int) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	return &Scheduler{
		runner:   runner,
		history:  history,
		logger:   logger,
		clock:    clock,
		loc:      loc,
		hour:     hour,
		minute:   minute,
		stopChan: make(chan struct{}),
	}, nil
}

// Start runs the scheduling loop until the context is cancelled or Stop is
// called. It blocks; run it in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("starting scheduler",
		"hour", s.hour,
		"minute", s.minute,
		"timezone", s.loc.String(),
	)

	if s.needsCatchUp(ctx) {
		s.logger.Info("no run since last scheduled time, running catch-up")
		s.runOnce(ctx, "catchup")
	}

	for {
		now := s.clock.Now().In(s.loc)
		next := s.NextTrigger(now)
		s.logger.Info("next scheduled run", "at", next.Format(time.RFC3339))

		select {
		case <-s.clock.After(next.Sub(now)):
			s.runOnce(ctx, "scheduled")
		case <-s.stopChan:
			s.logger.Info("scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("scheduler stopping, context cancelled")
			return
		}
	}
}

// Stop terminates the scheduling loop.
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

// NextTrigger returns the next scheduled instant strictly after now.
func (s *Scheduler) NextTrigger(now time.Time) time.Time {
	now = now.In(s.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// lastTrigger returns the most recent scheduled instant at or before now.
func (s *Scheduler) lastTrigger(now time.Time) time.Time {
	return s.NextTrigger(now).AddDate(0, 0, -1)
}

// needsCatchUp reports whether the process missed a scheduled trigger while
// it was down: no run has started since the last scheduled instant.
func (s *Scheduler) needsCatchUp(ctx context.Context) bool {
	if s.history == nil {
		return false
	}

	last, err := s.history.LastStartedAt(ctx)
	if err != nil {
		s.logger.Error("failed to read run history, skipping catch-up check", "error", err)
		return false
	}

	return last.Before(s.lastTrigger(s.clock.Now()))
}

// runOnce executes one run and absorbs every failure: nothing that happens
// inside a run may terminate the scheduler loop.
func (s *Scheduler) runOnce(ctx context.Context, trigger string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("ingestion run panicked", "trigger", trigger, "panic", r)
		}
	}()

	report, err := s.runner.Run(ctx, trigger)
	if err != nil {
		s.logger.Error("ingestion run not started", "trigger", trigger, "error", err)
		return
	}

	s.logger.Info("scheduled run finished",
		"run_id", report.RunID,
		"state", report.State,
	)
}
