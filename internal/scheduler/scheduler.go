// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ErrUnknownJob is returned by RunNow for a job that was never added.
var ErrUnknownJob = errors.New("unknown job")

// ErrJobRunning is returned by RunNow while another run of the job is in progress.
var ErrJobRunning = errors.New("job already running")

// JobFunc is the work done by a scheduled job.
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	schedule string
	run      JobFunc
	entryID  cron.EntryID
	busy     atomic.Bool
}

// Scheduler runs named jobs on standard cron expressions.
// A job whose schedule is empty or "-" is registered but never scheduled,
// so it can still be started with RunNow.
// At most one run of a job is in progress at a time: a cron tick that
// fires during a run is skipped and RunNow returns ErrJobRunning.
type Scheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	jobs    map[string]*job
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

// New creates a new Scheduler.
func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger))),
		jobs: make(map[string]*job),
	}
}

// Add registers a job. It fails on an invalid cron expression or a duplicate name.
func (s *Scheduler) Add(name, schedule string, run JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already added", name)
	}

	j := &job{name: name, schedule: schedule, run: run}

	if Enabled(schedule) {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return fmt.Errorf("invalid cron schedule %q for job %q: %w", schedule, name, err)
		}

		entryID, err := s.cron.AddFunc(schedule, func() {
			if err := s.execute(s.jobContext(), j); errors.Is(err, ErrJobRunning) {
				log.Warn().Str("job", name).Msg("Job still running, skipping scheduled run")
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule job %q: %w", name, err)
		}
		j.entryID = entryID
	} else {
		log.Info().Str("job", name).Msg("Job schedule disabled")
	}

	s.jobs[name] = j
	return nil
}

// Enabled reports whether schedule names a cron expression rather than
// the disabled markers "" and "-".
func Enabled(schedule string) bool {
	return schedule != "" && schedule != "-"
}

// Start begins running scheduled jobs. Jobs receive a context derived from
// ctx; cancelling ctx stops the scheduler.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.running = true

	log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(s.ctx.Done())
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	cancel()

	log.Info().Msg("Scheduler stopped")
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled run of the named job, or nil when the
// job is unknown, disabled or the scheduler has not been started.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok || j.entryID == 0 {
		return nil
	}

	entry := s.cron.Entry(j.entryID)
	if entry.Next.IsZero() {
		return nil
	}
	next := entry.Next
	return &next
}

// RunNow runs the named job synchronously on the caller's goroutine.
// It fails with ErrJobRunning when the job is already in progress.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.execute(ctx, j)
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Scheduler) execute(ctx context.Context, j *job) error {
	if !j.busy.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s", ErrJobRunning, j.name)
	}
	defer j.busy.Store(false)

	start := time.Now()
	log.Debug().Str("job", j.name).Msg("Job started")

	if err := j.run(ctx); err != nil {
		log.Error().Err(err).Str("job", j.name).Msg("Job failed")
		return err
	}

	log.Info().
		Str("job", j.name).
		Dur("duration", time.Since(start)).
		Msg("Job completed")
	return nil
}
