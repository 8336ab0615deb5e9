// Package scheduler runs named jobs on fixed intervals with a check loop,
// keeping a bounded in-memory history of runs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunStatus represents the status of one job run
type RunStatus string

const (
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// Run records one execution of a job
type Run struct {
	ID          uuid.UUID
	JobName     string
	Status      RunStatus
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// Handler is the work a job performs
type Handler func(ctx context.Context) error

// job is one registered interval job. lastStarted and running are guarded by
// the scheduler mutex; a job never overlaps itself.
type job struct {
	name        string
	every       time.Duration
	handler     Handler
	lastStarted time.Time
	running     bool
}

// Config holds scheduler configuration
type Config struct {
	// CheckInterval is how often due jobs are looked for
	CheckInterval time.Duration
	// JobTimeout bounds one run of any job
	JobTimeout time.Duration
	// HistorySize is the number of runs kept in memory
	HistorySize int
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		CheckInterval: 15 * time.Second,
		JobTimeout:    30 * time.Minute,
		HistorySize:   100,
	}
}

// Scheduler runs registered jobs whenever their interval has elapsed.
type Scheduler struct {
	config Config
	logger *zap.Logger

	mu        sync.Mutex
	jobs      map[string]*job
	history   []Run
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, logger *zap.Logger) *Scheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultConfig().CheckInterval
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultConfig().JobTimeout
	}
	if config.HistorySize <= 0 {
		config.HistorySize = DefaultConfig().HistorySize
	}
	return &Scheduler{
		config: config,
		logger: logger.Named("scheduler"),
		jobs:   make(map[string]*job),
	}
}

// RegisterJob adds a named job running every interval. Names are unique;
// registering after Start is allowed.
func (s *Scheduler) RegisterJob(name string, every time.Duration, handler Handler) error {
	if name == "" {
		return ErrJobNameRequired
	}
	if every <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidInterval, name)
	}
	if handler == nil {
		return fmt.Errorf("%w: %q", ErrNilHandler, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateJob, name)
	}
	s.jobs[name] = &job{name: name, every: every, handler: handler}
	return nil
}

// Start starts the check loop
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Scheduler started",
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Int("jobs", len(s.jobs)),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for in-flight runs
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs one job immediately, regardless of its interval
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrJobNotFound, name)
	}
	if j.running {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrJobAlreadyRunning, name)
	}
	j.running = true
	j.lastStarted = time.Now()
	s.mu.Unlock()

	s.runJob(ctx, j)
	return nil
}

// History returns the most recent runs, newest first
func (s *Scheduler) History() []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Run, len(s.history))
	for i, run := range s.history {
		out[len(s.history)-1-i] = run
	}
	return out
}

// loop checks for due jobs every tick
func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatchDue(ctx)
		}
	}
}

// dispatchDue starts every job whose interval has elapsed and is not already
// running
func (s *Scheduler) dispatchDue(ctx context.Context) {
	now := time.Now()

	s.mu.Lock()
	var due []*job
	for _, j := range s.jobs {
		if j.running {
			continue
		}
		if now.Sub(j.lastStarted) < j.every {
			continue
		}
		j.running = true
		j.lastStarted = now
		due = append(due, j)
	}
	s.mu.Unlock()

	for _, j := range due {
		s.wg.Add(1)
		go func(j *job) {
			defer s.wg.Done()
			s.runJob(ctx, j)
		}(j)
	}
}

// runJob executes one run and records it in the history
func (s *Scheduler) runJob(ctx context.Context, j *job) {
	run := Run{
		ID:        uuid.New(),
		JobName:   j.name,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := j.handler(jobCtx)
	cancel()

	now := time.Now()
	run.CompletedAt = &now
	if err != nil {
		run.Status = RunStatusFailed
		run.Error = err.Error()
		s.logger.Error("Job failed",
			zap.String("job", j.name),
			zap.Duration("took", now.Sub(run.StartedAt)),
			zap.Error(err),
		)
	} else {
		run.Status = RunStatusSuccess
		s.logger.Info("Job completed",
			zap.String("job", j.name),
			zap.Duration("took", now.Sub(run.StartedAt)),
		)
	}

	s.mu.Lock()
	j.running = false
	s.history = append(s.history, run)
	if len(s.history) > s.config.HistorySize {
		s.history = s.history[len(s.history)-s.config.HistorySize:]
	}
	s.mu.Unlock()
}
