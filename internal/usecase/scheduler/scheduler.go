// Package scheduler polls the transcript source for ended meetings and
// dispatches unprocessed ones into the pipeline.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	"github.com/johnquangdev/meeting-processor/internal/usecase/idempotency"
	"github.com/johnquangdev/meeting-processor/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-processor/pkg/jobcontext"
)

// TranscriptSource discovers ended meetings whose transcript is ready
type TranscriptSource interface {
	FetchEndedWithTranscript(ctx context.Context) ([]entities.Candidate, error)
}

// Config tunes the polling loop
type Config struct {
	PollInterval  time.Duration
	MaxConcurrent int
	FetchTimeout  time.Duration
	// RunTimeout bounds one whole pipeline run; zero leaves it to the
	// per-stage timeouts.
	RunTimeout time.Duration
}

// Status is a read-only snapshot of the scheduler
type Status struct {
	Running       bool          `json:"running"`
	Ticking       bool          `json:"ticking"`
	LastTickTime  *time.Time    `json:"last_tick_time"`
	NextTickTime  *time.Time    `json:"next_tick_time"`
	LastError     *string       `json:"last_error"`
	PollInterval  time.Duration `json:"poll_interval"`
	MaxConcurrent int           `json:"max_concurrent"`
	InFlight      int           `json:"in_flight"`
	TotalTicks    int64         `json:"total_ticks"`
}

// TickResult counts what one tick did with its candidates
type TickResult struct {
	Candidates       int
	Dispatched       int
	AlreadyCompleted int
	InFlight         int
	Failed           int
}

// Scheduler owns the polling loop. Ticks never overlap: a tick in progress
// suppresses the next scheduled tick and coalesces manual triggers.
type Scheduler struct {
	source  TranscriptSource
	runner  meeting.Runner
	tracker *idempotency.Tracker
	cfg     Config
	logger  *zap.Logger

	// tickMu is held for the whole duration of a tick
	tickMu sync.Mutex

	mu           sync.Mutex
	running      bool
	stopChan     chan struct{}
	loopWg       sync.WaitGroup
	lastTickTime *time.Time
	nextTickTime *time.Time
	lastError    *string

	ticking    atomic.Bool
	totalTicks atomic.Int64
	// bgWg tracks triggered ticks running outside the loop
	bgWg sync.WaitGroup
}

// NewScheduler creates a stopped scheduler
func NewScheduler(
	source TranscriptSource,
	runner meeting.Runner,
	tracker *idempotency.Tracker,
	cfg Config,
	logger *zap.Logger,
) *Scheduler {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	return &Scheduler{
		source:  source,
		runner:  runner,
		tracker: tracker,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start begins periodic ticking. It is a no-op when already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	next := time.Now().Add(s.cfg.PollInterval)
	s.nextTickTime = &next

	s.loopWg.Add(1)
	go s.loop(s.stopChan)

	if s.logger != nil {
		s.logger.Info("🚀 Scheduler started",
			zap.Duration("poll_interval", s.cfg.PollInterval),
			zap.Int("max_concurrent", s.cfg.MaxConcurrent),
		)
	}
}

// Stop ends periodic ticking after the current tick completes. In-flight
// pipeline runs of that tick finish before Stop returns. It is a no-op when
// already stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.nextTickTime = nil
	close(s.stopChan)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("🛑 Stopping scheduler...")
	}
	s.loopWg.Wait()
	if s.logger != nil {
		s.logger.Info("✅ Scheduler stopped")
	}
}

// Wait blocks until triggered ticks running outside the loop have finished
func (s *Scheduler) Wait() {
	s.bgWg.Wait()
}

// Trigger starts an immediate tick in the background. It returns false
// without doing anything when a tick is already running.
func (s *Scheduler) Trigger() bool {
	if !s.tickMu.TryLock() {
		if s.logger != nil {
			s.logger.Info("⏭️ Trigger coalesced into running tick")
		}
		return false
	}
	s.bgWg.Add(1)
	go func() {
		defer s.bgWg.Done()
		defer s.tickMu.Unlock()
		s.tick(context.Background())
	}()
	return true
}

// TickNow runs one tick synchronously unless a tick is already running, in
// which case ok is false.
func (s *Scheduler) TickNow(ctx context.Context) (res TickResult, ok bool) {
	if !s.tickMu.TryLock() {
		return TickResult{}, false
	}
	defer s.tickMu.Unlock()
	return s.tick(ctx), true
}

// Status returns a snapshot of the scheduler state
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Running:       s.running,
		Ticking:       s.ticking.Load(),
		LastTickTime:  copyTime(s.lastTickTime),
		NextTickTime:  copyTime(s.nextTickTime),
		LastError:     copyString(s.lastError),
		PollInterval:  s.cfg.PollInterval,
		MaxConcurrent: s.cfg.MaxConcurrent,
		InFlight:      s.tracker.InFlight(),
		TotalTicks:    s.totalTicks.Load(),
	}
}

// ClearCache drops every in-flight mark held by the tracker. Durable
// processed flags are untouched.
func (s *Scheduler) ClearCache() int {
	n := s.tracker.Reset()
	if s.logger != nil {
		s.logger.Info("🧹 In-flight cache cleared", zap.Int("released", n))
	}
	return n
}

func (s *Scheduler) loop(stop <-chan struct{}) {
	defer s.loopWg.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.tickMu.TryLock() {
				s.tick(context.Background())
				s.tickMu.Unlock()
			} else if s.logger != nil {
				s.logger.Info("⏭️ Scheduled tick suppressed, previous tick still running")
			}

			// a tick longer than the interval leaves a stale tick queued
			select {
			case <-ticker.C:
			default:
			}
			s.mu.Lock()
			if s.running {
				next := time.Now().Add(s.cfg.PollInterval)
				s.nextTickTime = &next
			}
			s.mu.Unlock()
		}
	}
}

// tick runs one discovery pass. The caller holds tickMu.
func (s *Scheduler) tick(ctx context.Context) TickResult {
	s.ticking.Store(true)
	defer s.ticking.Store(false)
	s.totalTicks.Add(1)

	started := time.Now()
	var res TickResult

	candidates, err := s.fetch(ctx)
	if err != nil {
		s.finishTick(started, err)
		if s.logger != nil {
			s.logger.Error("❌ Failed to fetch candidates", zap.Error(err))
		}
		return res
	}
	res.Candidates = len(candidates)

	var (
		countMu sync.Mutex
		g       errgroup.Group
	)
	g.SetLimit(s.cfg.MaxConcurrent)

	for i, c := range candidates {
		if c.ConferenceID == "" {
			continue
		}
		done, err := s.tracker.IsCompleted(ctx, c.ConferenceID)
		if err != nil {
			res.Failed++
			if s.logger != nil {
				s.logger.Warn("⚠️ Completion check failed, skipping candidate",
					zap.String("conference_id", c.ConferenceID), zap.Error(err))
			}
			continue
		}
		if done {
			res.AlreadyCompleted++
			continue
		}
		if !s.tracker.TryAcquire(c.ConferenceID) {
			res.InFlight++
			continue
		}
		res.Dispatched++

		c, workerID := c, i
		g.Go(func() error {
			if err := s.dispatch(ctx, c, workerID); err != nil {
				countMu.Lock()
				res.Failed++
				countMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	var tickErr error
	if res.Failed > 0 {
		tickErr = fmt.Errorf("%d of %d candidates failed", res.Failed, res.Candidates)
	}
	s.finishTick(started, tickErr)
	if s.logger != nil {
		s.logger.Info("✅ Tick completed",
			zap.Int("candidates", res.Candidates),
			zap.Int("dispatched", res.Dispatched),
			zap.Int("already_completed", res.AlreadyCompleted),
			zap.Int("in_flight", res.InFlight),
			zap.Int("failed", res.Failed),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
	return res
}

func (s *Scheduler) fetch(ctx context.Context) ([]entities.Candidate, error) {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	var (
		candidates []entities.Candidate
		err        error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic recovered: %v", r)
			}
		}()
		candidates, err = s.source.FetchEndedWithTranscript(ctx)
	}()
	if err != nil {
		return nil, fmt.Errorf("fetch ended meetings: %w", err)
	}
	return candidates, nil
}

// dispatch runs one acquired candidate and always releases it
func (s *Scheduler) dispatch(ctx context.Context, c entities.Candidate, workerID int) error {
	defer s.tracker.Release(c.ConferenceID)

	runCtx, cancel := jobcontext.RunBegin(ctx, c.ConferenceID, jobcontext.TriggerScheduler, workerID, s.cfg.RunTimeout)
	defer cancel()

	err := jobcontext.RunEnd(runCtx, func(ctx context.Context) error {
		_, err := s.runner.Run(ctx, c)
		return err
	})
	if err != nil && s.logger != nil {
		s.logger.Error("❌ Pipeline run failed",
			zap.String("conference_id", c.ConferenceID),
			zap.Int("worker_id", workerID),
			zap.Error(err),
		)
	}
	return err
}

func (s *Scheduler) finishTick(started time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastTickTime = &started
	if err != nil {
		msg := err.Error()
		s.lastError = &msg
		return
	}
	s.lastError = nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
