package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// Cycles runs the two kinds of sync cycle. *SyncService implements it.
type Cycles interface {
	Poll(ctx context.Context) (domain.SyncStatus, error)
	FullSync(ctx context.Context) (domain.SyncStatus, []domain.Conflict, error)
}

// SchedulerConfig holds the cycle cadence.
type SchedulerConfig struct {
	Enabled          bool
	PollInterval     time.Duration
	FullSyncInterval time.Duration
	PollOnStart      bool
}

// Scheduler fires poll and full sync cycles on fixed intervals.
type Scheduler struct {
	cycles Cycles
	cfg    SchedulerConfig
	logger *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[domain.CycleKind]cron.EntryID
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(cycles Cycles, cfg SchedulerConfig, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cycles:  cycles,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "app.Scheduler")),
		entries: make(map[domain.CycleKind]cron.EntryID, 2),
	}
}

// Start registers the cycles and begins firing them. Cycles run with a
// context derived from ctx that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("scheduler already started")
	}

	if !s.cfg.Enabled {
		s.logger.InfoContext(ctx, "sync scheduler disabled")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)

	cl := cronLogger{s.logger}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl))

	pollID, err := c.AddFunc(every(s.cfg.PollInterval), func() { s.poll(ctx) })
	if err != nil {
		cancel()
		return err
	}

	syncID, err := c.AddFunc(every(s.cfg.FullSyncInterval), func() { s.fullSync(ctx) })
	if err != nil {
		cancel()
		return err
	}

	s.entries[domain.CyclePoll] = pollID
	s.entries[domain.CycleSync] = syncID
	s.cron = c
	s.cancel = cancel

	if s.cfg.PollOnStart {
		s.wg.Go(func() { s.poll(ctx) })
	}

	c.Start()

	s.logger.InfoContext(ctx, "sync scheduler started",
		slog.Duration("poll_interval", s.cfg.PollInterval),
		slog.Duration("full_sync_interval", s.cfg.FullSyncInterval),
	)

	return nil
}

// Stop cancels in-flight cycles and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return
	}

	cancel()
	<-c.Stop().Done()
	s.wg.Wait()

	s.logger.Info("sync scheduler stopped")
}

// NextRuns returns when each cycle kind fires next. It is empty while stopped.
func (s *Scheduler) NextRuns() map[domain.CycleKind]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[domain.CycleKind]time.Time, len(s.entries))
	if s.cron == nil {
		return next
	}

	for kind, id := range s.entries {
		next[kind] = s.cron.Entry(id).Next
	}

	return next
}

func (s *Scheduler) poll(ctx context.Context) {
	// Failures are recorded in the sync status; the next tick retries.
	_, _ = s.cycles.Poll(ctx)
}

func (s *Scheduler) fullSync(ctx context.Context) {
	_, _, _ = s.cycles.FullSync(ctx)
}

func every(d time.Duration) string {
	return "@every " + d.String()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}
