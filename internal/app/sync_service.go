package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jsamuelsen/quotesync/internal/app/effects"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/platform/telemetry"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// ErrCycleInFlight is returned when a cycle of the same kind is already running.
var ErrCycleInFlight = errors.New("sync cycle already in flight")

// SyncService runs poll and full sync cycles against the remote source and
// tracks the sync status.
//
// Cycles of the same kind never overlap: a trigger that finds one running is
// skipped. Poll and full sync may run side by side; the merge itself is
// serialized by the store's lock, and saves share the QuoteService lock.
type SyncService struct {
	quotes *QuoteService
	remote ports.RemoteSource
	env    effects.Env

	exec    *Executor
	metrics *Metrics
	now     func() time.Time
	logger  *slog.Logger

	pushConcurrency int

	pollMu sync.Mutex
	syncMu sync.Mutex

	mu        sync.RWMutex
	status    domain.SyncStatus
	conflicts []domain.Conflict
}

// SyncServiceConfig contains the dependencies of a SyncService.
type SyncServiceConfig struct {
	// Quotes owns the store and session the cycles update.
	Quotes   *QuoteService
	Remote   ports.RemoteSource
	Repo     ports.QuoteRepository
	Renderer ports.Renderer

	// Metrics defaults to an unregistered set.
	Metrics *Metrics

	// Now defaults to time.Now.
	Now func() time.Time

	// PushConcurrency bounds parallel pushes when restoring every conflict.
	PushConcurrency int

	Logger *slog.Logger
}

// NewSyncService creates a sync service. It panics if Quotes or Remote is nil.
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	if cfg.Quotes == nil || cfg.Remote == nil {
		panic("SyncService: Quotes and Remote are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &SyncService{
		quotes:          cfg.Quotes,
		remote:          cfg.Remote,
		env:             effects.Env{Repo: cfg.Repo, Renderer: cfg.Renderer},
		exec:            NewExecutor(logger),
		metrics:         metrics,
		now:             now,
		logger:          logger.With(slog.String("component", "app.SyncService")),
		pushConcurrency: max(cfg.PushConcurrency, 1),
		status:          domain.SyncStatus{State: domain.SyncIdle},
		conflicts:       []domain.Conflict{},
	}
}

// Status returns the current sync status.
func (s *SyncService) Status() domain.SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// Conflicts returns the report from the most recent reconciliation.
func (s *SyncService) Conflicts() []domain.Conflict {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.conflicts)
}

// cycleResult is what a cycle body produced.
type cycleResult struct {
	status    domain.SyncStatus
	conflicts []domain.Conflict
	err       error
}

// Poll fetches remote quotes without merging them. Success, even with zero
// records, marks the status succeeded; a fetch failure marks it failed and
// waits for the next tick.
func (s *SyncService) Poll(ctx context.Context) (domain.SyncStatus, error) {
	status, _, err := s.run(ctx, domain.CyclePoll, &s.pollMu, func(ctx context.Context, status domain.SyncStatus) cycleResult {
		remote, err := s.remote.FetchRemote(ctx)
		if err != nil {
			return cycleResult{status: status, err: fmt.Errorf("fetch: %w", err)}
		}

		status.Fetched = len(remote)

		return cycleResult{status: status}
	})

	return status, err
}

// FullSync fetches, reconciles server-wins into the store, and pushes the
// merged store back. A failed push marks the cycle failed but the merge
// stays applied.
func (s *SyncService) FullSync(ctx context.Context) (domain.SyncStatus, []domain.Conflict, error) {
	return s.run(ctx, domain.CycleSync, &s.syncMu, s.fullSync)
}

func (s *SyncService) fullSync(ctx context.Context, status domain.SyncStatus) cycleResult {
	logger := logging.FromContext(ctx)

	remote, err := s.remote.FetchRemote(ctx)
	if err != nil {
		return cycleResult{status: status, err: fmt.Errorf("fetch: %w", err)}
	}

	status.Fetched = len(remote)

	conflicts := domain.Reconcile(s.quotes.Store(), remote)
	status.Conflicts = len(conflicts)

	s.mu.Lock()
	s.conflicts = conflicts
	s.mu.Unlock()

	for _, c := range conflicts {
		logger.InfoContext(ctx, "conflict resolved server-wins",
			slog.String("quote_id", c.ID),
			slog.String("local_text", c.Local.Text),
			slog.String("server_text", c.Server.Text),
		)
	}

	pushed, err := s.remote.PushLocal(ctx, s.quotes.Store().Snapshot())
	status.Pushed = pushed.Pushed

	if len(pushed.Failed) > 0 {
		s.metrics.pushFailed(len(pushed.Failed))
	}

	if err != nil {
		return cycleResult{status: status, conflicts: conflicts, err: fmt.Errorf("push: %w", err)}
	}

	return cycleResult{status: status, conflicts: conflicts}
}

// run wraps a cycle body with the overlap guard, status transitions,
// persistence and rendering.
func (s *SyncService) run(
	ctx context.Context,
	kind domain.CycleKind,
	guard *sync.Mutex,
	body func(context.Context, domain.SyncStatus) cycleResult,
) (domain.SyncStatus, []domain.Conflict, error) {
	if !guard.TryLock() {
		s.metrics.cycleSkipped(kind)
		s.logger.InfoContext(ctx, "skipping cycle, previous one still running", slog.String("cycle", string(kind)))

		return s.Status(), nil, ErrCycleInFlight
	}
	defer guard.Unlock()

	return s.cycle(ctx, kind, body)
}

// cycle runs body with its guard already held.
func (s *SyncService) cycle(
	ctx context.Context,
	kind domain.CycleKind,
	body func(context.Context, domain.SyncStatus) cycleResult,
) (domain.SyncStatus, []domain.Conflict, error) {
	cycleID := uuid.NewString()
	ctx = logging.WithContext(ctx, s.logger)
	ctx = logging.WithCycle(ctx, string(kind), cycleID)

	ctx, span := telemetry.StartSpan(ctx, "sync "+string(kind),
		attribute.String("sync.cycle", string(kind)),
		attribute.String("sync.cycle_id", cycleID),
	)

	logger := logging.FromContext(ctx)
	start := s.now()

	started := domain.Started(kind)
	s.setStatus(started)
	s.render(ctx, effects.ShowStatus{Status: started})

	logger.DebugContext(ctx, "cycle started")

	result := body(ctx, started)

	final := result.status.Succeeded(s.now())
	if result.err != nil {
		final = result.status.Failed(s.now(), result.err.Error())
	}

	// The store is on disk before anyone can observe "succeeded". The
	// snapshot shares the quote service lock with user commands.
	var render []effects.Effect
	s.quotes.locked(func(session Session) {
		var persist []effects.Effect
		persist, render = OnCycleCompleted(s.quotes.Store(), session, final, result.conflicts)

		if err := effects.New(persist...).Commit(ctx, s.env); err != nil {
			logger.WarnContext(ctx, "persisting store after cycle failed", slog.Any("error", err))
		}
	})

	s.setStatus(final)
	s.render(ctx, render...)

	took := s.now().Sub(start)
	s.metrics.cycleDone(kind, final, took, s.quotes.Store().Len())

	attrs := []any{
		slog.String("state", string(final.State)),
		slog.Int("fetched", final.Fetched),
		slog.Int("conflicts", final.Conflicts),
		slog.Int("pushed", final.Pushed),
		slog.Duration("duration", took),
	}

	if result.err != nil {
		logger.WarnContext(ctx, "cycle failed", append(attrs, slog.Any("error", result.err))...)
	} else {
		logger.InfoContext(ctx, "cycle finished", attrs...)
	}

	span.SetAttributes(
		attribute.Int("sync.fetched", final.Fetched),
		attribute.Int("sync.conflicts", final.Conflicts),
	)
	telemetry.EndSpan(span, result.err)

	return final, result.conflicts, result.err
}

func (s *SyncService) setStatus(status domain.SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
}

func (s *SyncService) render(ctx context.Context, fx ...effects.Effect) {
	if err := effects.New(fx...).Commit(ctx, s.env); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "rendering sync state failed", slog.Any("error", err))
	}
}

// RestoreResult is the outcome of pushing local versions back upstream.
type RestoreResult struct {
	Restored  []string          `json:"restored"`
	Failed    []string          `json:"failed,omitempty"`
	Status    domain.SyncStatus `json:"status"`
	Conflicts []domain.Conflict `json:"conflicts"`
}

// RestoreLocal pushes the local version of a conflicted quote back to the
// remote source, overwriting the server copy, and re-runs a full sync.
func (s *SyncService) RestoreLocal(ctx context.Context, id string) (RestoreResult, error) {
	return s.restore(ctx, "restore local", []string{id})
}

// RestoreAllLocal does RestoreLocal for every quote in the last conflict report.
func (s *SyncService) RestoreAllLocal(ctx context.Context) (RestoreResult, error) {
	ids := make([]string, 0)
	for _, c := range s.Conflicts() {
		ids = append(ids, c.ID)
	}

	return s.restore(ctx, "restore all local", ids)
}

// restoreInput carries the conflicts selected for restoring.
type restoreInput struct {
	ids       []string
	conflicts []domain.Conflict
}

// restoreVerified is the state after the re-sync.
type restoreVerified struct {
	restored  []string
	failed    []string
	status    domain.SyncStatus
	conflicts []domain.Conflict
}

func (s *SyncService) restore(ctx context.Context, name string, ids []string) (RestoreResult, error) {
	op := Operation[*restoreInput, []Outcome[string], restoreVerified, RestoreResult]{
		Name: name,

		Validate: func(_ context.Context, in *restoreInput) error {
			if len(in.ids) == 0 {
				return domain.NewValidationError("id", "no conflicts to restore")
			}

			report := s.Conflicts()
			for _, id := range in.ids {
				i := slices.IndexFunc(report, func(c domain.Conflict) bool { return c.ID == id })
				if i < 0 {
					return domain.NewNotFoundError("conflict", id)
				}

				in.conflicts = append(in.conflicts, report[i])
			}

			return nil
		},

		Perform: func(ctx context.Context, in *restoreInput) ([]Outcome[string], error) {
			pushes := make([]func(context.Context) (string, error), 0, len(in.conflicts))
			for _, c := range in.conflicts {
				pushes = append(pushes, func(ctx context.Context) (string, error) {
					return c.ID, s.remote.PushQuote(ctx, c.Local)
				})
			}

			results := Settle(ctx, s.pushConcurrency, pushes...)

			errs := make([]error, 0, len(results))
			for _, r := range results {
				if r.Err != nil {
					errs = append(errs, r.Err)
				}
			}

			if len(errs) == len(results) {
				return nil, errors.Join(errs...)
			}

			s.metrics.pushFailed(len(errs))

			return results, nil
		},

		// The local versions go back into the store before the re-sync, so
		// the fetched copies match and no reverse conflict is reported.
		Verify: func(ctx context.Context, in *restoreInput, pushed []Outcome[string]) (restoreVerified, error) {
			var v restoreVerified
			for i, r := range pushed {
				if r.Err != nil {
					v.failed = append(v.failed, r.Value)
					continue
				}

				s.quotes.Store().ReplaceByID(in.conflicts[i].Local)
				v.restored = append(v.restored, r.Value)
			}

			// A failed re-sync is reported through its status.
			status, conflicts, _ := s.cycle(ctx, domain.CycleSync, s.fullSync)

			v.status = status
			v.conflicts = conflicts

			return v, nil
		},

		// A re-sync that could not fetch leaves the old report in place; the
		// restored IDs are dropped from it so they are not offered again.
		Archive: func(_ context.Context, _ *restoreInput, v restoreVerified) error {
			if v.status.State == domain.SyncSucceeded {
				return nil
			}

			s.mu.Lock()
			defer s.mu.Unlock()

			s.conflicts = slices.DeleteFunc(s.conflicts, func(c domain.Conflict) bool {
				return slices.Contains(v.restored, c.ID)
			})

			return nil
		},

		Respond: func(_ context.Context, _ *restoreInput, v restoreVerified) (RestoreResult, error) {
			return RestoreResult{
				Restored:  v.restored,
				Failed:    v.failed,
				Status:    v.status,
				Conflicts: s.Conflicts(),
			}, nil
		},
	}

	// The full sync lock is held from before the first push until the
	// re-sync ends, so a running sync never sees half a restore.
	if !s.syncMu.TryLock() {
		s.metrics.cycleSkipped(domain.CycleSync)
		s.logger.InfoContext(ctx, "skipping restore, sync still running", slog.String("operation", name))

		return RestoreResult{Status: s.Status(), Conflicts: s.Conflicts()}, ErrCycleInFlight
	}
	defer s.syncMu.Unlock()

	return Execute(ctx, s.exec, op, &restoreInput{ids: ids})
}
