// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// Command handlers (OnAddQuote, OnFilterChange, ...) are pure: they take the
// store and the current Session and return the next Session plus the effects
// to apply. QuoteService and SyncService own the shared state, serialize
// access to it and apply the effects.
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters)
//   - Storage formats or provider DTOs (that's adapters)
//   - Store and merge rules (that's the domain layer)
package app

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/jsamuelsen/quotesync/internal/app/effects"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// QuoteService handles user commands against the quote store.
//
// Example usage:
//
//	// In main.go
//	store := domain.NewQuoteStore()
//	svc := app.NewQuoteService(app.QuoteServiceConfig{
//	    Store: store, Repo: repo, Renderer: renderer, Logger: logger,
//	})
//	svc.Restore(ctx)
//
//	// In HTTP handler
//	quote, err := svc.AddQuote(ctx, text, category)
type QuoteService struct {
	store  *domain.QuoteStore
	env    effects.Env
	pick   domain.Picker
	logger *slog.Logger

	mu      sync.Mutex
	session Session
}

// QuoteServiceConfig contains the dependencies of a QuoteService.
type QuoteServiceConfig struct {
	Store    *domain.QuoteStore
	Repo     ports.QuoteRepository
	Renderer ports.Renderer

	// Picker chooses random quotes. Defaults to math/rand/v2.
	Picker domain.Picker

	Logger *slog.Logger
}

// NewQuoteService creates a quote service with the provided dependencies.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pick := cfg.Picker
	if pick == nil {
		pick = rand.IntN
	}

	store := cfg.Store
	if store == nil {
		store = domain.NewQuoteStore()
	}

	return &QuoteService{
		store:   store,
		env:     effects.Env{Repo: cfg.Repo, Renderer: cfg.Renderer},
		pick:    pick,
		logger:  logger.With(slog.String("component", "app.QuoteService")),
		session: Session{Selected: domain.CategoryAll},
	}
}

// Store returns the quote store the service mutates.
func (s *QuoteService) Store() *domain.QuoteStore {
	return s.store
}

// Session returns a copy of the current session.
func (s *QuoteService) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.session
}

// locked runs fn with the session while holding mu. Every store snapshot
// that gets saved is taken and written under mu, so the last write always
// carries the newest store.
func (s *QuoteService) locked(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.session)
}

// loaded is a persisted value and whether it was present.
type loaded[T any] struct {
	value T
	ok    bool
}

// Restore loads persisted state into the store and renders the first view.
// Missing quotes fall back to the starter set; a missing or stale category
// falls back to "all". The last shown quote is displayed again when it is
// still in the selected category, otherwise a random one is picked.
func (s *QuoteService) Restore(ctx context.Context) Display {
	quotes, category, last, _ := Load3(ctx,
		func(ctx context.Context) (loaded[[]domain.Quote], error) {
			v, ok := s.env.Repo.LoadQuotes(ctx)
			return loaded[[]domain.Quote]{v, ok}, nil
		},
		func(ctx context.Context) (loaded[string], error) {
			v, ok := s.env.Repo.LoadSelectedCategory(ctx)
			return loaded[string]{v, ok}, nil
		},
		func(ctx context.Context) (loaded[domain.Quote], error) {
			v, ok := s.env.Repo.LoadLastShown(ctx)
			return loaded[domain.Quote]{v, ok}, nil
		},
	)

	if quotes.ok {
		s.store.BulkReplace(quotes.value)
	} else {
		s.store.BulkReplace(domain.StarterQuotes())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Selected = domain.CategoryAll
	if category.ok && s.store.HasCategory(category.value) {
		s.session.Selected = domain.NormalizeCategory(category.value)
	}

	s.logger.InfoContext(ctx, "restored quotes",
		slog.Int("count", s.store.Len()),
		slog.Bool("from_storage", quotes.ok),
		slog.String("selected", s.session.Selected),
	)

	fx := []effects.Effect{
		effects.ShowCategories{Categories: s.store.Categories(), Selected: s.session.Selected},
	}

	if last.ok && s.stillShown(last.value) {
		q := last.value
		s.session.Current = &q
		s.commit(ctx, append(fx, effects.ShowQuote{Quote: q}))

		return Display{Quote: &q}
	}

	next, display, shown := OnShowRandom(s.store, s.session, s.pick)
	s.session = next
	s.commit(ctx, append(fx, shown...))

	return display
}

func (s *QuoteService) stillShown(q domain.Quote) bool {
	current, ok := s.store.Get(q.ID)
	if !ok || !current.Equal(q) {
		return false
	}

	return s.session.Selected == domain.CategoryAll || s.session.Selected == q.Category
}

// AddQuote validates and stores a new quote, then shows it.
func (s *QuoteService) AddQuote(ctx context.Context, text, category string) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, fx, err := OnAddQuote(s.store, s.session, text, category)
	if err != nil {
		s.logger.DebugContext(ctx, "rejected quote", slog.Any("error", err))
		return domain.Quote{}, err
	}

	s.session = next
	s.commit(ctx, fx)

	s.logger.InfoContext(ctx, "added quote",
		slog.String("quote_id", next.Current.ID),
		slog.String("category", next.Current.Category),
	)

	return *next.Current, nil
}

// SelectCategory changes the filter and shows a quote from it.
func (s *QuoteService) SelectCategory(ctx context.Context, category string) Display {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, display, fx := OnFilterChange(s.store, s.session, category, s.pick)
	s.session = next
	s.commit(ctx, fx)

	return display
}

// ShowRandom shows another quote from the selected category.
func (s *QuoteService) ShowRandom(ctx context.Context) Display {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, display, fx := OnShowRandom(s.store, s.session, s.pick)
	s.session = next
	s.commit(ctx, fx)

	return display
}

// RandomIn picks a quote from category without changing the session.
func (s *QuoteService) RandomIn(category string) (domain.Quote, error) {
	q, err := domain.PickWith(s.store.FilterByCategory(category), s.pick)
	if err != nil {
		return domain.Quote{}, domain.NewEmptyPoolError(domain.NormalizeCategory(category))
	}

	return q, nil
}

// Import replaces the store with already parsed quotes.
func (s *QuoteService) Import(ctx context.Context, quotes []domain.Quote, skipped int) ImportOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, outcome, fx := OnImport(s.store, s.session, quotes, skipped)
	s.session = next
	s.commit(ctx, fx)

	s.logger.InfoContext(ctx, "import finished",
		slog.Int("imported", outcome.Imported),
		slog.Int("skipped", outcome.Skipped),
	)

	return outcome
}

// Export returns the full store in order.
func (s *QuoteService) Export() []domain.Quote {
	return s.store.Snapshot()
}

// List returns the quotes in category ("all" for every quote).
func (s *QuoteService) List(category string) []domain.Quote {
	return s.store.FilterByCategory(category)
}

// Categories returns the category index and the current selection.
func (s *QuoteService) Categories() ([]string, string) {
	s.mu.Lock()
	selected := s.session.Selected
	s.mu.Unlock()

	return s.store.Categories(), selected
}

// commit applies effects. Failures are logged; the in-memory state stays
// authoritative. Must be called with mu held.
func (s *QuoteService) commit(ctx context.Context, fx []effects.Effect) {
	if err := effects.New(fx...).Commit(ctx, s.env); err != nil {
		s.logger.WarnContext(ctx, "side effects failed",
			slog.Any("error", err),
		)
	}
}
