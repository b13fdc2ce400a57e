// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrStorage, ErrNetwork, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// QuoteRepository persists the quote store and the small pieces of session
// state that survive restarts.
//
// Writes return a *domain.StorageError on failure; callers log it and keep
// going because the in-memory store stays authoritative. Loads never fail:
// missing or malformed data reports ok=false.
type QuoteRepository interface {
	SaveQuotes(ctx context.Context, quotes []domain.Quote) error
	LoadQuotes(ctx context.Context) ([]domain.Quote, bool)

	SaveSelectedCategory(ctx context.Context, category string) error
	LoadSelectedCategory(ctx context.Context) (string, bool)

	// SaveLastShown writes to session-scoped storage, cleared at session end.
	SaveLastShown(ctx context.Context, quote domain.Quote) error
	LoadLastShown(ctx context.Context) (domain.Quote, bool)
}

// PushResult summarizes a bulk push to the remote source.
type PushResult struct {
	Attempted int
	Pushed    int
	Failed    []string
}

// RemoteSource fetches quotes from and pushes quotes to an external quote source.
// Implementations map provider records into domain quotes and return
// *domain.NetworkError for transport or status failures.
type RemoteSource interface {
	// FetchRemote returns the remote quotes in the order the provider sent them.
	FetchRemote(ctx context.Context) ([]domain.Quote, error)

	// PushLocal sends every quote upstream. Individual failures are collected
	// in the result; an error is returned only when nothing could be pushed.
	PushLocal(ctx context.Context, quotes []domain.Quote) (PushResult, error)

	// PushQuote overwrites a single quote upstream by ID.
	PushQuote(ctx context.Context, quote domain.Quote) error
}

// Renderer is the presentation collaborator. The core calls it after state
// changes; it must not call back into the core synchronously.
type Renderer interface {
	RenderQuote(ctx context.Context, quote domain.Quote)
	RenderMessage(ctx context.Context, message string)
	RenderCategories(ctx context.Context, categories []string, selected string)
	RenderConflicts(ctx context.Context, conflicts []domain.Conflict)
	RenderStatus(ctx context.Context, status domain.SyncStatus)
}
