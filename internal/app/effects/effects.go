package effects

import (
	"context"
	"fmt"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Env holds the collaborators effects are applied to.
type Env struct {
	Repo     ports.QuoteRepository
	Renderer ports.Renderer
}

// Effect is a staged side effect.
type Effect interface {
	// Apply performs the effect.
	Apply(ctx context.Context, env Env) error

	// Description returns a human-readable description for logging.
	Description() string
}

// SaveQuotes persists the whole store.
type SaveQuotes struct {
	Quotes []domain.Quote
}

func (e SaveQuotes) Apply(ctx context.Context, env Env) error {
	return env.Repo.SaveQuotes(ctx, e.Quotes)
}

func (e SaveQuotes) Description() string {
	return fmt.Sprintf("save %d quotes", len(e.Quotes))
}

// SaveSelectedCategory persists the category filter.
type SaveSelectedCategory struct {
	Category string
}

func (e SaveSelectedCategory) Apply(ctx context.Context, env Env) error {
	return env.Repo.SaveSelectedCategory(ctx, e.Category)
}

func (e SaveSelectedCategory) Description() string {
	return fmt.Sprintf("save selected category %q", e.Category)
}

// SaveLastShown records the displayed quote in session storage.
type SaveLastShown struct {
	Quote domain.Quote
}

func (e SaveLastShown) Apply(ctx context.Context, env Env) error {
	return env.Repo.SaveLastShown(ctx, e.Quote)
}

func (e SaveLastShown) Description() string {
	return fmt.Sprintf("save last shown quote %q", e.Quote.ID)
}

// ShowQuote renders a quote.
type ShowQuote struct {
	Quote domain.Quote
}

func (e ShowQuote) Apply(ctx context.Context, env Env) error {
	env.Renderer.RenderQuote(ctx, e.Quote)
	return nil
}

func (e ShowQuote) Description() string {
	return fmt.Sprintf("show quote %q", e.Quote.ID)
}

// ShowMessage renders a notice in place of a quote.
type ShowMessage struct {
	Message string
}

func (e ShowMessage) Apply(ctx context.Context, env Env) error {
	env.Renderer.RenderMessage(ctx, e.Message)
	return nil
}

func (e ShowMessage) Description() string {
	return "show message"
}

// ShowCategories renders the category index.
type ShowCategories struct {
	Categories []string
	Selected   string
}

func (e ShowCategories) Apply(ctx context.Context, env Env) error {
	env.Renderer.RenderCategories(ctx, e.Categories, e.Selected)
	return nil
}

func (e ShowCategories) Description() string {
	return fmt.Sprintf("show %d categories", len(e.Categories))
}

// ShowConflicts renders a conflict report.
type ShowConflicts struct {
	Conflicts []domain.Conflict
}

func (e ShowConflicts) Apply(ctx context.Context, env Env) error {
	env.Renderer.RenderConflicts(ctx, e.Conflicts)
	return nil
}

func (e ShowConflicts) Description() string {
	return fmt.Sprintf("show %d conflicts", len(e.Conflicts))
}

// ShowStatus renders the sync status.
type ShowStatus struct {
	Status domain.SyncStatus
}

func (e ShowStatus) Apply(ctx context.Context, env Env) error {
	env.Renderer.RenderStatus(ctx, e.Status)
	return nil
}

func (e ShowStatus) Description() string {
	return fmt.Sprintf("show status %s", e.Status.State)
}
