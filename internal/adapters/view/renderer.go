// Package view holds the presentation state the core renders into. The HTTP
// adapter serves it as the widget's view model.
package view

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Model is everything currently on screen.
type Model struct {
	// Quote is the displayed quote; nil while a message is shown instead.
	Quote *domain.Quote `json:"quote,omitempty"`

	// Message is a user-facing notice such as an empty-state text.
	Message string `json:"message,omitempty"`

	Categories []string          `json:"categories"`
	Selected   string            `json:"selected"`
	Conflicts  []domain.Conflict `json:"conflicts"`
	Status     domain.SyncStatus `json:"status"`
	UpdatedAt  time.Time         `json:"updatedAt,omitzero"`
}

// Renderer implements ports.Renderer by recording the latest view model.
type Renderer struct {
	mu    sync.RWMutex
	model Model
	now   func() time.Time
}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer creates a renderer with an empty view.
func NewRenderer() *Renderer {
	return &Renderer{
		model: Model{
			Categories: []string{domain.CategoryAll},
			Selected:   domain.CategoryAll,
			Conflicts:  []domain.Conflict{},
			Status:     domain.SyncStatus{State: domain.SyncIdle},
		},
		now: time.Now,
	}
}

// RenderQuote shows a quote and clears any message.
func (r *Renderer) RenderQuote(ctx context.Context, quote domain.Quote) {
	r.update(ctx, "quote", func(m *Model) {
		m.Quote = &quote
		m.Message = ""
	})
}

// RenderMessage shows a notice in place of a quote.
func (r *Renderer) RenderMessage(ctx context.Context, message string) {
	r.update(ctx, "message", func(m *Model) {
		m.Quote = nil
		m.Message = message
	})
}

// RenderCategories replaces the category index and selection.
func (r *Renderer) RenderCategories(ctx context.Context, categories []string, selected string) {
	r.update(ctx, "categories", func(m *Model) {
		m.Categories = slices.Clone(categories)
		m.Selected = selected
	})
}

// RenderConflicts replaces the conflict report.
func (r *Renderer) RenderConflicts(ctx context.Context, conflicts []domain.Conflict) {
	r.update(ctx, "conflicts", func(m *Model) {
		m.Conflicts = slices.Clone(conflicts)
		if m.Conflicts == nil {
			m.Conflicts = []domain.Conflict{}
		}
	})
}

// RenderStatus replaces the sync status line.
func (r *Renderer) RenderStatus(ctx context.Context, status domain.SyncStatus) {
	r.update(ctx, "status", func(m *Model) {
		m.Status = status
	})
}

// Snapshot returns a copy of the current view.
func (r *Renderer) Snapshot() Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.model
	m.Categories = slices.Clone(m.Categories)
	m.Conflicts = slices.Clone(m.Conflicts)

	if m.Quote != nil {
		q := *m.Quote
		m.Quote = &q
	}

	return m
}

func (r *Renderer) update(ctx context.Context, part string, fn func(*Model)) {
	r.mu.Lock()
	fn(&r.model)
	r.model.UpdatedAt = r.now()
	r.mu.Unlock()

	logging.FromContext(ctx).Log(ctx, logging.LevelTrace, "view updated", slog.String("part", part))
}
