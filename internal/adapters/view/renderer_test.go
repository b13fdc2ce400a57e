package view

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

func TestNewRenderer_EmptyView(t *testing.T) {
	m := NewRenderer().Snapshot()

	assert.Nil(t, m.Quote)
	assert.Equal(t, []string{domain.CategoryAll}, m.Categories)
	assert.Equal(t, domain.CategoryAll, m.Selected)
	assert.NotNil(t, m.Conflicts)
	assert.Equal(t, domain.SyncIdle, m.Status.State)
}

func TestRenderer_QuoteAndMessageReplaceEachOther(t *testing.T) {
	ctx := context.Background()
	r := NewRenderer()

	r.RenderMessage(ctx, "no quotes")
	r.RenderQuote(ctx, domain.Quote{ID: "1", Text: "a", Category: "life"})

	m := r.Snapshot()
	require.NotNil(t, m.Quote)
	assert.Equal(t, "a", m.Quote.Text)
	assert.Empty(t, m.Message)

	r.RenderMessage(ctx, "no quotes in category")

	m = r.Snapshot()
	assert.Nil(t, m.Quote)
	assert.Equal(t, "no quotes in category", m.Message)
}

func TestRenderer_CategoriesConflictsStatus(t *testing.T) {
	ctx := context.Background()
	r := NewRenderer()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	categories := []string{"all", "life"}
	r.RenderCategories(ctx, categories, "life")
	categories[1] = "mutated"

	r.RenderConflicts(ctx, nil)
	r.RenderStatus(ctx, domain.SyncStatus{State: domain.SyncSucceeded, Conflicts: 2})

	m := r.Snapshot()
	assert.Equal(t, []string{"all", "life"}, m.Categories, "renderer keeps its own copy")
	assert.Equal(t, "life", m.Selected)
	assert.Equal(t, []domain.Conflict{}, m.Conflicts)
	assert.Equal(t, domain.SyncSucceeded, m.Status.State)
	assert.Equal(t, fixed, m.UpdatedAt)
}

func TestRenderer_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	r := NewRenderer()
	r.RenderQuote(ctx, domain.Quote{ID: "1", Text: "a", Category: "life"})

	m := r.Snapshot()
	m.Quote.Text = "changed"

	assert.Equal(t, "a", r.Snapshot().Quote.Text)
}

func TestRenderer_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	r := NewRenderer()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.RenderStatus(ctx, domain.SyncStatus{State: domain.SyncSucceeded, Fetched: i})
		}()
		go func() {
			defer wg.Done()
			_ = r.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, domain.SyncSucceeded, r.Snapshot().Status.State)
}
