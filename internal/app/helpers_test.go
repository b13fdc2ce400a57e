package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/adapters/view"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// first always picks index 0.
func first(int) int { return 0 }

type harness struct {
	store    *domain.QuoteStore
	repo     *storage.Repository
	durable  *storage.MemoryKV
	renderer *view.Renderer
	quotes   *QuoteService
}

func newHarness(t *testing.T, seed ...domain.Quote) *harness {
	t.Helper()

	durable := storage.NewMemoryKV()
	repo := storage.NewRepository(durable, storage.NewMemoryKV(), discardLogger())
	renderer := view.NewRenderer()
	store := domain.NewQuoteStore(seed...)

	return &harness{
		store:    store,
		repo:     repo,
		durable:  durable,
		renderer: renderer,
		quotes: NewQuoteService(QuoteServiceConfig{
			Store:    store,
			Repo:     repo,
			Renderer: renderer,
			Picker:   first,
			Logger:   discardLogger(),
		}),
	}
}

func sampleQuotes() []domain.Quote {
	return []domain.Quote{
		{ID: "1", Text: "one", Category: "life"},
		{ID: "2", Text: "two", Category: "work"},
		{ID: "3", Text: "three", Category: "life"},
	}
}
