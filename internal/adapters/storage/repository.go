package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// Repository implements ports.QuoteRepository on top of two KV stores: a
// durable one for quotes and the selected category, and a session one for
// the last shown quote.
type Repository struct {
	durable KV
	session KV
	logger  *slog.Logger
}

var _ ports.QuoteRepository = (*Repository)(nil)

// NewRepository creates a repository. A nil session store falls back to a
// fresh MemoryKV.
func NewRepository(durable, session KV, logger *slog.Logger) *Repository {
	if session == nil {
		session = NewMemoryKV()
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Repository{
		durable: durable,
		session: session,
		logger:  logger.With(slog.String("component", "storage.Repository")),
	}
}

// SaveQuotes writes the whole store as a JSON array.
func (r *Repository) SaveQuotes(ctx context.Context, quotes []domain.Quote) error {
	if quotes == nil {
		quotes = []domain.Quote{}
	}

	return r.put(ctx, r.durable, domain.KeyQuotes, quotes)
}

// LoadQuotes reads the persisted array. Missing, non-array or otherwise
// malformed data reports ok=false.
func (r *Repository) LoadQuotes(ctx context.Context) ([]domain.Quote, bool) {
	var quotes []domain.Quote
	if !r.get(ctx, r.durable, domain.KeyQuotes, &quotes) {
		return nil, false
	}

	if quotes == nil {
		r.logger.WarnContext(ctx, "ignoring persisted quotes", slog.String("reason", "not an array"))
		return nil, false
	}

	return quotes, true
}

// SaveSelectedCategory writes the category filter.
func (r *Repository) SaveSelectedCategory(ctx context.Context, category string) error {
	return r.put(ctx, r.durable, domain.KeyLastCategory, category)
}

// LoadSelectedCategory reads the category filter.
func (r *Repository) LoadSelectedCategory(ctx context.Context) (string, bool) {
	var category string
	if !r.get(ctx, r.durable, domain.KeyLastCategory, &category) || category == "" {
		return "", false
	}

	return category, true
}

// SaveLastShown writes the last displayed quote to the session store.
func (r *Repository) SaveLastShown(ctx context.Context, quote domain.Quote) error {
	return r.put(ctx, r.session, domain.KeyLastQuote, quote)
}

// LoadLastShown reads the last displayed quote from the session store.
func (r *Repository) LoadLastShown(ctx context.Context) (domain.Quote, bool) {
	var quote domain.Quote
	if !r.get(ctx, r.session, domain.KeyLastQuote, &quote) || quote.Text == "" {
		return domain.Quote{}, false
	}

	return quote, true
}

func (r *Repository) put(ctx context.Context, kv KV, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return domain.NewStorageError("encode", key, err)
	}

	if err := kv.Set(ctx, key, raw); err != nil {
		return domain.NewStorageError("write", key, err)
	}

	return nil
}

func (r *Repository) get(ctx context.Context, kv KV, key string, target any) bool {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false
	}

	if err != nil {
		r.logger.WarnContext(ctx, "reading persisted value failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}

	if err := json.Unmarshal(raw, target); err != nil {
		r.logger.WarnContext(ctx, "ignoring malformed persisted value",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}

	return true
}
