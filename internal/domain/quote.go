// Package domain contains core business entities and rules.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// CategoryAll is the sentinel category that matches every quote.
	CategoryAll = "all"

	// CategoryDefault is assigned when a quote is created without a category.
	CategoryDefault = "uncategorized"
)

// Persisted key names shared by every storage backend.
const (
	KeyQuotes       = "quotes"
	KeyLastCategory = "lastCategory"
	KeyLastQuote    = "lastQuote"
)

// Quote is a text/category record with a stable identifier.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID uniquely identifies the quote within a store and across sync cycles.
	ID string `json:"id"`

	// Text is the quotation itself. Never empty after trimming.
	Text string `json:"text"`

	// Category is lower-case and never empty once the quote is in a store.
	Category string `json:"category"`
}

// Equal reports whether two quotes carry the same text and category.
// IDs are not compared; callers match on ID first.
func (q Quote) Equal(other Quote) bool {
	return q.Text == other.Text && q.Category == other.Category
}

// NewQuoteID returns a fresh client-side identifier.
func NewQuoteID() string {
	return uuid.NewString()
}

// NormalizeCategory trims and lower-cases a category name.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// NewQuote validates input and builds a quote with a fresh ID.
// An empty category falls back to CategoryDefault.
func NewQuote(text, category string) (Quote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Quote{}, NewValidationError("text", "must not be empty")
	}

	category = NormalizeCategory(category)
	if category == "" {
		category = CategoryDefault
	}

	return Quote{ID: NewQuoteID(), Text: text, Category: category}, nil
}

// sanitize prepares a quote for bulk loading. It returns false when the
// quote lacks text or category and must be dropped.
func sanitize(q Quote) (Quote, bool) {
	if strings.TrimSpace(q.Text) == "" {
		return Quote{}, false
	}

	q.Category = NormalizeCategory(q.Category)
	if q.Category == "" {
		return Quote{}, false
	}

	if strings.TrimSpace(q.ID) == "" {
		q.ID = NewQuoteID()
	}

	return q, true
}

// StarterQuotes returns the quotes a fresh install begins with when nothing
// has been persisted yet. IDs are stable so a restart before the first save
// does not mint new ones.
func StarterQuotes() []Quote {
	return []Quote{
		{ID: "starter-1", Text: "The only limit to our realization of tomorrow is our doubts of today.", Category: "inspirational"},
		{ID: "starter-2", Text: "I have not failed. I've just found 10,000 ways that won't work.", Category: "perseverance"},
		{ID: "starter-3", Text: "Life is what happens when you're busy making other plans.", Category: "life"},
		{ID: "starter-4", Text: "Do what you can, with what you have, where you are.", Category: "inspirational"},
	}
}
