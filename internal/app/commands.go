package app

import (
	"fmt"

	"github.com/jsamuelsen/quotesync/internal/app/effects"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// Session is the presentation state command handlers read and replace.
// The quote collection itself lives in the domain.QuoteStore.
type Session struct {
	// Selected is the category filter; "all" when unset.
	Selected string

	// Current is the quote on screen, if any.
	Current *domain.Quote
}

// Display is what a command put on screen: a quote or a message.
type Display struct {
	Quote   *domain.Quote `json:"quote,omitempty"`
	Message string        `json:"message,omitempty"`
}

// ImportOutcome reports how an import went.
type ImportOutcome struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Message  string `json:"message"`
}

// User-facing messages.
const (
	MessageNoValidQuotes = "No valid quotes found in the import file."
	MessageNoQuotes      = "No quotes yet. Add one to get started."
)

// EmptyCategoryMessage is shown when a category has no quotes.
func EmptyCategoryMessage(category string) string {
	if category == "" || category == domain.CategoryAll {
		return MessageNoQuotes
	}

	return fmt.Sprintf("No quotes in category %q yet.", category)
}

// OnAddQuote adds a quote, switches the filter to its category and shows it.
// A validation failure leaves the store and session unchanged.
func OnAddQuote(store *domain.QuoteStore, s Session, text, category string) (Session, []effects.Effect, error) {
	q, err := store.Add(text, category)
	if err != nil {
		return s, nil, err
	}

	s.Selected = q.Category
	s.Current = &q

	return s, []effects.Effect{
		effects.SaveQuotes{Quotes: store.Snapshot()},
		effects.SaveSelectedCategory{Category: s.Selected},
		effects.ShowCategories{Categories: store.Categories(), Selected: s.Selected},
		effects.ShowQuote{Quote: q},
		effects.SaveLastShown{Quote: q},
	}, nil
}

// OnFilterChange selects a category and shows a random quote from it, or
// the empty-category message.
func OnFilterChange(store *domain.QuoteStore, s Session, category string, pick domain.Picker) (Session, Display, []effects.Effect) {
	category = domain.NormalizeCategory(category)
	if category == "" {
		category = domain.CategoryAll
	}

	s.Selected = category

	fx := []effects.Effect{
		effects.SaveSelectedCategory{Category: category},
		effects.ShowCategories{Categories: store.Categories(), Selected: category},
	}

	s, display, shown := OnShowRandom(store, s, pick)

	return s, display, append(fx, shown...)
}

// OnShowRandom picks a quote from the selected category.
func OnShowRandom(store *domain.QuoteStore, s Session, pick domain.Picker) (Session, Display, []effects.Effect) {
	q, err := domain.PickWith(store.FilterByCategory(s.Selected), pick)
	if err != nil {
		msg := EmptyCategoryMessage(s.Selected)
		s.Current = nil

		return s, Display{Message: msg}, []effects.Effect{effects.ShowMessage{Message: msg}}
	}

	s.Current = &q

	return s, Display{Quote: &q}, []effects.Effect{
		effects.ShowQuote{Quote: q},
		effects.SaveLastShown{Quote: q},
	}
}

// OnImport replaces the store with parsed import entries. With no valid
// entries nothing changes and the user is told so. A selected category that
// no longer exists falls back to "all".
func OnImport(store *domain.QuoteStore, s Session, quotes []domain.Quote, skipped int) (Session, ImportOutcome, []effects.Effect) {
	if len(quotes) == 0 {
		outcome := ImportOutcome{Skipped: skipped, Message: MessageNoValidQuotes}
		return s, outcome, []effects.Effect{effects.ShowMessage{Message: outcome.Message}}
	}

	kept := store.BulkReplace(quotes)

	outcome := ImportOutcome{
		Imported: kept,
		Skipped:  skipped + len(quotes) - kept,
		Message:  fmt.Sprintf("Imported %d quotes.", kept),
	}

	fx := []effects.Effect{effects.SaveQuotes{Quotes: store.Snapshot()}}

	if !store.HasCategory(s.Selected) {
		s.Selected = domain.CategoryAll
		fx = append(fx, effects.SaveSelectedCategory{Category: s.Selected})
	}

	s.Current = nil

	fx = append(fx,
		effects.ShowCategories{Categories: store.Categories(), Selected: s.Selected},
		effects.ShowMessage{Message: outcome.Message},
	)

	return s, outcome, fx
}

// OnCycleCompleted is what every sync cycle does when it ends: persist the
// store, then refresh the category index and status, and report conflicts
// from a successful cycle. Persistence is returned separately so it can be
// applied before the status is published.
func OnCycleCompleted(store *domain.QuoteStore, s Session, status domain.SyncStatus, conflicts []domain.Conflict) (persist, render []effects.Effect) {
	persist = []effects.Effect{effects.SaveQuotes{Quotes: store.Snapshot()}}

	render = []effects.Effect{
		effects.ShowCategories{Categories: store.Categories(), Selected: s.Selected},
		effects.ShowStatus{Status: status},
	}

	if status.State == domain.SyncSucceeded && len(conflicts) > 0 {
		render = append(render, effects.ShowConflicts{Conflicts: conflicts})
	}

	return persist, render
}
