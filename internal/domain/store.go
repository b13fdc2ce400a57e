package domain

import (
	"math/rand/v2"
	"sync"
)

// QuoteStore is the ordered, in-memory collection of quotes owned by the process.
// All mutations go through its methods; it never holds two quotes with the same ID.
// It is safe for concurrent use.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes []Quote
	index  map[string]int
}

// NewQuoteStore creates a store seeded through BulkReplace.
func NewQuoteStore(seed ...Quote) *QuoteStore {
	s := &QuoteStore{index: make(map[string]int)}
	s.BulkReplace(seed)

	return s
}

// Add validates and appends a new quote, returning it.
func (s *QuoteStore) Add(text, category string) (Quote, error) {
	q, err := NewQuote(text, category)
	if err != nil {
		return Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceLocked(q)

	return q, nil
}

// ReplaceByID replaces the entry with the same ID in place, or appends it.
func (s *QuoteStore) ReplaceByID(q Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceLocked(q)
}

// BulkReplace swaps the whole store contents. Entries missing text or
// category are dropped, entries missing an ID get a fresh one, and a
// repeated ID keeps its first occurrence. It returns the number kept.
func (s *QuoteStore) BulkReplace(quotes []Quote) int {
	next := make([]Quote, 0, len(quotes))
	index := make(map[string]int, len(quotes))

	for _, q := range quotes {
		clean, ok := sanitize(q)
		if !ok {
			continue
		}

		if _, dup := index[clean.ID]; dup {
			continue
		}

		index[clean.ID] = len(next)
		next = append(next, clean)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = next
	s.index = index

	return len(next)
}

// Get returns the quote with the given ID.
func (s *QuoteStore) Get(id string) (Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Quote{}, false
	}

	return s.quotes[i], true
}

// Len returns the number of quotes.
func (s *QuoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// Snapshot returns a copy of the store in order.
func (s *QuoteStore) Snapshot() []Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Quote, len(s.quotes))
	copy(out, s.quotes)

	return out
}

// FilterByCategory returns the quotes in category. "all" or "" returns
// everything. The result is empty, never nil, when nothing matches.
func (s *QuoteStore) FilterByCategory(category string) []Quote {
	category = NormalizeCategory(category)
	if category == "" || category == CategoryAll {
		return s.Snapshot()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Quote, 0)
	for _, q := range s.quotes {
		if q.Category == category {
			out = append(out, q)
		}
	}

	return out
}

// Categories returns the category index: "all" followed by each distinct
// category in first-seen order.
func (s *QuoteStore) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.quotes))
	out := []string{CategoryAll}

	for _, q := range s.quotes {
		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}

	return out
}

// HasCategory reports whether category is part of the current index.
func (s *QuoteStore) HasCategory(category string) bool {
	category = NormalizeCategory(category)
	if category == CategoryAll {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.quotes {
		if q.Category == category {
			return true
		}
	}

	return false
}

// replaceLocked must be called with mu held for writing.
func (s *QuoteStore) replaceLocked(q Quote) {
	if i, ok := s.index[q.ID]; ok {
		s.quotes[i] = q
		return
	}

	s.index[q.ID] = len(s.quotes)
	s.quotes = append(s.quotes, q)
}

// Picker returns an index in [0, n).
type Picker func(n int) int

// PickRandom selects a quote uniformly from pool.
func PickRandom(pool []Quote) (Quote, error) {
	return PickWith(pool, rand.IntN)
}

// PickWith selects a quote from pool using pick, which lets tests fix the choice.
func PickWith(pool []Quote, pick Picker) (Quote, error) {
	if len(pool) == 0 {
		return Quote{}, NewEmptyPoolError("")
	}

	return pool[pick(len(pool))], nil
}
