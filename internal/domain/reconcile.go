package domain

// Conflict records a remote quote that disagreed with the local quote of the same ID.
// It lives for a single reconciliation pass.
type Conflict struct {
	ID     string `json:"id"`
	Local  Quote  `json:"local"`
	Server Quote  `json:"server"`
}

// Reconcile merges remote into store and returns the conflicts it found, in
// the order the remote sequence produced them.
//
// A remote quote whose ID is already present and whose text or category
// differs replaces the local one in place; the server always wins. Unknown
// remote IDs are appended. Local quotes the remote does not mention are left
// alone. The whole pass holds the store's write lock, so two passes never
// interleave and no other mutation observes a half-applied merge.
func Reconcile(store *QuoteStore, remote []Quote) []Conflict {
	store.mu.Lock()
	defer store.mu.Unlock()

	conflicts := make([]Conflict, 0)

	for _, sq := range remote {
		i, ok := store.index[sq.ID]
		if !ok {
			store.replaceLocked(sq)
			continue
		}

		lq := store.quotes[i]
		if lq.Equal(sq) {
			continue
		}

		conflicts = append(conflicts, Conflict{ID: sq.ID, Local: lq, Server: sq})
		store.quotes[i] = sq
	}

	return conflicts
}
