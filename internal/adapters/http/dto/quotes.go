package dto

import (
	"time"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// QuoteResponse is a quote as served over HTTP.
type QuoteResponse struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{ID: q.ID, Text: q.Text, Category: q.Category}
}

// NewQuoteResponses converts a slice of domain quotes.
func NewQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, NewQuoteResponse(q))
	}

	return out
}

// AddQuoteRequest is the body of POST /quotes.
type AddQuoteRequest struct {
	Text     string `json:"text"     validate:"required,notempty,max=1000"`
	Category string `json:"category" validate:"max=64,printable"`
}

// ListQuotesRequest is the query of GET /quotes.
type ListQuotesRequest struct {
	PageQuery

	Category string `form:"category" validate:"max=64,printable"`
}

// SelectCategoryRequest is the body of PUT /categories/selected.
type SelectCategoryRequest struct {
	Category string `json:"category" validate:"required,notempty,max=64,printable"`
}

// CategoriesResponse is the category index and current selection.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

// DisplayResponse is what a command put on screen.
type DisplayResponse struct {
	Quote   *QuoteResponse `json:"quote,omitempty"`
	Message string         `json:"message,omitempty"`
}

// NewDisplayResponse converts a displayed quote or message.
func NewDisplayResponse(q *domain.Quote, message string) DisplayResponse {
	resp := DisplayResponse{Message: message}
	if q != nil {
		qr := NewQuoteResponse(*q)
		resp.Quote = &qr
	}

	return resp
}

// SyncStatusResponse is the sync status plus the next scheduled runs.
type SyncStatusResponse struct {
	domain.SyncStatus

	NextPoll *time.Time `json:"nextPoll,omitempty"`
	NextSync *time.Time `json:"nextSync,omitempty"`
}

// ConflictsResponse is the conflict report from the last reconciliation.
type ConflictsResponse struct {
	Conflicts []domain.Conflict `json:"conflicts"`
}

// RestoreResponse reports a restore-local operation.
type RestoreResponse struct {
	Restored  []string          `json:"restored"`
	Failed    []string          `json:"failed,omitempty"`
	Status    domain.SyncStatus `json:"status"`
	Conflicts []domain.Conflict `json:"conflicts"`
}
