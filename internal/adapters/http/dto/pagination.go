package dto

import (
	"encoding/base64"
	"errors"
	"slices"
	"strings"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// listingQuotes tags cursors issued by the quote listing so a cursor from
	// another listing is rejected rather than misread.
	listingQuotes = "quotes"
)

var (
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor means the first page was requested.
	ErrNoCursor = errors.New("no cursor provided")
)

// PageQuery is the paging part of a list query.
type PageQuery struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// Size is the page size with the default and the upper bound applied.
func (q *PageQuery) Size() int {
	switch {
	case q.Limit <= 0:
		return defaultPageSize
	case q.Limit > maxPageSize:
		return maxPageSize
	default:
		return q.Limit
	}
}

// Cursor points at the last item of a page. Quotes are listed in store
// order, so the ID of that item is enough to resume.
type Cursor struct {
	Listing string
	ID      string
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	return base64.RawURLEncoding.EncodeToString([]byte(c.Listing + ":" + c.ID))
}

// ParseCursor reverses Encode. An empty token yields ErrNoCursor.
func ParseCursor(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, ErrNoCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	listing, id, ok := strings.Cut(string(raw), ":")
	if !ok || listing == "" || id == "" {
		return Cursor{}, ErrInvalidCursor
	}

	return Cursor{Listing: listing, ID: id}, nil
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T `json:"items"`

	// NextCursor is empty on the last page.
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// QuotePage cuts one page out of quotes, resuming after q.Cursor.
// A cursor naming a quote that is no longer listed is ErrInvalidCursor.
func QuotePage(quotes []domain.Quote, q PageQuery) (Page[QuoteResponse], error) {
	c, err := ParseCursor(q.Cursor)

	switch {
	case err == nil:
		i := slices.IndexFunc(quotes, func(x domain.Quote) bool { return x.ID == c.ID })
		if c.Listing != listingQuotes || i < 0 {
			return Page[QuoteResponse]{}, ErrInvalidCursor
		}

		quotes = quotes[i+1:]
	case !errors.Is(err, ErrNoCursor):
		return Page[QuoteResponse]{}, err
	}

	size := q.Size()
	page := Page[QuoteResponse]{Items: NewQuoteResponses(quotes[:min(size, len(quotes))])}

	if len(quotes) > size {
		page.HasMore = true
		page.NextCursor = Cursor{Listing: listingQuotes, ID: quotes[size-1].ID}.Encode()
	}

	return page, nil
}
