package dto

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

func numbered(n int) []domain.Quote {
	out := make([]domain.Quote, n)
	for i := range out {
		out[i] = domain.Quote{ID: strconv.Itoa(i + 1), Text: "q", Category: "life"}
	}

	return out
}

func TestPageQuery_Size(t *testing.T) {
	for limit, want := range map[int]int{0: 20, -3: 20, 1: 1, 50: 50, 100: 100, 101: 100} {
		q := PageQuery{Limit: limit}
		assert.Equal(t, want, q.Size(), "limit %d", limit)
	}
}

func TestCursor_RoundTrip(t *testing.T) {
	in := Cursor{Listing: "quotes", ID: "remote-12:odd"}

	out, err := ParseCursor(in.Encode())

	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseCursor_Rejects(t *testing.T) {
	_, err := ParseCursor("")
	require.ErrorIs(t, err, ErrNoCursor)

	for _, token := range []string{"%%%", Cursor{ID: "1"}.Encode(), Cursor{Listing: "quotes"}.Encode(), "bm9jb2xvbg"} {
		_, err := ParseCursor(token)
		assert.ErrorIs(t, err, ErrInvalidCursor, token)
	}
}

func TestQuotePage_WalksAllPages(t *testing.T) {
	quotes := numbered(5)

	var (
		seen  []string
		query = PageQuery{Limit: 2}
		pages int
	)

	for {
		page, err := QuotePage(quotes, query)
		require.NoError(t, err)

		pages++

		for _, q := range page.Items {
			seen = append(seen, q.ID)
		}

		if !page.HasMore {
			assert.Empty(t, page.NextCursor)
			break
		}

		query.Cursor = page.NextCursor
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, seen)
}

func TestQuotePage_ExactFit(t *testing.T) {
	page, err := QuotePage(numbered(2), PageQuery{Limit: 2})

	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasMore)
}

func TestQuotePage_Empty(t *testing.T) {
	page, err := QuotePage(nil, PageQuery{})

	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestQuotePage_BadCursor(t *testing.T) {
	quotes := numbered(3)

	for _, c := range []Cursor{{Listing: "quotes", ID: "9"}, {Listing: "authors", ID: "1"}} {
		_, err := QuotePage(quotes, PageQuery{Cursor: c.Encode()})
		assert.ErrorIs(t, err, ErrInvalidCursor)
	}
}
