package dto

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Shared(t *testing.T) {
	assert.Same(t, Validator(), Validator())
}

func TestValidate_AddQuoteRequest(t *testing.T) {
	tests := []struct {
		name      string
		req       AddQuoteRequest
		wantField string
		wantMsg   string
	}{
		{name: "valid", req: AddQuoteRequest{Text: "Stay hungry.", Category: "life"}},
		{name: "category optional", req: AddQuoteRequest{Text: "Stay hungry."}},
		{name: "missing text", req: AddQuoteRequest{}, wantField: "text", wantMsg: "this field is required"},
		{name: "blank text", req: AddQuoteRequest{Text: "   "}, wantField: "text", wantMsg: "must not be empty"},
		{name: "text too long", req: AddQuoteRequest{Text: strings.Repeat("x", 1001)}, wantField: "text", wantMsg: "must be at most 1000 characters"},
		{name: "category too long", req: AddQuoteRequest{Text: "ok", Category: strings.Repeat("c", 65)}, wantField: "category", wantMsg: "must be at most 64 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.req)

			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.wantMsg, ValidationErrors(err)[tt.wantField])
		})
	}
}

func TestBindAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "valid", body: `{"category":"life"}`},
		{name: "malformed JSON", body: `{invalid}`, wantErr: ErrBinding},
		{name: "blank category", body: `{"category":"  "}`, wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req SelectCategoryRequest
			err := BindAndValidate(c, &req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "life", req.Category)
		})
	}
}

func TestBindQueryAndValidate(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantErr  error
		wantCat  string
		wantSize int
	}{
		{name: "defaults", query: "", wantSize: 20},
		{name: "category and limit", query: "?category=work&limit=5", wantCat: "work", wantSize: 5},
		{name: "limit out of range", query: "?limit=500", wantErr: ErrValidation},
		{name: "limit not a number", query: "?limit=abc", wantErr: ErrBinding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/quotes"+tt.query, nil)

			var req ListQuotesRequest
			err := BindQueryAndValidate(c, &req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCat, req.Category)
			assert.Equal(t, tt.wantSize, req.Size())
		})
	}
}

func TestValidationErrors_NonValidatorError(t *testing.T) {
	assert.Empty(t, ValidationErrors(errors.New("plain")))
	assert.False(t, IsValidationError(errors.New("plain")))
	assert.False(t, IsValidationError(fmt.Errorf("%w: bad json", ErrBinding)))
}

func TestValidate_CategoryRejectsControlCharacters(t *testing.T) {
	err := Validate(&SelectCategoryRequest{Category: "life\x00"})

	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "must not contain control characters", ValidationErrors(err)["category"])
}

func TestValidate_FormFieldNames(t *testing.T) {
	err := Validate(&ListQuotesRequest{PageQuery: PageQuery{Limit: 500}})

	require.Error(t, err)
	assert.Equal(t, map[string]string{"limit": "must be at most 100"}, ValidationErrors(err))
}
