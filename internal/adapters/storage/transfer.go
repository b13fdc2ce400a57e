package storage

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// ImportResult is the outcome of parsing an import document.
type ImportResult struct {
	Quotes  []domain.Quote
	Skipped int
}

// importRecord is one entry of an import document.
type importRecord struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// ParseImport reads a JSON array of {text, category, id?} objects. Comments
// and trailing commas are tolerated. A document that is not an array is a
// *domain.ImportFormatError; entries that are not objects or lack text or
// category are skipped.
func ParseImport(data []byte) (ImportResult, error) {
	standardized, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return ImportResult{}, domain.NewImportFormatError("invalid JSON", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(standardized, &entries); err != nil || entries == nil {
		return ImportResult{}, domain.NewImportFormatError("expected a JSON array of quotes", err)
	}

	result := ImportResult{Quotes: make([]domain.Quote, 0, len(entries))}

	for _, raw := range entries {
		var rec importRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			result.Skipped++
			continue
		}

		text := strings.TrimSpace(rec.Text)
		category := domain.NormalizeCategory(rec.Category)

		if text == "" || category == "" {
			result.Skipped++
			continue
		}

		result.Quotes = append(result.Quotes, domain.Quote{
			ID:       strings.TrimSpace(rec.ID),
			Text:     text,
			Category: category,
		})
	}

	return result, nil
}

// EncodeExport renders quotes as a 2-space indented JSON array.
func EncodeExport(quotes []domain.Quote) ([]byte, error) {
	if quotes == nil {
		quotes = []domain.Quote{}
	}

	return json.MarshalIndent(quotes, "", "  ")
}
