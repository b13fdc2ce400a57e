package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// maxErrorBody bounds how much of a failed response is read for a message.
const maxErrorBody = 4 << 10

// providerError is the body a posts provider sends with a failed request.
// Providers that send anything else fall back to a status-derived message.
type providerError struct {
	Message string `json:"message"`
}

// MapHTTPError turns the outcome of a remote call into a domain error.
// It returns nil for a 2xx response.
//
// Only NotFound (404) and Validation (400, 422) are distinguished; the sync
// cycle treats everything else, circuit and retry failures included, as the
// remote being unreachable.
func MapHTTPError(resp *http.Response, callErr error, service, operation, entityID string) error {
	if callErr != nil {
		return networkFailure(callErr, service, operation)
	}

	if resp == nil {
		return domain.NewNetworkError(service, operation+": no response")
	}

	if resp.StatusCode/100 == 2 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.NewNotFoundError(service, entityID)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.NewValidationError("", reason(resp, operation))
	default:
		return domain.NewNetworkError(service, reason(resp, operation))
	}
}

func networkFailure(err error, service, operation string) error {
	if errors.Is(err, clients.ErrCircuitOpen) {
		return domain.NewNetworkError(service, operation+": circuit open")
	}

	return domain.NewNetworkError(service, fmt.Sprintf("%s: %v", operation, err))
}

// reason prefers the provider's message and otherwise names the status.
func reason(resp *http.Response, operation string) string {
	if resp.Body != nil {
		var pe providerError
		if json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&pe) == nil && pe.Message != "" {
			return pe.Message
		}
	}

	return fmt.Sprintf("%s: %d %s", operation, resp.StatusCode, http.StatusText(resp.StatusCode))
}
