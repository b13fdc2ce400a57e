package acl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// BaseAdapter wraps a client so that every call either yields a 2xx body or
// a domain error. Provider adapters embed it.
type BaseAdapter struct {
	client *clients.Client
}

// NewBaseAdapter wraps client.
func NewBaseAdapter(client *clients.Client) BaseAdapter {
	return BaseAdapter{client: client}
}

// ServiceName names the provider in errors and logs.
func (a *BaseAdapter) ServiceName() string {
	return a.client.ServiceName()
}

// Get fetches path. The caller closes the returned body.
func (a *BaseAdapter) Get(ctx context.Context, path, operation, entityID string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)
	return a.body(resp, err, operation, entityID)
}

// Post sends body to path. The caller closes the returned body.
func (a *BaseAdapter) Post(ctx context.Context, path string, body io.Reader, operation, entityID string) (io.ReadCloser, error) {
	resp, err := a.client.Post(ctx, path, body)
	return a.body(resp, err, operation, entityID)
}

// Put sends body to path. The caller closes the returned body.
func (a *BaseAdapter) Put(ctx context.Context, path string, body io.Reader, operation, entityID string) (io.ReadCloser, error) {
	resp, err := a.client.Put(ctx, path, body)
	return a.body(resp, err, operation, entityID)
}

func (a *BaseAdapter) body(resp *http.Response, err error, operation, entityID string) (io.ReadCloser, error) {
	if err == nil && resp.StatusCode/100 == 2 {
		return resp.Body, nil
	}

	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}

	return nil, MapHTTPError(resp, err, a.ServiceName(), operation, entityID)
}

// decode reads one JSON value from body and closes it. A body that does not
// decode is reported as a network failure of service.
func decode[T any](body io.ReadCloser, service string) (T, error) {
	defer func() { _ = body.Close() }()

	var v T
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		return v, domain.NewNetworkError(service, "malformed response: "+err.Error())
	}

	return v, nil
}

// Translator converts one provider record into a domain value.
type Translator[External, Domain any] func(*External) (Domain, error)

// Rejected is a provider record a Translator refused.
type Rejected struct {
	Index int
	Err   error
}

// TranslateValid translates every record, keeping the accepted ones in order
// and reporting the rest.
func TranslateValid[E, D any](records []E, translate Translator[E, D]) ([]D, []Rejected) {
	out := make([]D, 0, len(records))

	var rejected []Rejected

	for i := range records {
		v, err := translate(&records[i])
		if err != nil {
			rejected = append(rejected, Rejected{Index: i, Err: err})
			continue
		}

		out = append(out, v)
	}

	return out, rejected
}
