package acl

import (
	"context"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
)

// BaseAdapter issues requests through a resilient client and turns every
// failed call into a domain error. Remote adapters embed it.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a BaseAdapter that reports failures as serviceName.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{client: client, serviceName: serviceName}
}

// ServiceName is the name failures and health checks are reported under.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get fetches path. operation names the call in error messages. The caller
// closes the returned body.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	return a.body(operation)(a.client.Get(ctx, path))
}

// PostJSON posts v encoded as JSON to path in a single attempt; a failed post
// is never resent. The caller closes the returned body.
func (a *BaseAdapter) PostJSON(ctx context.Context, path string, v any, operation string) (io.ReadCloser, error) {
	return a.body(operation)(a.client.PostJSONOnce(ctx, path, v))
}

// body returns a func that keeps the body of a 2xx answer and maps anything
// else, including transport errors, through MapHTTPError.
func (a *BaseAdapter) body(operation string) func(*http.Response, error) (io.ReadCloser, error) {
	return func(resp *http.Response, err error) (io.ReadCloser, error) {
		if err != nil {
			return nil, MapHTTPError(nil, err, a.serviceName, operation, "")
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			defer func() { _ = resp.Body.Close() }()

			return nil, MapHTTPError(resp, nil, a.serviceName, operation, "")
		}

		return resp.Body, nil
	}
}
