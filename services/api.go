// Package services is the typed façade over the portfolio API: one service
// per resource family, one HTTP call per operation.
//
// Services pass the API envelope through untouched. Failures keep the
// status and server message attached by the client. Uploads are the only
// operations that validate input before reaching the network.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-portfolio-client/cache"
	"github.com/goliatone/go-portfolio-client/client"
)

// API is the transport the services call. *client.Client implements it.
type API interface {
	Do(ctx context.Context, req *client.Request, out any) error
	Upload(ctx context.Context, path, filename, contentType string, content []byte, out any) error
}

var _ API = (*client.Client)(nil)

type caller struct {
	api API
}

func (c caller) get(ctx context.Context, path string, opts any, out any) error {
	return c.api.Do(ctx, &client.Request{Method: http.MethodGet, Path: path, Query: Query(opts)}, out)
}

func (c caller) post(ctx context.Context, path string, body, out any) error {
	return c.api.Do(ctx, &client.Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c caller) put(ctx context.Context, path string, body, out any) error {
	return c.api.Do(ctx, &client.Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c caller) delete(ctx context.Context, path string, out any) error {
	return c.api.Do(ctx, &client.Request{Method: http.MethodDelete, Path: path}, out)
}

// Query converts a list options struct into query parameters. Unset fields
// are not sent, matching the way query keys are derived from the same
// options.
func Query(opts any) url.Values {
	if opts == nil {
		return nil
	}
	params := cache.Params(opts)
	if len(params) == 0 {
		return nil
	}
	q := make(url.Values, len(params))
	for k, v := range params {
		q.Set(k, v)
	}
	return q
}

func itemPath(base string, id int) string {
	return fmt.Sprintf("%s/%d", strings.TrimRight(base, "/"), id)
}
