// Package request builds outgoing JSON:API requests from encodable resources
package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dosanma1/forge-sub000/pkg/jsonapi"
	"github.com/dosanma1/forge-sub000/pkg/web/response"
)

// NewRequest encodes resource with the preset matching method and returns the request.
// Options are applied after the method preset, so they can override it.
// A nil resource produces a request without a body.
func NewRequest(ctx context.Context, enc *jsonapi.Encoder, method, url string, resource jsonapi.Resource, opts ...jsonapi.Option) (*http.Request, error) {
	mode, err := jsonapi.ModeForMethod(method)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		enc = jsonapi.NewEncoder(nil)
	}

	preset := append([]jsonapi.Option{jsonapi.WithMode(mode)}, opts...)
	doc, err := enc.Encode(resource, preset...)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	var body io.Reader
	if doc != nil {
		data, err := jsonapi.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", method, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", response.JSONAPIMediaType)
	}
	req.Header.Set("Accept", response.JSONAPIMediaType)
	return req, nil
}
