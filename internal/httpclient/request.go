package httpclient

import (
	"context"
	"io"
	"net/url"
)

// HTTPRequest represents an HTTP request
type HTTPRequest struct {
	URL     string
	Method  string
	Query   url.Values
	Headers map[string]string
	Body    io.Reader
	Context context.Context
}

// HTTPResponse represents an HTTP response
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// IsOK reports whether the register answered with 200.
func (r *HTTPResponse) IsOK() bool {
	return r.StatusCode == 200
}
