// Package kroki renders diagrams through a Kroki server.
package kroki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/prettify"
)

// DefaultServer is the public Kroki instance.
const DefaultServer = "https://kroki.io"

// maxResponse bounds how much of a response body is read.
const maxResponse = 32 << 20

var _ prettify.DiagramClient = (*Client)(nil)

// Client posts diagram source to {server}/{type}/png.
type Client struct {
	server string
	http   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(k *Client) {
		k.http = c
	}
}

// NewClient creates a client for server. An empty server uses DefaultServer.
func NewClient(server string, opts ...Option) *Client {
	if server == "" {
		server = DefaultServer
	}
	c := &Client{
		server: strings.TrimRight(server, "/"),
		http:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RenderPNG implements prettify.DiagramClient. Every failure, including a
// panic inside the HTTP stack, is returned as a NetworkError.
func (c *Client) RenderPNG(ctx context.Context, diagramType, source string) (data []byte, err error) {
	defer func() {
		if p := recover(); p != nil {
			data, err = nil, prettify.Errorf(prettify.NetworkError, "kroki", "panic: %v", p)
		}
	}()

	url := fmt.Sprintf("%s/%s/png", c.server, diagramType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(source))
	if err != nil {
		return nil, &prettify.RenderError{Kind: prettify.NetworkError, Format: "kroki", Err: err}
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &prettify.RenderError{Kind: prettify.NetworkError, Format: "kroki", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, prettify.Errorf(prettify.NetworkError, "kroki", "POST %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, &prettify.RenderError{Kind: prettify.NetworkError, Format: "kroki", Err: err}
	}
	if len(body) == 0 {
		return nil, prettify.Errorf(prettify.NetworkError, "kroki", "POST %s: empty response", url)
	}
	return body, nil
}
