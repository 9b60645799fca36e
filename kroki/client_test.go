package kroki_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/kroki"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RenderPNG(t *testing.T) {
	t.Parallel()

	var method, path, contentType, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	defer srv.Close()

	data, err := kroki.NewClient(srv.URL+"/").RenderPNG(context.Background(), "plantuml", "@startuml\nA -> B\n@enduml")
	require.NoError(t, err)

	assert.Equal(t, []byte("\x89PNG"), data)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/plantuml/png", path)
	assert.Equal(t, "text/plain", contentType)
	assert.Equal(t, "@startuml\nA -> B\n@enduml", body)
}

func TestClient_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "bad diagram", http.StatusBadRequest)
		}},
		{"empty body", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := kroki.NewClient(srv.URL).RenderPNG(context.Background(), "mermaid", "graph TD")
			require.Error(t, err)
			assert.True(t, errors.Is(err, prettify.ErrNetwork))
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := kroki.NewClient(url).RenderPNG(context.Background(), "mermaid", "graph TD")
	assert.True(t, errors.Is(err, prettify.ErrNetwork))
}

type panicTransport struct{}

func (panicTransport) RoundTrip(*http.Request) (*http.Response, error) {
	panic("no TLS provider")
}

func TestClient_RecoversPanics(t *testing.T) {
	t.Parallel()

	c := kroki.NewClient("https://example.invalid", kroki.WithHTTPClient(&http.Client{Transport: panicTransport{}}))

	var err error
	assert.NotPanics(t, func() {
		_, err = c.RenderPNG(context.Background(), "mermaid", "graph TD")
	})
	assert.True(t, errors.Is(err, prettify.ErrNetwork))
	assert.Contains(t, err.Error(), "no TLS provider")
}
