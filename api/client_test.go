package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHost(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_TrimsSlash(t *testing.T) {
	c := NewClient("https://docs.example.com/", "user", "token")
	assert.Equal(t, "https://docs.example.com", c.baseURL)
}

func TestClient_Credentials(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		token    string
		wantAuth bool
	}{
		{name: "basic auth", user: "writer", token: "s3cret", wantAuth: true},
		{name: "token only", token: "s3cret", wantAuth: true},
		{name: "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var user, token string
			var ok bool
			srv := newHost(t, func(w http.ResponseWriter, r *http.Request) {
				user, token, ok = r.BasicAuth()
			})

			_, err := NewClient(srv.URL, tt.user, tt.token).Get(context.Background(), "/documents/toc.json")
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuth, ok)
			assert.Equal(t, tt.user, user)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestClient_ErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		errMsg   string
		notFound bool
	}{
		{name: "json message", status: http.StatusUnauthorized, body: `{"message": "Authentication failed"}`, errMsg: "Authentication failed"},
		{name: "missing document", status: http.StatusNotFound, body: `{"message": "No such document"}`, errMsg: "No such document", notFound: true},
		{name: "plain text", status: http.StatusInternalServerError, body: "disk full\n", errMsg: "disk full"},
		{name: "empty body", status: http.StatusForbidden, errMsg: "Forbidden"},
		{name: "errors list", status: http.StatusBadRequest, body: `{"message": "Bad request", "errors": ["Invalid path"]}`, errMsg: "Invalid path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newHost(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := NewClient(srv.URL, "", "").Get(context.Background(), "/documents/toc.json")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrNotFound))

			var apiErr *ErrorResponse
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestClient_CanceledContext(t *testing.T) {
	srv := newHost(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, "", "").Get(ctx, "/documents/toc.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

func TestClient_LeadingSlash(t *testing.T) {
	var got []string
	srv := newHost(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Method+" "+r.URL.Path)
	})
	c := NewClient(srv.URL, "", "")
	ctx := context.Background()

	_, err := c.Get(ctx, "documents/toc.json")
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "/documents/index.html", "text/html", []byte("x")))
	require.NoError(t, c.Delete(ctx, "documents/index.html"))

	assert.Equal(t, []string{
		"GET /documents/toc.json",
		"PUT /documents/index.html",
		"DELETE /documents/index.html",
	}, got)
}
