package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/documents/sub/toc.json", r.URL.Path)
		w.Write([]byte(`{children: []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	data, err := client.Load(context.Background(), "sub/toc.json")
	require.NoError(t, err)
	assert.Equal(t, `{children: []}`, string(data))
}

func TestClient_Load_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	_, err := client.Load(context.Background(), "missing.html")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "loading missing.html")
}

func TestClient_Load_EscapesSegments(t *testing.T) {
	var rawPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	_, err := client.Load(context.Background(), "/my docs/a?b.html")
	require.NoError(t, err)
	assert.Equal(t, "/documents/my%20docs/a%3Fb.html", rawPath)
}

func TestClient_Save(t *testing.T) {
	var (
		method      string
		contentType string
		body        string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	err := client.Save(context.Background(), "toc.json", []byte(`{"children":[]}`))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, `{"children":[]}`, body)

	err = client.Save(context.Background(), "data.bin-x", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", contentType)
}

func TestClient_Remove(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	require.NoError(t, client.Remove(context.Background(), "old.html"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/documents/old.html", path)
}

func TestClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/documents", r.URL.Path)
		assert.Equal(t, "sub/", r.URL.Query().Get("prefix"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{
			"results": [
				{"path": "sub/toc.json", "size": 42, "modified": "2024-01-15T10:30:00Z"},
				{"path": "sub/a.html", "size": 7, "modified": null}
			],
			"_links": {"next": "/api/documents?cursor=abc"}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	list, err := client.List(context.Background(), &ListOptions{Prefix: "sub/", Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Results, 2)
	assert.Equal(t, "sub/toc.json", list.Results[0].Path)
	assert.Equal(t, int64(42), list.Results[0].Size)
	assert.Equal(t, 2024, list.Results[0].Modified.Year())
	assert.True(t, list.Results[1].Modified.IsZero())
	assert.True(t, list.HasMore())
}

func TestClient_List_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "")
	_, err := client.List(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}
