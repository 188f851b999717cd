// Package api provides the client for a remote document host.
package api

import (
	"errors"
	"net/http"
	"time"
)

// ErrNotFound is matched by errors for documents the host does not have.
var ErrNotFound = errors.New("document not found")

// Document describes a stored document.
type Document struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Modified Time   `json:"modified,omitempty"`
}

// DocumentList is the response of the listing endpoint.
type DocumentList struct {
	Results []Document `json:"results"`
	Links   Links      `json:"_links,omitempty"`
}

// Links contains pagination links.
type Links struct {
	Next string `json:"next,omitempty"`
}

// HasMore returns true if there are more results available.
func (l *DocumentList) HasMore() bool {
	return l.Links.Next != ""
}

// Time is a wrapper around time.Time for custom JSON parsing.
type Time struct {
	time.Time
}

// UnmarshalJSON parses RFC 3339 timestamps, with or without milliseconds.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)

	// Handle null or empty
	if s == "null" || s == `""` || s == "" {
		return nil
	}

	// Remove quotes if present
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.Parse("2006-01-02T15:04:05.000Z", s)
		if err != nil {
			return err
		}
	}

	t.Time = parsed
	return nil
}

// MarshalJSON formats time in RFC 3339 format.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
}

func (e *ErrorResponse) Error() string {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return e.Message
}

// Is reports a 404 response as ErrNotFound.
func (e *ErrorResponse) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
