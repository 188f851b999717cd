package api

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
)

const (
	documentsPath = "/documents/"
	listPath      = "/api/documents"
)

// documentPath escapes each segment of a slash-separated document path.
func documentPath(p string) string {
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return documentsPath + strings.Join(segs, "/")
}

// Load fetches the document at p. It satisfies the TOC import loader.
func (c *Client) Load(ctx context.Context, p string) ([]byte, error) {
	data, err := c.Get(ctx, documentPath(p))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", p, err)
	}
	return data, nil
}

// Save stores data as the document at p.
func (c *Client) Save(ctx context.Context, p string, data []byte) error {
	if err := c.Put(ctx, documentPath(p), contentType(p), data); err != nil {
		return fmt.Errorf("saving %s: %w", p, err)
	}
	return nil
}

// Remove deletes the document at p.
func (c *Client) Remove(ctx context.Context, p string) error {
	if err := c.Delete(ctx, documentPath(p)); err != nil {
		return fmt.Errorf("removing %s: %w", p, err)
	}
	return nil
}

// ListOptions contains options for listing documents.
type ListOptions struct {
	Prefix string
	Limit  int
	Cursor string
}

// List returns one page of documents whose path starts with opts.Prefix.
func (c *Client) List(ctx context.Context, opts *ListOptions) (*DocumentList, error) {
	params := url.Values{}
	if opts != nil {
		if opts.Prefix != "" {
			params.Set("prefix", opts.Prefix)
		}
		if opts.Limit > 0 {
			params.Set("limit", fmt.Sprintf("%d", opts.Limit))
		}
		if opts.Cursor != "" {
			params.Set("cursor", opts.Cursor)
		}
	}

	p := listPath
	if len(params) > 0 {
		p += "?" + params.Encode()
	}

	var result DocumentList
	if err := c.getJSON(ctx, p, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func contentType(p string) string {
	if t := mime.TypeByExtension(path.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}
