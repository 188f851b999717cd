// Package store persists site documents: TOC files, page sources, templates
// and generated output.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/open-cli-collective/tocsite/api"
)

// ErrNotFound is returned for documents that do not exist. It matches
// fs.ErrNotExist so packages that only see a toc.Loader can test for it.
var ErrNotFound = fmt.Errorf("document not found: %w", fs.ErrNotExist)

// Store loads and saves documents by slash-separated path.
type Store interface {
	Load(ctx context.Context, p string) ([]byte, error)
	Save(ctx context.Context, p string, data []byte) error
	Remove(ctx context.Context, p string) error
}

// Lister is implemented by stores that can enumerate their documents.
type Lister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

// Clean normalises p to a relative slash path inside the store.
func Clean(p string) (string, error) {
	c := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(p)), "/")
	if c == "" {
		return "", fmt.Errorf("invalid document path %q", p)
	}
	return c, nil
}

// FS is a Store over a billy filesystem.
type FS struct {
	fs billy.Filesystem
}

// NewFS returns a store backed by fs.
func NewFS(fs billy.Filesystem) *FS {
	return &FS{fs: fs}
}

// OpenDir returns a store rooted at dir on the local disk.
func OpenDir(dir string) *FS {
	return NewFS(osfs.New(dir))
}

// NewMemory returns an empty in-memory store.
func NewMemory() *FS {
	return NewFS(memfs.New())
}

// Load reads the document at p.
func (s *FS) Load(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := Clean(p)
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(s.fs, c)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, c)
		}
		return nil, fmt.Errorf("reading %s: %w", c, err)
	}
	return data, nil
}

// Save writes data to p, creating parent directories as needed.
func (s *FS) Save(ctx context.Context, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := Clean(p)
	if err != nil {
		return err
	}
	if dir := path.Dir(c); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := util.WriteFile(s.fs, c, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c, err)
	}
	return nil
}

// Remove deletes the document at p.
func (s *FS) Remove(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, err := Clean(p)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(c); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, c)
		}
		return fmt.Errorf("removing %s: %w", c, err)
	}
	return nil
}

// List returns the paths of all documents under dir, sorted. An empty dir
// lists the whole store.
func (s *FS) List(ctx context.Context, dir string) ([]string, error) {
	root := "."
	if dir != "" {
		c, err := Clean(dir)
		if err != nil {
			return nil, err
		}
		root = c
	}

	var paths []string
	err := util.Walk(s.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return filepath.SkipDir
			}
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if !info.IsDir() {
			paths = append(paths, filepath.ToSlash(strings.TrimPrefix(p, "./")))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Remote is a Store over a document host.
type Remote struct {
	client *api.Client
}

// NewRemote returns a store that keeps documents on the host behind client.
func NewRemote(client *api.Client) *Remote {
	return &Remote{client: client}
}

// Load fetches the document at p.
func (r *Remote) Load(ctx context.Context, p string) ([]byte, error) {
	c, err := Clean(p)
	if err != nil {
		return nil, err
	}
	data, err := r.client.Load(ctx, c)
	return data, translate(err, c)
}

// Save uploads data as the document at p.
func (r *Remote) Save(ctx context.Context, p string, data []byte) error {
	c, err := Clean(p)
	if err != nil {
		return err
	}
	return translate(r.client.Save(ctx, c, data), c)
}

// Remove deletes the document at p.
func (r *Remote) Remove(ctx context.Context, p string) error {
	c, err := Clean(p)
	if err != nil {
		return err
	}
	return translate(r.client.Remove(ctx, c), c)
}

// List returns every document path under dir, following pagination.
func (r *Remote) List(ctx context.Context, dir string) ([]string, error) {
	prefix := ""
	if dir != "" {
		c, err := Clean(dir)
		if err != nil {
			return nil, err
		}
		prefix = c + "/"
	}

	var paths []string
	opts := &api.ListOptions{Prefix: prefix}
	for {
		list, err := r.client.List(ctx, opts)
		if err != nil {
			return nil, err
		}
		for _, d := range list.Results {
			paths = append(paths, d.Path)
		}
		if !list.HasMore() {
			break
		}
		opts.Cursor = cursorFrom(list.Links.Next)
		if opts.Cursor == "" {
			break
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func cursorFrom(next string) string {
	u, err := url.Parse(next)
	if err != nil {
		return ""
	}
	return u.Query().Get("cursor")
}

func translate(err error, p string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return err
}
