// Package toc builds and navigates the page tree described by a
// table-of-contents document.
package toc

import (
	"sort"
	"strings"
)

// Node is a page in the table of contents.
type Node struct {
	ID       string
	Title    string
	URL      string
	Abstract bool
	Children []*Node

	// ImportRoot and ImportNode are set on import nodes: the node's content
	// comes from the page ImportNode of the document under ImportRoot.
	ImportRoot string
	ImportNode string

	// Extra holds record keys this package does not interpret. They are
	// written back unchanged by Marshal.
	Extra map[string]any

	Meta Meta

	parent      *Node
	closure     map[string]struct{}
	explicitURL bool
}

// Meta is derived data recomputed whenever the tree is indexed.
type Meta struct {
	// Index is the position among siblings.
	Index int
	// Depth is -1 for the root and 0 for top-level pages.
	Depth int
	// Import is set on nodes that spliced in another document.
	Import *ImportRef
	// Imported is set on every node that came from another document,
	// including an import node's own children.
	Imported bool
}

// ImportRef identifies the page an import node was spliced from.
type ImportRef struct {
	Root   string
	NodeID string
}

// Parent returns the node's parent, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// IsRoot reports whether n is the tree root.
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// HasExplicitURL reports whether the URL came from the document rather than
// being derived from the id.
func (n *Node) HasExplicitURL() bool {
	return n.explicitURL
}

// InClosure reports whether id is n's own id or the id of a descendant.
func (n *Node) InClosure(id string) bool {
	_, ok := n.closure[id]
	return ok
}

// Closure returns n's id and all descendant ids, sorted.
func (n *Node) Closure() []string {
	ids := make([]string, 0, len(n.closure))
	for id := range n.closure {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Href returns the link target for n as seen from a page whose relative root
// is root. Explicit URLs are returned unchanged.
func (n *Node) Href(root string) string {
	if n.explicitURL || n.URL == "" {
		return n.URL
	}
	if isAbsolute(n.URL) {
		return n.URL
	}
	return root + n.URL
}

func isAbsolute(u string) bool {
	return strings.HasPrefix(u, "/") || strings.Contains(u, "://") || strings.HasPrefix(u, "mailto:")
}

// Tree is a built table of contents.
type Tree struct {
	Root *Node

	pathPrefix string
	pages      map[string]*Node
	conflicts  []*Node
}

// Page returns the page registered under id, or nil. When ids collide the
// first node in document order is the one registered.
func (t *Tree) Page(id string) *Node {
	return t.pages[id]
}

// Pages returns every registered page in document order.
func (t *Tree) Pages() []*Node {
	var pages []*Node
	Walk(t.Root, func(n *Node) bool {
		if n != t.Root && n.ID != "" && t.pages[n.ID] == n {
			pages = append(pages, n)
		}
		return true
	})
	return pages
}

// Conflicts returns nodes whose id was already taken by an earlier node.
func (t *Tree) Conflicts() []*Node {
	return t.conflicts
}

// PathPrefix returns the prefix used for derived URLs.
func (t *Tree) PathPrefix() string {
	return t.pathPrefix
}

// reindex recomputes parent links, meta, derived URLs, closures and the page
// index. It is run after building and after every edit.
func (t *Tree) reindex() {
	t.pages = make(map[string]*Node)
	t.conflicts = nil
	t.Root.parent = nil
	t.index(t.Root, nil, 0, -1)
}

func (t *Tree) index(n, parent *Node, index, depth int) {
	n.parent = parent
	n.Meta.Index = index
	n.Meta.Depth = depth
	if !n.explicitURL {
		n.URL = ""
		if parent != nil && !n.Abstract && n.ID != "" {
			n.URL = t.pathPrefix + n.ID + ".html"
		}
	}

	if parent != nil && n.ID != "" {
		if _, taken := t.pages[n.ID]; taken {
			t.conflicts = append(t.conflicts, n)
		} else {
			t.pages[n.ID] = n
		}
	}

	n.closure = make(map[string]struct{})
	if n.ID != "" {
		n.closure[n.ID] = struct{}{}
	}
	for i, c := range n.Children {
		t.index(c, n, i, depth+1)
		for id := range c.closure {
			n.closure[id] = struct{}{}
		}
	}
}
