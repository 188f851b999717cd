package toc

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// IDFromTitle derives a page id from a title by dropping whitespace and
// folding accented letters to their base form.
func IDFromTitle(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}
	return strings.Join(strings.Fields(folded), "")
}

// AddChild appends a new page under parent. id is used as given, it is not
// prefixed with the parent's id.
func (t *Tree) AddChild(parent *Node, id, title string) (*Node, error) {
	if parent == nil {
		parent = t.Root
	}
	if parent.Meta.Imported || parent.Meta.Import != nil {
		return nil, ErrImportedNode
	}
	if id == "" {
		return nil, fmt.Errorf("page id is required")
	}
	if t.pages[id] != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	n := &Node{ID: id, Title: title}
	parent.Children = append(parent.Children, n)
	t.reindex()
	return n, nil
}

// Remove detaches n and its subtree and returns the page a reader of n
// should be sent to instead: the previous sibling, else the next sibling,
// else the parent.
func (t *Tree) Remove(n *Node) (*Node, error) {
	if n == nil || n.parent == nil {
		return nil, ErrRoot
	}
	if n.Meta.Imported {
		return nil, ErrImportedNode
	}

	parent := n.parent
	index := n.Meta.Index
	var redirect *Node
	switch {
	case index > 0:
		redirect = parent.Children[index-1]
	case len(parent.Children) > 1:
		redirect = parent.Children[index+1]
	case parent != t.Root:
		redirect = parent
	default:
		return nil, ErrSolePage
	}

	parent.Children = append(parent.Children[:index:index], parent.Children[index+1:]...)
	n.parent = nil
	t.reindex()
	return redirect, nil
}

// Move shifts n delta positions among its siblings. Negative deltas move it
// towards the front.
func (t *Tree) Move(n *Node, delta int) error {
	if n == nil || n.parent == nil {
		return ErrRoot
	}
	if n.Meta.Imported {
		return ErrImportedNode
	}

	siblings := n.parent.Children
	from := n.Meta.Index
	to := from + delta
	if to < 0 || to >= len(siblings) {
		return fmt.Errorf("%w: %s is at position %d of %d", ErrCannotMove, n.ID, from+1, len(siblings))
	}
	if delta == 0 {
		return nil
	}

	siblings = append(siblings[:from:from], siblings[from+1:]...)
	siblings = append(siblings[:to], append([]*Node{n}, siblings[to:]...)...)
	n.parent.Children = siblings
	t.reindex()
	return nil
}

// SetTitle changes a page title. Import nodes keep their override locally.
func (t *Tree) SetTitle(n *Node, title string) error {
	if n == nil || n.parent == nil {
		return ErrRoot
	}
	if n.Meta.Imported {
		return ErrImportedNode
	}
	n.Title = title
	return nil
}
