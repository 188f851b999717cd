package toc

import "strings"

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// FindByID returns the first node in depth-first order whose id is id.
func FindByID(root *Node, id string) *Node {
	if root == nil {
		return nil
	}
	if root.ID == id && id != "" {
		return root
	}
	for _, c := range root.Children {
		if found := FindByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Breadcrumb returns the path from the top-level page down to n. The root is
// never included.
func Breadcrumb(n *Node) []*Node {
	var path []*Node
	for cur := n; cur != nil && cur.parent != nil; cur = cur.parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// NextSibling returns the sibling following n, or nil.
func NextSibling(n *Node) *Node {
	p := n.parent
	if p == nil || n.Meta.Index+1 >= len(p.Children) {
		return nil
	}
	return p.Children[n.Meta.Index+1]
}

// PrevSibling returns the sibling preceding n, or nil.
func PrevSibling(n *Node) *Node {
	p := n.parent
	if p == nil || n.Meta.Index <= 0 || n.Meta.Index > len(p.Children) {
		return nil
	}
	return p.Children[n.Meta.Index-1]
}

// Next returns the page following n in document order: its first child,
// else its next sibling, else the next sibling of the nearest ancestor that
// has one. The walk never leaves boundary's subtree; a nil boundary means the
// whole tree.
func Next(n, boundary *Node) *Node {
	if len(n.Children) > 0 {
		return n.Children[0]
	}
	if n == boundary {
		return nil
	}
	for cur := n; cur != nil; cur = cur.parent {
		if next := NextSibling(cur); next != nil {
			return next
		}
		if cur.parent == boundary {
			return nil
		}
	}
	return nil
}

// MenuItem is one entry of a navigation menu.
type MenuItem struct {
	Node *Node
	// Open is set on branches that contain the current page or are the
	// current page.
	Open bool
	// Current is set on the entry for the current page.
	Current  bool
	Children []MenuItem
}

// Menu mirrors the tree below root, flagging branches by whether they lead
// to current. current may be nil.
func Menu(root, current *Node) []MenuItem {
	if root == nil {
		return nil
	}
	items := make([]MenuItem, 0, len(root.Children))
	for _, c := range root.Children {
		item := MenuItem{Node: c, Children: Menu(c, current)}
		if current != nil {
			item.Current = c == current
			item.Open = item.Current || (current.ID != "" && c.InClosure(current.ID))
		}
		items = append(items, item)
	}
	return items
}

// RelativeDepth returns the number of directory levels in n's id, which is
// how many "../" segments lead from n's page back to the site root.
func RelativeDepth(n *Node) int {
	return strings.Count(n.ID, "/")
}

// RelativeRoot returns the relative path from n's page to the site root.
func RelativeRoot(n *Node) string {
	return strings.Repeat("../", RelativeDepth(n))
}

// ImportPrefix returns the id prefix of the imported document n belongs to:
// "root/" of the nearest import ancestor (n included), or "" outside imports.
func ImportPrefix(n *Node) string {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Meta.Import != nil {
			return strings.TrimSuffix(cur.ID, cur.Meta.Import.NodeID)
		}
	}
	return ""
}

// ImportAncestor returns the nearest import node above or at n, or nil.
func ImportAncestor(n *Node) *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Meta.Import != nil {
			return cur
		}
	}
	return nil
}
