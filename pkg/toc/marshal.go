package toc

import (
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
)

var marshalOptions = ojg.Options{Indent: 2, Sort: true, HTMLUnsafe: true}

// Marshal serialises the tree back into a TOC document.
//
// Only data owned by this document is written: import nodes keep just their
// title and import pointer, and nothing below them is emitted. Derived URLs
// and metadata are omitted.
func Marshal(t *Tree) []byte {
	return []byte(oj.JSON(Document(t), &marshalOptions) + "\n")
}

// Document returns the generic form of the tree that Marshal writes.
func Document(t *Tree) map[string]any {
	doc := copyExtra(t.Root.Extra)
	doc[keyChildren] = records(t.Root.Children)
	return doc
}

func records(nodes []*Node) []any {
	list := make([]any, 0, len(nodes))
	for _, n := range nodes {
		if n.Meta.Imported {
			continue
		}
		list = append(list, record(n))
	}
	return list
}

func record(n *Node) map[string]any {
	rec := copyExtra(n.Extra)
	if n.Meta.Import != nil {
		rec[keyImportRoot] = n.ImportRoot
		rec[keyImportNode] = n.ImportNode
		if n.Title != "" {
			rec[keyTitle] = n.Title
		}
		return rec
	}

	if n.ID != "" {
		rec[keyID] = n.ID
	}
	rec[keyTitle] = n.Title
	if n.explicitURL {
		rec[keyURL] = n.URL
	}
	if n.Abstract {
		rec[keyAbstract] = true
	}
	if len(n.Children) > 0 {
		rec[keyChildren] = records(n.Children)
	}
	return rec
}

func copyExtra(extra map[string]any) map[string]any {
	out := make(map[string]any, len(extra)+4)
	for k, v := range extra {
		out[k] = v
	}
	return out
}
