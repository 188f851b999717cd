// Package dxml converts books exported in the Drupal XML (DXML) format into
// site pages or into a TOC with page sources.
//
// A book is a tree of node elements:
//
//	<node>
//	  <nodeinfo path="doc/install"/>
//	  <title>Installation</title>
//	  <content><![CDATA[...]]></content>
//	  <node>...</node>
//	</node>
package dxml

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// Node is one book page.
type Node struct {
	Path     string
	Title    string
	Content  string
	Children []*Node

	parent *Node
}

// Parent returns the enclosing node, or nil for a top-level node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Depth is the number of directory levels in the node's path.
func (n *Node) Depth() int {
	return strings.Count(n.Path, "/")
}

// Book is a parsed DXML document.
type Book struct {
	// Nodes are the top-level nodes in document order.
	Nodes []*Node

	index map[string]*Node
}

// Parse reads a DXML book. Every node needs a unique path.
func Parse(r io.Reader) (*Book, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing book: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parsing book: no root element")
	}

	b := &Book{index: make(map[string]*Node)}
	elements := []*etree.Element{root}
	if root.Tag != "node" {
		elements = root.SelectElements("node")
	}
	for _, el := range elements {
		n, err := b.node(el, nil)
		if err != nil {
			return nil, err
		}
		b.Nodes = append(b.Nodes, n)
	}
	return b, nil
}

func (b *Book) node(el *etree.Element, parent *Node) (*Node, error) {
	n := &Node{parent: parent}
	if t := el.SelectElement("title"); t != nil {
		n.Title = strings.TrimSpace(t.Text())
	}
	if info := el.SelectElement("nodeinfo"); info != nil {
		n.Path = info.SelectAttrValue("path", "")
	}
	if n.Path == "" {
		return nil, fmt.Errorf("parsing book: node %q has no path", n.Title)
	}
	if _, dup := b.index[n.Path]; dup {
		return nil, fmt.Errorf("parsing book: duplicate path %q", n.Path)
	}
	b.index[n.Path] = n

	if c := el.SelectElement("content"); c != nil {
		n.Content = c.Text()
	}
	for _, child := range el.SelectElements("node") {
		cn, err := b.node(child, n)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, cn)
	}
	return n, nil
}

// Lookup returns the node with the given path, or nil.
func (b *Book) Lookup(path string) *Node {
	return b.index[path]
}

// Walk calls fn for every node in document order.
func (b *Book) Walk(fn func(*Node)) {
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			fn(n)
			walk(n.Children)
		}
	}
	walk(b.Nodes)
}
