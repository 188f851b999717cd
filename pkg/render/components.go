package render

import (
	"strings"

	"github.com/open-cli-collective/tocsite/pkg/toc"
)

// MenuIDPrefix is prepended to page ids to form menu item element ids.
const MenuIDPrefix = "toc-"

// PageLink returns a link to n as seen from a page whose relative root is
// root. Abstract pages render as their bare title; the link to current is
// given the "current" class.
func PageLink(n, current *toc.Node, root string) string {
	if n.Abstract {
		return n.Title
	}
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(n.Href(root))
	b.WriteString(`"`)
	if n == current {
		b.WriteString(` class="current"`)
	}
	b.WriteString(">")
	b.WriteString(n.Title)
	b.WriteString("</a>")
	return b.String()
}

// MenuHTML renders the whole tree as a nested list. Branches leading to
// current are marked open, the others closed.
func MenuHTML(tree *toc.Tree, current *toc.Node, root string) string {
	var b strings.Builder
	b.WriteString(`<ul id="treemenu" class="treeview">` + "\n")
	writeMenu(&b, toc.Menu(tree.Root, current), current, root)
	b.WriteString("</ul>\n")
	return b.String()
}

func writeMenu(b *strings.Builder, items []toc.MenuItem, current *toc.Node, root string) {
	for _, item := range items {
		b.WriteString(`<li id="` + MenuIDPrefix + item.Node.ID + `"`)
		if len(item.Children) == 0 {
			b.WriteString(">" + PageLink(item.Node, current, root) + "</li>\n")
			continue
		}
		state := "closed"
		if item.Open {
			state = "open"
		}
		b.WriteString(` class="submenu">` + PageLink(item.Node, current, root))
		b.WriteString(`<ul class="` + state + `">` + "\n")
		writeMenu(b, item.Children, current, root)
		b.WriteString("</ul></li>\n")
	}
}

// BreadcrumbHTML renders the path from the top-level page to n.
func BreadcrumbHTML(n *toc.Node, root string) string {
	path := toc.Breadcrumb(n)
	links := make([]string, len(path))
	for i, p := range path {
		links[i] = PageLink(p, n, root)
	}
	return `<span class="breadCrumb">` + strings.Join(links, " &gt; ") + "</span>"
}

// ChildrenHTML lists the children of n, or returns "" for a leaf.
func ChildrenHTML(n *toc.Node, root string) string {
	if len(n.Children) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<ul class="childrenList">` + "\n")
	for _, c := range n.Children {
		b.WriteString("<li>" + PageLink(c, nil, root) + "</li>\n")
	}
	b.WriteString("</ul>\n")
	return b.String()
}
