package dxml

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/open-cli-collective/tocsite/pkg/render"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

// DefaultExt is the extension of generated pages.
const DefaultExt = "html"

var (
	legacyToken = regexp.MustCompile(`#\{([^}]+)\}`)
	rootHref    = regexp.MustCompile(`href="/([^"]+)"`)
	bookHref    = regexp.MustCompile(`href="\.?/([^"]+)"`)
)

// fill replaces #{token} placeholders. Tokens without a value are dropped.
func fill(tpl string, fields map[string]string) string {
	return legacyToken.ReplaceAllStringFunc(tpl, func(tok string) string {
		return fields[tok[2:len(tok)-1]]
	})
}

func discard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}

// HTMLConverter writes one finished HTML page per book node.
type HTMLConverter struct {
	// Site is the base URL, without trailing slash, for site-absolute links
	// that do not point into the book.
	Site string
	// Ext is the extension of generated files and links. Defaults to html.
	Ext string
	// Template is the page template. It may use the tokens #{path},
	// #{base}, #{title}, #{navigation} and #{content}.
	Template string
	Logger   *slog.Logger
}

func (c *HTMLConverter) ext() string {
	if c.Ext == "" {
		return DefaultExt
	}
	return c.Ext
}

// Convert renders every node of book through the template and saves it as
// <path>.<ext>. It returns the written paths in document order.
func (c *HTMLConverter) Convert(ctx context.Context, book *Book, w render.Writer) ([]string, error) {
	log := discard(c.Logger)
	ext := c.ext()

	var written []string
	var err error
	book.Walk(func(n *Node) {
		if err != nil {
			return
		}
		if err = ctx.Err(); err != nil {
			return
		}
		base := strings.Repeat("../", n.Depth())
		content := rootHref.ReplaceAllStringFunc(n.Content, func(attr string) string {
			p := rootHref.FindStringSubmatch(attr)[1]
			if book.Lookup(p) != nil {
				return `href="` + base + p + "." + ext + `"`
			}
			return `href="` + c.Site + "/" + p + `"`
		})

		out := fill(c.Template, map[string]string{
			"path":       n.Path,
			"base":       base,
			"title":      n.Title,
			"navigation": c.navigation(book, n),
			"content":    content,
		})
		file := n.Path + "." + ext
		log.Debug("writing page", "path", file)
		if err = w.Save(ctx, file, []byte(out)); err != nil {
			err = fmt.Errorf("writing %s: %w", file, err)
			return
		}
		written = append(written, file)
	})
	return written, err
}

// navigation renders the book menu as seen from n: every level along n's
// path is expanded, other branches are collapsed.
func (c *HTMLConverter) navigation(book *Book, n *Node) string {
	onPath := make(map[*Node]bool)
	for cur := n; cur != nil; cur = cur.parent {
		onPath[cur] = true
	}
	base := strings.Repeat("../", n.Depth())

	var b strings.Builder
	var list func(nodes []*Node)
	list = func(nodes []*Node) {
		b.WriteString(`<ul class="menu">`)
		for _, child := range nodes {
			class := "leaf"
			if len(child.Children) > 0 {
				class = "collapsed"
				if onPath[child] {
					class = "expanded"
				}
			}
			b.WriteString(`<li class="` + class + `"><a href="` + base + child.Path + "." + c.ext() + `">` + child.Title + "</a>")
			if class == "expanded" {
				list(child.Children)
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ul>")
	}
	list(book.Nodes)
	return b.String()
}

// TOCConverter turns a book into a site: a TOC document plus one page file
// per node holding the node content as page source.
type TOCConverter struct {
	// Site is the base URL, without trailing slash, for links that do not
	// point into the book.
	Site string
	// Ext is the extension of page files and links. Defaults to html.
	Ext string
	// StripPrefix is removed from node paths to form page ids.
	StripPrefix string
	// Template is the blank page template, merged with the tokens ${id},
	// ${title}, ${level}, ${relroot} and ${body}.
	Template string
	Logger   *slog.Logger
}

func (c *TOCConverter) ext() string {
	if c.Ext == "" {
		return DefaultExt
	}
	return c.Ext
}

func (c *TOCConverter) id(path string) string {
	return strings.TrimPrefix(path, c.StripPrefix)
}

func (c *TOCConverter) records(nodes []*Node) []any {
	list := make([]any, 0, len(nodes))
	for _, n := range nodes {
		list = append(list, map[string]any{
			"id":       c.id(n.Path),
			"title":    n.Title,
			"children": c.records(n.Children),
		})
	}
	return list
}

// Tree builds the TOC of book.
func (c *TOCConverter) Tree(ctx context.Context, book *Book) (*toc.Tree, error) {
	tree, err := toc.BuildDocument(ctx, map[string]any{"children": c.records(book.Nodes)}, toc.Options{})
	if err != nil {
		var dup *toc.DuplicateIDError
		if errors.As(err, &dup) {
			return nil, fmt.Errorf("stripping %q from node paths: %w", c.StripPrefix, err)
		}
		return nil, fmt.Errorf("building toc: %w", err)
	}
	return tree, nil
}

// Convert writes toc.json and the page files of book. It returns the
// written paths, the TOC first.
func (c *TOCConverter) Convert(ctx context.Context, book *Book, w render.Writer) ([]string, error) {
	log := discard(c.Logger)
	tree, err := c.Tree(ctx, book)
	if err != nil {
		return nil, err
	}
	if err := w.Save(ctx, toc.DefaultImportFile, toc.Marshal(tree)); err != nil {
		return nil, fmt.Errorf("writing %s: %w", toc.DefaultImportFile, err)
	}
	written := []string{toc.DefaultImportFile}
	ext := c.ext()

	book.Walk(func(n *Node) {
		if err != nil {
			return
		}
		if err = ctx.Err(); err != nil {
			return
		}
		id := c.id(n.Path)
		level := strings.Count(id, "/")
		base := strings.Repeat("../", level)
		body := bookHref.ReplaceAllStringFunc(n.Content, func(attr string) string {
			p := c.id(bookHref.FindStringSubmatch(attr)[1])
			if tree.Page(p) != nil {
				return `href="` + base + p + "." + ext + `"`
			}
			return `href="` + c.Site + "/" + p + "." + ext + `"`
		})

		page := render.Merge(c.Template, map[string]string{
			"id":      id,
			"title":   n.Title,
			"level":   strconv.Itoa(level),
			"relroot": base,
			"body":    body,
		}, log)
		file := id + "." + ext
		log.Debug("writing page source", "path", file)
		if err = w.Save(ctx, file, []byte(page)); err != nil {
			err = fmt.Errorf("writing %s: %w", file, err)
			return
		}
		written = append(written, file)
	})
	return written, err
}
