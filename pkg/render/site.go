package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/open-cli-collective/tocsite/pkg/filter"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

// Default document paths inside a site.
const (
	DefaultTOC           = "toc.json"
	DefaultTemplate      = "template.html"
	DefaultPrintTemplate = "printTemplate.html"
	DefaultBlankPage     = "blankPageTpl.html"
)

// PrintAction is the query value selecting the printable version of a page.
const PrintAction = "print"

// Paths locates the site's TOC and templates. Empty fields use the defaults.
type Paths struct {
	TOC           string
	Template      string
	PrintTemplate string
	BlankPage     string
}

func (p Paths) withDefaults() Paths {
	set := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	set(&p.TOC, DefaultTOC)
	set(&p.Template, DefaultTemplate)
	set(&p.PrintTemplate, DefaultPrintTemplate)
	set(&p.BlankPage, DefaultBlankPage)
	return p
}

// Writer stores generated documents.
type Writer interface {
	Save(ctx context.Context, path string, data []byte) error
}

// Site renders the pages of one documentation site.
type Site struct {
	// Loader reads the TOC, page files and templates.
	Loader toc.Loader
	// Pipelines holds one pipeline per output dialect. Dialects without an
	// entry use the built-in formats.
	Pipelines  map[filter.Dialect]*filter.Pipeline
	Settings   filter.Settings
	Paths      Paths
	PathPrefix string
	Logger     *slog.Logger
}

func (s *Site) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func (s *Site) pipeline(d filter.Dialect) *filter.Pipeline {
	if p, ok := s.Pipelines[d]; ok {
		return p
	}
	return filter.NewPipeline(filter.NewRegistry(d))
}

func (s *Site) load(ctx context.Context, p string) (string, error) {
	data, err := s.Loader.Load(ctx, p)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", p, err)
	}
	return string(data), nil
}

// ErrNoPage is returned when a page in the TOC has no page file.
var ErrNoPage = errors.New("page file not found")

func missing(err error) bool {
	return errors.Is(err, ErrNoPage) || errors.Is(err, ErrNoSource)
}

// SourcePath returns the path of n's page file relative to the site root.
func SourcePath(n *toc.Node) string {
	return n.ID + ".html"
}

// OutputPath returns where the rendered page n is written for dialect d.
func OutputPath(n *toc.Node, d filter.Dialect) string {
	switch d {
	case filter.AsciiDoc:
		return n.ID + ".adoc"
	case filter.Markdown:
		return n.ID + ".md"
	default:
		return n.ID + ".html"
	}
}

// LoadTree reads and builds the site's TOC. Duplicate page ids are logged;
// the first page with an id wins.
func (s *Site) LoadTree(ctx context.Context) (*toc.Tree, error) {
	p := s.Paths.withDefaults()
	data, err := s.Loader.Load(ctx, p.TOC)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", p.TOC, err)
	}
	tree, err := toc.Build(ctx, data, toc.Options{Loader: s.Loader, PathPrefix: s.PathPrefix})
	var dup *toc.DuplicateIDError
	if errors.As(err, &dup) {
		s.logger().Warn("duplicate page ids", "ids", dup.IDs)
		return tree, nil
	}
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", p.TOC, err)
	}
	return tree, nil
}

// RenderBody runs the source of n's page file through the pipeline of
// dialect d and returns the rendered fragment.
func (s *Site) RenderBody(ctx context.Context, tree *toc.Tree, n *toc.Node, d filter.Dialect) (string, error) {
	body, _, err := s.body(ctx, tree, n, d, toc.RelativeRoot(n), 0)
	return body, err
}

func (s *Site) body(ctx context.Context, tree *toc.Tree, n *toc.Node, d filter.Dialect, root string, level int) (string, Overrides, error) {
	if n.ID == "" {
		return "", Overrides{}, errors.New("page has no id")
	}
	page, err := s.load(ctx, SourcePath(n))
	if errors.Is(err, fs.ErrNotExist) {
		return "", Overrides{}, fmt.Errorf("%w: %w", ErrNoPage, err)
	}
	if err != nil {
		return "", Overrides{}, err
	}
	source, err := ExtractSource(page)
	if err != nil {
		return "", Overrides{}, fmt.Errorf("%s: %w", SourcePath(n), err)
	}
	overrides, err := ParseOverrides(page)
	if err != nil {
		s.logger().Warn("ignoring page overrides", "page", n.ID, "error", err)
	}

	c := &filter.Context{
		Settings: s.Settings,
		Tree:     tree,
		Page:     n,
		Root:     root,
		Level:    level,
		Include:  s.includer(ctx, n),
		Logger:   s.logger().With("page", n.ID),
	}
	return s.pipeline(d).Render(source, overrides.Format, c), overrides, nil
}

// includer resolves include paths against the local root of n: the root of
// the imported document n belongs to, else the site root. Paths starting with
// "/" are always relative to the site root.
func (s *Site) includer(ctx context.Context, n *toc.Node) func(string) (string, error) {
	local := toc.ImportPrefix(n)
	return func(p string) (string, error) {
		if !strings.HasPrefix(p, "/") {
			p = path.Join(local, p)
		}
		return s.load(ctx, strings.TrimPrefix(p, "/"))
	}
}

// vars returns the template values shared by page and printable templates.
func vars(tree *toc.Tree, n *toc.Node, root, title string) map[string]string {
	location := path.Base(n.ID) + ".html?action=" + PrintAction
	return map[string]string{
		"title":                   title,
		"id":                      n.ID,
		"root":                    root,
		"relroot":                 root,
		"level":                   strconv.Itoa(toc.RelativeDepth(n)),
		"menu":                    MenuHTML(tree, n, root),
		"breadCrumb":              BreadcrumbHTML(n, root),
		"childrenList":            ChildrenHTML(n, root),
		"printerFriendlyLocation": location,
		"printerFriendlyLink":     `<a href="` + location + `">Printer Friendly</a>`,
	}
}

// RenderPage renders n for dialect d. HTML pages are merged into the site
// template; other dialects produce the rendered body alone.
func (s *Site) RenderPage(ctx context.Context, tree *toc.Tree, n *toc.Node, d filter.Dialect) (string, error) {
	root := toc.RelativeRoot(n)
	body, overrides, err := s.body(ctx, tree, n, d, root, 0)
	if err != nil {
		return "", err
	}
	if d != filter.HTML {
		return body, nil
	}

	tpl, err := s.load(ctx, s.Paths.withDefaults().Template)
	if err != nil {
		return "", err
	}
	title := n.Title
	if overrides.Title != "" {
		title = overrides.Title
	}
	v := vars(tree, n, root, title)
	v["body"] = body
	return Merge(RebaseLinks(tpl, root), v, s.logger()), nil
}

// Printable returns n and every page below it rendered for dialect d as one
// document, each page under a heading whose level is its depth below n plus
// one. Pages without a page file are skipped.
func (s *Site) Printable(ctx context.Context, tree *toc.Tree, n *toc.Node, d filter.Dialect) (string, error) {
	root := toc.RelativeRoot(n)
	base := n.Meta.Depth
	if n.IsRoot() {
		base = 0
	}

	var b strings.Builder
	for cur := n; cur != nil; cur = toc.Next(cur, n) {
		if cur.ID == "" {
			continue
		}
		level := cur.Meta.Depth - base + 1
		body, _, err := s.body(ctx, tree, cur, d, root, level)
		if missing(err) {
			s.logger().Debug("skipping page without source", "page", cur.ID)
			continue
		}
		if err != nil {
			return "", err
		}
		writePrintSection(&b, d, level, cur.Title, body)
	}
	return b.String(), nil
}

// writePrintSection appends one page of a printable document.
func writePrintSection(b *strings.Builder, d filter.Dialect, level int, title, body string) {
	switch d {
	case filter.AsciiDoc:
		b.WriteString("\n" + strings.Repeat("=", level+1) + " " + title + "\n")
		b.WriteString(body)
		b.WriteString("\n'''\n")
	case filter.Markdown:
		b.WriteString("\n" + strings.Repeat("#", level) + " " + title + "\n\n")
		b.WriteString(body)
		b.WriteString("\n---\n")
	default:
		h := strconv.Itoa(level)
		b.WriteString("<h" + h + ">" + title + "</h" + h + ">")
		b.WriteString(body)
		b.WriteString("<hr/>")
	}
}

// RenderPrintable renders the printable document of n for dialect d. HTML
// is merged into the print template; other dialects produce the document
// alone.
func (s *Site) RenderPrintable(ctx context.Context, tree *toc.Tree, n *toc.Node, d filter.Dialect) (string, error) {
	content, err := s.Printable(ctx, tree, n, d)
	if err != nil {
		return "", err
	}
	if d != filter.HTML {
		return content, nil
	}
	tpl, err := s.load(ctx, s.Paths.withDefaults().PrintTemplate)
	if err != nil {
		return "", err
	}
	root := toc.RelativeRoot(n)
	v := vars(tree, n, root, n.Title)
	v["body"] = content
	return Merge(RebaseLinks(tpl, root), v, s.logger()), nil
}

// BlankPage returns a new page file for n with body as its source.
func (s *Site) BlankPage(ctx context.Context, n *toc.Node, body string) (string, error) {
	tpl, err := s.load(ctx, s.Paths.withDefaults().BlankPage)
	if err != nil {
		return "", err
	}
	return Merge(tpl, map[string]string{
		"id":      n.ID,
		"title":   n.Title,
		"level":   strconv.Itoa(toc.RelativeDepth(n)),
		"relroot": toc.RelativeRoot(n),
		"body":    body,
	}, s.logger()), nil
}

// RenderAll renders every page of tree for dialect d and saves it to w.
// Pages without a page file are skipped. It returns the written paths.
func (s *Site) RenderAll(ctx context.Context, tree *toc.Tree, d filter.Dialect, w Writer) ([]string, error) {
	var written []string
	for _, n := range tree.Pages() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if n.Abstract || n.HasExplicitURL() {
			continue
		}
		out, err := s.RenderPage(ctx, tree, n, d)
		if missing(err) {
			s.logger().Warn("skipping page without source", "page", n.ID, "error", err)
			continue
		}
		if err != nil {
			return written, fmt.Errorf("rendering %s: %w", n.ID, err)
		}
		p := OutputPath(n, d)
		if err := w.Save(ctx, p, []byte(out)); err != nil {
			return written, fmt.Errorf("writing %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}
