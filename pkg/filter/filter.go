// Package filter transforms page source markup into a target dialect through
// ordered, named pipelines of text filters.
package filter

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/open-cli-collective/tocsite/pkg/toc"
)

// Dialect is the markup a pipeline produces.
type Dialect string

const (
	HTML     Dialect = "html"
	AsciiDoc Dialect = "asciidoc"
	Markdown Dialect = "markdown"
)

// ParseDialect returns the dialect named s.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(s)); d {
	case HTML, AsciiDoc, Markdown:
		return d, nil
	case "adoc":
		return AsciiDoc, nil
	case "md":
		return Markdown, nil
	}
	return "", fmt.Errorf("unknown dialect %q (expected html, asciidoc or markdown)", s)
}

// Name identifies a filter.
type Name string

const (
	Code       Name = "code"
	Shortcuts  Name = "shortcuts"
	URLs       Name = "urls"
	PageLinks  Name = "pagelinks"
	Issues     Name = "issues"
	Emphasis   Name = "emphasis"
	LineBreaks Name = "linebreaks"
	Includes   Name = "includes"
	ImgFix     Name = "imgfix"
	HTMLTags   Name = "htmltags"
	MarkdownIn Name = "markdown"
	ToMarkdown Name = "tomarkdown"
)

// Filter is one text transformation step.
type Filter interface {
	Apply(input string, c *Context) (string, error)
}

// Func adapts a function to the Filter interface.
type Func func(input string, c *Context) (string, error)

// Apply calls f.
func (f Func) Apply(input string, c *Context) (string, error) {
	return f(input, c)
}

// Registry maps filter names to filters.
type Registry struct {
	dialect Dialect
	filters map[Name]Filter
}

// NewRegistry returns a registry holding the built-in filters for d.
func NewRegistry(d Dialect) *Registry {
	r := &Registry{dialect: d, filters: make(map[Name]Filter)}
	r.Register(Shortcuts, Func(shortcutsFilter))
	r.Register(PageLinks, Func(pageLinksFilter))
	r.Register(Issues, Func(issuesFilter))
	r.Register(Code, Func(codeFilter))
	r.Register(Includes, Func(includesFilter))

	switch d {
	case HTML:
		r.Register(URLs, Func(urlsFilter))
		r.Register(Emphasis, Func(emphasisFilter))
		r.Register(LineBreaks, Func(lineBreaksFilter))
		r.Register(MarkdownIn, Func(markdownFilter))
	case AsciiDoc:
		r.Register(ImgFix, Func(imgFixFilter))
		r.Register(HTMLTags, Func(htmlTagsFilter))
	case Markdown:
		r.Register(URLs, Func(urlsFilter))
		r.Register(Emphasis, Func(emphasisFilter))
		r.Register(LineBreaks, Func(lineBreaksFilter))
		r.Register(ToMarkdown, Func(toMarkdownFilter))
	}
	return r
}

// Dialect returns the dialect the registry's filters produce.
func (r *Registry) Dialect() Dialect {
	return r.dialect
}

// Register adds or replaces the filter registered under name.
func (r *Registry) Register(name Name, f Filter) {
	r.filters[name] = f
}

// Lookup returns the filter registered under name. A filter applied on its
// own, outside Pipeline.Render, leaves protected text in place.
func (r *Registry) Lookup(name Name) (Filter, bool) {
	f, ok := r.filters[name]
	return f, ok
}

// Names returns the registered filter names, sorted.
func (r *Registry) Names() []Name {
	names := make([]Name, 0, len(r.filters))
	for n := range r.filters {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Shortcut expands [[prefix:path]] into Pre + path + Post.
type Shortcut struct {
	Pre  string `yaml:"pre,omitempty" json:"pre,omitempty"`
	Post string `yaml:"post,omitempty" json:"post,omitempty"`
}

// IssueTracker links issue ids such as PROJ-12.
type IssueTracker struct {
	URL      string   `yaml:"url,omitempty" json:"url,omitempty"`
	Projects []string `yaml:"projects,omitempty" json:"projects,omitempty"`
}

// Settings is filter configuration shared by every page of a site.
type Settings struct {
	Shortcuts map[string]Shortcut
	Issues    IssueTracker
	// StripBrokenLinks renders links to unknown pages as plain text in
	// AsciiDoc output instead of a flagged link.
	StripBrokenLinks bool
}

// Context is what a filter knows about the page being rendered.
type Context struct {
	Settings Settings
	Dialect  Dialect
	Tree     *toc.Tree
	Page     *toc.Node
	// Root is the relative path from the page to the site root.
	Root string
	// ImportPrefix, when set, is tried first when resolving page links.
	// Defaults to the prefix of the imported document Page belongs to.
	ImportPrefix string
	// Level is the page's heading level inside a printable document, zero
	// when the page is rendered on its own.
	Level int
	// Include returns the content of an included document.
	Include func(path string) (string, error)
	Logger  *slog.Logger

	stash     []string
	rendering bool
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Context) importPrefix() string {
	if c.ImportPrefix != "" {
		return c.ImportPrefix
	}
	if c.Page != nil {
		return toc.ImportPrefix(c.Page)
	}
	return ""
}

func (c *Context) lookup(id string) *toc.Node {
	if c.Tree == nil {
		return nil
	}
	if prefix := c.importPrefix(); prefix != "" {
		if n := c.Tree.Page(prefix + id); n != nil {
			return n
		}
	}
	return c.Tree.Page(id)
}

const (
	stashOpen  = "\x02"
	stashClose = "\x03"
)

// protect stores text that later filters must not touch and returns the
// token that stands in for it until the pipeline finishes. Outside a
// pipeline render nothing would put the text back, so it is returned as is.
func (c *Context) protect(text string) string {
	if !c.rendering {
		return text
	}
	c.stash = append(c.stash, text)
	return stashOpen + strconv.Itoa(len(c.stash)-1) + stashClose
}

// restore replaces every stash token in s with the stored text.
func (c *Context) restore(s string) string {
	if len(c.stash) == 0 {
		return s
	}
	var b strings.Builder
	for {
		i := strings.Index(s, stashOpen)
		if i < 0 {
			break
		}
		j := strings.Index(s[i:], stashClose)
		if j < 0 {
			break
		}
		n, err := strconv.Atoi(s[i+1 : i+j])
		if err != nil || n < 0 || n >= len(c.stash) {
			b.WriteString(s[:i+j+1])
			s = s[i+j+1:]
			continue
		}
		b.WriteString(s[:i])
		b.WriteString(c.stash[n])
		s = s[i+j+1:]
	}
	b.WriteString(s)
	return b.String()
}
