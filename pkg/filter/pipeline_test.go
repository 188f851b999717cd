package filter

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input   string
		want    Dialect
		wantErr bool
	}{
		{input: "html", want: HTML},
		{input: "AsciiDoc", want: AsciiDoc},
		{input: "adoc", want: AsciiDoc},
		{input: "md", want: Markdown},
		{input: "markdown", want: Markdown},
		{input: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDialect(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_Names(t *testing.T) {
	assert.Equal(t,
		[]Name{Code, HTMLTags, ImgFix, Includes, Issues, PageLinks, Shortcuts},
		NewRegistry(AsciiDoc).Names())

	html := NewRegistry(HTML)
	_, ok := html.Lookup(MarkdownIn)
	assert.True(t, ok)
	_, ok = html.Lookup(HTMLTags)
	assert.False(t, ok)

	md := NewRegistry(Markdown)
	_, ok = md.Lookup(ToMarkdown)
	assert.True(t, ok)
}

func TestPipeline_Formats(t *testing.T) {
	p := NewPipeline(NewRegistry(HTML))
	assert.Equal(t, Standard, p.Default())
	assert.Equal(t, HTML, p.Dialect())
	assert.Equal(t, []Name{Code, Shortcuts, URLs, PageLinks, Issues, LineBreaks}, p.Filters(Standard))
	assert.Equal(t, p.Filters(Standard), p.Filters("nope"))

	require.NoError(t, p.SetDefault("markdown"))
	assert.Equal(t, []Name{MarkdownIn, Shortcuts, PageLinks, Issues}, p.Filters(""))
	assert.Error(t, p.SetDefault("nope"))
	assert.Equal(t, "markdown", p.Default())

	filters := []Name{Emphasis}
	p.Define("plain", filters)
	filters[0] = Code
	assert.Equal(t, []Name{Emphasis}, p.Filters("plain"))
}

func TestPipeline_StandardHTML(t *testing.T) {
	tree := newTree(t)
	p := NewPipeline(NewRegistry(HTML))
	c := &Context{
		Tree:     tree,
		Page:     tree.Page("tutorial/start"),
		Root:     "../",
		Settings: Settings{Issues: IssueTracker{URL: "http://jira", Projects: []string{"IVY"}}},
	}

	got := p.Render("Read [[index]] (IVY-9)\nthen <code>a < b</code>", "", c)
	assert.Equal(t,
		`Read <a href="../index.html">Home</a> (<a href="http://jira/browse/IVY-9">IVY-9</a>)<br class="autobr"/>then <pre>a &lt; b</pre>`,
		got)
	assert.Empty(t, c.stash)
}

func TestPipeline_UnknownFilterSkipped(t *testing.T) {
	logger, buf := captureLogger()
	p := NewPipeline(NewRegistry(HTML))
	p.Define("odd", []Name{"nope", Emphasis})

	got := p.Render("*x*", "odd", &Context{Logger: logger})
	assert.Equal(t, "<b>x</b>", got)
	assert.Contains(t, buf.String(), "unknown filter in format")
	assert.Contains(t, buf.String(), "filter=nope")
}

func TestPipeline_FailingFilterUndone(t *testing.T) {
	logger, buf := captureLogger()
	reg := NewRegistry(HTML)
	reg.Register("fail", Func(func(string, *Context) (string, error) {
		return "garbage", errors.New("boom")
	}))
	reg.Register("explode", Func(func(string, *Context) (string, error) {
		panic("kaboom")
	}))
	p := NewPipeline(reg)
	p.Define("risky", []Name{Emphasis, "fail", "explode", Code})

	got := p.Render("*x* <code><</code>", "risky", &Context{Logger: logger})
	assert.Equal(t, "<b>x</b> <pre>&lt;</pre>", got)
	assert.Contains(t, buf.String(), "error=boom")
	assert.Contains(t, buf.String(), "kaboom")
}

func TestPipeline_UnknownFormat(t *testing.T) {
	logger, buf := captureLogger()
	p := NewPipeline(NewRegistry(HTML))

	got := p.Render("a\nb", "fancy", &Context{Logger: logger})
	assert.Equal(t, `a<br class="autobr"/>b`, got)
	assert.Contains(t, buf.String(), "unknown format")

	buf.Reset()
	p.Render("a", "", &Context{Logger: logger})
	assert.Empty(t, buf.String())
}

func TestPipeline_NilContext(t *testing.T) {
	p := NewPipeline(NewRegistry(HTML))
	assert.Equal(t, `<a href="missing" class="broken-link">missing</a>`, p.Render("[[missing]]", "", nil))
}

func TestPipeline_AsciiDoc(t *testing.T) {
	tree := newTree(t)
	p := NewPipeline(NewRegistry(AsciiDoc))

	got := p.Render(`<b>See</b> [[index]] <code>[[raw]]</code>`, Standard, &Context{Tree: tree})
	assert.Equal(t, "*See* link:index.html[Home] \n[source]\n----\n[[raw]]\n----\n\n", got)
}

func TestMarkdownIn(t *testing.T) {
	tree := newTree(t)
	p := NewPipeline(NewRegistry(HTML))

	got := p.Render("# Title\n\nSee [[index]].", "markdown", &Context{Tree: tree})
	assert.Contains(t, got, "<h1>Title</h1>")
	assert.Contains(t, got, `<a href="index.html">Home</a>`)

	empty, err := markdownFilter("", &Context{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestToMarkdown(t *testing.T) {
	tree := newTree(t)
	p := NewPipeline(NewRegistry(Markdown))
	c := &Context{Tree: tree}

	assert.Contains(t, p.Render("Hello <b>world</b>", "", c), "**world**")
	assert.Contains(t, p.Render("[[index]]", "", c), "[Home](index.html)")

	code := p.Render("<code>x < y</code>", "", c)
	assert.Contains(t, code, "```")
	assert.Contains(t, code, "x < y")

	assert.Empty(t, p.Render("   ", "", c))
}
