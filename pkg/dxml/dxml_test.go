package dxml

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/tocsite/internal/store"
	"github.com/open-cli-collective/tocsite/pkg/render"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

const testBook = `<?xml version="1.0" encoding="UTF-8"?>
<book>
  <node>
    <nodeinfo path="ivy/doc"/>
    <title>Documentation</title>
    <content><![CDATA[See <a href="/ivy/doc/install">install</a> and <a href="/ivy/download">download</a>.]]></content>
    <node>
      <nodeinfo path="ivy/doc/install"/>
      <title>Install</title>
      <content><![CDATA[Back to <a href="./ivy/doc">docs</a>.]]></content>
    </node>
    <node>
      <nodeinfo path="ivy/doc/tutorial"/>
      <title>Tutorial</title>
      <content><![CDATA[Tutorial]]></content>
      <node>
        <nodeinfo path="ivy/doc/tutorial/start"/>
        <title>Start</title>
        <content><![CDATA[Go]]></content>
      </node>
    </node>
  </node>
  <node>
    <nodeinfo path="ivy/faq"/>
    <title>FAQ</title>
    <content><![CDATA[Questions]]></content>
  </node>
</book>`

func parseBook(t *testing.T) *Book {
	t.Helper()
	book, err := Parse(strings.NewReader(testBook))
	require.NoError(t, err)
	return book
}

type failWriter struct{}

func (failWriter) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestParse(t *testing.T) {
	book := parseBook(t)
	require.Len(t, book.Nodes, 2)

	install := book.Lookup("ivy/doc/install")
	require.NotNil(t, install)
	assert.Equal(t, "Install", install.Title)
	assert.Equal(t, `Back to <a href="./ivy/doc">docs</a>.`, install.Content)
	assert.Equal(t, 2, install.Depth())
	assert.Equal(t, book.Lookup("ivy/doc"), install.Parent())
	assert.Nil(t, book.Lookup("ivy/doc").Parent())
	assert.Nil(t, book.Lookup("ivy/nothing"))

	var paths []string
	book.Walk(func(n *Node) { paths = append(paths, n.Path) })
	assert.Equal(t, []string{"ivy/doc", "ivy/doc/install", "ivy/doc/tutorial", "ivy/doc/tutorial/start", "ivy/faq"}, paths)
}

func TestParse_RootNode(t *testing.T) {
	book, err := Parse(strings.NewReader(`<node><nodeinfo path="top"/><title>Top</title><content>x</content></node>`))
	require.NoError(t, err)
	require.Len(t, book.Nodes, 1)
	assert.Equal(t, "top", book.Nodes[0].Path)
	assert.Equal(t, "x", book.Nodes[0].Content)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "empty", input: "", errMsg: "parsing book"},
		{name: "missing path", input: `<book><node><title>Lost</title></node></book>`, errMsg: `node "Lost" has no path`},
		{name: "duplicate path", input: `<book><node><nodeinfo path="a"/></node><node><nodeinfo path="a"/></node></book>`, errMsg: `duplicate path "a"`},
		{name: "not xml", input: `<book><<`, errMsg: "parsing book"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestHTMLConverter(t *testing.T) {
	ctx := context.Background()
	book := parseBook(t)
	out := store.NewMemory()
	c := &HTMLConverter{
		Site:     "http://ant.apache.org",
		Template: "#{title}|#{base}|#{navigation}|#{content}|#{unknown}",
	}

	written, err := c.Convert(ctx, book, out)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ivy/doc.html", "ivy/doc/install.html", "ivy/doc/tutorial.html", "ivy/doc/tutorial/start.html", "ivy/faq.html",
	}, written)

	data, err := out.Load(ctx, "ivy/doc.html")
	require.NoError(t, err)
	parts := strings.Split(string(data), "|")
	require.Len(t, parts, 5)
	assert.Equal(t, "Documentation", parts[0])
	assert.Equal(t, "../", parts[1])
	assert.Equal(t, `See <a href="../ivy/doc/install.html">install</a> and <a href="http://ant.apache.org/ivy/download">download</a>.`, parts[3])
	assert.Empty(t, parts[4])

	data, err = out.Load(ctx, "ivy/doc/install.html")
	require.NoError(t, err)
	parts = strings.Split(string(data), "|")
	require.Len(t, parts, 5)
	assert.Equal(t, `<ul class="menu">`+
		`<li class="expanded"><a href="../../ivy/doc.html">Documentation</a><ul class="menu">`+
		`<li class="leaf"><a href="../../ivy/doc/install.html">Install</a></li>`+
		`<li class="collapsed"><a href="../../ivy/doc/tutorial.html">Tutorial</a></li>`+
		`</ul></li>`+
		`<li class="leaf"><a href="../../ivy/faq.html">FAQ</a></li>`+
		`</ul>`, parts[2])
	assert.Equal(t, `Back to <a href="./ivy/doc">docs</a>.`, parts[3])
}

func TestHTMLConverter_Ext(t *testing.T) {
	book := parseBook(t)
	out := store.NewMemory()
	c := &HTMLConverter{Ext: "htm", Template: "#{content}"}

	written, err := c.Convert(context.Background(), book, out)
	require.NoError(t, err)
	assert.Equal(t, "ivy/doc.htm", written[0])

	data, err := out.Load(context.Background(), "ivy/doc.htm")
	require.NoError(t, err)
	assert.Contains(t, string(data), `href="../ivy/doc/install.htm"`)
}

func TestHTMLConverter_WriteError(t *testing.T) {
	c := &HTMLConverter{Template: "#{content}"}
	_, err := c.Convert(context.Background(), parseBook(t), failWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing ivy/doc.html: disk full")
}

func TestTOCConverter(t *testing.T) {
	ctx := context.Background()
	book := parseBook(t)
	out := store.NewMemory()
	c := &TOCConverter{
		Site:        "http://incubator.apache.org/ivy",
		StripPrefix: "ivy/",
		Template:    `<textarea id="tocsite-source">${body}</textarea><!--${level}|${relroot}|${title}-->`,
	}

	written, err := c.Convert(ctx, book, out)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"toc.json", "doc.html", "doc/install.html", "doc/tutorial.html", "doc/tutorial/start.html", "faq.html",
	}, written)

	data, err := out.Load(ctx, "toc.json")
	require.NoError(t, err)
	tree, err := toc.Build(ctx, data, toc.Options{})
	require.NoError(t, err)
	assert.Len(t, tree.Pages(), 5)
	assert.Equal(t, "Start", tree.Page("doc/tutorial/start").Title)
	assert.Equal(t, "doc", tree.Page("doc/install").Parent().ID)

	data, err = out.Load(ctx, "doc.html")
	require.NoError(t, err)
	src, err := render.ExtractSource(string(data))
	require.NoError(t, err)
	assert.Equal(t, `See <a href="doc/install.html">install</a> and <a href="http://incubator.apache.org/ivy/download.html">download</a>.`, src)
	assert.Contains(t, string(data), "<!--0||Documentation-->")

	data, err = out.Load(ctx, "doc/install.html")
	require.NoError(t, err)
	src, err = render.ExtractSource(string(data))
	require.NoError(t, err)
	assert.Equal(t, `Back to <a href="../doc.html">docs</a>.`, src)
	assert.Contains(t, string(data), "<!--1|../|Install-->")
}

func TestTOCConverter_DuplicateAfterStrip(t *testing.T) {
	book, err := Parse(strings.NewReader(`<book>
		<node><nodeinfo path="ivy/x"/><title>A</title></node>
		<node><nodeinfo path="x"/><title>B</title></node>
	</book>`))
	require.NoError(t, err)

	c := &TOCConverter{StripPrefix: "ivy/", Template: "${body}"}
	_, err = c.Convert(context.Background(), book, store.NewMemory())
	var dup *toc.DuplicateIDError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, []string{"x"}, dup.IDs)
}

func TestTOCConverter_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &TOCConverter{Template: "${body}"}
	_, err := c.Convert(ctx, parseBook(t), store.NewMemory())
	assert.ErrorIs(t, err, context.Canceled)
}
