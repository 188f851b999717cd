package rendercmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/internal/config"
	"github.com/open-cli-collective/tocsite/internal/store"
)

func source(s string) string {
	return `<html><body><textarea id="tocsite-source">` + s + `</textarea></body></html>`
}

func newWorkspace(t *testing.T) *cmdutil.Workspace {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()
	for p, data := range map[string]string{
		"toc.json": `{children: [
			{id: "index", title: "Home"},
			{id: "guide", title: "Guide", children: [
				{id: "guide/install", title: "Install"},
				{id: "guide/usage", title: "Usage"}
			]},
			{id: "ref", title: "Reference", isAbstract: true}
		]}`,
		"template.html":      `<html><title>${title}</title><main>${body}</main></html>`,
		"printTemplate.html": `<title>${title}</title><div>${body}</div>`,
		"index.html":         source("Welcome"),
		"guide.html":         source("Guide intro"),
		"guide/install.html": source("See [[guide/usage]]."),
	} {
		require.NoError(t, st.Save(ctx, p, []byte(data)))
	}
	ws, err := cmdutil.NewWorkspace(&config.Config{}, st, nil)
	require.NoError(t, err)
	return ws
}

func plainOptions(buf *bytes.Buffer) *cmdutil.Options {
	return &cmdutil.Options{Output: "plain", NoColor: true, Out: buf}
}

func TestNewCmdRender(t *testing.T) {
	cmd := NewCmdRender()
	assert.Equal(t, "render", cmd.Use)
	assert.Len(t, cmd.Commands(), 3)
}

func TestRunPage(t *testing.T) {
	tests := []struct {
		name string
		opts pageOptions
		want string
	}{
		{
			name: "html page",
			opts: pageOptions{format: "html"},
			want: `<html><title>Install</title><main>See <a href="../guide/usage.html">Usage</a>.</main></html>`,
		},
		{
			name: "body only",
			opts: pageOptions{format: "html", bodyOnly: true},
			want: `See <a href="../guide/usage.html">Usage</a>.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := runPage(context.Background(), "guide/install", &tt.opts, plainOptions(&buf), newWorkspace(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRunPage_AsciiDoc(t *testing.T) {
	var buf bytes.Buffer
	err := runPage(context.Background(), "guide/install", &pageOptions{format: "adoc"}, plainOptions(&buf), newWorkspace(t))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "link:../guide/usage.html[Usage]")
	assert.NotContains(t, buf.String(), "<html>")
}

func TestRunPage_Errors(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		format string
		errMsg string
	}{
		{name: "unknown dialect", id: "index", format: "pdf", errMsg: "unknown dialect"},
		{name: "unknown page", id: "nope", format: "html", errMsg: `page "nope" not found`},
		{name: "abstract page", id: "ref", format: "html", errMsg: `page "ref" has no page file`},
		{name: "missing page file", id: "guide/usage", format: "html", errMsg: "failed to render guide/usage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := runPage(context.Background(), tt.id, &pageOptions{format: tt.format}, plainOptions(&buf), newWorkspace(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Empty(t, buf.String())
		})
	}
}

func TestRunPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runPrint(context.Background(), "guide/install", &printOptions{format: "html"}, plainOptions(&buf), newWorkspace(t)))
	assert.Equal(t, `<title>Install</title><div><h1>Install</h1>See <a href="../guide/usage.html">Usage</a>.<hr/></div>`, buf.String())

	buf.Reset()
	require.NoError(t, runPrint(context.Background(), "", &printOptions{format: "html"}, plainOptions(&buf), newWorkspace(t)))
	assert.Contains(t, buf.String(), "<h1>Home</h1>Welcome<hr/>")
	assert.Contains(t, buf.String(), "<h1>Guide</h1>Guide intro<hr/><h2>Install</h2>")

	err := runPrint(context.Background(), "nope", &printOptions{format: "html"}, plainOptions(&buf), newWorkspace(t))
	require.Error(t, err)
}

func TestRunPrint_Dialects(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runPrint(context.Background(), "guide/install", &printOptions{format: "adoc"}, plainOptions(&buf), newWorkspace(t)))
	assert.Contains(t, buf.String(), "== Install\nSee link:../guide/usage.html[Usage].")
	assert.NotContains(t, buf.String(), "<title>")

	err := runPrint(context.Background(), "guide", &printOptions{format: "pdf"}, plainOptions(&buf), newWorkspace(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dialect")
}

func TestRunSite(t *testing.T) {
	out := store.NewMemory()
	var buf bytes.Buffer

	err := runSite(context.Background(), &siteOptions{out: "public"}, plainOptions(&buf), newWorkspace(t), out)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Rendered 3 pages to public")

	data, err := out.Load(context.Background(), "guide/install.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>Install</title>")
}

func TestRunSite_JSON(t *testing.T) {
	var buf bytes.Buffer
	g := &cmdutil.Options{Output: "json", NoColor: true, Out: &buf}

	require.NoError(t, runSite(context.Background(), &siteOptions{out: "public"}, g, newWorkspace(t), store.NewMemory()))

	var written []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &written))
	assert.Equal(t, []string{"index.html", "guide.html", "guide/install.html"}, written)
}
