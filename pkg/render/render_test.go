package render

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSource(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		want    string
		wantErr bool
	}{
		{
			name: "simple",
			page: `<html><body><textarea id="tocsite-source">Hello</textarea></body></html>`,
			want: "Hello",
		},
		{
			name: "leading newline dropped",
			page: "<textarea id=\"tocsite-source\">\nHello\nWorld</textarea>",
			want: "Hello\nWorld",
		},
		{
			name: "other attributes",
			page: `<textarea rows="20" id="tocsite-source" cols="80">x</textarea>`,
			want: "x",
		},
		{
			name: "legacy id",
			page: `<textarea id="xooki-source">old page</textarea>`,
			want: "old page",
		},
		{
			name: "ends at last closing tag",
			page: `<textarea id="tocsite-source">a <textarea>b</textarea> c</textarea>`,
			want: "a <textarea>b</textarea> c",
		},
		{
			name: "skips other textareas",
			page: `<textarea id="notes">n</textarea><textarea id="tocsite-source">s</textarea>`,
			want: "s",
		},
		{
			name:    "no source block",
			page:    `<html><body><p>nothing</p></body></html>`,
			wantErr: true,
		},
		{
			name:    "only other textarea",
			page:    `<textarea id="notes">n</textarea>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSource(tt.page)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrNoSource))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReplaceSource(t *testing.T) {
	page := `<p><textarea id="tocsite-source">old</textarea></p>`

	got, err := ReplaceSource(page, "new")
	require.NoError(t, err)
	assert.Equal(t, "<p><textarea id=\"tocsite-source\">\nnew</textarea></p>", got)

	src, err := ExtractSource(got)
	require.NoError(t, err)
	assert.Equal(t, "new", src)

	_, err = ReplaceSource("<p></p>", "x")
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestParseOverrides(t *testing.T) {
	o, err := ParseOverrides(`<script>var tocsiteConfig = {format: "markdown", title: "Custom"};</script>`)
	require.NoError(t, err)
	assert.Equal(t, "markdown", o.Format)
	assert.Equal(t, "Custom", o.Title)

	o, err = ParseOverrides(`<script>var xookiConfig = {level: 1};</script>`)
	require.NoError(t, err)
	assert.Empty(t, o.Format)
	assert.Contains(t, o.Values, "level")

	o, err = ParseOverrides(`<p>no overrides</p>`)
	require.NoError(t, err)
	assert.Equal(t, Overrides{}, o)

	_, err = ParseOverrides(`var tocsiteConfig = {format: "x"]};`)
	assert.Error(t, err)
}

func TestParseOverrides_IgnoresSource(t *testing.T) {
	page := "<script>var tocsiteConfig = {title: \"Real\"};</script>\n" +
		"<textarea id=\"tocsite-source\">Declare var tocsiteConfig = {format: \"markdown\"}; in the page.</textarea>"

	o, err := ParseOverrides(page)
	require.NoError(t, err)
	assert.Equal(t, "Real", o.Title)
	assert.Empty(t, o.Format)

	o, err = ParseOverrides(`<textarea id="tocsite-source">var xookiConfig = {format: "markdown"};</textarea>`)
	require.NoError(t, err)
	assert.Equal(t, Overrides{}, o)
}

func TestMerge(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got := Merge("Hello ${name}, ${missing}! $name", map[string]string{"name": "Bob"}, logger)
	assert.Equal(t, "Hello Bob, missing! $name", got)
	assert.Contains(t, buf.String(), "template key not found")
	assert.Contains(t, buf.String(), "key=missing")

	assert.Equal(t, "x", Merge("${a}", map[string]string{"a": "x"}, nil))
	assert.Equal(t, "${b}", Merge("${a}", map[string]string{"a": "${b}"}, nil))
}

func TestRebaseLinks(t *testing.T) {
	tests := []struct {
		name string
		tpl  string
		root string
		want string
	}{
		{name: "href", tpl: `<link href="style.css"/>`, root: "../", want: `<link href="../style.css"/>`},
		{name: "src", tpl: `<img src="img/logo.png">`, root: "../../", want: `<img src="../../img/logo.png">`},
		{name: "absolute url", tpl: `<a href="http://x.org/a">`, root: "../", want: `<a href="http://x.org/a">`},
		{name: "token", tpl: `<a href="${root}a.html">`, root: "../", want: `<a href="${root}a.html">`},
		{name: "site absolute", tpl: `<a href="/a.html">`, root: "../", want: `<a href="/a.html">`},
		{name: "fragment", tpl: `<a href="#top">`, root: "../", want: `<a href="#top">`},
		{name: "root page", tpl: `<link href="style.css"/>`, root: "", want: `<link href="style.css"/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RebaseLinks(tt.tpl, tt.root))
		})
	}
}
