package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/tocsite/internal/store"
	"github.com/open-cli-collective/tocsite/pkg/filter"
)

var envKeys = []string{
	"TOCSITE_DIR", "TOCSITE_PATH_PREFIX", "TOCSITE_OUTPUT", "TOCSITE_LISTEN",
	"TOCSITE_REMOTE_URL", "TOCSITE_REMOTE_USER", "TOCSITE_REMOTE_TOKEN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name:   "empty config",
			config: Config{},
		},
		{
			name: "valid remote",
			config: Config{
				Remote: Remote{URL: "https://docs.example.com", User: "u", Token: "t"},
			},
		},
		{
			name:    "invalid remote scheme",
			config:  Config{Remote: Remote{URL: "ftp://docs.example.com"}},
			wantErr: true,
			errMsg:  "remote.url must use http or https",
		},
		{
			name:    "credentials without remote",
			config:  Config{Remote: Remote{Token: "t"}},
			wantErr: true,
			errMsg:  "require remote.url",
		},
		{
			name:    "issues without projects",
			config:  Config{Issues: filter.IssueTracker{URL: "https://issues.example.com"}},
			wantErr: true,
			errMsg:  "issues.projects is required",
		},
		{
			name:    "bad shortcut prefix",
			config:  Config{Shortcuts: map[string]filter.Shortcut{"a:b": {Pre: "x"}}},
			wantErr: true,
			errMsg:  "invalid shortcut prefix",
		},
		{
			name: "unknown dialect",
			config: Config{Formats: map[string]DialectFormats{
				"pdf": {Default: "standard"},
			}},
			wantErr: true,
			errMsg:  "unknown dialect",
		},
		{
			name: "filter not in dialect",
			config: Config{Formats: map[string]DialectFormats{
				"asciidoc": {Formats: map[string][]string{"custom": {"code", "linebreaks"}}},
			}},
			wantErr: true,
			errMsg:  `formats.asciidoc.custom: unknown filter "linebreaks"`,
		},
		{
			name: "unknown default format",
			config: Config{Formats: map[string]DialectFormats{
				"html": {Default: "fancy"},
			}},
			wantErr: true,
			errMsg:  "formats.html.default",
		},
		{
			name: "custom format as default",
			config: Config{Formats: map[string]DialectFormats{
				"html": {Default: "fancy", Formats: map[string][]string{"fancy": {"code", "emphasis"}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Pipelines(t *testing.T) {
	cfg := Config{Formats: map[string]DialectFormats{
		"html": {Default: "fancy", Formats: map[string][]string{"fancy": {"code", "emphasis"}}},
		"md":   {Formats: map[string][]string{"standard": {"tomarkdown"}}},
	}}

	pipelines, err := cfg.Pipelines()
	require.NoError(t, err)
	require.Len(t, pipelines, 3)

	html := pipelines[filter.HTML]
	assert.Equal(t, "fancy", html.Default())
	assert.Equal(t, "<b>x</b>", html.Render("*x*", "", nil))
	assert.Equal(t, []filter.Name{filter.MarkdownIn, filter.Shortcuts, filter.PageLinks, filter.Issues}, html.Filters("markdown"))

	assert.Equal(t, []filter.Name{filter.ToMarkdown}, pipelines[filter.Markdown].Filters("standard"))
	assert.Equal(t, filter.Standard, pipelines[filter.AsciiDoc].Default())
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, "toc.json", cfg.TOCPath())
	assert.Equal(t, "template.html", cfg.TemplatePath())
	assert.Equal(t, "printTemplate.html", cfg.PrintTemplatePath())
	assert.Equal(t, "blankPageTpl.html", cfg.BlankPageTemplatePath())
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr())
	assert.Equal(t, ".", cfg.Dir())

	cfg = Config{TOC: "nav/toc.json", SiteDir: "/srv/site"}
	assert.Equal(t, "nav/toc.json", cfg.TOCPath())
	assert.Equal(t, "/srv/site", cfg.Dir())
}

func TestConfig_Settings(t *testing.T) {
	cfg := Config{
		Shortcuts:        map[string]filter.Shortcut{"svn": {Pre: "http://svn/"}},
		Issues:           filter.IssueTracker{URL: "http://jira", Projects: []string{"IVY"}},
		StripBrokenLinks: true,
	}
	s := cfg.Settings()
	assert.Equal(t, "http://svn/", s.Shortcuts["svn"].Pre)
	assert.Equal(t, []string{"IVY"}, s.Issues.Projects)
	assert.True(t, s.StripBrokenLinks)
}

func TestConfig_OpenStore(t *testing.T) {
	cfg := Config{SiteDir: t.TempDir()}
	_, ok := cfg.OpenStore().(*store.FS)
	assert.True(t, ok)

	cfg.Remote.URL = "https://docs.example.com"
	_, ok = cfg.OpenStore().(*store.Remote)
	assert.True(t, ok)
}

func TestConfig_Site(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, "nav.json", []byte(`{children: [{id: "index", title: "Home"}]}`)))

	cfg := Config{
		TOC:        "nav.json",
		PathPrefix: "/docs/",
		Formats: map[string]DialectFormats{
			"html": {Default: "plain", Formats: map[string][]string{"plain": {"code"}}},
		},
	}
	site, err := cfg.Site(st, nil)
	require.NoError(t, err)
	assert.Equal(t, "nav.json", site.Paths.TOC)
	assert.Equal(t, "template.html", site.Paths.Template)
	assert.Equal(t, "/docs/", site.PathPrefix)
	assert.Equal(t, "plain", site.Pipelines[filter.HTML].Default())

	tree, err := site.LoadTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Home", tree.Page("index").Title)

	cfg.Formats = map[string]DialectFormats{"html": {Default: "missing"}}
	_, err = cfg.Site(st, nil)
	require.Error(t, err)
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Run("loads all env vars", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TOCSITE_DIR", "/env/site")
		t.Setenv("TOCSITE_PATH_PREFIX", "doc/")
		t.Setenv("TOCSITE_OUTPUT", "json")
		t.Setenv("TOCSITE_LISTEN", ":9000")
		t.Setenv("TOCSITE_REMOTE_URL", "https://env.example.com")
		t.Setenv("TOCSITE_REMOTE_USER", "env-user")
		t.Setenv("TOCSITE_REMOTE_TOKEN", "env-token")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, "/env/site", cfg.SiteDir)
		assert.Equal(t, "doc/", cfg.PathPrefix)
		assert.Equal(t, "json", cfg.OutputFormat)
		assert.Equal(t, ":9000", cfg.Listen)
		assert.Equal(t, "https://env.example.com", cfg.Remote.URL)
		assert.Equal(t, "env-user", cfg.Remote.User)
		assert.Equal(t, "env-token", cfg.Remote.Token)
	})

	t.Run("env vars override existing values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TOCSITE_DIR", "/override")

		cfg := &Config{SiteDir: "/original", PathPrefix: "keep/"}
		cfg.LoadFromEnv()

		// SiteDir should be overridden
		assert.Equal(t, "/override", cfg.SiteDir)
		// PathPrefix should remain (empty env var doesn't override)
		assert.Equal(t, "keep/", cfg.PathPrefix)
	})
}

func TestConfig_LoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TOCSITE_DIR=/dotenv/site\nTOCSITE_REMOTE_TOKEN=\"secret\"\nOTHER=1\n"), 0o600))
	t.Setenv("TOCSITE_DIR", "/from/env")

	cfg := &Config{}
	require.NoError(t, cfg.LoadDotEnv(path))

	// real environment wins over the file
	assert.Equal(t, "/from/env", cfg.SiteDir)
	assert.Equal(t, "secret", cfg.Remote.Token)

	require.NoError(t, cfg.LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestDefaultConfigPath(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		assert.Equal(t, filepath.Join("/xdg", "tocsite", "config.yml"), DefaultConfigPath())
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		path := DefaultConfigPath()

		// Should be under home directory
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(path, home))
		assert.Contains(t, path, "tocsite")
		assert.Equal(t, ".yml", filepath.Ext(path))
	})
}

func TestConfig_Save_and_Load(t *testing.T) {
	// Create a temp directory for the test
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yml")

	original := Config{
		SiteDir:    "/srv/site",
		PathPrefix: "doc/",
		Formats: map[string]DialectFormats{
			"html": {Default: "standard", Formats: map[string][]string{"lite": {"code"}}},
		},
		Shortcuts: map[string]filter.Shortcut{"svn": {Pre: "http://svn/", Post: "?view=co"}},
		Issues:    filter.IssueTracker{URL: "http://jira", Projects: []string{"IVY"}},
		Remote:    Remote{URL: "https://docs.example.com", User: "u", Token: "t"},
		Legacy:    Legacy{Site: "http://ant.apache.org/ivy", StripPrefix: "/ivy", Ext: "html"},
	}

	// Save
	err := original.Save(configPath)
	require.NoError(t, err)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// Load
	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, original, *loaded)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yml")
	require.Error(t, err)
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := LoadWithEnv(filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.SiteDir)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("site_dir: [unclosed"), 0o600))
	_, err = LoadWithEnv(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")

	good := filepath.Join(dir, "good.yml")
	require.NoError(t, os.WriteFile(good, []byte("site_dir: /file\npath_prefix: p/\n"), 0o600))
	t.Setenv("TOCSITE_PATH_PREFIX", "env/")
	cfg, err = LoadWithEnv(good)
	require.NoError(t, err)
	assert.Equal(t, "/file", cfg.SiteDir)
	assert.Equal(t, "env/", cfg.PathPrefix)
}
