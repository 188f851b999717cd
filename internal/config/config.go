// Package config provides configuration management for tocsite.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/open-cli-collective/tocsite/api"
	"github.com/open-cli-collective/tocsite/internal/store"
	"github.com/open-cli-collective/tocsite/pkg/filter"
	"github.com/open-cli-collective/tocsite/pkg/render"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

// Default document names inside a site.
const (
	DefaultTOC               = "toc.json"
	DefaultTemplate          = "template.html"
	DefaultPrintTemplate     = "printTemplate.html"
	DefaultBlankPageTemplate = "blankPageTpl.html"
	DefaultListen            = "127.0.0.1:8080"
	DefaultDotEnv            = ".env"
)

// Config holds the tocsite configuration.
type Config struct {
	SiteDir           string `yaml:"site_dir,omitempty"`
	TOC               string `yaml:"toc,omitempty"`
	Template          string `yaml:"template,omitempty"`
	PrintTemplate     string `yaml:"print_template,omitempty"`
	BlankPageTemplate string `yaml:"blank_page_template,omitempty"`
	PathPrefix        string `yaml:"path_prefix,omitempty"`
	OutputFormat      string `yaml:"output_format,omitempty"`
	Listen            string `yaml:"listen,omitempty"`

	// Formats holds per-dialect pipeline definitions keyed by dialect name.
	Formats map[string]DialectFormats `yaml:"formats,omitempty"`

	Shortcuts        map[string]filter.Shortcut `yaml:"shortcuts,omitempty"`
	Issues           filter.IssueTracker        `yaml:"issues,omitempty"`
	StripBrokenLinks bool                       `yaml:"strip_broken_links,omitempty"`

	Remote Remote `yaml:"remote,omitempty"`
	Legacy Legacy `yaml:"legacy,omitempty"`
}

// DialectFormats adds or replaces the formats of one dialect.
type DialectFormats struct {
	Default string              `yaml:"default,omitempty"`
	Formats map[string][]string `yaml:"formats,omitempty"`
}

// Remote configures a document host used instead of the local site dir.
type Remote struct {
	URL   string `yaml:"url,omitempty"`
	User  string `yaml:"user,omitempty"`
	Token string `yaml:"token,omitempty"`
}

// Legacy configures the legacy book converters.
type Legacy struct {
	// Site is the base URL for links to paths outside the book.
	Site        string `yaml:"site,omitempty"`
	StripPrefix string `yaml:"strip_prefix,omitempty"`
	Ext         string `yaml:"ext,omitempty"`
}

// Validate checks that all configured values are usable.
func (c *Config) Validate() error {
	if c.Remote.URL != "" {
		if !strings.HasPrefix(c.Remote.URL, "https://") && !strings.HasPrefix(c.Remote.URL, "http://") {
			return errors.New("remote.url must use http or https")
		}
	} else if c.Remote.User != "" || c.Remote.Token != "" {
		return errors.New("remote.user and remote.token require remote.url")
	}

	if c.Issues.URL != "" && len(c.Issues.Projects) == 0 {
		return errors.New("issues.projects is required when issues.url is set")
	}

	for prefix := range c.Shortcuts {
		if prefix == "" || strings.ContainsAny(prefix, ":[]\n") {
			return fmt.Errorf("invalid shortcut prefix %q", prefix)
		}
	}

	if _, err := c.Pipelines(); err != nil {
		return err
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables override existing values only if set and non-empty.
func (c *Config) LoadFromEnv() {
	c.loadFrom(os.Getenv)
}

// LoadDotEnv applies TOCSITE_* values from a dotenv file. Variables already
// set in the environment take precedence. A missing file is not an error.
func (c *Config) LoadDotEnv(path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	c.loadFrom(func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return values[key]
	})
	return nil
}

func (c *Config) loadFrom(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.SiteDir, "TOCSITE_DIR")
	set(&c.PathPrefix, "TOCSITE_PATH_PREFIX")
	set(&c.OutputFormat, "TOCSITE_OUTPUT")
	set(&c.Listen, "TOCSITE_LISTEN")
	set(&c.Remote.URL, "TOCSITE_REMOTE_URL")
	set(&c.Remote.User, "TOCSITE_REMOTE_USER")
	set(&c.Remote.Token, "TOCSITE_REMOTE_TOKEN")
}

// TOCPath returns the site's root TOC document path.
func (c *Config) TOCPath() string {
	return orDefault(c.TOC, DefaultTOC)
}

// TemplatePath returns the site page template path.
func (c *Config) TemplatePath() string {
	return orDefault(c.Template, DefaultTemplate)
}

// PrintTemplatePath returns the printable page template path.
func (c *Config) PrintTemplatePath() string {
	return orDefault(c.PrintTemplate, DefaultPrintTemplate)
}

// BlankPageTemplatePath returns the template used for new page files.
func (c *Config) BlankPageTemplatePath() string {
	return orDefault(c.BlankPageTemplate, DefaultBlankPageTemplate)
}

// ListenAddr returns the preview server address.
func (c *Config) ListenAddr() string {
	return orDefault(c.Listen, DefaultListen)
}

// Dir returns the local site directory.
func (c *Config) Dir() string {
	return orDefault(c.SiteDir, ".")
}

// OpenStore returns the document store holding the site: the remote host
// when one is configured, the local site directory otherwise.
func (c *Config) OpenStore() store.Store {
	if c.Remote.URL != "" {
		return store.NewRemote(api.NewClient(c.Remote.URL, c.Remote.User, c.Remote.Token))
	}
	return store.OpenDir(c.Dir())
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Settings returns the filter settings shared by every page.
func (c *Config) Settings() filter.Settings {
	return filter.Settings{
		Shortcuts:        c.Shortcuts,
		Issues:           c.Issues,
		StripBrokenLinks: c.StripBrokenLinks,
	}
}

// Pipelines returns one pipeline per dialect: the built-in formats plus the
// configured ones.
func (c *Config) Pipelines() (map[filter.Dialect]*filter.Pipeline, error) {
	pipelines := map[filter.Dialect]*filter.Pipeline{}
	for _, d := range []filter.Dialect{filter.HTML, filter.AsciiDoc, filter.Markdown} {
		pipelines[d] = filter.NewPipeline(filter.NewRegistry(d))
	}

	keys := make([]string, 0, len(c.Formats))
	for k := range c.Formats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		d, err := filter.ParseDialect(key)
		if err != nil {
			return nil, fmt.Errorf("formats: %w", err)
		}
		df := c.Formats[key]
		p := pipelines[d]
		reg := filter.NewRegistry(d)
		for name, list := range df.Formats {
			names := make([]filter.Name, len(list))
			for i, n := range list {
				names[i] = filter.Name(n)
				if _, ok := reg.Lookup(names[i]); !ok {
					return nil, fmt.Errorf("formats.%s.%s: unknown filter %q", key, name, n)
				}
			}
			p.Define(name, names)
		}
		if df.Default != "" {
			if err := p.SetDefault(df.Default); err != nil {
				return nil, fmt.Errorf("formats.%s.default: %w", key, err)
			}
		}
	}
	return pipelines, nil
}

// Site returns the renderer for the configured site reading its documents
// through loader.
func (c *Config) Site(loader toc.Loader, log *slog.Logger) (*render.Site, error) {
	pipelines, err := c.Pipelines()
	if err != nil {
		return nil, err
	}
	return &render.Site{
		Loader:    loader,
		Pipelines: pipelines,
		Settings:  c.Settings(),
		Paths: render.Paths{
			TOC:           c.TOCPath(),
			Template:      c.TemplatePath(),
			PrintTemplate: c.PrintTemplatePath(),
			BlankPage:     c.BlankPageTemplatePath(),
		},
		PathPrefix: c.PathPrefix,
		Logger:     log,
	}, nil
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	// Try XDG config directory first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "tocsite", "config.yml")
	}

	// Fall back to ~/.config/tocsite/config.yml
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".tocsite", "config.yml")
	}

	return filepath.Join(home, ".config", "tocsite", "config.yml")
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with restricted permissions (user read/write only)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load reads the configuration from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnv loads configuration from file, then applies the dotenv file in
// the working directory and finally the environment.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		// If file doesn't exist, start with empty config
		cfg = &Config{}
	}

	if err := cfg.LoadDotEnv(DefaultDotEnv); err != nil {
		return nil, err
	}
	cfg.LoadFromEnv()
	return cfg, nil
}
