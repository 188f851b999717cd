// Package cmdutil holds the global flag handling and site loading shared by
// the tocsite commands.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/config"
	"github.com/open-cli-collective/tocsite/internal/store"
	"github.com/open-cli-collective/tocsite/internal/view"
	"github.com/open-cli-collective/tocsite/pkg/render"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

// Options are the global flags read by every command.
type Options struct {
	ConfigPath string
	SiteDir    string
	Output     string
	NoColor    bool
	Verbose    bool
	LogFormat  string
	// OutputSet records that --output was given, so the configured output
	// format does not apply.
	OutputSet bool

	Out io.Writer
	Err io.Writer
}

// FromCommand reads the global flags of cmd.
func FromCommand(cmd *cobra.Command) *Options {
	o := &Options{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
	o.ConfigPath, _ = cmd.Flags().GetString("config")
	o.SiteDir, _ = cmd.Flags().GetString("site")
	o.Output, _ = cmd.Flags().GetString("output")
	o.OutputSet = cmd.Flags().Changed("output")
	o.NoColor, _ = cmd.Flags().GetBool("no-color")
	o.Verbose, _ = cmd.Flags().GetBool("verbose")
	o.LogFormat, _ = cmd.Flags().GetString("log-format")
	return o
}

// Renderer returns a terminal renderer writing to o.Out.
func (o *Options) Renderer() *view.Renderer {
	r := view.NewRenderer(view.Format(o.Output), o.NoColor)
	if o.Out != nil {
		r.SetWriter(o.Out)
	}
	return r
}

// Logger returns the diagnostics logger writing to o.Err.
func (o *Options) Logger() *slog.Logger {
	if o.Err == nil {
		return slog.New(slog.DiscardHandler)
	}
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if o.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(o.Err, hopts))
	}
	return slog.New(slog.NewTextHandler(o.Err, hopts))
}

// Path returns the configuration file in use.
func (o *Options) Path() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	return config.DefaultConfigPath()
}

// LoadConfig loads and validates the configuration. Flags win over the
// configured site directory and output format.
func (o *Options) LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(o.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w (run 'tocsite init' to configure)", err)
	}
	if o.SiteDir != "" {
		cfg.SiteDir = o.SiteDir
	}
	if !o.OutputSet && cfg.OutputFormat != "" {
		o.Output = cfg.OutputFormat
	}
	if err := view.ValidateFormat(o.Output); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w (run 'tocsite init' to configure)", err)
	}
	return cfg, nil
}

// Workspace is the site a command operates on.
type Workspace struct {
	Config *config.Config
	Store  store.Store
	Site   *render.Site
	Log    *slog.Logger
}

// NewWorkspace builds the workspace for cfg over st. A nil log discards.
func NewWorkspace(cfg *config.Config, st store.Store, log *slog.Logger) (*Workspace, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	site, err := cfg.Site(st, log)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Workspace{Config: cfg, Store: st, Site: site, Log: log}, nil
}

// Workspace loads the configuration and opens the configured site.
func (o *Options) Workspace() (*Workspace, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewWorkspace(cfg, cfg.OpenStore(), o.Logger())
}

// CompletePageIDs completes the first argument with the page ids of the
// configured site. Completion stays silent when the site cannot be loaded.
func CompletePageIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ws, err := FromCommand(cmd).Workspace()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tree, err := ws.Site.LoadTree(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return PageIDs(tree.Pages(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// PageIDs returns the "id\ttitle" completion entries of pages whose id starts
// with prefix.
func PageIDs(pages []*toc.Node, prefix string) []string {
	var ids []string
	for _, n := range pages {
		if n.ID == "" || !strings.HasPrefix(n.ID, prefix) {
			continue
		}
		ids = append(ids, n.ID+"\t"+n.Title)
	}
	return ids
}
