package configcmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/internal/config"
)

// NewCmdShow creates the config show command.
func NewCmdShow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long:  `Display the current tocsite configuration with value source indicators.`,
		Example: `  # Show current config
  tocsite config show`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmdutil.FromCommand(cmd))
		},
	}

	return cmd
}

func runShow(g *cmdutil.Options) error {
	if g.NoColor {
		color.NoColor = true
	}
	out := g.Out
	configPath := g.Path()

	// Load file config (may not exist)
	fileCfg, fileErr := config.Load(configPath)
	if fileErr != nil {
		fileCfg = &config.Config{}
	}

	// Load full config with env overrides
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	printField := func(label, value, fileValue, def, envVar string) {
		_, _ = bold.Fprintf(out, "%-16s", label+":")
		if value == "" {
			if def != "" {
				fmt.Fprint(out, def)
				_, _ = dim.Fprintln(out, "  (source: default)")
				return
			}
			_, _ = dim.Fprintln(out, "-")
			return
		}

		// Mask tokens
		display := value
		if strings.Contains(strings.ToLower(label), "token") && len(value) > 8 {
			display = value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
		}
		fmt.Fprint(out, display)

		source := "config"
		if envVar != "" && os.Getenv(envVar) != "" && os.Getenv(envVar) == value {
			source = envVar
		} else if fileValue != value {
			source = ".env"
		}
		_, _ = dim.Fprintf(out, "  (source: %s)\n", source)
	}

	printField("Site", cfg.SiteDir, fileCfg.SiteDir, ".", "TOCSITE_DIR")
	printField("TOC", cfg.TOC, fileCfg.TOC, config.DefaultTOC, "")
	printField("Template", cfg.Template, fileCfg.Template, config.DefaultTemplate, "")
	printField("Print template", cfg.PrintTemplate, fileCfg.PrintTemplate, config.DefaultPrintTemplate, "")
	printField("Blank page", cfg.BlankPageTemplate, fileCfg.BlankPageTemplate, config.DefaultBlankPageTemplate, "")
	printField("Path prefix", cfg.PathPrefix, fileCfg.PathPrefix, "", "TOCSITE_PATH_PREFIX")
	printField("Output", cfg.OutputFormat, fileCfg.OutputFormat, "table", "TOCSITE_OUTPUT")
	printField("Listen", cfg.Listen, fileCfg.Listen, config.DefaultListen, "TOCSITE_LISTEN")
	printField("Remote URL", cfg.Remote.URL, fileCfg.Remote.URL, "", "TOCSITE_REMOTE_URL")
	printField("Remote user", cfg.Remote.User, fileCfg.Remote.User, "", "TOCSITE_REMOTE_USER")
	printField("Remote token", cfg.Remote.Token, fileCfg.Remote.Token, "", "TOCSITE_REMOTE_TOKEN")

	if len(cfg.Formats) > 0 {
		_, _ = bold.Fprintf(out, "%-16s", "Formats:")
		fmt.Fprintln(out, strings.Join(formatNames(cfg), ", "))
	}
	if len(cfg.Shortcuts) > 0 {
		_, _ = bold.Fprintf(out, "%-16s", "Shortcuts:")
		fmt.Fprintln(out, len(cfg.Shortcuts))
	}

	fmt.Fprintln(out)
	_, _ = dim.Fprintf(out, "Config file: %s\n", configPath)
	if fileErr != nil {
		_, _ = dim.Fprintln(out, "(file not found)")
	}

	return nil
}

func formatNames(cfg *config.Config) []string {
	var names []string
	for dialect, df := range cfg.Formats {
		for name := range df.Formats {
			names = append(names, dialect+"/"+name)
		}
	}
	sort.Strings(names)
	return names
}
