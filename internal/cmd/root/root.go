// Package root provides the root command for the tocsite CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/completion"
	"github.com/open-cli-collective/tocsite/internal/cmd/configcmd"
	"github.com/open-cli-collective/tocsite/internal/cmd/convert"
	initcmd "github.com/open-cli-collective/tocsite/internal/cmd/init"
	"github.com/open-cli-collective/tocsite/internal/cmd/rendercmd"
	"github.com/open-cli-collective/tocsite/internal/cmd/serve"
	"github.com/open-cli-collective/tocsite/internal/cmd/toccmd"
	"github.com/open-cli-collective/tocsite/internal/version"
)

// NewCmdRoot creates the root command for tocsite.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tocsite",
		Short: "Build documentation sites from a table of contents",
		Long: `tocsite renders documentation sites described by a single table of
contents document.

Pages are written in a light wiki markup kept inside each page file. tocsite
turns them into HTML pages with navigation, printable books, AsciiDoc and
Markdown, and can serve the site while you edit it.

Get started by running: tocsite init`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default: ~/.config/tocsite/config.yml)")
	cmd.PersistentFlags().StringP("site", "s", "", "site directory or remote URL (overrides the config file)")
	cmd.PersistentFlags().StringP("output", "o", "table", "output format: table, json, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log debug diagnostics to stderr")
	cmd.PersistentFlags().String("log-format", "text", "diagnostics format: text, json")

	cmd.SetVersionTemplate("tocsite version {{.Version}} (commit: " + version.Commit + ", built: " + version.Date + ")\n")

	cmd.AddCommand(initcmd.NewCmdInit())
	cmd.AddCommand(configcmd.NewCmdConfig())
	cmd.AddCommand(toccmd.NewCmdTOC())
	cmd.AddCommand(rendercmd.NewCmdRender())
	cmd.AddCommand(convert.NewCmdConvert())
	cmd.AddCommand(serve.NewCmdServe())
	cmd.AddCommand(completion.NewCmdCompletion())

	return cmd
}
