package rendercmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/pkg/filter"
)

type printOptions struct {
	format string
}

// NewCmdPrint creates the render print command.
func NewCmdPrint() *cobra.Command {
	opts := &printOptions{}

	cmd := &cobra.Command{
		Use:   "print [id]",
		Short: "Render a printable document",
		Long: `Render a page and every page below it as one printable document,
merged into the print template. Without an id the whole site is printed.

With --format asciidoc or markdown the document is converted to that dialect
and printed without a template.`,
		Example: `  # Print the user guide
  tocsite render print guide > guide.html

  # Print the whole site
  tocsite render print

  # One AsciiDoc book of the user guide
  tocsite render print guide --format asciidoc > guide.adoc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			return runPrint(cmd.Context(), id, opts, cmdutil.FromCommand(cmd), nil)
		},
		ValidArgsFunction: cmdutil.CompletePageIDs,
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "html", "Output dialect: html, asciidoc, markdown")

	return cmd
}

func runPrint(ctx context.Context, id string, opts *printOptions, g *cmdutil.Options, ws *cmdutil.Workspace) error {
	d, err := filter.ParseDialect(opts.format)
	if err != nil {
		return err
	}
	ws, tree, n, err := page(ctx, g, ws, id)
	if err != nil {
		return err
	}
	out, err := ws.Site.RenderPrintable(ctx, tree, n, d)
	if err != nil {
		return fmt.Errorf("failed to render printable document: %w", err)
	}
	fmt.Fprint(g.Out, out)
	return nil
}
