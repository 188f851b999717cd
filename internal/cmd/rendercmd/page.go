package rendercmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/pkg/filter"
)

type pageOptions struct {
	format   string
	bodyOnly bool
}

// NewCmdPage creates the render page command.
func NewCmdPage() *cobra.Command {
	opts := &pageOptions{}

	cmd := &cobra.Command{
		Use:   "page <id>",
		Short: "Render one page",
		Long: `Render one page and print it.

HTML pages are merged into the site template. AsciiDoc and Markdown
output is the converted page body.`,
		Example: `  # Render a page into the site template
  tocsite render page guide/install

  # Only the rendered body
  tocsite render page guide/install --body

  # Convert a page to AsciiDoc
  tocsite render page guide/install --format asciidoc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPage(cmd.Context(), args[0], opts, cmdutil.FromCommand(cmd), nil)
		},
		ValidArgsFunction: cmdutil.CompletePageIDs,
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "html", "Output dialect: html, asciidoc, markdown")
	cmd.Flags().BoolVar(&opts.bodyOnly, "body", false, "Print only the rendered page body")

	return cmd
}

func runPage(ctx context.Context, id string, opts *pageOptions, g *cmdutil.Options, ws *cmdutil.Workspace) error {
	d, err := filter.ParseDialect(opts.format)
	if err != nil {
		return err
	}
	ws, tree, n, err := page(ctx, g, ws, id)
	if err != nil {
		return err
	}
	if n.Abstract || n.HasExplicitURL() {
		return fmt.Errorf("page %q has no page file", id)
	}

	var out string
	if opts.bodyOnly {
		out, err = ws.Site.RenderBody(ctx, tree, n, d)
	} else {
		out, err = ws.Site.RenderPage(ctx, tree, n, d)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", id, err)
	}
	fmt.Fprint(g.Out, out)
	return nil
}
