package convert

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/internal/store"
	"github.com/open-cli-collective/tocsite/pkg/filter"
	"github.com/open-cli-collective/tocsite/pkg/render"
)

type exportOptions struct {
	out string
}

// NewCmdExport creates a convert command exporting the site to dialect d.
func NewCmdExport(use string, d filter.Dialect, name string) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   use,
		Short: "Export every page of the site to " + name,
		Long: `Convert every page of the table of contents to ` + name + ` and write one
file per page below the output directory. Pages without a page file are
skipped.`,
		Example: "  tocsite convert " + use + " --out " + string(d),
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := cmdutil.FromCommand(cmd)
			out := orDefault(opts.out, string(d))
			return runExport(cmd.Context(), d, out, g, nil, store.OpenDir(out))
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "", "Output directory (default: "+string(d)+")")

	return cmd
}

func runExport(ctx context.Context, d filter.Dialect, out string, g *cmdutil.Options, ws *cmdutil.Workspace, w render.Writer) error {
	if ws == nil {
		var err error
		if ws, err = g.Workspace(); err != nil {
			return err
		}
	}
	tree, err := ws.Site.LoadTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to load table of contents: %w", err)
	}
	written, err := ws.Site.RenderAll(ctx, tree, d, w)
	if err != nil {
		return fmt.Errorf("failed to export site: %w", err)
	}
	return report(g, written, "pages", out)
}
