package rendercmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/internal/store"
	"github.com/open-cli-collective/tocsite/internal/view"
	"github.com/open-cli-collective/tocsite/pkg/filter"
	"github.com/open-cli-collective/tocsite/pkg/render"
)

type siteOptions struct {
	out string
}

// NewCmdSite creates the render site command.
func NewCmdSite() *cobra.Command {
	opts := &siteOptions{}

	cmd := &cobra.Command{
		Use:   "site",
		Short: "Render every page of the site to HTML",
		Long: `Render every page of the table of contents into the site template and
write the results below the output directory. Pages without a page file
are skipped.`,
		Example: `  # Render into ./public
  tocsite render site --out public`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := cmdutil.FromCommand(cmd)
			return runSite(cmd.Context(), opts, g, nil, store.OpenDir(opts.out))
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "public", "Output directory")

	return cmd
}

func runSite(ctx context.Context, opts *siteOptions, g *cmdutil.Options, ws *cmdutil.Workspace, w render.Writer) error {
	ws, tree, _, err := page(ctx, g, ws, "")
	if err != nil {
		return err
	}
	written, err := ws.Site.RenderAll(ctx, tree, filter.HTML, w)
	if err != nil {
		return fmt.Errorf("failed to render site: %w", err)
	}
	return report(g, ws.Log, written, opts.out)
}

func report(g *cmdutil.Options, log *slog.Logger, written []string, out string) error {
	renderer := g.Renderer()
	if renderer.Format() == view.FormatJSON {
		if written == nil {
			written = []string{}
		}
		return renderer.RenderJSON(written)
	}
	for _, p := range written {
		log.Debug("wrote page", "path", p)
	}
	renderer.Success(fmt.Sprintf("Rendered %d pages to %s", len(written), out))
	return nil
}
