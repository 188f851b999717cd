package toccmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/pkg/render"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

type removeOptions struct {
	deletePages bool
}

// NewCmdRemove creates the toc remove command.
func NewCmdRemove() *cobra.Command {
	opts := &removeOptions{}

	cmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a page and its children",
		Long: `Remove a page and all pages below it from the table of contents.

The page readers should be sent to instead is printed: the previous
sibling, else the next sibling, else the parent.`,
		Example: `  # Remove a page
  tocsite toc remove guide/install

  # Also delete the page files
  tocsite toc remove guide --delete-pages`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd.Context(), args[0], opts, cmdutil.FromCommand(cmd), nil)
		},
		ValidArgsFunction: cmdutil.CompletePageIDs,
	}

	cmd.Flags().BoolVar(&opts.deletePages, "delete-pages", false, "Delete the page files of the removed pages")

	return cmd
}

func runRemove(ctx context.Context, id string, opts *removeOptions, g *cmdutil.Options, ws *cmdutil.Workspace) error {
	ws, err := workspace(g, ws)
	if err != nil {
		return err
	}
	tree, err := ws.Site.LoadTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to load table of contents: %w", err)
	}
	n, err := lookup(tree, id)
	if err != nil {
		return err
	}

	var removed []*toc.Node
	toc.Walk(n, func(c *toc.Node) bool {
		removed = append(removed, c)
		return true
	})
	redirect, err := tree.Remove(n)
	if err != nil {
		return fmt.Errorf("failed to remove page: %w", err)
	}
	if err := save(ctx, ws, tree); err != nil {
		return err
	}

	renderer := g.Renderer()
	renderer.Success(fmt.Sprintf("Removed page %s", id))
	renderer.RenderKeyValue("Redirect", redirect.ID)

	if !opts.deletePages {
		return nil
	}
	for _, c := range removed {
		if c.Abstract || c.HasExplicitURL() || c.Meta.Imported || c.Meta.Import != nil {
			continue
		}
		p := render.SourcePath(c)
		err := ws.Store.Remove(ctx, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", p, err)
		}
		renderer.Success(fmt.Sprintf("Deleted %s", p))
	}
	return nil
}
