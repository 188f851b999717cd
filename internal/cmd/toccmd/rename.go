package toccmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
)

// NewCmdRename creates the toc rename command.
func NewCmdRename() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Change a page title",
		Long:  `Change the title of a page. The page id and file stay the same.`,
		Example: `  tocsite toc rename guide/install "Installation"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(cmd.Context(), args[0], args[1], cmdutil.FromCommand(cmd), nil)
		},
		ValidArgsFunction: cmdutil.CompletePageIDs,
	}

	return cmd
}

func runRename(ctx context.Context, id, title string, g *cmdutil.Options, ws *cmdutil.Workspace) error {
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
	if err := tree.SetTitle(n, title); err != nil {
		return fmt.Errorf("failed to rename page: %w", err)
	}
	if err := save(ctx, ws, tree); err != nil {
		return err
	}

	g.Renderer().Success(fmt.Sprintf("Renamed page %s to %q", id, title))
	return nil
}
