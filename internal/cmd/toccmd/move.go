package toccmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
)

type moveOptions struct {
	up   int
	down int
}

// NewCmdMove creates the toc move command.
func NewCmdMove() *cobra.Command {
	opts := &moveOptions{}

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Reorder a page among its siblings",
		Long:  `Move a page up or down among its siblings.`,
		Example: `  # Move a page one position up
  tocsite toc move guide/install --up 1

  # Move a page two positions down
  tocsite toc move guide/install --down 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(cmd.Context(), args[0], opts, cmdutil.FromCommand(cmd), nil)
		},
		ValidArgsFunction: cmdutil.CompletePageIDs,
	}

	cmd.Flags().IntVar(&opts.up, "up", 0, "Positions to move towards the first sibling")
	cmd.Flags().IntVar(&opts.down, "down", 0, "Positions to move towards the last sibling")

	return cmd
}

func runMove(ctx context.Context, id string, opts *moveOptions, g *cmdutil.Options, ws *cmdutil.Workspace) error {
	if opts.up < 0 || opts.down < 0 {
		return errors.New("--up and --down take positive values")
	}
	delta := opts.down - opts.up
	if delta == 0 {
		return errors.New("one of --up or --down is required")
	}

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
	if err := tree.Move(n, delta); err != nil {
		return fmt.Errorf("failed to move page: %w", err)
	}
	if err := save(ctx, ws, tree); err != nil {
		return err
	}

	g.Renderer().Success(fmt.Sprintf("Moved page %s to position %d", id, n.Meta.Index+1))
	return nil
}
