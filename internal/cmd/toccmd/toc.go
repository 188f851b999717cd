// Package toccmd provides the toc commands: listing, editing and querying the
// site's table of contents.
package toccmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

// NewCmdTOC creates the toc command.
func NewCmdTOC() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toc",
		Short: "Inspect and edit the table of contents",
		Long: `Commands for listing, editing and querying the site's table of contents.

Edits are written back to the TOC document. Pages spliced in from an
imported document are read-only.`,
	}

	cmd.AddCommand(NewCmdList())
	cmd.AddCommand(NewCmdAdd())
	cmd.AddCommand(NewCmdRemove())
	cmd.AddCommand(NewCmdMove())
	cmd.AddCommand(NewCmdRename())
	cmd.AddCommand(NewCmdQuery())

	return cmd
}

func workspace(g *cmdutil.Options, ws *cmdutil.Workspace) (*cmdutil.Workspace, error) {
	if ws != nil {
		return ws, nil
	}
	return g.Workspace()
}

func lookup(tree *toc.Tree, id string) (*toc.Node, error) {
	n := tree.Page(id)
	if n == nil {
		return nil, fmt.Errorf("page %q not found in the table of contents", id)
	}
	return n, nil
}

// save writes the edited tree back to the site's TOC document.
func save(ctx context.Context, ws *cmdutil.Workspace, tree *toc.Tree) error {
	p := ws.Config.TOCPath()
	if err := ws.Store.Save(ctx, p, toc.Marshal(tree)); err != nil {
		return fmt.Errorf("failed to save %s: %w", p, err)
	}
	ws.Log.Debug("saved table of contents", "path", p)
	return nil
}
