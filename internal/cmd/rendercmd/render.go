// Package rendercmd provides the render commands.
package rendercmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

// NewCmdRender creates the render command.
func NewCmdRender() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render pages of the site",
		Long:  `Commands for rendering single pages, printable documents and the whole site.`,
	}

	cmd.AddCommand(NewCmdPage())
	cmd.AddCommand(NewCmdPrint())
	cmd.AddCommand(NewCmdSite())

	return cmd
}

// page loads the tree and looks up the page id.
func page(ctx context.Context, g *cmdutil.Options, ws *cmdutil.Workspace, id string) (*cmdutil.Workspace, *toc.Tree, *toc.Node, error) {
	if ws == nil {
		var err error
		if ws, err = g.Workspace(); err != nil {
			return nil, nil, nil, err
		}
	}
	tree, err := ws.Site.LoadTree(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load table of contents: %w", err)
	}
	if id == "" {
		return ws, tree, tree.Root, nil
	}
	n := tree.Page(id)
	if n == nil {
		return nil, nil, nil, fmt.Errorf("page %q not found in the table of contents", id)
	}
	return ws, tree, n, nil
}
