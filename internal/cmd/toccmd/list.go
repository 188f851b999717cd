package toccmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/internal/view"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

type listOptions struct {
	flat bool
}

// NewCmdList creates the toc list command.
func NewCmdList() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the page tree",
		Long:    `Show the pages of the table of contents, imported documents included.`,
		Example: `  # Show the tree
  tocsite toc list

  # One row per page
  tocsite toc list --flat

  # Output as JSON
  tocsite toc list -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context(), opts, cmdutil.FromCommand(cmd), nil)
		},
	}

	cmd.Flags().BoolVar(&opts.flat, "flat", false, "List pages as a table instead of a tree")

	return cmd
}

func runList(ctx context.Context, opts *listOptions, g *cmdutil.Options, ws *cmdutil.Workspace) error {
	ws, err := workspace(g, ws)
	if err != nil {
		return err
	}
	tree, err := ws.Site.LoadTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to load table of contents: %w", err)
	}

	renderer := g.Renderer()
	if len(tree.Root.Children) == 0 {
		renderer.RenderText("No pages found.")
		return nil
	}

	if opts.flat {
		headers := []string{"ID", "TITLE", "DEPTH", "URL"}
		var rows [][]string
		for _, n := range tree.Pages() {
			rows = append(rows, []string{n.ID, view.Truncate(n.Title, 50), strconv.Itoa(n.Meta.Depth), n.Href("")})
		}
		renderer.RenderTable(headers, rows)
		return nil
	}

	return renderer.RenderTree(treeNode(tree.Root, ws.Config.TOCPath()))
}

func treeNode(n *toc.Node, label string) view.TreeNode {
	tn := view.TreeNode{Label: label}
	if !n.IsRoot() {
		tn.Label = n.Title
		tn.Detail = detail(n)
	}
	for _, c := range n.Children {
		tn.Children = append(tn.Children, treeNode(c, ""))
	}
	return tn
}

func detail(n *toc.Node) string {
	d := n.ID
	switch {
	case n.Meta.Import != nil:
		d += ", imported from " + n.ImportRoot
	case n.Abstract:
		d += ", abstract"
	case n.HasExplicitURL():
		d += ", " + n.URL
	}
	return d
}
