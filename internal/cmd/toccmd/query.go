package toccmd

import (
	"context"
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/internal/view"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

// NewCmdQuery creates the toc query command.
func NewCmdQuery() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <jsonpath>",
		Short: "Query the page tree with JSONPath",
		Long: `Evaluate a JSONPath expression against the page tree.

Every page is an object with the keys id, title, url, depth, abstract and
children. Imported documents are included.`,
		Example: `  # Titles of all top-level pages
  tocsite toc query '$.children[*].title'

  # Every page id
  tocsite toc query '$..id'

  # The url of one page
  tocsite toc query "\$..children[?(@.id == 'guide/install')].url"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), args[0], cmdutil.FromCommand(cmd), nil)
		},
	}

	return cmd
}

func runQuery(ctx context.Context, expr string, g *cmdutil.Options, ws *cmdutil.Workspace) error {
	x, err := jp.ParseString(expr)
	if err != nil {
		return fmt.Errorf("invalid JSONPath %q: %w", expr, err)
	}

	ws, err = workspace(g, ws)
	if err != nil {
		return err
	}
	tree, err := ws.Site.LoadTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to load table of contents: %w", err)
	}

	results := x.Get(expand(tree.Root))
	renderer := g.Renderer()
	if renderer.Format() == view.FormatJSON {
		if results == nil {
			results = []any{}
		}
		renderer.RenderText(oj.JSON(results, &ojg.Options{Indent: 2, Sort: true}))
		return nil
	}
	for _, r := range results {
		if s, ok := r.(string); ok {
			renderer.RenderText(s)
			continue
		}
		renderer.RenderText(oj.JSON(r, &ojg.Options{Sort: true}))
	}
	return nil
}

// expand returns the generic form of the subtree at n with derived data.
func expand(n *toc.Node) map[string]any {
	children := make([]any, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, expand(c))
	}
	rec := map[string]any{"children": children}
	if n.IsRoot() {
		return rec
	}
	rec["id"] = n.ID
	rec["title"] = n.Title
	rec["url"] = n.Href("")
	rec["depth"] = int64(n.Meta.Depth)
	rec["abstract"] = n.Abstract
	return rec
}
