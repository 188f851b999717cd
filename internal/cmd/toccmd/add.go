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

type addOptions struct {
	parent string
	id     string
	body   string
	noPage bool
}

// NewCmdAdd creates the toc add command.
func NewCmdAdd() *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a page",
		Long: `Add a page to the table of contents and create its page file from the
blank page template.

The page id is derived from the title unless --id is given.`,
		Example: `  # Add a top-level page
  tocsite toc add "Release Notes"

  # Add a child page with an explicit id
  tocsite toc add "Installing" --parent guide --id guide/install`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.Context(), args[0], opts, cmdutil.FromCommand(cmd), nil)
		},
	}

	cmd.Flags().StringVarP(&opts.parent, "parent", "p", "", "Parent page id (default: top level)")
	cmd.Flags().StringVar(&opts.id, "id", "", "Page id (default: derived from the title)")
	cmd.Flags().StringVar(&opts.body, "body", "", "Initial page source")
	cmd.Flags().BoolVar(&opts.noPage, "no-page", false, "Only edit the table of contents")

	return cmd
}

func runAdd(ctx context.Context, title string, opts *addOptions, g *cmdutil.Options, ws *cmdutil.Workspace) error {
	ws, err := workspace(g, ws)
	if err != nil {
		return err
	}
	tree, err := ws.Site.LoadTree(ctx)
	if err != nil {
		return fmt.Errorf("failed to load table of contents: %w", err)
	}

	parent := tree.Root
	if opts.parent != "" {
		if parent, err = lookup(tree, opts.parent); err != nil {
			return err
		}
	}
	id := opts.id
	if id == "" {
		id = toc.IDFromTitle(title)
	}
	n, err := tree.AddChild(parent, id, title)
	if err != nil {
		return fmt.Errorf("failed to add page: %w", err)
	}
	if err := save(ctx, ws, tree); err != nil {
		return err
	}

	renderer := g.Renderer()
	renderer.Success(fmt.Sprintf("Added page %s", n.ID))
	if opts.noPage {
		return nil
	}

	p := render.SourcePath(n)
	if _, err := ws.Store.Load(ctx, p); err == nil {
		renderer.Warning(fmt.Sprintf("Kept existing page file %s", p))
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", p, err)
	}

	page, err := ws.Site.BlankPage(ctx, n, opts.body)
	if err != nil {
		return fmt.Errorf("failed to create page file: %w", err)
	}
	if err := ws.Store.Save(ctx, p, []byte(page)); err != nil {
		return fmt.Errorf("failed to save %s: %w", p, err)
	}
	renderer.Success(fmt.Sprintf("Created %s", p))
	return nil
}
