package configcmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/pkg/render"
)

// NewCmdCheck creates the config check command.
func NewCmdCheck() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the configured site can be rendered",
		Long: `Check the configuration and the site it points to: the table of
contents must build, the templates must exist, and every page should have a
page file. A configured remote document host is contacted.`,
		Example: `  # Check the site
  tocsite config check`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), cmdutil.FromCommand(cmd), nil)
		},
	}

	return cmd
}

func runCheck(ctx context.Context, g *cmdutil.Options, ws *cmdutil.Workspace) error {
	if g.NoColor {
		color.NoColor = true
	}
	if ws == nil {
		var err error
		if ws, err = g.Workspace(); err != nil {
			return err
		}
	}
	out := g.Out
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	source := ws.Config.Dir()
	if ws.Config.Remote.URL != "" {
		source = ws.Config.Remote.URL
	}
	fmt.Fprintf(out, "Checking site at %s...\n", source)
	_, _ = green.Fprintln(out, "✓ Configuration valid")

	tree, err := ws.Site.LoadTree(ctx)
	if err != nil {
		_, _ = red.Fprintln(out, "✗ Table of contents:", err)
		fmt.Fprintln(out, "\nCheck the site location with: tocsite config show")
		return fmt.Errorf("site check failed: %w", err)
	}
	_, _ = green.Fprintf(out, "✓ Table of contents: %d pages\n", len(tree.Pages()))
	if conflicts := tree.Conflicts(); len(conflicts) > 0 {
		ids := make([]string, len(conflicts))
		for i, n := range conflicts {
			ids[i] = n.ID
		}
		_, _ = yellow.Fprintf(out, "! Duplicate page ids: %s\n", strings.Join(ids, ", "))
	}

	failed := false
	templates := []struct {
		label    string
		path     string
		required bool
	}{
		{"Template", ws.Config.TemplatePath(), true},
		{"Print template", ws.Config.PrintTemplatePath(), true},
		{"Blank page template", ws.Config.BlankPageTemplatePath(), false},
	}
	for _, tpl := range templates {
		_, err := ws.Store.Load(ctx, tpl.path)
		switch {
		case err == nil:
			_, _ = green.Fprintf(out, "✓ %s: %s\n", tpl.label, tpl.path)
		case errors.Is(err, fs.ErrNotExist) && !tpl.required:
			_, _ = yellow.Fprintf(out, "! %s: %s not found (needed by toc add)\n", tpl.label, tpl.path)
		default:
			_, _ = red.Fprintf(out, "✗ %s: %v\n", tpl.label, err)
			failed = true
		}
	}

	var missing []string
	for _, n := range tree.Pages() {
		if n.Abstract || n.HasExplicitURL() {
			continue
		}
		_, err := ws.Store.Load(ctx, render.SourcePath(n))
		if errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, n.ID)
			continue
		}
		if err != nil {
			_, _ = red.Fprintf(out, "✗ Page %s: %v\n", n.ID, err)
			failed = true
		}
	}
	if len(missing) > 0 {
		_, _ = yellow.Fprintf(out, "! Pages without page file: %s\n", strings.Join(missing, ", "))
	} else if !failed {
		_, _ = green.Fprintln(out, "✓ Every page has a page file")
	}

	if failed {
		return errors.New("site check failed")
	}
	return nil
}
