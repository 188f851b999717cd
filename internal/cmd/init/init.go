// Package init provides the init command for tocsite.
package init

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/internal/config"
	"github.com/open-cli-collective/tocsite/internal/store"
	"github.com/open-cli-collective/tocsite/internal/view"
	"github.com/open-cli-collective/tocsite/pkg/render"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

type initOptions struct {
	siteDir    string
	remoteURL  string
	noPrompt   bool
	noScaffold bool
	force      bool
}

// NewCmdInit creates the init command.
func NewCmdInit() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize tocsite configuration",
		Long: `Initialize tocsite with the location of your documentation site.

This command will guide you through setting up the site directory, the
table of contents and the preview server address. The configuration will
be saved to ~/.config/tocsite/config.yml.

A local site without a table of contents is given a starter TOC, the
page templates and a home page.`,
		Example: `  # Interactive setup
  tocsite init

  # Non-interactive setup for ./docs
  tocsite init --dir docs --no-prompt`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), opts, cmdutil.FromCommand(cmd), promptConfig)
		},
	}

	cmd.Flags().StringVar(&opts.siteDir, "dir", "", "Site directory (default: current directory)")
	cmd.Flags().StringVar(&opts.remoteURL, "remote-url", "", "Document host serving the site")
	cmd.Flags().BoolVar(&opts.noPrompt, "no-prompt", false, "Use flag values without asking")
	cmd.Flags().BoolVar(&opts.noScaffold, "no-scaffold", false, "Do not create starter site files")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing configuration")

	return cmd
}

// prompter asks for configuration values, editing cfg in place.
type prompter func(cfg *config.Config) error

func runInit(ctx context.Context, opts *initOptions, g *cmdutil.Options, prompt prompter) error {
	configPath := g.Path()
	renderer := g.Renderer()

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !opts.force {
		if opts.noPrompt {
			return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", configPath)
		}
		var overwrite bool
		err := huh.NewConfirm().
			Title("Configuration already exists").
			Description(fmt.Sprintf("Overwrite %s?", configPath)).
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			renderer.RenderText("Initialization cancelled.")
			return nil
		}
	}

	cfg := &config.Config{SiteDir: opts.siteDir}
	cfg.Remote.URL = opts.remoteURL

	if !opts.noPrompt && prompt != nil {
		if err := prompt(cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Save(configPath); err != nil {
		return err
	}
	renderer.Success(fmt.Sprintf("Configuration saved to %s", configPath))

	if !opts.noScaffold && cfg.Remote.URL == "" {
		ws, err := cmdutil.NewWorkspace(cfg, store.OpenDir(cfg.Dir()), g.Logger())
		if err != nil {
			return err
		}
		if err := scaffold(ctx, ws, renderer); err != nil {
			return fmt.Errorf("failed to create site files: %w", err)
		}
	}

	renderer.RenderText("\nYou're all set! Try running:")
	renderer.RenderText("  tocsite toc list")
	renderer.RenderText("  tocsite serve")

	return nil
}

func promptConfig(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Site directory").
				Description("Directory holding the table of contents and page files").
				Placeholder(".").
				Value(&cfg.SiteDir),

			huh.NewInput().
				Title("Table of contents").
				Description("Path of the TOC document inside the site").
				Placeholder(config.DefaultTOC).
				Value(&cfg.TOC),

			huh.NewInput().
				Title("Path prefix (optional)").
				Description("Prepended to derived page URLs").
				Value(&cfg.PathPrefix),

			huh.NewInput().
				Title("Preview address").
				Description("Address tocsite serve listens on").
				Placeholder(config.DefaultListen).
				Value(&cfg.Listen),

			huh.NewInput().
				Title("Remote document host (optional)").
				Description("Leave empty to work on the local directory").
				Placeholder("https://docs.example.com").
				Value(&cfg.Remote.URL).
				Validate(func(s string) error {
					if s != "" && !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
						return fmt.Errorf("URL must start with http:// or https://")
					}
					return nil
				}),
		),
	)

	return form.Run()
}

const (
	starterTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>${title}</title>
<link rel="stylesheet" href="style.css"/>
</head>
<body>
<div id="nav">${menu}</div>
<div id="content">
${breadCrumb}
<h1>${title}</h1>
${body}
${childrenList}
<p class="print">${printerFriendlyLink}</p>
</div>
</body>
</html>
`
	starterPrintTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>${title}</title>
<link rel="stylesheet" href="style.css"/>
</head>
<body>
${body}
</body>
</html>
`
	starterBlankPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>${title}</title>
<link rel="stylesheet" href="${relroot}style.css"/>
</head>
<body>
<textarea id="tocsite-source">
${body}</textarea>
</body>
</html>
`
	starterStyle = `#nav { float: left; width: 14em; }
#content { margin-left: 15em; }
.treeview .current { font-weight: bold; }
ul.closed { display: none; }
`
)

// scaffold writes the starter files of a site that has no TOC yet.
func scaffold(ctx context.Context, ws *cmdutil.Workspace, renderer *view.Renderer) error {
	tocPath := ws.Config.TOCPath()
	if _, err := ws.Store.Load(ctx, tocPath); err == nil {
		ws.Log.Debug("site already has a table of contents", "path", tocPath)
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	tree, err := toc.BuildDocument(ctx, map[string]any{
		"children": []any{map[string]any{"id": "index", "title": "Home"}},
	}, toc.Options{})
	if err != nil {
		return err
	}

	files := []struct {
		path string
		data string
	}{
		{tocPath, string(toc.Marshal(tree))},
		{ws.Config.TemplatePath(), starterTemplate},
		{ws.Config.PrintTemplatePath(), starterPrintTemplate},
		{ws.Config.BlankPageTemplatePath(), starterBlankPage},
		{"style.css", starterStyle},
	}
	for _, f := range files {
		if _, err := ws.Store.Load(ctx, f.path); err == nil {
			continue
		}
		if err := ws.Store.Save(ctx, f.path, []byte(f.data)); err != nil {
			return err
		}
		renderer.Success("Created " + f.path)
	}

	home := tree.Page("index")
	p := render.SourcePath(home)
	if _, err := ws.Store.Load(ctx, p); err == nil {
		return nil
	}
	page, err := ws.Site.BlankPage(ctx, home, "Welcome to the documentation.\n")
	if err != nil {
		return err
	}
	if err := ws.Store.Save(ctx, p, []byte(page)); err != nil {
		return err
	}
	renderer.Success("Created " + p)
	return nil
}
