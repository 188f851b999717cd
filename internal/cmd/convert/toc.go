package convert

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/internal/store"
	"github.com/open-cli-collective/tocsite/pkg/dxml"
	"github.com/open-cli-collective/tocsite/pkg/render"
)

type tocOptions struct {
	out         string
	template    string
	site        string
	ext         string
	stripPrefix string
}

// NewCmdTOC creates the convert toc command.
func NewCmdTOC() *cobra.Command {
	opts := &tocOptions{}

	cmd := &cobra.Command{
		Use:   "toc <book.xml>",
		Short: "Convert a DXML book into a table of contents and page files",
		Long: `Write a toc.json describing the book's hierarchy and one page file per
node holding the node content as page source.

Page files are created from the blank page template of the site unless
--template is given. --strip-prefix is removed from node paths to form
page ids.`,
		Example: `  # Convert into the configured site
  tocsite convert toc book.xml --strip-prefix ivy/

  # Convert into another directory
  tocsite convert toc book.xml --out site --template blank.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := cmdutil.FromCommand(cmd)
			ws, err := g.Workspace()
			if err != nil {
				return err
			}
			var w render.Writer = ws.Store
			if opts.out != "" {
				w = store.OpenDir(opts.out)
			}
			return runTOC(cmd.Context(), args[0], opts, g, ws, w)
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "", "Output directory (default: the site)")
	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "Blank page template file (default: the site's)")
	cmd.Flags().StringVar(&opts.site, "site-url", "", "Base URL for links outside the book (default: legacy.site)")
	cmd.Flags().StringVar(&opts.ext, "ext", "", "Extension of page files (default: legacy.ext or html)")
	cmd.Flags().StringVar(&opts.stripPrefix, "strip-prefix", "", "Prefix removed from node paths (default: legacy.strip_prefix)")

	return cmd
}

func runTOC(ctx context.Context, bookPath string, opts *tocOptions, g *cmdutil.Options, ws *cmdutil.Workspace, w render.Writer) error {
	var tpl []byte
	var err error
	if opts.template != "" {
		tpl, err = os.ReadFile(opts.template)
	} else {
		tpl, err = ws.Store.Load(ctx, ws.Config.BlankPageTemplatePath())
	}
	if err != nil {
		return fmt.Errorf("failed to read blank page template: %w", err)
	}
	book, err := readBook(bookPath)
	if err != nil {
		return err
	}

	legacy := ws.Config.Legacy
	c := &dxml.TOCConverter{
		Site:        orDefault(opts.site, legacy.Site),
		Ext:         orDefault(opts.ext, legacy.Ext),
		StripPrefix: orDefault(opts.stripPrefix, legacy.StripPrefix),
		Template:    string(tpl),
		Logger:      ws.Log,
	}
	written, err := c.Convert(ctx, book, w)
	if err != nil {
		return fmt.Errorf("failed to convert book: %w", err)
	}
	return report(g, written, "files", orDefault(opts.out, ws.Config.Dir()))
}
