package convert

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/internal/store"
	"github.com/open-cli-collective/tocsite/pkg/dxml"
	"github.com/open-cli-collective/tocsite/pkg/render"
)

type htmlOptions struct {
	out      string
	template string
	site     string
	ext      string
}

// NewCmdHTML creates the convert html command.
func NewCmdHTML() *cobra.Command {
	opts := &htmlOptions{}

	cmd := &cobra.Command{
		Use:   "html <book.xml>",
		Short: "Convert a DXML book into finished HTML pages",
		Long: `Write one HTML page per book node, merged into a page template.

The template may use the tokens #{path}, #{base}, #{title}, #{navigation}
and #{content}. Site-absolute links into the book become relative links;
other site-absolute links are resolved against --site-url.`,
		Example: `  tocsite convert html book.xml --template page.tpl --out html --site-url http://ant.apache.org`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := cmdutil.FromCommand(cmd)
			return runHTML(cmd.Context(), args[0], opts, g, store.OpenDir(opts.out))
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "html", "Output directory")
	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "Page template file (required)")
	cmd.Flags().StringVar(&opts.site, "site-url", "", "Base URL for links outside the book (default: legacy.site)")
	cmd.Flags().StringVar(&opts.ext, "ext", "", "Extension of generated pages (default: legacy.ext or html)")

	return cmd
}

func runHTML(ctx context.Context, bookPath string, opts *htmlOptions, g *cmdutil.Options, w render.Writer) error {
	if opts.template == "" {
		return errors.New("--template is required")
	}
	cfg, err := g.LoadConfig()
	if err != nil {
		return err
	}
	tpl, err := os.ReadFile(opts.template)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	book, err := readBook(bookPath)
	if err != nil {
		return err
	}

	c := &dxml.HTMLConverter{
		Site:     orDefault(opts.site, cfg.Legacy.Site),
		Ext:      orDefault(opts.ext, cfg.Legacy.Ext),
		Template: string(tpl),
		Logger:   g.Logger(),
	}
	written, err := c.Convert(ctx, book, w)
	if err != nil {
		return fmt.Errorf("failed to convert book: %w", err)
	}
	return report(g, written, "pages", opts.out)
}
