// Package convert provides the convert commands: legacy book conversion and
// export of the site to other markup dialects.
package convert

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/internal/view"
	"github.com/open-cli-collective/tocsite/pkg/dxml"
	"github.com/open-cli-collective/tocsite/pkg/filter"
)

// NewCmdConvert creates the convert command.
func NewCmdConvert() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert books and sites between formats",
		Long: `Commands for converting DXML book exports into sites and for exporting
the site to AsciiDoc or Markdown.`,
	}

	cmd.AddCommand(NewCmdHTML())
	cmd.AddCommand(NewCmdTOC())
	cmd.AddCommand(NewCmdExport("adoc", filter.AsciiDoc, "AsciiDoc"))
	cmd.AddCommand(NewCmdExport("md", filter.Markdown, "Markdown"))

	return cmd
}

func readBook(path string) (*dxml.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open book: %w", err)
	}
	defer func() { _ = f.Close() }()

	book, err := dxml.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return book, nil
}

func report(g *cmdutil.Options, written []string, what, out string) error {
	renderer := g.Renderer()
	if renderer.Format() == view.FormatJSON {
		if written == nil {
			written = []string{}
		}
		return renderer.RenderJSON(written)
	}
	renderer.Success(fmt.Sprintf("Wrote %d %s to %s", len(written), what, out))
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
