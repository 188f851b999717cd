// Package serve provides the serve command: a live preview of the site.
package serve

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-cli-collective/tocsite/internal/cmd/cmdutil"
	"github.com/open-cli-collective/tocsite/internal/server"
)

// ShutdownTimeout bounds how long in-flight requests may take after a stop
// signal.
const ShutdownTimeout = 10 * time.Second

type serveOptions struct {
	listen string
}

// NewCmdServe creates the serve command.
func NewCmdServe() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview the site over HTTP",
		Long: `Serve the site, rendering every page from its source on each request.

Pages are available as <id>.html, with ?action=print for the printable
version, and as <id>.adoc or <id>.md converted to those dialects. Other
documents of the site, such as style sheets and images, are served as is.`,
		Example: `  # Serve on the configured address
  tocsite serve

  # Serve on all interfaces
  tocsite serve --listen :8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, cmdutil.FromCommand(cmd), nil)
		},
	}

	cmd.Flags().StringVarP(&opts.listen, "listen", "l", "", "Listen address (default: listen from config, or 127.0.0.1:8080)")

	return cmd
}

func runServe(ctx context.Context, opts *serveOptions, g *cmdutil.Options, ws *cmdutil.Workspace) error {
	if ws == nil {
		var err error
		if ws, err = g.Workspace(); err != nil {
			return err
		}
	}
	addr := opts.listen
	if addr == "" {
		addr = ws.Config.ListenAddr()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:           server.New(ws.Site, ws.Log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpServer.Serve(ln)
	}()
	ws.Log.Info("serving site", "addr", ln.Addr().String(), "site", ws.Config.Dir())
	g.Renderer().RenderText(fmt.Sprintf("Serving on http://%s/ (press Ctrl+C to stop)", ln.Addr()))

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	ws.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
