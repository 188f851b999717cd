// Package server is the HTTP preview server for a tocsite site. Pages are
// rendered from the site's sources on every request, so edits show up on
// reload.
package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/open-cli-collective/tocsite/pkg/filter"
	"github.com/open-cli-collective/tocsite/pkg/render"
	"github.com/open-cli-collective/tocsite/pkg/toc"
)

// IndexPage is served for directory requests.
const IndexPage = "index.html"

// Server serves rendered pages and raw site documents.
type Server struct {
	router chi.Router
	site   *render.Site
	log    *slog.Logger
}

// New creates the preview server for site.
func New(site *render.Site, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{site: site, log: log}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/api/toc", s.handleTOC)
	r.Get("/*", s.handleDocument)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleTOC(w http.ResponseWriter, r *http.Request) {
	tree, err := s.site.LoadTree(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(toc.Marshal(tree))
}

// dialects maps a requested extension to the dialect a page is rendered in.
var dialects = map[string]filter.Dialect{
	".html": filter.HTML,
	".adoc": filter.AsciiDoc,
	".md":   filter.Markdown,
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	p := strings.TrimPrefix(r.URL.Path, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		p += IndexPage
	}

	ext := path.Ext(p)
	if d, ok := dialects[ext]; ok {
		if s.servePage(w, r, strings.TrimSuffix(p, ext), d) {
			return
		}
	}
	s.serveRaw(w, r, p)
}

// servePage renders the page id if the TOC knows it. It reports whether a
// response was written.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request, id string, d filter.Dialect) bool {
	ctx := r.Context()
	tree, err := s.site.LoadTree(ctx)
	if err != nil {
		s.internalError(w, r, err)
		return true
	}
	n := tree.Page(id)
	if n == nil || n.Abstract || n.HasExplicitURL() {
		return false
	}

	var out string
	if r.URL.Query().Get("action") == render.PrintAction {
		out, err = s.site.RenderPrintable(ctx, tree, n, d)
	} else {
		out, err = s.site.RenderPage(ctx, tree, n, d)
	}
	switch {
	case errors.Is(err, render.ErrNoSource):
		// a page file without a source block is served as is
		return false
	case errors.Is(err, render.ErrNoPage):
		http.NotFound(w, r)
		return true
	case err != nil:
		s.internalError(w, r, err)
		return true
	}

	switch d {
	case filter.HTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case filter.Markdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Write([]byte(out))
	return true
}

func (s *Server) serveRaw(w http.ResponseWriter, r *http.Request, p string) {
	data, err := s.site.Loader.Load(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ct := mime.TypeByExtension(path.Ext(p))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ct)
	w.Write(data)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	s.internalError(w, r, err)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("request failed", "path", r.URL.Path, "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
