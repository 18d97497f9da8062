package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nguyentantai21042004/podcast-digest/internal/logger"
	"github.com/nguyentantai21042004/podcast-digest/internal/renderer"
)

const dateLayout = "2006-01-02"

// Server serves the Markdown digests found in an output directory.
type Server struct {
	router chi.Router
	dir    string
	logger logger.Logger
}

// New creates the HTTP handler for digests in dir.
func New(dir string, log logger.Logger) *Server {
	s := &Server{dir: dir, logger: log}
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
	r.Use(requestLogger(s.logger))

	r.Get("/health", s.handleHealth)
	r.Get("/api/digests", s.handleListDigests)
	r.Get("/digests/{name}", s.handleDigest)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleListDigests returns the dates of the available Markdown digests, newest first.
func (s *Server) handleListDigests(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		jsonError(w, "failed to list digests", http.StatusInternalServerError)
		return
	}

	dates := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".md" {
			continue
		}
		date := strings.TrimSuffix(name, ".md")
		if _, err := time.Parse(dateLayout, date); err == nil {
			dates = append(dates, date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"digests": dates})
}

// handleDigest serves /digests/{date} as HTML and /digests/{date}.md raw.
func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	date, raw := strings.CutSuffix(name, ".md")

	day, err := time.Parse(dateLayout, date)
	if err != nil {
		jsonError(w, "invalid digest date", http.StatusBadRequest)
		return
	}

	content, err := os.ReadFile(renderer.Path(s.dir, day, ".md"))
	if errors.Is(err, fs.ErrNotExist) {
		jsonError(w, "digest not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to read digest", http.StatusInternalServerError)
		return
	}

	if raw {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write(content)
		return
	}

	page, err := renderer.HTMLPage(renderer.Title(day), content)
	if err != nil {
		jsonError(w, "failed to render digest", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
