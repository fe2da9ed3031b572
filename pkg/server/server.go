// Package server provides a local development server that serves a
// marketplace over HTTP the way plugin clients consume it.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/jingkaihe/plugmark/pkg/lint"
	"github.com/jingkaihe/plugmark/pkg/logger"
	"github.com/jingkaihe/plugmark/pkg/manifest"
	"github.com/jingkaihe/plugmark/pkg/marketplace"
	"github.com/jingkaihe/plugmark/pkg/plugin"
	"github.com/jingkaihe/plugmark/pkg/presenter"
	"github.com/jingkaihe/plugmark/pkg/version"
)

// Config holds the configuration for the development server.
type Config struct {
	Host string
	Port int
}

// Validate validates the server configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// Server serves a loaded marketplace root.
type Server struct {
	router      *mux.Router
	marketplace *marketplace.Marketplace
	config      *Config
	server      *http.Server
}

// NewServer creates a development server for the given marketplace.
func NewServer(m *marketplace.Marketplace, config *Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}
	if m.ManifestErr != nil {
		return nil, errors.Wrap(m.ManifestErr, "marketplace is not servable")
	}

	s := &Server{
		router:      mux.NewRouter(),
		marketplace: m,
		config:      config,
	}
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	// OPTIONS is listed so preflight requests reach the CORS middleware
	// instead of mux's method-not-allowed handler.
	s.router.HandleFunc("/marketplace.json", s.handleManifest).Methods("GET", "OPTIONS")
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET", "OPTIONS")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/plugins", s.handleListPlugins).Methods("GET", "OPTIONS")
	api.HandleFunc("/plugins/{name}", s.handleGetPlugin).Methods("GET", "OPTIONS")

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.corsMiddleware)
}

// handleManifest serves the canonical marketplace manifest.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	formatted, err := manifest.FormatMarketplace(s.marketplace.Raw)
	if err != nil {
		// Fall back to the bytes on disk when canonicalization fails.
		formatted = s.marketplace.Raw
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(formatted)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Get().Version,
	})
}

// handleListPlugins handles GET /api/plugins
func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	entries := s.marketplace.Manifest.Plugins
	if entries == nil {
		entries = []manifest.MarketplaceEntry{}
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"marketplace": s.marketplace.Manifest.Name,
		"plugins":     entries,
	})
}

// handleGetPlugin handles GET /api/plugins/{name} and includes the live
// validation report for local plugins.
func (s *Server) handleGetPlugin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := mux.Vars(r)["name"]

	entry, ok := s.marketplace.Entry(name)
	if !ok {
		writeJSON(ctx, w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("plugin %q is not listed", name),
		})
		return
	}

	response := map[string]any{"plugin": entry}

	if entry.Source.IsLocal() {
		if dir, err := s.marketplace.ResolveLocal(entry.Source); err == nil {
			if p, err := plugin.Load(ctx, dir); err == nil {
				report := lint.CheckPlugin(ctx, p)
				response["validation"] = map[string]any{
					"errors":   report.Errors(),
					"warnings": report.Warnings(),
					"issues":   report.Issues,
				}
			}
		}
	}

	writeJSON(ctx, w, http.StatusOK, response)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.G(ctx).WithError(err).Error("failed to encode response")
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}
		next.ServeHTTP(rw, r)

		logger.G(r.Context()).WithFields(map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration":    time.Since(start),
			"remote_addr": r.RemoteAddr,
		}).Info("HTTP request")
	})
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:    address,
		Handler: s.router,
	}

	presenter.Info(fmt.Sprintf("Serving marketplace %q on http://%s", s.marketplace.Manifest.Name, address))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.G(ctx).WithError(err).Error("server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Stop stops the server immediately.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
