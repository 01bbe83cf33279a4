package storefront

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kalaasutra/storefront/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the landing page
type Handler struct {
	content  *ContentStore
	catalog  *Catalog
	renderer *Renderer
	logger   *slog.Logger
}

// NewHandler creates a storefront handler
func NewHandler(content *ContentStore, catalog *Catalog, renderer *Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		content:  content,
		catalog:  catalog,
		renderer: renderer,
		logger:   logger,
	}
}

// Home handles GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	page := Page{
		Content: h.content.Get(),
		Grid:    h.catalog.Featured(r.Context()),
	}

	// Render to a buffer so a template error never sends half a page
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page); err != nil {
		h.logger.Error("failed to render page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("failed to write page", "error", err)
	}
}

// Catalog handles GET /catalog.json
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	grid := h.catalog.Featured(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(grid); err != nil {
		h.logger.Error("failed to encode catalog", "error", err)
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// NewRouter builds the storefront route tree
func NewRouter(h *Handler, registry *prometheus.Registry, logger *slog.Logger) http.Handler {
	metrics := middleware.NewHTTPMetrics("kalaasutra_storefront", registry)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Handler)

	r.Get("/", h.Home)
	r.Get("/catalog.json", h.Catalog)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return r
}
