package api

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// PublicDir is served under /data. Empty disables static files.
	PublicDir   string
	CORSOrigins []string
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, handler *Handler, opts RouterOptions) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      NewRouter(handler, opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewRouter builds the route tree.
func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}).Handler)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Get("/", handler.GetDashboard)
		r.Post("/refresh", handler.RefreshDashboard)
	})

	if opts.PublicDir != "" {
		r.Get("/data/*", dataFiles(opts.PublicDir))
	}

	return r
}

// dataFiles serves published files from dir/data, labelling .json as
// application/json regardless of the host's mime table.
func dataFiles(dir string) http.HandlerFunc {
	files := http.StripPrefix("/data/", http.FileServer(http.Dir(filepath.Join(dir, "data"))))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".json") {
			w.Header().Set("Content-Type", "application/json")
		}
		w.Header().Set("Cache-Control", "no-cache")
		files.ServeHTTP(w, r)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
