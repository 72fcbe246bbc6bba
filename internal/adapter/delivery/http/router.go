// Package http exposes the URL shortener over HTTP: shortening, redirects
// and the click dashboard.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/shortlink/docs"
	"github.com/vadimbarashkov/shortlink/pkg/middleware/recoverer"
)

// NewRouter returns the service router. baseURL prefixes returned short URLs;
// when empty it is taken from each request.
func NewRouter(logger *httplog.Logger, useCase urlUseCase, baseURL string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	r.Get("/ping", handlePing)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, docs.FS, "swagger.yml")
	})

	h := newURLHandler(useCase, validator.New(), baseURL)

	r.Post("/shorten", h.shortenURL)
	r.Get("/dashboard", h.getDashboard)
	r.Get("/{shortCode}", h.resolveShortCode)

	return r
}
