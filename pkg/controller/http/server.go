package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// config holds internal HTTP server configuration
type config struct {
	addr  string
	token string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithToken makes the server reject requests whose Authorization header does
// not carry token (with either the "Token" or "Bearer" scheme)
func WithToken(token string) Option {
	return func(c *config) {
		c.token = token
	}
}

// Server is a fake SW360 REST server backed by a Catalog
type Server struct {
	*http.Server
}

// NewServer creates a new fake SW360 server
func NewServer(
	ctx context.Context,
	catalog *Catalog,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8360",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)
	router.Use(RecordMiddleware(catalog))

	router.Get("/health", handleHealth)

	h := &releaseHandler{catalog: catalog}
	router.Route("/resource/api", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.token))

		r.Get("/", handleIndex)
		r.Get("/releases", h.list)
		r.Post("/releases", h.create)
		r.Get("/releases/searchByExternalIds", h.searchByExternalIDs)
		r.Get("/releases/usedBy/{id}", h.usedBy)
		r.Get("/releases/{id}/attachments", h.listAttachments)
		r.Post("/releases/{id}/attachments", h.uploadAttachment)
		r.Get("/releases/{id}/attachments/{attachmentID}", h.downloadAttachment)
		r.Get("/releases/{id}", h.get)
		r.Patch("/releases/{id}", h.update)
		r.Delete("/releases/{id}", h.delete)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
