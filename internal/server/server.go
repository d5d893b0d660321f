package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/brightprep/brightprep-be/internal/auth"
	"github.com/brightprep/brightprep-be/internal/blob"
	"github.com/brightprep/brightprep-be/internal/config"
	"github.com/brightprep/brightprep-be/internal/http/handlers"
	"github.com/brightprep/brightprep-be/internal/middleware"
	"github.com/brightprep/brightprep-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server. blobs may be
// nil, in which case the upload endpoint is not served.
func New(cfg config.Config, logger *slog.Logger, store storage.UserStore, blobs blob.Store) *Server {
	mux := http.NewServeMux()
	verifier := auth.NewVerifier(cfg.AuthSecret, cfg.AuthIssuer)

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewUsersHandler(store, logger).Register(mux, verifier)
	if blobs != nil {
		handlers.NewUploadsHandler(blobs, cfg.MaxUploadBytes, logger).Register(mux, verifier)
	}

	tracer := otel.Tracer("brightprep-be")
	handler := middleware.CORS(cfg.CORSOrigins,
		middleware.RequestID(
			middleware.Logging(logger,
				middleware.Trace(tracer, mux))))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
