// Package httpapi exposes the signing and gallery endpoints over HTTP JSON.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/mediavault/internal/logging"
	"github.com/dmitrijs2005/mediavault/internal/server/models"
)

// MediaService is what the handlers need from the business layer.
type MediaService interface {
	GenerateUploadURL(ctx context.Context, fileName, fileType string) (string, string, error)
	StartMultipart(ctx context.Context, fileName, fileType string) (string, string, error)
	SignPart(ctx context.Context, key, uploadID string, partNumber int32) (string, error)
	CompleteMultipart(ctx context.Context, key, uploadID string, parts []models.CompletedPart) error
	AbortMultipart(ctx context.Context, key, uploadID string) error
	ListMedia(ctx context.Context) ([]models.MediaFile, error)
	DeleteFile(ctx context.Context, key string) error
	DeleteFiles(ctx context.Context, keys []string) int
}

type Server struct {
	media     MediaService
	logger    logging.Logger
	jwtSecret []byte
	router    chi.Router
}

// NewServer builds the router. An empty secretKey disables bearer auth.
func NewServer(media MediaService, l logging.Logger, secretKey string) *Server {
	s := &Server{
		media:     media,
		logger:    logging.OrNop(l).With("module", "http_server"),
		jwtSecret: []byte(secretKey),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Group(func(r chi.Router) {
		r.Use(s.accessTokenMiddleware)

		r.Post("/upload", s.postUpload)
		r.Route("/upload/multipart", func(r chi.Router) {
			r.Post("/start", s.postMultipartStart)
			r.Post("/sign-part", s.postMultipartSignPart)
			r.Post("/complete", s.postMultipartComplete)
			r.Post("/abort", s.postMultipartAbort)
		})

		r.Get("/media", s.getMedia)
		r.Post("/media/delete", s.postMediaDelete)
	})

	s.router = r
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
