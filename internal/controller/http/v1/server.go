package v1

import (
	"context"
	"net"
	"net/http"

	"github.com/frasal/image_describer/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(cfg config.HTTP, images *ImagesHandler, browser *BrowserHandler) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", images.IndexPage)
	r.Get("/gallery", browser.GalleryPage)
	r.Get("/images", browser.ListImages)
	r.Get("/image/{name}", browser.GetImage)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/images", images.ProcessImage)
		r.Post("/images/{id}/feedback", images.SaveFeedback)
		r.Get("/requests/{id}", images.GetRequest)
		r.Get("/export", browser.ExportCSV)
		r.Get("/report", browser.ExportPDF)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			Handler:      r,
		},
	}
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
