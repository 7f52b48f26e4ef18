package main

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kewo/kewo-rechner/internal/session"
	"github.com/kewo/kewo-rechner/web"
)

type server struct {
	store   session.Store
	cookies *cookieSigner
	logger  *zap.Logger
}

func newServer(store session.Store, secret string, logger *zap.Logger) *server {
	return &server{
		store:   store,
		cookies: newCookieSigner(secret),
		logger:  logger,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Post("/api/compute", s.handleAPICompute)
	r.Post("/export", s.handleExport)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)
		r.Get("/", s.handleHome)
		r.Post("/inputs", s.handleFormSubmit)
		r.Post("/inputs/{field}", s.handleFieldUpdate)
		r.Get("/api/results", s.handleAPIResults)
		r.Post("/reset", s.handleReset)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
