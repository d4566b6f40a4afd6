// Package httpapi serves open flyer views over HTTP so a remote client can
// drive them with taps and presses.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// NewRouter builds the HTTP router for the view server
func NewRouter(h *Handler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(Logger(log))

	r.Post("/sessions", h.CreateSession)

	r.Route("/views", func(r chi.Router) {
		r.Post("/", h.OpenView)
		r.Route("/{viewID}", func(r chi.Router) {
			r.Get("/", h.GetView)
			r.Delete("/", h.CloseView)
			r.Post("/appear", h.Appear)
			r.Put("/discount", h.SetDiscount)
			r.Post("/double-tap", h.DoubleTap)
			r.Post("/items/{itemID}/tap", h.Tap)
			r.Post("/items/{itemID}/press", h.Press)
			r.Get("/preview.png", h.Preview)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

// Logger logs each request with its status and duration
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("took", time.Since(start)).
				Msg("HTTP request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
