package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/vlah-sh/mosaic/pkg/usecase"
	"github.com/vlah-sh/mosaic/pkg/utils/errutil"
	"github.com/vlah-sh/mosaic/pkg/utils/logging"
	"github.com/vlah-sh/mosaic/pkg/utils/safe"
)

// Server exposes the selection engine over an internal JSON boundary.
// There is no authentication: the boundary is meant for in-cluster
// consumption by the page generation orchestrator.
type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/select", s.handleSelect)
		r.Post("/layouts", s.handleBuildLayout)
		r.Post("/layouts/finalize", s.handleFinalizeLayout)
		r.Post("/generations", s.handleRecordGeneration)
		r.Post("/effects", s.handleDiversifyEffects)
		r.Get("/components/{componentID}/priority", s.handlePriority)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r, w, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   s.uc.Mode().String(),
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(err, "failed to decode request body")
	}
	return nil
}

func writeJSON(r *http.Request, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body, err := json.Marshal(v)
	if err != nil {
		logging.From(r.Context()).Error("failed to marshal response", "error", err.Error())
		return
	}
	safe.Write(r.Context(), w, body)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// handleError maps validation failures to 400 and everything else to 500
func handleError(w http.ResponseWriter, r *http.Request, err error, status int) {
	errutil.HandleHTTP(r.Context(), w, err, status)
}
