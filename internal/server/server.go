// Package server exposes note fetching over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/longkey1/xhsnote/internal/logger"
	"github.com/longkey1/xhsnote/internal/metrics"
	"github.com/longkey1/xhsnote/internal/xhsnote"
)

// maxBodySize limits POST request bodies
const maxBodySize = 1 << 16

// NoteFetcher is implemented by *xhsnote.Fetcher
type NoteFetcher interface {
	FetchNote(ctx context.Context, req xhsnote.FetchRequest) xhsnote.Result
}

// Deps groups what NewRouter needs
type Deps struct {
	Fetcher   NoteFetcher
	Logger    *zap.Logger
	Collector *metrics.Collector
	Gatherer  prometheus.Gatherer
}

// NewRouter returns the HTTP handler.
//
// Routes:
//
//	GET  /api/v1/notes?note_id=...&share_url=...
//	POST /api/v1/notes   {"note_id": "...", "share_url": "..."}
//	GET  /healthz
//	GET  /metrics
//
// Fetch routes always answer 200 with the result envelope; only a
// malformed POST body gets 400.
func NewRouter(deps Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &noteHandler{fetcher: deps.Fetcher, logger: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(accessLog(log, deps.Collector))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/notes", h.Get)
		r.Post("/notes", h.Post)
	})

	return r
}

type noteHandler struct {
	fetcher NoteFetcher
	logger  *zap.Logger
}

// Get handles GET /api/v1/notes
func (h *noteHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := xhsnote.FetchRequest{
		NoteID:   q.Get("note_id"),
		ShareURL: q.Get("share_url"),
	}
	h.writeJSON(w, http.StatusOK, h.fetcher.FetchNote(r.Context(), req))
}

// Post handles POST /api/v1/notes
func (h *noteHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req xhsnote.FetchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil {
		h.logger.Debug("invalid request body", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, xhsnote.Result{
			Status:  xhsnote.StatusError,
			Message: "invalid request body",
		})
		return
	}
	h.writeJSON(w, http.StatusOK, h.fetcher.FetchNote(r.Context(), req))
}

func (h *noteHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("failed to write response", zap.Error(err))
	}
}

// accessLog logs each request and counts it by route pattern
func accessLog(log *zap.Logger, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}

			log.Info("http request",
				zap.String(logger.FieldMethod, r.Method),
				zap.String(logger.FieldPath, route),
				zap.Int(logger.FieldStatus, status),
				zap.Duration(logger.FieldDuration, time.Since(start)),
			)
			if collector != nil {
				collector.RecordHTTPRequest(route, status)
			}
		})
	}
}
