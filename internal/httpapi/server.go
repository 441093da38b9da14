package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/domain"
	apimw "github.com/hamed0406/sitewatch/internal/httpapi/middleware"
	"github.com/hamed0406/sitewatch/internal/metrics"
	"github.com/hamed0406/sitewatch/internal/repo"
	"github.com/hamed0406/sitewatch/internal/scheduler"
)

// CycleTrigger runs one check cycle on demand.
type CycleTrigger interface {
	RunOnce(ctx context.Context) (scheduler.CycleResult, error)
}

type Server struct {
	Logger *zap.Logger
	Store  repo.RecordStore
	Cycles CycleTrigger
}

func NewServer(l *zap.Logger, store repo.RecordStore, cycles CycleTrigger) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Store: store, Cycles: cycles}
}

// Router wires the status API. Reads need a public or admin key, triggering
// a cycle needs an admin key. Each group has its own per-IP rate limit.
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, publicRPM, publicBurst, adminRPM, adminBurst int) http.Handler {
	r := chi.NewRouter()
	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "X-API-Key", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(publicRPM, publicBurst))
		r.Use(apimw.RequireAny(keys))
		r.Get("/api/sites", s.handleListSites)
		r.Get("/api/sites/{name}", s.handleGetSite)
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RateLimit(adminRPM, adminBurst))
		r.Use(apimw.RequireAdmin(keys))
		r.Post("/api/checks", s.handleRunChecks)
	})

	return r
}

// loadRecords treats corrupt state as empty, the same way a check cycle does.
func (s *Server) loadRecords(w http.ResponseWriter, r *http.Request) (domain.Records, bool) {
	recs, err := s.Store.Load(r.Context())
	var corrupt *repo.CorruptionError
	switch {
	case errors.As(err, &corrupt):
		s.Logger.Warn("api_state_corrupt", zap.String("source", corrupt.Source), zap.Error(corrupt.Err))
		return make(domain.Records), true
	case err != nil:
		s.Logger.Error("api_load_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load site records")
		return nil, false
	}
	if recs == nil {
		recs = make(domain.Records)
	}
	return recs, true
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	recs, ok := s.loadRecords(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// chi routes on the escaped path only when RawPath is set
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}
	recs, ok := s.loadRecords(w, r)
	if !ok {
		return
	}
	rec, found := recs[name]
	if !found {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRunChecks(w http.ResponseWriter, r *http.Request) {
	if s.Cycles == nil {
		writeError(w, http.StatusServiceUnavailable, "checks are not available")
		return
	}
	res, err := s.Cycles.RunOnce(r.Context())
	if err != nil {
		s.Logger.Error("api_cycle_failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.Logger.Info("api_cycle_done",
		zap.Int("sites", len(res.Records)),
		zap.Int("alerts", len(res.Alerts)),
	)
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
