// Package server exposes the chart pipeline over HTTP.
//
// Routes:
//
//	GET /healthz                    liveness probe
//	GET /surveys                    the survey table as JSON, with derived totals
//	GET /charts/{family}.{format}   a rendered figure, e.g. /charts/timeline.svg
//
// Every request loads the survey file afresh and renders into memory; only the
// runner's cache is shared between requests.
package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/surveyplot/pkg/chart"
	apierr "github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/observability"
	"github.com/matzehuels/surveyplot/pkg/pipeline"
	"github.com/matzehuels/surveyplot/pkg/survey"
)

// Options configures the handlers.
type Options struct {
	Input     string // survey CSV; empty means survey.DefaultPath
	Highlight string // default highlighted instrument
	Timeout   time.Duration
}

// Server serves charts rendered by a pipeline.Runner.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
}

// New creates a server. The runner's logger is used for request logs.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.Input == "" {
		opts.Input = survey.DefaultPath
	}
	if opts.Highlight == "" {
		opts.Highlight = chart.DefaultHighlight
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Minute
	}
	return &Server{runner: runner, opts: opts, logger: runner.Logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.Timeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/surveys", s.handleSurveys)
	r.Get("/charts/{family}.{format}", s.handleChart)
	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// surveyJSON is one table row. Empty cells are null.
type surveyJSON struct {
	Instrument     string   `json:"instrument"`
	StartYear      *float64 `json:"start_year"`
	Area           *float64 `json:"area"`
	GalaxyZLow     *float64 `json:"galaxy_z_lt_2.1"`
	GalaxyZHigh    *float64 `json:"galaxy_z_gt_2.1"`
	StarRVs        *float64 `json:"star_rvs"`
	TotalRedshifts *float64 `json:"total_redshifts"`
}

func (s *Server) handleSurveys(w http.ResponseWriter, r *http.Request) {
	table, _, err := s.runner.Load(r.Context(), s.opts.Input)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	recs := table.Records()
	out := make([]surveyJSON, len(recs))
	for i, rec := range recs {
		out[i] = surveyJSON{
			Instrument:     rec.Instrument,
			StartYear:      number(rec.StartYear),
			Area:           number(rec.Area),
			GalaxyZLow:     number(rec.GalaxyZLow),
			GalaxyZHigh:    number(rec.GalaxyZHigh),
			StarRVs:        number(rec.StarRVs),
			TotalRedshifts: number(rec.TotalRedshifts()),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	family := chi.URLParam(r, "family")
	format := chi.URLParam(r, "format")

	if err := pipeline.ValidateFamily(family); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}

	highlight := s.opts.Highlight
	if r.URL.Query().Has("highlight") {
		highlight = r.URL.Query().Get("highlight")
		if err := apierr.ValidateInstrument(highlight); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Family:    family,
		Input:     s.opts.Input,
		Formats:   []string{format},
		Highlight: highlight,
		Refresh:   r.URL.Query().Has("refresh"),
		SkipWrite: true,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	cacheState := "miss"
	if res.CacheInfo.RenderHit() {
		cacheState = "hit"
	}
	w.Header().Set("Content-Type", chart.ContentType(format))
	w.Header().Set("X-Run-ID", res.RunID.String())
	w.Header().Set("X-Cache", cacheState)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// =============================================================================
// Helpers
// =============================================================================

// fail writes err as {"code": ..., "error": ...} with the status of its code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	e := apierr.Classify(err)
	if e.Status() >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", requestIDFrom(r.Context()), "path", r.URL.Path, "code", e.Code, "err", err)
	}
	writeJSON(w, e.Status(), e)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func number(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey struct{}

// requestID tags each request with a UUID, reusing a well-formed incoming
// X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Info("http",
			"id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", elapsed)
	})
}
