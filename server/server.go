package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/sonafind/sonafind/ai"
	"github.com/sonafind/sonafind/catalog"
	"github.com/sonafind/sonafind/core"
	"github.com/sonafind/sonafind/search"
)

const defaultReadHeaderTimeout = 10 * time.Second

// Server exposes the search pipeline over HTTP.
type Server struct {
	searcher *search.Searcher
	repo     catalog.Repository
	limiter  *rate.Limiter
	logger   *slog.Logger
	defaults core.Params
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets the structured logger for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithCatalog attaches a product repository, enabling product lookups by ID.
func WithCatalog(repo catalog.Repository) Option {
	return func(s *Server) error {
		s.repo = repo
		return nil
	}
}

// WithRateLimit caps request throughput. Requests beyond the limit are
// rejected with 429 rather than queued.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) error {
		if perSecond <= 0 || burst < 1 {
			return errors.New("rate limit must be positive")
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

// WithDefaults overrides the default search parameters used when a request
// omits k, pool or boost.
func WithDefaults(params core.Params) Option {
	return func(s *Server) error {
		if err := params.Validate(); err != nil {
			return err
		}
		s.defaults = params
		return nil
	}
}

// New creates a Server over a ready searcher.
func New(searcher *search.Searcher, opts ...Option) (*Server, error) {
	if searcher == nil {
		return nil, search.ErrArtifactsRequired
	}
	s := &Server{
		searcher: searcher,
		logger:   slog.Default().With("component", "server"),
		defaults: core.DefaultParams(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /products/{id}", s.handleGetProduct)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s.withMiddleware(mux)
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown failed", "error", err)
		}
	}()

	s.logger.Info("serving", "addr", addr, "model", s.searcher.Meta().Model, "rows", s.searcher.Meta().Rows)
	err := httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(started),
		)
	})
}

// Wire types. The core models stay free of transport concerns, so the JSON
// shape is defined here.

type productJSON struct {
	ID       core.ID `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Category string  `json:"category"`
	Phonetic string  `json:"phonetic,omitempty"`
}

type resultJSON struct {
	Product       productJSON `json:"product"`
	Score         float64     `json:"score"`
	Distance      float32     `json:"distance"`
	PhoneticScore float64     `json:"phonetic_score"`
}

type timingJSON struct {
	TotalMS        float64 `json:"total_ms"`
	EmbedMS        float64 `json:"embed_ms"`
	VectorSearchMS float64 `json:"vector_search_ms"`
	RerankMS       float64 `json:"rerank_ms"`
}

type searchResponseJSON struct {
	Query   string       `json:"query"`
	K       int          `json:"k"`
	Pool    int          `json:"pool"`
	Boost   float64      `json:"boost"`
	Results []resultJSON `json:"results"`
	Timing  *timingJSON  `json:"timing,omitempty"`
}

type errorResponseJSON struct {
	Error string `json:"error"`
}

func toProductJSON(p core.Product) productJSON {
	return productJSON{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.Brand,
		Category: p.Category,
		Phonetic: p.Phonetic.String(),
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	params, err := s.queryParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	withProfile := r.URL.Query().Get("profile") == "true"

	var (
		results []core.SearchResult
		profile *search.Profile
	)
	if withProfile {
		results, profile, err = s.searcher.SearchWithProfile(r.Context(), query, params)
	} else {
		results, err = s.searcher.Search(r.Context(), query, params)
	}
	if err != nil {
		status := statusForError(err)
		s.logger.Warn("search failed", "query", query, "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	resp := searchResponseJSON{
		Query:   query,
		K:       params.K,
		Pool:    params.Pool,
		Boost:   params.Boost,
		Results: make([]resultJSON, 0, len(results)),
	}
	for _, res := range results {
		resp.Results = append(resp.Results, resultJSON{
			Product:       toProductJSON(res.Product),
			Score:         res.Score,
			Distance:      res.Distance,
			PhoneticScore: res.PhoneticScore,
		})
	}
	if profile != nil {
		timing := &timingJSON{TotalMS: ms(profile.Total)}
		if d, ok := profile.Duration(search.StageEmbed); ok {
			timing.EmbedMS = ms(d)
		}
		if d, ok := profile.Duration(search.StageVectorSearch); ok {
			timing.VectorSearchMS = ms(d)
		}
		if d, ok := profile.Duration(search.StageRerank); ok {
			timing.RerankMS = ms(d)
		}
		resp.Timing = timing
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusNotFound, "catalog not attached")
		return
	}
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	product, err := s.repo.GetProduct(r.Context(), core.ID(id))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		s.logger.Error("product lookup failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, toProductJSON(*product))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"meta":   s.searcher.Meta(),
	})
}

// queryParams reads k, pool and boost from the query string, falling back
// to the server defaults for whatever is omitted. Range validation belongs
// to the searcher; only parse failures are rejected here.
func (s *Server) queryParams(r *http.Request) (core.Params, error) {
	params := s.defaults
	q := r.URL.Query()
	if raw := q.Get("k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("invalid k: %q", raw)
		}
		params.K = v
	}
	if raw := q.Get("pool"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("invalid pool: %q", raw)
		}
		params.Pool = v
	}
	if raw := q.Get("boost"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return params, fmt.Errorf("invalid boost: %q", raw)
		}
		params.Boost = v
	}
	return params, nil
}

// statusForError maps pipeline errors to HTTP statuses: caller mistakes are
// 400, provider trouble is 502, anything else is 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, ai.ErrProviderUnavailable),
		errors.Is(err, ai.ErrProviderTimeout),
		errors.Is(err, ai.ErrProviderProtocol):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponseJSON{Error: msg})
}
