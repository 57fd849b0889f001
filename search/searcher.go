package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/sonafind/sonafind/ai"
	"github.com/sonafind/sonafind/artifact"
	"github.com/sonafind/sonafind/core"
	"github.com/sonafind/sonafind/index"
	"github.com/sonafind/sonafind/phonetic"
)

// Searcher answers hybrid queries against one loaded artifact set.
//
// The index and lookup are immutable after construction, so a single
// Searcher serves any number of concurrent queries without locking. Each
// query is independent: the only blocking, externally latent step is the
// embedding call.
type Searcher struct {
	index       *index.Index
	lookup      []core.Product
	meta        core.IndexMeta
	embedder    ai.Embedder
	tolerance   int
	fuzzyWeight float64
	logger      *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPhoneticTolerance allows phonetic codes within maxEdits edit
// operations of each other to count as half a match during rerank.
// Default is 0: only exact code matches score.
func WithPhoneticTolerance(maxEdits int) Option {
	return func(s *Searcher) error {
		if maxEdits < 0 {
			maxEdits = 0
		}
		s.tolerance = maxEdits
		return nil
	}
}

// WithFuzzyWeight adds weight * jaroWinkler(query, product name) to every
// candidate's combined score. Default is 0: disabled.
func WithFuzzyWeight(weight float64) Option {
	return func(s *Searcher) error {
		if weight < 0 {
			return fmt.Errorf("%w: fuzzy weight must not be negative, got %g", core.ErrInvalidQuery, weight)
		}
		s.fuzzyWeight = weight
		return nil
	}
}

// NewSearcher creates a searcher over a loaded artifact set.
// The set must be internally consistent; row alignment is re-checked here so
// a hand-assembled set cannot serve misattributed results.
func NewSearcher(set *artifact.Set, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if set == nil {
		return nil, ErrArtifactsRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}

	s := &Searcher{
		index:    set.Index,
		lookup:   set.Lookup,
		meta:     set.Meta,
		embedder: embedder,
		logger:   slog.Default().With("component", "searcher"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Meta returns the provenance of the artifact set being served.
func (s *Searcher) Meta() core.IndexMeta {
	return s.meta
}

// Search runs a hybrid query and returns up to min(k, pool, rows) results,
// ranked by combined score descending.
func (s *Searcher) Search(ctx context.Context, query string, params core.Params) ([]core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, params, nil)
}

// SearchWithProfile runs a hybrid query and additionally returns the
// per-stage timing breakdown of this call.
func (s *Searcher) SearchWithProfile(ctx context.Context, query string, params core.Params) ([]core.SearchResult, *Profile, error) {
	profile := &Profile{}
	results, err := s.SearchWithMonitor(ctx, query, params, profile)
	return results, profile, err
}

// SearchWithMonitor runs a hybrid query with monitoring.
// The monitor receives callbacks at each stage of the pipeline; stage
// durations are reported even when a stage fails.
//
// Pipeline: validate parameters (before any provider call), embed the query,
// draw the candidate pool from the vector index, score each candidate by
// fusing semantic and phonetic similarity, and return the top k.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, params core.Params, monitor Monitor) ([]core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	started := time.Now()
	monitor.Start(query)

	// Fail fast: no external call is spent on an invalid query.
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query text", core.ErrInvalidQuery)
	}

	queryCode := phonetic.Encode(query)

	var vector []float32
	err := timed(monitor, StageEmbed, func() error {
		var err error
		vector, err = s.embedder.EmbedText(ctx, query)
		return err
	})
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	if len(vector) != s.index.Dim() {
		return nil, fmt.Errorf("%w: provider returned dimension %d, index expects %d",
			core.ErrDimensionMismatch, len(vector), s.index.Dim())
	}
	monitor.AfterEmbed(vector)

	var hits []index.Hit
	err = timed(monitor, StageVectorSearch, func() error {
		var err error
		hits, err = s.index.Search(vector, params.Pool)
		return err
	})
	if err != nil {
		s.logger.Error("error searching vector index", "err", err)
		return nil, err
	}
	monitor.AfterCandidates(hits)

	var results []core.SearchResult
	_ = timed(monitor, StageRerank, func() error {
		results = s.rerank(query, queryCode, hits, params)
		return nil
	})

	monitor.Finish(results, time.Since(started))
	return results, nil
}

// rerank fuses semantic and phonetic similarity over the candidate pool and
// keeps the top k.
//
// The semantic distance is mapped to 1/(1+d): monotonically decreasing,
// bounded in (0, 1], and safe at distance zero. The phonetic score enters
// weighted by the query boost. Ties break by ascending semantic distance,
// then by candidate-pool order, so rankings are deterministic.
func (s *Searcher) rerank(query string, queryCode core.PhoneticCode, hits []index.Hit, params core.Params) []core.SearchResult {
	lowered := strings.ToLower(query)

	results := make([]core.SearchResult, 0, len(hits))
	for _, hit := range hits {
		product := s.lookup[hit.Row]

		var phoneticScore float64
		if s.tolerance > 0 {
			phoneticScore = phonetic.SimilarityTolerant(queryCode, product.Phonetic, s.tolerance)
		} else {
			phoneticScore = phonetic.Similarity(queryCode, product.Phonetic)
		}

		semantic := 1.0 / (1.0 + float64(hit.Distance))
		score := semantic + params.Boost*phoneticScore
		if s.fuzzyWeight > 0 {
			score += s.fuzzyWeight * matchr.JaroWinkler(lowered, strings.ToLower(product.Name), false)
		}

		results = append(results, core.SearchResult{
			Product:       product,
			Score:         score,
			Distance:      hit.Distance,
			PhoneticScore: phoneticScore,
		})
	}

	// Stable sort: full ties keep candidate-pool order.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Distance < results[j].Distance
	})

	if len(results) > params.K {
		results = results[:params.K]
	}
	return results
}

// timed runs one pipeline stage and reports its duration to the monitor,
// including when the stage fails.
func timed(monitor Monitor, stage string, fn func() error) error {
	started := time.Now()
	err := fn()
	monitor.StageCompleted(stage, time.Since(started), err)
	return err
}
