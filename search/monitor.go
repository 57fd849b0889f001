package search

import (
	"time"

	"github.com/sonafind/sonafind/core"
	"github.com/sonafind/sonafind/index"
)

// Pipeline stage names reported to monitors.
const (
	StageEmbed        = "embed"
	StageVectorSearch = "vector_search"
	StageRerank       = "rerank"
)

// Monitor provides hooks to observe a query as it moves through the
// pipeline. Implement this interface to track intermediate results or
// timing. Monitors must not mutate what they are handed.
type Monitor interface {
	Start(query string)

	// StageCompleted fires after every pipeline stage with its wall-clock
	// duration. It fires even when the stage failed; err carries the
	// failure in that case.
	StageCompleted(stage string, elapsed time.Duration, err error)

	AfterEmbed(vector []float32)
	AfterCandidates(hits []index.Hit)
	Finish(results []core.SearchResult, total time.Duration)
}

// noopMonitor is a no-op implementation of Monitor.
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                    {}
func (n *noopMonitor) StageCompleted(_ string, _ time.Duration, _ error) {}
func (n *noopMonitor) AfterEmbed(_ []float32)                            {}
func (n *noopMonitor) AfterCandidates(_ []index.Hit)                     {}
func (n *noopMonitor) Finish(_ []core.SearchResult, _ time.Duration)     {}

// StageTiming is the recorded duration of one pipeline stage.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Profile is a Monitor that records per-stage wall-clock timings for a
// single query. It holds the timings of the most recent call it observed
// and is not safe for use across concurrent queries; give each query its
// own Profile.
type Profile struct {
	Stages []StageTiming
	Total  time.Duration
}

var _ Monitor = (*Profile)(nil)

func (p *Profile) Start(_ string) {
	p.Stages = p.Stages[:0]
	p.Total = 0
}

func (p *Profile) StageCompleted(stage string, elapsed time.Duration, _ error) {
	p.Stages = append(p.Stages, StageTiming{Stage: stage, Duration: elapsed})
}

func (p *Profile) AfterEmbed(_ []float32)        {}
func (p *Profile) AfterCandidates(_ []index.Hit) {}

func (p *Profile) Finish(_ []core.SearchResult, total time.Duration) {
	p.Total = total
}

// Duration returns the recorded duration of a stage, if it ran.
func (p *Profile) Duration(stage string) (time.Duration, bool) {
	for _, st := range p.Stages {
		if st.Stage == stage {
			return st.Duration, true
		}
	}
	return 0, false
}
