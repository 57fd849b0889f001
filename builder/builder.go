package builder

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/sonafind/sonafind/ai"
	"github.com/sonafind/sonafind/artifact"
	"github.com/sonafind/sonafind/core"
	"github.com/sonafind/sonafind/index"
	"github.com/sonafind/sonafind/phonetic"
)

const defaultBatchSize = 32

// Builder constructs a complete artifact set from catalog records.
// It always rebuilds from the full input set; there is no incremental path.
type Builder struct {
	embedder    ai.Embedder
	model       string
	workers     int
	batchSize   int
	maxAttempts int
	retryDelay  time.Duration
	progress    func(done, total int)
	logger      *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithWorkers sets the number of concurrent embedding workers.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithWorkers(workers int) Option {
	return func(b *Builder) error {
		if workers < 1 {
			workers = 1
		}
		b.workers = workers
		return nil
	}
}

// WithBatchSize sets how many texts are sent per embedding call.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		b.batchSize = size
		return nil
	}
}

// WithRetry enables retrying failed embedding calls with exponential
// backoff. Default is a single attempt.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(b *Builder) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		b.maxAttempts = maxAttempts
		b.retryDelay = baseDelay
		return nil
	}
}

// WithProgress registers a callback invoked after each completed batch with
// the number of embedded records so far and the total.
func WithProgress(fn func(done, total int)) Option {
	return func(b *Builder) error {
		b.progress = fn
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// New creates a builder that embeds with the given embedder and records
// model as the provenance identifier in the build meta.
func New(embedder ai.Embedder, model string, opts ...Option) (*Builder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if model == "" {
		return nil, ErrModelRequired
	}

	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}

	b := &Builder{
		embedder:    embedder,
		model:       model,
		workers:     workers,
		batchSize:   defaultBatchSize,
		maxAttempts: 1,
		retryDelay:  time.Second,
		logger:      slog.Default().With("component", "builder"),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Build runs the offline pipeline: normalize every record, phonetic-code
// every record, embed every canonical text, and assemble the vector index
// with its row-aligned lookup and meta. Row i of the index always holds the
// embedding of products[i].
//
// Build fails without producing anything if the input is empty, any
// embedding call fails, or the provider returns inconsistent dimensions.
func (b *Builder) Build(ctx context.Context, products []core.Product) (*artifact.Set, error) {
	if len(products) == 0 {
		return nil, core.ErrNoRecords
	}

	b.logger.Info("building index", "records", len(products), "model", b.model)

	lookup := make([]core.Product, len(products))
	texts := make([]string, len(products))
	for i, p := range products {
		text := core.CanonicalText(p)
		if p.ID == 0 {
			p.ID = core.IDFromContent(text)
		}
		p.Phonetic = phonetic.Encode(p.Name)
		lookup[i] = p
		texts[i] = text
	}

	started := time.Now()
	vectors, err := b.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}
	b.logger.Info("embedding finished", "records", len(texts), "elapsed", time.Since(started))

	ix, err := index.New(vectors)
	if err != nil {
		return nil, err
	}

	return &artifact.Set{
		Index:  ix,
		Lookup: lookup,
		Meta: core.IndexMeta{
			Model:     b.model,
			Dimension: ix.Dim(),
			Rows:      ix.Len(),
			BuiltAt:   time.Now().UTC(),
		},
	}, nil
}

// embedAll embeds texts in batches across a bounded worker pool, preserving
// input order in the result. The first failure wins and is reported with the
// offending batch attached.
func (b *Builder) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	pool, err := ants.NewPool(b.workers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	vectors := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if failed() || ctx.Err() != nil {
				return
			}

			var batch [][]float32
			err := RetryWithBackoff(ctx, func() error {
				var embedErr error
				batch, embedErr = b.embedder.EmbedTexts(ctx, texts[start:end])
				return embedErr
			}, b.maxAttempts, b.retryDelay)
			if err != nil {
				fail(fmt.Errorf("embedding records %d-%d: %w", start, end-1, err))
				return
			}
			if len(batch) != end-start {
				fail(fmt.Errorf("%w: records %d-%d: requested %d embeddings, received %d",
					ai.ErrProviderProtocol, start, end-1, end-start, len(batch)))
				return
			}
			copy(vectors[start:], batch)

			mu.Lock()
			done += end - start
			completed := done
			mu.Unlock()
			if b.progress != nil {
				b.progress(completed, len(texts))
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}
