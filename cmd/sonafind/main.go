// Copyright 2025 Sonafind Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/sonafind/sonafind/ai"
	"github.com/sonafind/sonafind/ai/openai"
	"github.com/sonafind/sonafind/artifact"
	"github.com/sonafind/sonafind/builder"
	"github.com/sonafind/sonafind/catalog"
	"github.com/sonafind/sonafind/catalog/badger"
	"github.com/sonafind/sonafind/core"
	"github.com/sonafind/sonafind/search"
	"github.com/sonafind/sonafind/server"
)

func main() {
	app := &cli.App{
		Name:  "sonafind",
		Usage: "Hybrid product search: vector retrieval with phonetic rerank",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Load a product catalog CSV into the database",
				ArgsUsage: "<catalog.csv>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "build",
				Usage:  "Embed the catalog and write the artifact set",
				Action: buildCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Directory to write artifacts into",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "nomic-embed-text",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent embedding workers (0 = auto)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of texts per embedding request",
						Value: 32,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Per-request embedding timeout",
						Value: 30 * time.Second,
					},
					&cli.IntFlag{
						Name:  "max-rows",
						Usage: "Only embed the first N catalog rows (0 = all)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Query an artifact set from the command line",
				ArgsUsage: "<query...>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "artifacts",
						Aliases:  []string{"a"},
						Usage:    "Directory containing a built artifact set",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of results to return",
						Value: 5,
					},
					&cli.IntFlag{
						Name:  "pool",
						Usage: "Candidate pool size for the rerank stage",
						Value: 150,
					},
					&cli.Float64Flag{
						Name:  "boost",
						Usage: "Phonetic boost weight",
						Value: 0.2,
					},
					&cli.BoolFlag{
						Name:  "profile",
						Usage: "Print per-stage timings",
					},
					&cli.IntFlag{
						Name:  "tolerance",
						Usage: "Max phonetic code edits still counted as a partial match (0 = exact)",
					},
					&cli.Float64Flag{
						Name:  "fuzzy-weight",
						Usage: "Weight of the fuzzy name-similarity term (0 = disabled)",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (defaults to the model recorded in the artifacts)",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Per-request embedding timeout",
						Value: 30 * time.Second,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the search API over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "artifacts",
						Aliases:  []string{"a"},
						Usage:    "Directory containing a built artifact set",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory (enables /products)",
					},
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8080",
					},
					&cli.Float64Flag{
						Name:  "rate",
						Usage: "Requests per second before shedding (0 = unlimited)",
					},
					&cli.IntFlag{
						Name:  "burst",
						Usage: "Rate limiter burst size",
						Value: 10,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (defaults to the model recorded in the artifacts)",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Per-request embedding timeout",
						Value: 30 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.Args().Len() == 0 {
		return fmt.Errorf("catalog CSV path is required")
	}

	repo, err := badger.NewRepository(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()

	total := 0
	for _, path := range c.Args().Slice() {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		products, err := catalog.ReadCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		refs := make([]*core.Product, len(products))
		for i := range products {
			refs[i] = &products[i]
		}
		if _, err := repo.AddProducts(ctx, refs...); err != nil {
			return fmt.Errorf("failed to store products from %s: %w", path, err)
		}
		total += len(products)
		slog.Info("ingested", "file", path, "products", len(products))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Ingested %d rows, catalog now holds %d products\n", total, count)
	return nil
}

func buildCommand(c *cli.Context) error {
	ctx := context.Background()

	repo, err := badger.NewRepository(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()

	products, err := repo.AllProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	if max := c.Int("max-rows"); max > 0 && max < len(products) {
		products = products[:max]
	}

	embedder, err := newEmbedder(c, c.String("embedding-model"))
	if err != nil {
		return err
	}

	opts := []builder.Option{
		builder.WithBatchSize(c.Int("batch-size")),
		builder.WithProgress(func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rEmbedding products: %d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}),
	}
	if c.Int("workers") > 0 {
		opts = append(opts, builder.WithWorkers(c.Int("workers")))
	}

	b, err := builder.New(embedder, c.String("embedding-model"), opts...)
	if err != nil {
		return err
	}

	set, err := b.Build(ctx, products)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	if err := artifact.Write(c.String("out"), set); err != nil {
		return fmt.Errorf("failed to write artifacts: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Built index: %d products, %d dimensions, model %s\n",
		set.Meta.Rows, set.Meta.Dimension, set.Meta.Model)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	set, err := artifact.Load(c.String("artifacts"))
	if err != nil {
		return fmt.Errorf("failed to load artifacts: %w", err)
	}

	model := c.String("embedding-model")
	if model == "" {
		model = set.Meta.Model
	}
	embedder, err := newEmbedder(c, model)
	if err != nil {
		return err
	}

	searchOpts := []search.Option{}
	if tol := c.Int("tolerance"); tol > 0 {
		searchOpts = append(searchOpts, search.WithPhoneticTolerance(tol))
	}
	if w := c.Float64("fuzzy-weight"); w > 0 {
		searchOpts = append(searchOpts, search.WithFuzzyWeight(w))
	}
	searcher, err := search.NewSearcher(set, embedder, searchOpts...)
	if err != nil {
		return err
	}

	params := core.Params{
		K:     c.Int("k"),
		Pool:  c.Int("pool"),
		Boost: c.Float64("boost"),
	}

	var (
		results []core.SearchResult
		profile *search.Profile
	)
	if c.Bool("profile") {
		results, profile, err = searcher.SearchWithProfile(ctx, query, params)
	} else {
		results, err = searcher.Search(ctx, query, params)
	}
	if err != nil {
		return err
	}

	for i, res := range results {
		fmt.Printf("%2d. %-40s %-20s %-16s score=%.4f phonetic=%.2f\n",
			i+1, res.Product.Name, res.Product.Brand, res.Product.Category,
			res.Score, res.PhoneticScore)
	}
	if profile != nil {
		fmt.Fprintf(os.Stderr, "\nTotal: %s\n", profile.Total)
		for _, st := range profile.Stages {
			fmt.Fprintf(os.Stderr, "  %-14s %s\n", st.Stage, st.Duration)
		}
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, err := artifact.Load(c.String("artifacts"))
	if err != nil {
		return fmt.Errorf("failed to load artifacts: %w", err)
	}

	model := c.String("embedding-model")
	if model == "" {
		model = set.Meta.Model
	}
	embedder, err := newEmbedder(c, model)
	if err != nil {
		return err
	}

	searcher, err := search.NewSearcher(set, embedder)
	if err != nil {
		return err
	}

	opts := []server.Option{}
	if rps := c.Float64("rate"); rps > 0 {
		opts = append(opts, server.WithRateLimit(rps, c.Int("burst")))
	}
	if dbPath := c.String("db"); dbPath != "" {
		repo, err := badger.NewRepository(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer repo.Close()
		opts = append(opts, server.WithCatalog(repo))
	}

	srv, err := server.New(searcher, opts...)
	if err != nil {
		return err
	}
	return srv.Run(ctx, c.String("addr"))
}

// newEmbedder builds the embedding client from the shared provider flags.
func newEmbedder(c *cli.Context, model string) (ai.Embedder, error) {
	config := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(model),
		ai.WithTimeout(c.Duration("timeout")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}
	embedder, err := openai.NewEmbedder(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

func setup(c *cli.Context) error {
	// Local overrides for provider host and model; a missing file is fine.
	_ = godotenv.Load()

	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
