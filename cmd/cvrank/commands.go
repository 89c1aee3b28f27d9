package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/cvrank/core"
	"github.com/poiesic/cvrank/ingestion"
	"github.com/poiesic/cvrank/reembed"
	"github.com/poiesic/cvrank/retry"
	"github.com/poiesic/cvrank/search"
	"github.com/urfave/cli/v2"
)

func ingestCmd() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Ingest CV text files as one upload batch",
		ArgsUsage: "FILE...",
		Action:    ingestCommand,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "pool-size", Value: 4, Usage: "Files processed concurrently"},
			&cli.IntFlag{Name: "chunk-size", Value: ingestion.DefaultChunkSize, Usage: "Maximum chunk length in characters"},
			&cli.IntFlag{Name: "chunk-overlap", Value: ingestion.DefaultChunkOverlap, Usage: "Characters shared by adjacent chunks"},
			&cli.IntFlag{Name: "max-retries", Value: retry.DefaultMaxAttempts, Usage: "Attempts per file"},
			&cli.DurationFlag{Name: "retry-delay", Value: retry.DefaultBaseDelay, Usage: "Base delay for exponential backoff"},
		},
	}
}

func batchStatusCmd() *cli.Command {
	return &cli.Command{
		Name:      "batch-status",
		Usage:     "Show an upload batch and the state of each file",
		ArgsUsage: "BATCH_ID",
		Action:    batchStatusCommand,
	}
}

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:   "search",
		Usage:  "Rank stored candidates against a job offer",
		Action: searchCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "job", Usage: "Job offer text"},
			&cli.StringFlag{Name: "job-file", Usage: "Read the job offer from a file"},
			&cli.StringFlag{Name: "weights", Value: "skill=0.4,education=0.3,experience=0.3", Usage: "Category weights, summing to 1"},
			&cli.IntFlag{Name: "top-k", Value: 10, Usage: "Candidates returned"},
			&cli.IntFlag{Name: "retrieval-depth", Value: search.DefaultRetrievalDepth, Usage: "Hits fetched per category and strategy"},
			&cli.DurationFlag{Name: "timeout", Value: search.DefaultRetrievalTimeout, Usage: "Per-category retrieval timeout"},
		},
	}
}

func reembedCmd() *cli.Command {
	return &cli.Command{
		Name:   "reembed",
		Usage:  "Recompute every stored chunk embedding with the configured model",
		Action: reembedCommand,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "batch-size", Value: reembed.DefaultBatchSize, Usage: "Chunks per embedding request"},
			&cli.IntFlag{Name: "report-interval", Value: 100, Usage: "Print progress every N chunks"},
			&cli.IntFlag{Name: "max-retries", Value: retry.DefaultMaxAttempts, Usage: "Attempts per batch"},
			&cli.DurationFlag{Name: "retry-delay", Value: retry.DefaultBaseDelay, Usage: "Base delay for exponential backoff"},
		},
	}
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one CV file is required")
	}

	sources := make([]ingestion.Source, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		sources = append(sources, ingestion.Source{Filename: filepath.Base(path), Data: data})
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithPoolSize(c.Int("pool-size")),
		ingestion.WithChunking(c.Int("chunk-size"), c.Int("chunk-overlap")),
		ingestion.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
	)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	batch, err := pipeline.IngestBatch(c.Context, sources)
	if batch != nil {
		fmt.Fprintf(c.App.Writer, "Batch %s: %s (%d/%d processed, %d failed)\n",
			batch.ID, batch.Status, batch.ProcessedFiles, batch.TotalFiles, batch.FailedFiles)
	}
	return err
}

func batchStatusCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one batch ID is required")
	}
	batchID, err := uuid.Parse(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid batch ID: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithPoolSize(1))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	batch, items, err := pipeline.BatchStatus(c.Context, batchID)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Batch %s: %s\n", batch.ID, batch.Status)
	fmt.Fprintf(w, "Files: %d total, %d processed, %d failed\n", batch.TotalFiles, batch.ProcessedFiles, batch.FailedFiles)
	fmt.Fprintf(w, "Created: %s  Started: %s  Completed: %s\n\n",
		formatTime(batch.CreatedAt), formatTime(batch.StartedAt), formatTime(batch.CompletedAt))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tDOCUMENT\tERROR")
	for _, item := range items {
		doc := "-"
		if item.DocumentID != uuid.Nil {
			doc = item.DocumentID.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Filename, item.Status, doc, item.ErrorMessage)
	}
	return tw.Flush()
}

func searchCommand(c *cli.Context) error {
	jobText := c.String("job")
	if path := c.String("job-file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read job file: %w", err)
		}
		jobText = string(data)
	}
	if strings.TrimSpace(jobText) == "" {
		return errors.New("one of --job or --job-file is required")
	}

	weights, err := parseWeights(c.String("weights"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(
		search.WithRetrievalDepth(c.Int("retrieval-depth")),
		search.WithRetrievalTimeout(c.Duration("timeout")),
	)
	if err != nil {
		return err
	}
	defer searcher.Close()

	results, err := searcher.Run(c.Context, core.SearchRequest{
		JobOfferText: jobText,
		Weights:      weights,
		TopK:         c.Int("top-k"),
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func reembedCommand(c *cli.Context) error {
	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n\n", c.String("embedding-model"))
	if err := db.NewReembedder(config, c.App.ErrWriter).Run(c.Context); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

// parseWeights reads "skill=0.4,education=0.3,experience=0.3".
func parseWeights(s string) (core.Weights, error) {
	m := make(map[string]float64)
	for _, part := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return core.Weights{}, fmt.Errorf("%w: %w: malformed weight %q", core.ErrValidation, core.ErrInvalidWeights, part)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return core.Weights{}, fmt.Errorf("%w: %w: weight %q is not a number", core.ErrValidation, core.ErrInvalidWeights, key)
		}
		m[strings.ToLower(strings.TrimSpace(key))] = f
	}
	return core.WeightsFromMap(m)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
