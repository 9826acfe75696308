package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stardex-io/stardex/internal/chunk"
	"github.com/stardex-io/stardex/internal/corpus"
	"github.com/stardex-io/stardex/internal/domain"
	"github.com/stardex-io/stardex/internal/metrics"
	indexrepo "github.com/stardex-io/stardex/internal/repository/index"
	ingestuc "github.com/stardex-io/stardex/internal/usecase/ingest"
)

var (
	runFile       string
	runFormat     string
	runCollection string
	runYes        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest a corpus file into a collection",
	Long: `Loads records from a JSON corpus file, chunks each record's narrative,
embeds the chunks and writes them to the vector index in batches.
Recreating an existing collection is destructive and asks for confirmation
unless --yes is given.`,
	RunE: runIngest,
}

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "path to the corpus JSON file (required)")
	runCmd.Flags().StringVar(&runFormat, "format", "experiences", "corpus format: experiences, qa or kb")
	runCmd.Flags().StringVarP(&runCollection, "collection", "c", "", "target collection (default from config)")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "recreate an existing collection without asking")
	_ = runCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(runCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	records, err := loadCorpus(runFormat, runFile)
	if err != nil {
		return err
	}
	cmd.Printf("Loaded %d records from %s\n", len(records), runFile)

	ctx := context.Background()

	store, err := connectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIngestMetrics()

	splitter, err := chunk.NewSplitter(cfg.Chunking.MaxSize, cfg.Chunking.Overlap)
	if err != nil {
		return fmt.Errorf("create splitter: %w", err)
	}

	embedder := buildEmbedder(cfg.Embedding, logger)
	repo := indexrepo.New(store, cfg.Embedding.Dimensions, cfg.Storage.KeyPrefix).
		WithBatchSize(cfg.Ingest.BatchSize)

	svc := ingestuc.New(embedder, repo, splitter, logger).
		WithWorkers(cfg.Ingest.EmbedWorkers)

	collection := collectionOrDefault(runCollection)
	logger.Info("starting ingestion",
		zap.String("collection", collection),
		zap.String("format", runFormat),
		zap.Int("records", len(records)))

	summary, err := svc.Run(ctx, collection, records, confirmDestroy(cmd))
	if errors.Is(err, ingestuc.ErrDeclined) {
		cmd.Println("Keeping existing collection. Exiting.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	cmd.Printf("Ingested %d chunks from %d records into %q\n",
		summary.ChunksIndexed, summary.Records, collection)
	if summary.ChunksSkipped > 0 {
		cmd.Printf("Skipped %d chunks after embedding failures\n", summary.ChunksSkipped)
	}
	cmd.Printf("Average chunks per record: %.2f\n", summary.AvgChunksPerRecord)

	return nil
}

// loadCorpus dispatches to the loader for the given corpus format.
func loadCorpus(format, path string) ([]domain.Record, error) {
	switch format {
	case "experiences":
		return corpus.LoadExperiences(path)
	case "qa":
		return corpus.LoadTechnicalQA(path)
	case "kb":
		return corpus.LoadGeneralKB(path)
	default:
		return nil, fmt.Errorf("unknown corpus format %q (want experiences, qa or kb)", format)
	}
}

// confirmDestroy asks the operator before an existing collection is dropped.
func confirmDestroy(cmd *cobra.Command) func() bool {
	return func() bool {
		if runYes {
			return true
		}

		cmd.Print("Do you want to recreate the collection? (y/N): ")

		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(line), "y")
	}
}
