package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stardex-io/stardex/internal/domain"
	indexrepo "github.com/stardex-io/stardex/internal/repository/index"
)

var inspectCollection string

var inspectCmd = &cobra.Command{
	Use:   "inspect <chunk-id>",
	Short: "Print a single indexed chunk with its metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectCollection, "collection", "c", "", "collection to inspect (default from config)")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := connectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	repo := indexrepo.New(store, cfg.Embedding.Dimensions, cfg.Storage.KeyPrefix)

	collection := collectionOrDefault(inspectCollection)
	chunkID := args[0]

	entry, err := repo.Get(ctx, collection, chunkID)
	if errors.Is(err, domain.ErrChunkNotFound) {
		cmd.Printf("Chunk %q not found in collection %q\n", chunkID, collection)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get chunk: %w", err)
	}

	cmd.Printf("Chunk:       %s\n", entry.ChunkID)
	cmd.Printf("Record:      %s\n", entry.Metadata.RecordID)
	cmd.Printf("Title:       %s\n", entry.Metadata.Title)
	cmd.Printf("Group:       %s\n", entry.Metadata.GroupKey)
	cmd.Printf("Position:    %d of %d\n", entry.Metadata.ChunkIndex+1, entry.Metadata.TotalChunks)
	cmd.Printf("Text:\n%s\n", entry.Text)
	return nil
}
