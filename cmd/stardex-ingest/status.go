package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	indexrepo "github.com/stardex-io/stardex/internal/repository/index"
)

var statusCollection string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the size of an indexed collection",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusCollection, "collection", "c", "", "collection to inspect (default from config)")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	store, err := connectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	repo := indexrepo.New(store, cfg.Embedding.Dimensions, cfg.Storage.KeyPrefix)

	collection := collectionOrDefault(statusCollection)

	exists, err := repo.Exists(ctx, collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		cmd.Printf("Collection %q does not exist. Run \"stardex-ingest run\" first.\n", collection)
		return nil
	}

	count, err := repo.Count(ctx, collection)
	if err != nil {
		return fmt.Errorf("count collection: %w", err)
	}

	cmd.Printf("Collection %q contains %d chunks\n", collection, count)
	return nil
}
