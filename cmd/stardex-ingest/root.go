package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stardex-io/stardex/internal/config"
	"github.com/stardex-io/stardex/internal/db"
	dbRedis "github.com/stardex-io/stardex/internal/db/redis"
	"github.com/stardex-io/stardex/internal/domain"
	logpkg "github.com/stardex-io/stardex/internal/logger"
	geminiEmb "github.com/stardex-io/stardex/internal/transport/gemini"
	openaiEmb "github.com/stardex-io/stardex/internal/transport/openai"
	"github.com/stardex-io/stardex/internal/version"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:          "stardex-ingest",
	Short:        "Build and inspect the stardex vector index",
	Long:         "Offline ingestion tooling: chunk corpus files, embed the chunks and populate the vector index the stardex API serves from.",
	Version:      version.Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// .env is optional; environment variables win either way.
		_ = godotenv.Load()

		env := config.GetEnv()

		var err error
		cfg, err = config.Load(env)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err = logpkg.NewLogger(env, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// connectStore opens the vector store and waits for it to accept commands.
func connectStore(ctx context.Context) (db.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// buildEmbedder creates the configured embedding provider.
func buildEmbedder(embCfg config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	switch embCfg.Provider {
	case "openai":
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     embCfg.APIKey,
			BaseURL:    embCfg.BaseURL,
			Model:      embCfg.Model,
			Dimensions: embCfg.Dimensions,
			Logger:     logger,
		})
	default:
		return geminiEmb.NewEmbedder(&geminiEmb.Config{
			APIKey:     embCfg.APIKey,
			BaseURL:    embCfg.BaseURL,
			Model:      embCfg.Model,
			Dimensions: embCfg.Dimensions,
			TimeoutSec: embCfg.TimeoutSec,
			Logger:     logger,
		})
	}
}

// collectionOrDefault falls back to the configured retrieval collection.
func collectionOrDefault(collection string) string {
	if collection != "" {
		return collection
	}
	return cfg.Retrieval.Collection
}
