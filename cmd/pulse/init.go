package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clientpulse/pulse-core/internal/infrastructure/config"
	"github.com/clientpulse/pulse-core/internal/infrastructure/docstore/sqlite"
	embedder "github.com/clientpulse/pulse-core/internal/infrastructure/embedder/openai"
	"github.com/clientpulse/pulse-core/internal/infrastructure/evidencedb/qdrant"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new pulse workspace",
		Long:  "Creates a .pulse directory with default configuration, the SQLite schema and the Qdrant evidence collection.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if config.Exists(cwd) {
		return fmt.Errorf("pulse already initialized in %s", cwd)
	}

	if err := config.WriteDefault(cwd); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	fmt.Printf("Created %s\n", config.ConfigFilePath(cwd))

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewRepository(config.SQLiteConfig{Path: cfg.SQLitePath(cwd)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}
	fmt.Printf("Created SQLite database: %s\n", store.Path())

	repo, err := qdrant.NewRepository(cfg.Qdrant)
	if err != nil {
		return fmt.Errorf("connecting to qdrant: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureCollection(ctx, embedder.VectorSize); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	fmt.Printf("Created Qdrant collection: %s\n", cfg.Qdrant.Collection)

	if err := os.MkdirAll(spoolDir(cwd), 0755); err != nil {
		return fmt.Errorf("creating spool directory: %w", err)
	}

	fmt.Println("Pulse initialized successfully!")
	return nil
}
