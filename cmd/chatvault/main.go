// Package main implements the chatvault CLI: chat-export ingestion, search,
// and the HTTP search service.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"chatvault/internal/config"
	"chatvault/internal/store/sqlite"
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chatvault",
	Short: "Ingest and search chat-export history",
	Long: `chatvault converts directories of chat-export JSON files into a SQLite
store and searches across that history by literal text, boolean term
combination, or regular expression.`,
	Version:       config.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if cfg.IsDevelopment() {
			logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
				With().
				Timestamp().
				Logger()
		} else {
			logger = zerolog.New(os.Stderr).
				With().
				Timestamp().
				Logger()
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
}

// sqliteOpenForIngest opens (creating if needed) the ingestion target and
// ensures its schema. Safe to run against a store from a prior run.
func sqliteOpenForIngest(dbPath string) (*sqlite.Store, error) {
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate database %s: %w", dbPath, err)
	}
	return store, nil
}

// openExistingStore opens a store that must already have been created by an
// ingestion run; a missing file is a startup failure reported with the
// resolved path.
func openExistingStore(dbPath string) (*sqlite.Store, error) {
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database %s not found: %w", dbPath, err)
	}
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}
	return store, nil
}
