package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"chatvault/internal/ingest"
)

var ingestOutput string

func init() {
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "", "output database path (default <directory>/chat_history.sqlite)")
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <directory>",
	Short: "Convert a directory of chat-export JSON files into a SQLite store",
	Long: `Recursively discovers *.json files under the given directory, normalizes
each export into a canonical chat record, and upserts it into the store.
Re-ingesting an unchanged directory replaces rows instead of duplicating
them.

Examples:
  # Ingest into <directory>/chat_history.sqlite
  chatvault ingest ~/exports

  # Ingest into an explicit database (.sqlite appended if missing)
  chatvault ingest ~/exports -o history`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	directory, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	outputPath := ingest.ResolveOutputPath(directory, ingestOutput)

	store, err := sqliteOpenForIngest(outputPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runner := ingest.NewRunner(store, logger)
	report, err := runner.Run(cmd.Context(), directory)
	if err != nil {
		return fmt.Errorf("ingestion aborted: %w", err)
	}
	report.OutputPath = outputPath

	fmt.Print(report.Summary())
	return nil
}
