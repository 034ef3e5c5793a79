// Package ingest walks a directory of chat-export JSON files and loads each
// one into the store as an independent unit.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"chatvault/internal/metrics"
	"chatvault/internal/normalize"
	"chatvault/internal/store/sqlite"
)

// previewLimit bounds the per-category file lists shown in the final report.
const previewLimit = 10

// Report tallies one ingestion run.
type Report struct {
	FilesSeen  int
	ChatsSaved int
	Processed  []string
	Skipped    []string
	OutputPath string
}

// Runner ingests export files into an open store.
type Runner struct {
	store  *sqlite.Store
	logger zerolog.Logger
}

func NewRunner(store *sqlite.Store, logger zerolog.Logger) *Runner {
	return &Runner{store: store, logger: logger}
}

// ResolveOutputPath applies the CLI defaults: no explicit output lands the
// store next to the exports, and a missing .sqlite extension is appended.
func ResolveOutputPath(directory, output string) string {
	if output == "" {
		return filepath.Join(directory, "chat_history.sqlite")
	}
	if !strings.HasSuffix(strings.ToLower(output), ".sqlite") {
		output += ".sqlite"
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return output
	}
	return abs
}

// Run discovers *.json files under directory recursively and upserts each
// normalized chat. A malformed file is recorded and skipped; it never rolls
// back previously ingested files from the same run.
func (r *Runner) Run(ctx context.Context, directory string) (Report, error) {
	var report Report

	err := filepath.WalkDir(directory, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		report.FilesSeen++

		if err := r.ingestFile(ctx, path); err != nil {
			var skipErr *normalize.SkipError
			if !errors.As(err, &skipErr) {
				// Store-level failures are not per-file problems; abort.
				return err
			}
			metrics.FilesSkipped.Inc()
			report.Skipped = append(report.Skipped, fmt.Sprintf("%s: %v", path, err))
			r.logger.Warn().Str("file", path).Err(err).Msg("skipping export file")
			return nil
		}

		metrics.ChatsIngested.Inc()
		report.ChatsSaved++
		report.Processed = append(report.Processed, path)
		return nil
	})
	return report, err
}

func (r *Runner) ingestFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &normalize.SkipError{Reason: fmt.Sprintf("read failed: %v", err)}
	}

	// UseNumber keeps unquoted chat ids intact instead of mangling them
	// through float64.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &normalize.SkipError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	record, err := normalize.Document(doc, path)
	if err != nil {
		return err
	}
	return r.store.UpsertChat(ctx, record)
}

// Summary renders the run report in the shape the ingestion CLI prints:
// totals, then truncated processed and skipped lists.
func (report Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Conversion complete:\n")
	fmt.Fprintf(&b, "  files seen:  %d\n", report.FilesSeen)
	fmt.Fprintf(&b, "  chats saved: %d\n", report.ChatsSaved)
	fmt.Fprintf(&b, "  database:    %s\n", report.OutputPath)

	if len(report.Processed) > 0 {
		fmt.Fprintf(&b, "\nProcessed files:\n")
		writePreview(&b, report.Processed, "  + ")
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped files:\n")
		writePreview(&b, report.Skipped, "  - ")
	}
	return b.String()
}

func writePreview(b *strings.Builder, entries []string, prefix string) {
	for i, entry := range entries {
		if i == previewLimit {
			fmt.Fprintf(b, "  ... and %d more\n", len(entries)-previewLimit)
			return
		}
		fmt.Fprintf(b, "%s%s\n", prefix, entry)
	}
}
