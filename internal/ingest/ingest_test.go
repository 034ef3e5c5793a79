package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatvault/internal/store/sqlite"
)

func newTestRunner(t *testing.T) (*Runner, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "out.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return NewRunner(store, zerolog.Nop()), store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/exports", "chat_history.sqlite"), ResolveOutputPath("/exports", ""))

	resolved := ResolveOutputPath("/exports", "/tmp/history")
	assert.Equal(t, "/tmp/history.sqlite", resolved)

	resolved = ResolveOutputPath("/exports", "/tmp/history.sqlite")
	assert.Equal(t, "/tmp/history.sqlite", resolved)
}

func TestRunIngestsDirectory(t *testing.T) {
	runner, store := newTestRunner(t)
	dir := t.TempDir()

	writeFile(t, dir, filepath.Join("gemini", "one.json"),
		`{"chat_title":"t1","chat_id":"abc","messages":[{"text":"hello world"}]}`)
	writeFile(t, dir, filepath.Join("gpt", "two.json"),
		`[{"text":"list shaped"}]`)
	writeFile(t, dir, "notes.txt", "not an export")

	report, err := runner.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, report.FilesSeen)
	assert.Equal(t, 2, report.ChatsSaved)
	assert.Empty(t, report.Skipped)

	record, err := store.GetChat(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "t1", record.ChatTitle)
	assert.Equal(t, "gemini", record.BotName)
}

func TestRunSkipsMalformedFiles(t *testing.T) {
	runner, store := newTestRunner(t)
	dir := t.TempDir()

	writeFile(t, dir, filepath.Join("bot", "good.json"), `[{"text":"fine"}]`)
	writeFile(t, dir, filepath.Join("bot", "broken.json"), `{"chat_title": unterminated`)
	writeFile(t, dir, filepath.Join("bot", "empty.json"), `{}`)

	report, err := runner.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, report.FilesSeen)
	assert.Equal(t, 1, report.ChatsSaved)
	assert.Len(t, report.Skipped, 2)

	total, err := store.CountRecords(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestRunRoundTripIsStable(t *testing.T) {
	runner, store := newTestRunner(t)
	dir := t.TempDir()

	writeFile(t, dir, filepath.Join("bot", "a.json"), `[{"text":"one"}]`)
	writeFile(t, dir, filepath.Join("bot", "b.json"),
		`{"chat_id":"指定","messages":[{"text":"two"}]}`)

	_, err := runner.Run(context.Background(), dir)
	require.NoError(t, err)
	first, err := store.CountRecords(context.Background(), "", nil)
	require.NoError(t, err)

	// Re-ingesting the identical directory replaces rows, never duplicates.
	_, err = runner.Run(context.Background(), dir)
	require.NoError(t, err)
	second, err := store.CountRecords(context.Background(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, second)
}

func TestSummaryTruncatesPreviews(t *testing.T) {
	report := Report{
		FilesSeen:  15,
		ChatsSaved: 15,
		OutputPath: "/tmp/x.sqlite",
	}
	for i := 0; i < 15; i++ {
		report.Processed = append(report.Processed, fmt.Sprintf("/exports/bot/file%02d.json", i))
	}

	summary := report.Summary()
	assert.Contains(t, summary, "file09")
	assert.NotContains(t, summary, "file10")
	assert.Contains(t, summary, "... and 5 more")
}

func TestSummaryListsSkipped(t *testing.T) {
	report := Report{
		FilesSeen:  1,
		OutputPath: "/tmp/x.sqlite",
		Skipped:    []string{"/exports/bot/bad.json: invalid JSON"},
	}
	summary := report.Summary()
	assert.Contains(t, summary, "Skipped files:")
	assert.Contains(t, summary, "bad.json: invalid JSON")
}
