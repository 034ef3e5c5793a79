package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatvault/internal/domain"
	"chatvault/internal/store/sqlite"
)

func newTestEngine(t *testing.T) (*Engine, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return NewEngine(store, zerolog.Nop()), store
}

func seed(t *testing.T, store *sqlite.Store, records ...domain.ChatRecord) {
	t.Helper()
	for _, record := range records {
		require.NoError(t, store.UpsertChat(context.Background(), record))
	}
}

func TestSearchRequiredAndForbidden(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store, domain.ChatRecord{
		BotName: "gpt", ChatTitle: "t1", ChatID: "abc",
		Messages: `[{"text":"hello world"}]`,
	})

	page, err := engine.Search(context.Background(), Parse("+hello -goodbye"), 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "t1", page.Results[0].ChatTitle)
	assert.Equal(t, 1, page.TotalResults)

	page, err = engine.Search(context.Background(), Parse("+goodbye"), 1, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Results)
	assert.Equal(t, 0, page.TotalResults)
	assert.Equal(t, 0, page.TotalPages)
}

func TestSearchOptionalTerms(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store,
		domain.ChatRecord{BotName: "gpt", ChatID: "c1", Messages: `[{"text":"about apples"}]`},
		domain.ChatRecord{BotName: "gpt", ChatID: "c2", Messages: `[{"text":"about oranges"}]`},
		domain.ChatRecord{BotName: "gpt", ChatID: "c3", Messages: `[{"text":"about pears"}]`},
	)

	// At least one optional term must match.
	page, err := engine.Search(context.Background(), Parse("apples oranges"), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalResults)
}

func TestSearchBotFilter(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store,
		domain.ChatRecord{BotName: "gpt", ChatID: "c1", Messages: `[{"text":"shared term"}]`},
		domain.ChatRecord{BotName: "gemini", ChatID: "c2", Messages: `[{"text":"shared term"}]`},
	)

	filter := Parse("shared")
	filter.Bot = "gemini"

	page, err := engine.Search(context.Background(), filter, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "gemini", page.Results[0].BotName)
}

func TestSearchEmptyQueryBrowsesAll(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store,
		domain.ChatRecord{BotName: "gpt", ChatID: "c1", Messages: `[]`},
		domain.ChatRecord{BotName: "gpt", ChatID: "c2", Messages: `[]`},
	)

	page, err := engine.Search(context.Background(), Parse(""), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalResults)
	assert.Len(t, page.Results, 2)
}

func TestSearchDropsMalformedBlobs(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store,
		domain.ChatRecord{BotName: "gpt", ChatID: "good", Messages: `[{"text":"fine"}]`},
		domain.ChatRecord{BotName: "gpt", ChatID: "bad", Messages: `{not json`},
	)

	page, err := engine.Search(context.Background(), Parse(""), 1, 20)
	require.NoError(t, err)
	// The malformed row is silently omitted; the rest of the page survives.
	require.Len(t, page.Results, 1)
	assert.Equal(t, "good", page.Results[0].ChatID)
}

func TestSearchPaginationLaw(t *testing.T) {
	engine, store := newTestEngine(t)
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		seed(t, store, domain.ChatRecord{BotName: "gpt", ChatID: id, Messages: `[{"text":"common"}]`})
	}

	filter := Parse("common")
	pageSize := 2

	first, err := engine.Search(context.Background(), filter, 1, pageSize)
	require.NoError(t, err)
	assert.Equal(t, 5, first.TotalResults)
	assert.Equal(t, 3, first.TotalPages)

	seen := 0
	for page := 1; page <= first.TotalPages; page++ {
		result, err := engine.Search(context.Background(), filter, page, pageSize)
		require.NoError(t, err)
		seen += len(result.Results)
	}
	assert.Equal(t, first.TotalResults, seen)
}

func TestSearchRelevanceOrdering(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store,
		domain.ChatRecord{BotName: "gpt", ChatTitle: "once", ChatID: "c1",
			Messages: `[{"text":"hello"},{"text":"other"}]`},
		domain.ChatRecord{BotName: "gpt", ChatTitle: "thrice", ChatID: "c2",
			Messages: `[{"text":"hello a"},{"text":"hello b"},{"text":"Hello c"}]`},
	)

	page, err := engine.Search(context.Background(), Parse("hello"), 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "thrice", page.Results[0].ChatTitle)
	assert.Equal(t, 3, page.Results[0].Occurrences)
	assert.Equal(t, 1, page.Results[1].Occurrences)
}

func TestSearchTiesKeepStorageOrder(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store,
		domain.ChatRecord{BotName: "gpt", ChatID: "first", Messages: `[{"text":"tie"}]`},
		domain.ChatRecord{BotName: "gpt", ChatID: "second", Messages: `[{"text":"tie"}]`},
	)

	page, err := engine.Search(context.Background(), Parse("tie"), 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "first", page.Results[0].ChatID)
	assert.Equal(t, "second", page.Results[1].ChatID)
}

func TestSearchRegexMode(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store,
		domain.ChatRecord{BotName: "gpt", ChatID: "c1", Messages: `[{"text":"import os"}]`},
		domain.ChatRecord{BotName: "gpt", ChatID: "c2", Messages: `[{"text":"py import"}]`},
	)

	filter := Parse(`import\s+os`)
	require.Equal(t, ModeRegex, filter.Mode)

	page, err := engine.Search(context.Background(), filter, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "c1", page.Results[0].ChatID)
}

func TestFindRegex(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store,
		domain.ChatRecord{BotName: "gpt", ChatTitle: "code", ChatID: "c1", Messages: `[{"text":"import os"}]`},
		domain.ChatRecord{BotName: "gpt", ChatTitle: "prose", ChatID: "c2", Messages: `[{"text":"we import goods"}]`},
	)

	results, err := engine.Find(context.Background(), `import o\w`, MatchOptions{Regex: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "code", results[0].ChatTitle)
}

func TestFindInvalidRegexFallsBackToLiteral(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store, domain.ChatRecord{BotName: "gpt", ChatID: "c1", Messages: `[{"text":"literal ( paren"}]`})

	results, err := engine.Find(context.Background(), "(", MatchOptions{Regex: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestFindWholeWord(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store,
		domain.ChatRecord{BotName: "gpt", ChatID: "c1", Messages: `[{"text":"the cat sat"}]`},
		domain.ChatRecord{BotName: "gpt", ChatID: "c2", Messages: `[{"text":"concatenate"}]`},
	)

	results, err := engine.Find(context.Background(), "cat", MatchOptions{WholeWord: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ChatID)
}

func TestFindCaseSensitive(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store,
		domain.ChatRecord{BotName: "gpt", ChatID: "c1", Messages: `[{"text":"Hello"}]`},
		domain.ChatRecord{BotName: "gpt", ChatID: "c2", Messages: `[{"text":"hello"}]`},
	)

	results, err := engine.Find(context.Background(), "Hello", MatchOptions{CaseSensitive: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ChatID)

	results, err = engine.Find(context.Background(), "hello", MatchOptions{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestFindOccurrenceCounts(t *testing.T) {
	engine, store := newTestEngine(t)
	seed(t, store, domain.ChatRecord{BotName: "gpt", ChatID: "c1",
		Messages: `[{"text":"python one"},{"text":"python two"},{"text":"none"}]`})

	results, err := engine.Find(context.Background(), "python", MatchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Occurrences)
}
