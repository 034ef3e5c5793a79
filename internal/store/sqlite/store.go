package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"chatvault/internal/domain"

	sqlite3 "modernc.org/sqlite"
)

// ErrNotFound is returned by chat lookups when no row matches.
var ErrNotFound = errors.New("chat not found")

type Store struct {
	db *sql.DB
}

func init() {
	// SQLite rewrites `x REGEXP y` into regexp(y, x); registering the scalar
	// function makes the operator usable anywhere a text predicate fits.
	// Matching is case-insensitive to mirror literal-mode searches.
	sqlite3.MustRegisterDeterministicScalarFunction("regexp", 2, regexpFunc)
}

// regexpCacheLimit bounds the compiled-pattern cache; once reached the cache
// is dropped wholesale rather than evicted piecemeal, which keeps the hot
// path to a single map lookup.
const regexpCacheLimit = 512

var (
	regexpCacheMu sync.RWMutex
	regexpCache   = map[string]*regexp.Regexp{}
)

func regexpFunc(_ *sqlite3.FunctionContext, args []driver.Value) (driver.Value, error) {
	pattern := valueText(args[0])
	subject := valueText(args[1])

	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	if re.MatchString(subject) {
		return int64(1), nil
	}
	return int64(0), nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	regexpCacheMu.RLock()
	re, ok := regexpCache[pattern]
	regexpCacheMu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	regexpCacheMu.Lock()
	if len(regexpCache) >= regexpCacheLimit {
		regexpCache = map[string]*regexp.Regexp{}
	}
	regexpCache[pattern] = re
	regexpCacheMu.Unlock()
	return re, nil
}

func valueText(v driver.Value) string {
	switch value := v.(type) {
	case string:
		return value
	case []byte:
		return string(value)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", value)
	}
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}
	clean := filepath.Clean(dbPath)
	if dir := filepath.Dir(clean); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", clean)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate idempotently creates the chat_history table. The column set is the
// full on-disk contract; stores produced by prior runs stay readable. The
// unique index backs the replace-on-conflict upsert.
func (s *Store) Migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS chat_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	bot_name TEXT,
	chat_title TEXT,
	chat_id TEXT,
	messages TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_chat_history_chat_id ON chat_history(chat_id);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// UpsertChat inserts the record or replaces the existing row with the same
// chat_id. Each call is a single statement, so concurrent readers never see
// a half-written row.
func (s *Store) UpsertChat(ctx context.Context, record domain.ChatRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO chat_history(bot_name, chat_title, chat_id, messages)
VALUES(?, ?, ?, ?)
ON CONFLICT(chat_id) DO UPDATE SET
	bot_name = excluded.bot_name,
	chat_title = excluded.chat_title,
	messages = excluded.messages
`, record.BotName, record.ChatTitle, record.ChatID, record.Messages)
	return err
}

func (s *Store) ListBots(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT bot_name
FROM chat_history
WHERE bot_name IS NOT NULL AND bot_name != ''
ORDER BY bot_name ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bots := make([]string, 0, 8)
	for rows.Next() {
		var bot string
		if err := rows.Scan(&bot); err != nil {
			return nil, err
		}
		bots = append(bots, bot)
	}
	return bots, rows.Err()
}

// CountRecords counts rows matching the given predicate. An empty predicate
// counts the whole table.
func (s *Store) CountRecords(ctx context.Context, where string, args []any) (int, error) {
	query := `SELECT COUNT(*) FROM chat_history`
	if where != "" {
		query += " WHERE " + where
	}
	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// QueryRecords fetches one page of rows matching the predicate, in storage
// order.
func (s *Store) QueryRecords(ctx context.Context, where string, args []any, limit, offset int) ([]domain.ChatRecord, error) {
	query := `SELECT id, bot_name, chat_title, chat_id, messages FROM chat_history`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id ASC LIMIT ? OFFSET ?"
	args = append(append([]any{}, args...), limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// A negative limit means unlimited to SQLite; it cannot size the slice.
	capHint := limit
	if capHint < 0 {
		capHint = 0
	}
	records := make([]domain.ChatRecord, 0, capHint)
	for rows.Next() {
		var record domain.ChatRecord
		if err := rows.Scan(&record.ID, &record.BotName, &record.ChatTitle, &record.ChatID, &record.Messages); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetChat looks a chat up by its external id alone.
func (s *Store) GetChat(ctx context.Context, chatID string) (domain.ChatRecord, error) {
	return s.getChat(ctx, `
SELECT id, bot_name, chat_title, chat_id, messages
FROM chat_history
WHERE chat_id = ?
`, chatID)
}

// GetBotChat looks a chat up by the natural (bot_name, chat_id) key.
func (s *Store) GetBotChat(ctx context.Context, botName, chatID string) (domain.ChatRecord, error) {
	return s.getChat(ctx, `
SELECT id, bot_name, chat_title, chat_id, messages
FROM chat_history
WHERE bot_name = ? AND chat_id = ?
`, botName, chatID)
}

func (s *Store) getChat(ctx context.Context, query string, args ...any) (domain.ChatRecord, error) {
	var record domain.ChatRecord
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&record.ID, &record.BotName, &record.ChatTitle, &record.ChatID, &record.Messages)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ChatRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.ChatRecord{}, err
	}
	return record, nil
}
