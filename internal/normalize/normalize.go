// Package normalize converts one heterogeneous chat-export document into a
// canonical chat record ready for storage.
package normalize

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"chatvault/internal/domain"
)

// SkipError marks a document that ingestion should record and move past
// rather than abort on.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return e.Reason
}

func skip(format string, args ...any) *SkipError {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}

// Document normalizes a parsed JSON value of unknown shape into a ChatRecord.
// sourcePath is the originating file; it seeds the bot name, title, and the
// deterministic chat id fallbacks so re-runs on unchanged files reproduce the
// same id.
func Document(raw any, sourcePath string) (domain.ChatRecord, error) {
	if raw == nil {
		return domain.ChatRecord{}, skip("empty document")
	}

	switch doc := raw.(type) {
	case []any:
		if len(doc) == 0 {
			return domain.ChatRecord{}, skip("empty document")
		}
		return fromList(doc, sourcePath)
	case map[string]any:
		if len(doc) == 0 {
			return domain.ChatRecord{}, skip("empty document")
		}
		return fromObject(doc, sourcePath)
	default:
		return domain.ChatRecord{}, skip("unsupported top-level value %T", raw)
	}
}

func fromList(messages []any, sourcePath string) (domain.ChatRecord, error) {
	blob, err := encodeMessages(messages)
	if err != nil {
		return domain.ChatRecord{}, skip("encode messages: %v", err)
	}
	return domain.ChatRecord{
		BotName:   filepath.Base(filepath.Dir(sourcePath)),
		ChatTitle: fileStem(sourcePath),
		ChatID:    contentHash(sourcePath, strconv.Itoa(len(messages))),
		Messages:  blob,
	}, nil
}

func fromObject(doc map[string]any, sourcePath string) (domain.ChatRecord, error) {
	title := stringField(doc, "chat_title", "title")
	if title == "" {
		title = fileStem(sourcePath)
	}

	chatID := stringField(doc, "chat_id", "id")
	if chatID == "" {
		chatID = contentHash(sourcePath, title)
	}

	messages := messageList(doc)
	blob, err := encodeMessages(messages)
	if err != nil {
		return domain.ChatRecord{}, skip("encode messages: %v", err)
	}

	return domain.ChatRecord{
		BotName:   filepath.Base(filepath.Dir(sourcePath)),
		ChatTitle: title,
		ChatID:    chatID,
		Messages:  blob,
	}, nil
}

// messageList resolves the message sequence of an object-shaped export.
// Exports that carry no messages field, or a non-array one, are wrapped as a
// single-message list so the stored blob always decodes to a sequence.
func messageList(doc map[string]any) []any {
	value, ok := doc["messages"]
	if !ok || value == nil {
		return []any{doc}
	}
	if list, ok := value.([]any); ok {
		return list
	}
	return []any{value}
}

// encodeMessages serializes the message list as a stable JSON blob with
// non-ASCII characters preserved.
func encodeMessages(messages []any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(messages); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// stringField returns the first present key rendered as a string. Numeric
// ids from exports that store them unquoted are stringified, not dropped.
func stringField(doc map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := doc[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// contentHash produces the deterministic chat id used when the export itself
// carries none. md5 keeps ids identical to stores produced by prior runs.
func contentHash(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(sum[:])
}
