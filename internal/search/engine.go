package search

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"chatvault/internal/domain"
	"chatvault/internal/extract"
	"chatvault/internal/store/sqlite"
)

const DefaultPageSize = 20

// Engine executes compiled filters against the store and ranks the
// resulting page.
type Engine struct {
	store  *sqlite.Store
	logger zerolog.Logger
}

func NewEngine(store *sqlite.Store, logger zerolog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// Search runs the filter, paginates, and scores each surviving record.
// Rows whose messages blob no longer parses are dropped from the page, not
// reported. A backing-store failure is returned to the caller; the HTTP
// boundary converts it into a zeroed page.
func (e *Engine) Search(ctx context.Context, filter Filter, page, pageSize int) (domain.ResultPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	where, args := buildPredicate(filter)

	total, err := e.store.CountRecords(ctx, where, args)
	if err != nil {
		return domain.EmptyPage(page, pageSize), err
	}

	records, err := e.store.QueryRecords(ctx, where, args, pageSize, (page-1)*pageSize)
	if err != nil {
		return domain.EmptyPage(page, pageSize), err
	}

	needle := strings.ToLower(filter.Raw)
	results := make([]domain.ChatResult, 0, len(records))
	for _, record := range records {
		var messages []domain.Message
		if err := json.Unmarshal([]byte(record.Messages), &messages); err != nil {
			e.logger.Debug().
				Str("chat_id", record.ChatID).
				Err(err).
				Msg("dropping record with malformed messages blob")
			continue
		}
		results = append(results, domain.ChatResult{
			BotName:     record.BotName,
			ChatTitle:   record.ChatTitle,
			ChatID:      record.ChatID,
			Messages:    messages,
			Occurrences: countOccurrences(messages, needle),
		})
	}

	// Relevance orders within the page only; ties keep storage order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Occurrences > results[j].Occurrences
	})

	return domain.ResultPage{
		Results:      results,
		TotalResults: total,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   (total + pageSize - 1) / pageSize,
	}, nil
}

// countOccurrences is the relevance heuristic: the number of messages whose
// extracted text contains the raw query as a case-insensitive substring. It
// deliberately ignores regex/boolean structure; see the package tests.
func countOccurrences(messages []domain.Message, needle string) int {
	if needle == "" {
		return 0
	}
	count := 0
	for _, msg := range messages {
		text := extract.Text(map[string]any(msg))
		if strings.Contains(strings.ToLower(text), needle) {
			count++
		}
	}
	return count
}

func buildPredicate(filter Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.Bot != "" {
		conds = append(conds, "bot_name = ?")
		args = append(args, filter.Bot)
	}

	for _, term := range filter.Required {
		cond, arg := matchCondition(filter.Mode, term, false)
		conds = append(conds, cond)
		args = append(args, arg)
	}
	for _, term := range filter.Forbidden {
		cond, arg := matchCondition(filter.Mode, term, true)
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if len(filter.Optional) > 0 {
		group := make([]string, 0, len(filter.Optional))
		for _, term := range filter.Optional {
			cond, arg := matchCondition(filter.Mode, term, false)
			group = append(group, cond)
			args = append(args, arg)
		}
		conds = append(conds, "("+strings.Join(group, " OR ")+")")
	}

	return strings.Join(conds, " AND "), args
}

func matchCondition(mode Mode, term string, negate bool) (string, any) {
	if mode == ModeRegex {
		if negate {
			return "messages NOT REGEXP ?", term
		}
		return "messages REGEXP ?", term
	}
	if negate {
		return "LOWER(messages) NOT LIKE LOWER(?)", "%" + term + "%"
	}
	return "LOWER(messages) LIKE LOWER(?)", "%" + term + "%"
}

// MatchOptions are the flag-driven knobs of the one-shot and interactive
// CLI search paths.
type MatchOptions struct {
	Bot           string
	Regex         bool
	CaseSensitive bool
	WholeWord     bool
}

// Find returns every chat matching one term under the given options, with
// per-chat counts of matching messages. An invalid regex pattern falls back
// to a literal search for that query instead of failing it.
func (e *Engine) Find(ctx context.Context, term string, opts MatchOptions) ([]domain.ChatResult, error) {
	var (
		conds []string
		args  []any
	)
	if opts.Bot != "" {
		conds = append(conds, "bot_name = ?")
		args = append(args, opts.Bot)
	}

	usePattern := opts.Regex || opts.WholeWord
	if usePattern {
		pattern := term
		if !opts.Regex {
			pattern = regexp.QuoteMeta(term)
		}
		if opts.WholeWord {
			pattern = `\b(?:` + pattern + `)\b`
		}
		if _, err := regexp.Compile(pattern); err != nil {
			e.logger.Warn().Str("pattern", pattern).Err(err).Msg("invalid pattern, falling back to literal search")
			usePattern = false
		} else {
			conds = append(conds, "messages REGEXP ?")
			args = append(args, pattern)
		}
	}
	if !usePattern {
		if opts.CaseSensitive {
			conds = append(conds, "instr(messages, ?) > 0")
			args = append(args, term)
		} else {
			conds = append(conds, "LOWER(messages) LIKE LOWER(?)")
			args = append(args, "%"+term+"%")
		}
	}

	// LIMIT -1 disables the limit; the CLI table wants every matching chat.
	records, err := e.store.QueryRecords(ctx, strings.Join(conds, " AND "), args, -1, 0)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ChatResult, 0, len(records))
	for _, record := range records {
		var messages []domain.Message
		if err := json.Unmarshal([]byte(record.Messages), &messages); err != nil {
			e.logger.Debug().
				Str("chat_id", record.ChatID).
				Err(err).
				Msg("dropping record with malformed messages blob")
			continue
		}
		results = append(results, domain.ChatResult{
			BotName:     record.BotName,
			ChatTitle:   record.ChatTitle,
			ChatID:      record.ChatID,
			Messages:    messages,
			Occurrences: countMatches(messages, term, opts.CaseSensitive),
		})
	}
	return results, nil
}

func countMatches(messages []domain.Message, term string, caseSensitive bool) int {
	needle := term
	if !caseSensitive {
		needle = strings.ToLower(term)
	}
	count := 0
	for _, msg := range messages {
		text := extract.Text(map[string]any(msg))
		if !caseSensitive {
			text = strings.ToLower(text)
		}
		if strings.Contains(text, needle) {
			count++
		}
	}
	return count
}
