package domain

// Message is one entry of an imported conversation. Export formats disagree
// on field names and nesting, so no schema is enforced beyond "decoded JSON
// value"; extraction of displayable text lives in internal/extract.
type Message map[string]any

// ChatRecord is the canonical, storage-ready form of one imported chat.
// Messages holds the raw JSON array blob exactly as persisted; it is decoded
// lazily by the search engine so a corrupt blob never fails a whole page.
type ChatRecord struct {
	ID        int64  `json:"id"`
	BotName   string `json:"bot_name"`
	ChatTitle string `json:"chat_title"`
	ChatID    string `json:"chat_id"`
	Messages  string `json:"-"`
}

// ChatResult is one search hit with its decoded messages and the heuristic
// occurrence count used for same-page ordering.
type ChatResult struct {
	BotName     string    `json:"bot_name"`
	ChatTitle   string    `json:"chat_title"`
	ChatID      string    `json:"chat_id"`
	Messages    []Message `json:"messages"`
	Occurrences int       `json:"occurrences"`
}

type ResultPage struct {
	Results      []ChatResult `json:"results"`
	TotalResults int          `json:"total_results"`
	Page         int          `json:"page"`
	PageSize     int          `json:"page_size"`
	TotalPages   int          `json:"total_pages"`
}

// EmptyPage is the zeroed page the service boundary answers with when the
// backing store is unavailable.
func EmptyPage(page, pageSize int) ResultPage {
	return ResultPage{
		Results:      []ChatResult{},
		TotalResults: 0,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   0,
	}
}
