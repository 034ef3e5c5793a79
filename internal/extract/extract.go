// Package extract turns a weakly-typed chat message into displayable text.
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// fieldOrder is the fixed probe order for top-level message fields. Keeping
// it as an explicit table (not reflection) makes extraction reproducible.
var fieldOrder = []string{"text", "content", "message", "body", "description"}

// nestedFieldOrder is probed when a matched field is itself an object.
var nestedFieldOrder = []string{"text", "content", "value"}

// Text returns the displayable text of one message value. It is total: any
// JSON-representable value yields a string, falling back to a stringified
// form of the whole value when no known field carries text.
func Text(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		for _, key := range fieldOrder {
			candidate, ok := v[key]
			if !ok {
				continue
			}
			if text := fieldText(candidate); text != "" {
				return text
			}
		}
		return Stringify(v)
	default:
		return Stringify(value)
	}
}

func fieldText(candidate any) string {
	switch field := candidate.(type) {
	case string:
		return field
	case map[string]any:
		for _, key := range nestedFieldOrder {
			if nested, ok := field[key]; ok {
				if text, ok := nested.(string); ok && text != "" {
					return text
				}
			}
		}
		return Stringify(field)
	case nil:
		return ""
	default:
		return Stringify(field)
	}
}

// Stringify renders an arbitrary decoded JSON value as text. Non-ASCII
// characters are preserved, not escaped.
func Stringify(value any) string {
	if value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return text
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Sprintf("%v", value)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
