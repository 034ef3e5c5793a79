// Package search compiles raw query strings and executes them against the
// chat history store.
package search

import (
	"net/url"
	"regexp"
	"strings"
)

type Mode string

const (
	// ModeLiteral matches terms as case-insensitive substrings.
	ModeLiteral Mode = "literal"
	// ModeRegex matches terms through the store's REGEXP predicate.
	ModeRegex Mode = "regex"
)

// Filter is the engine-ready form of a parsed query. A term prefixed with
// `+` must match, `-` must not match, and bare terms are optional: a record
// qualifies when at least one of them matches (if any exist at all).
type Filter struct {
	Raw       string
	Required  []string
	Forbidden []string
	Optional  []string
	Bot       string
	Mode      Mode
}

// MatchesAll reports whether the filter carries no terms, i.e. browses every
// record (optionally narrowed to one bot).
func (f Filter) MatchesAll() bool {
	return len(f.Required) == 0 && len(f.Forbidden) == 0 && len(f.Optional) == 0
}

// Parse compiles a raw query string. The input is URL-decoded first, then
// tokenized on whitespace.
//
// Mode selection is a preserved heuristic: when the whole raw query compiles
// as a regular expression, regex matching is preferred over literal
// substrings. Free text that happens to be a valid pattern is therefore
// treated as a pattern; callers wanting certainty must quote metacharacters.
func Parse(raw string) Filter {
	// PathUnescape, not QueryUnescape: a leading + marks a required term and
	// must not be folded into a space.
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}

	filter := Filter{Raw: decoded, Mode: ModeLiteral}
	if _, err := regexp.Compile(decoded); err == nil {
		filter.Mode = ModeRegex
	}

	for _, token := range strings.Fields(decoded) {
		switch {
		case strings.HasPrefix(token, "+"):
			if term := token[1:]; term != "" {
				filter.Required = append(filter.Required, term)
			}
		case strings.HasPrefix(token, "-"):
			if term := token[1:]; term != "" {
				filter.Forbidden = append(filter.Forbidden, term)
			}
		default:
			filter.Optional = append(filter.Optional, token)
		}
	}
	return filter
}
