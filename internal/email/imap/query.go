package imap

import (
	"strings"
	"time"

	"github.com/emersion/go-imap"
)

// queryDateLayouts are the date forms accepted by after:/before:
var queryDateLayouts = []string{"2006/01/02", "2006-01-02", "2006/1/2"}

// BuildCriteria translates a Gmail-style query into IMAP SEARCH criteria.
// Supported operators: from:, to:, subject:, after:, before:. Anything else
// becomes a full-text term. Values may be double-quoted.
func BuildCriteria(query string) *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()

	for _, token := range tokenize(query) {
		key, value, found := strings.Cut(token, ":")
		if !found || value == "" {
			criteria.Text = append(criteria.Text, unquote(token))
			continue
		}
		value = unquote(value)

		switch strings.ToLower(key) {
		case "from":
			criteria.Header.Add("From", value)
		case "to":
			criteria.Header.Add("To", value)
		case "subject":
			criteria.Header.Add("Subject", value)
		case "after":
			if t, ok := parseQueryDate(value); ok {
				criteria.Since = t
			}
		case "before":
			if t, ok := parseQueryDate(value); ok {
				criteria.Before = t
			}
		default:
			criteria.Text = append(criteria.Text, unquote(token))
		}
	}

	return criteria
}

func parseQueryDate(s string) (time.Time, bool) {
	for _, layout := range queryDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// tokenize splits on whitespace outside double quotes
func tokenize(query string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false

	for _, r := range query {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case (r == ' ' || r == '\t' || r == '\n') && !inQuotes:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}
