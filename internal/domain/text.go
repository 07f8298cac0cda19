package domain

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing publish dates found in sitemaps
// and page markup. Sources disagree wildly on formats.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02.01.2006",
	"2006/01/02",
}

// ParseDate parses a publish date string, normalizing to UTC. Values without
// a zone are taken as UTC, matching sitemap conventions.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// CollapseWhitespace folds runs of whitespace into single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ShortenSummary trims a description down to at most its first two sentences,
// with whitespace collapsed.
func ShortenSummary(text string) string {
	cleaned := CollapseWhitespace(text)
	if cleaned == "" {
		return ""
	}

	var sentences []string
	var buf strings.Builder
	for _, r := range cleaned {
		buf.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			sentences = append(sentences, strings.TrimSpace(buf.String()))
			buf.Reset()
		}
		if len(sentences) == 2 {
			break
		}
	}
	if buf.Len() > 0 && len(sentences) < 2 {
		sentences = append(sentences, strings.TrimSpace(buf.String()))
	}

	kept := sentences[:0]
	for _, s := range sentences {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, " ")
}
