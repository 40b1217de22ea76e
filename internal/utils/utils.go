// internal/utils/utils.go

package utils

import (
	"strings"
	"time"
	"unicode/utf8"
)

// SummarizeToLength trims the text to at most maxLength characters.
// If the text exceeds maxLength, it truncates and appends '...'.
func SummarizeToLength(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	if maxLength <= 3 {
		return string([]rune(text)[:maxLength])
	}
	return string([]rune(text)[:maxLength-3]) + "..."
}

// ExtractKeywords extracts keywords from the given text by removing common stopwords.
// This is a simple implementation and can be enhanced with more sophisticated NLP techniques.
func ExtractKeywords(text string) string {
	stopwords := map[string]struct{}{
		"the": {}, "is": {}, "at": {}, "which": {}, "on": {}, "and": {},
		"a": {}, "an": {}, "in": {}, "with": {}, "to": {}, "from": {},
		"by": {}, "for": {}, "of": {}, "or": {}, "as": {}, "that": {},
		"this": {}, "it": {}, "be": {}, "are": {}, "was": {}, "were": {},
		"make": {}, "add": {}, "into": {}, "like": {}, "very": {}, "some": {},
	}

	words := strings.Fields(strings.ToLower(text))
	var keywords []string
	seen := make(map[string]struct{})
	for _, word := range words {
		cleanWord := strings.Trim(word, ".,!?\"'()[]{};:")
		if _, isStopword := stopwords[cleanWord]; isStopword || len(cleanWord) <= 2 {
			continue
		}
		if _, dup := seen[cleanWord]; dup {
			continue
		}
		seen[cleanWord] = struct{}{}
		keywords = append(keywords, cleanWord)
	}

	return strings.Join(keywords, ";")
}

// FormatLocalTime formats t in the process's local time zone as RFC 1123.
func FormatLocalTime(t time.Time) string {
	return t.Local().Format(time.RFC1123)
}

// FormatTimeUTC formats a time.Time object to a string in UTC format.
func FormatTimeUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
