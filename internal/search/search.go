// Package search adds match previews to transcriptions returned by the store.
package search

import (
	"unicode"

	"github.com/runnerr0/flowlog/internal/storage"
)

const (
	// ContextChars is how many characters are kept on each side of a match.
	ContextChars = 50
	// Ellipsis wraps every snippet.
	Ellipsis = "..."
)

// Result pairs a transcription with the preview of its match.
// Snippet is empty when the match lies outside the display text.
type Result struct {
	Transcription storage.Transcription
	Snippet       string
	MatchStart    int // rune offset of the match inside Snippet, -1 if none
	MatchLen      int
}

// HasSnippet reports whether the match was found in the display text.
func (r Result) HasSnippet() bool {
	return r.MatchStart >= 0
}

// Annotate builds a Result for every record, in input order.
func Annotate(records []storage.Transcription, query string) []Result {
	results := make([]Result, len(records))
	for i, rec := range records {
		snippet, start, ok := extract(rec.DisplayText(), query, ContextChars)
		results[i] = Result{Transcription: rec, MatchStart: -1}
		if ok {
			results[i].Snippet = snippet
			results[i].MatchStart = start
			results[i].MatchLen = len([]rune(query))
		}
	}
	return results
}

// Snippet returns up to ContextChars characters on either side of the first
// case-insensitive occurrence of query in text, wrapped in ellipses.
// ok is false when text does not contain query.
func Snippet(text, query string) (snippet string, ok bool) {
	snippet, _, ok = extract(text, query, ContextChars)
	return snippet, ok
}

// Contains reports whether text contains query, ignoring case.
func Contains(text, query string) bool {
	return indexFold([]rune(text), []rune(query)) >= 0
}

func extract(text, query string, contextChars int) (string, int, bool) {
	if query == "" {
		return "", -1, false
	}
	runes := []rune(text)
	qRunes := []rune(query)
	pos := indexFold(runes, qRunes)
	if pos < 0 {
		return "", -1, false
	}

	start := pos - contextChars
	if start < 0 {
		start = 0
	}
	end := pos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	return Ellipsis + string(runes[start:end]) + Ellipsis, len([]rune(Ellipsis)) + pos - start, true
}

// indexFold is a rune-wise case-insensitive index. Lower-casing whole strings
// can change byte lengths, so offsets are computed on runes instead.
func indexFold(text, query []rune) int {
	if len(query) == 0 {
		return 0
	}
	for i := 0; i+len(query) <= len(text); i++ {
		match := true
		for j, q := range query {
			if !equalFold(text[i+j], q) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func equalFold(a, b rune) bool {
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}
