package storage

// NoTextPlaceholder is shown when a record has neither formatted nor raw text.
const NoTextPlaceholder = "(no text)"

// Transcription is one dictation event as persisted by the recorder.
// Nullable columns are pointers; nil means the column was NULL.
type Transcription struct {
	ID              string
	RawText         *string
	FormattedText   *string
	EditedText      *string
	Timestamp       string // raw on-disk value, see ParseTimestamp
	Application     *string
	URL             *string
	ShareType       *string
	Status          *string
	Language        *string
	DurationSeconds *float64
	WordCount       *int64
}

// DisplayText resolves the text shown to users: formatted, then raw, then
// the placeholder.
func (t Transcription) DisplayText() string {
	if t.FormattedText != nil {
		return *t.FormattedText
	}
	if t.RawText != nil {
		return *t.RawText
	}
	return NoTextPlaceholder
}

// IsShared reports whether the record was shared.
func (t Transcription) IsShared() bool {
	return t.ShareType != nil && *t.ShareType == "yes"
}

// AppName returns the application or "" when absent.
func (t Transcription) AppName() string {
	return deref(t.Application)
}

// URLString returns the URL or "" when absent.
func (t Transcription) URLString() string {
	return deref(t.URL)
}

// Words returns the word count, treating NULL as zero.
func (t Transcription) Words() int64 {
	if t.WordCount == nil {
		return 0
	}
	return *t.WordCount
}

// Duration returns the spoken duration in seconds, treating NULL as zero.
func (t Transcription) Duration() float64 {
	if t.DurationSeconds == nil {
		return 0
	}
	return *t.DurationSeconds
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
