// Package export serializes transcriptions to JSON, CSV or plain text.
// Renderers return strings; writing them anywhere is the caller's job.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/flowlog/internal/storage"
)

// Format selects an output serialization.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	Text Format = "text"
)

// CSVHeader is the fixed first row of tabular output.
const CSVHeader = "Timestamp,App,URL,Words,Duration,Text"

// Separator closes every plain-text block.
var Separator = strings.Repeat("-", 50)

// ParseFormat accepts json, csv, text and the txt alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "text", "txt":
		return Text, nil
	}
	return "", storage.NewError(storage.KindInvalidArgument, "parse format",
		fmt.Errorf("unknown format %q (use json, csv or text)", s))
}

// Extension returns the conventional file extension for f.
func (f Format) Extension() string {
	if f == Text {
		return "txt"
	}
	return string(f)
}

// Exporter renders record collections. Location controls how timestamps are
// displayed in CSV and text output.
type Exporter struct {
	Location *time.Location
}

// New returns an Exporter that displays times in loc.
func New(loc *time.Location) Exporter {
	if loc == nil {
		loc = time.Local
	}
	return Exporter{Location: loc}
}

// Render serializes records in the requested format.
func (e Exporter) Render(f Format, records []storage.Transcription) (string, error) {
	switch f {
	case JSON:
		return e.JSON(records)
	case CSV:
		return e.CSV(records), nil
	case Text:
		return e.Text(records), nil
	}
	return "", storage.NewError(storage.KindInvalidArgument, "render", fmt.Errorf("unknown format %q", f))
}

// jsonRecord fields are declared in lexicographic key order so the encoded
// objects have sorted keys. NULL columns are omitted.
type jsonRecord struct {
	Application     *string  `json:"application,omitempty"`
	DurationSeconds *float64 `json:"durationSeconds,omitempty"`
	EditedText      *string  `json:"editedText,omitempty"`
	FormattedText   *string  `json:"formattedText,omitempty"`
	ID              string   `json:"id"`
	Language        *string  `json:"language,omitempty"`
	RawText         *string  `json:"rawText,omitempty"`
	ShareType       *string  `json:"shareType,omitempty"`
	Status          *string  `json:"status,omitempty"`
	Timestamp       string   `json:"timestamp"`
	URL             *string  `json:"url,omitempty"`
	WordCount       *int64   `json:"wordCount,omitempty"`
}

// JSON renders records as an indented array in input order. Encoding errors
// (such as a NaN duration) fail the whole export.
func (e Exporter) JSON(records []storage.Transcription) (string, error) {
	out := make([]jsonRecord, len(records))
	for i, r := range records {
		out[i] = jsonRecord{
			Application:     r.Application,
			DurationSeconds: r.DurationSeconds,
			EditedText:      r.EditedText,
			FormattedText:   r.FormattedText,
			ID:              r.ID,
			Language:        r.Language,
			RawText:         r.RawText,
			ShareType:       r.ShareType,
			Status:          r.Status,
			Timestamp:       r.Timestamp,
			URL:             r.URL,
			WordCount:       r.WordCount,
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return "", storage.NewError(storage.KindSerialization, "encode json", err)
	}
	return buf.String(), nil
}

// CSV renders the fixed header and one row per record. Every field is quoted
// and embedded quotes are doubled.
func (e Exporter) CSV(records []storage.Transcription) string {
	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteString("\n")
	for _, r := range records {
		fields := []string{
			storage.DisplayTimestamp(r.Timestamp, e.location()),
			r.AppName(),
			r.URLString(),
			optionalInt(r.WordCount),
			optionalFloat(r.DurationSeconds),
			r.DisplayText(),
		}
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteCSV(f))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Text renders one block per record joined by a newline.
func (e Exporter) Text(records []storage.Transcription) string {
	blocks := make([]string, len(records))
	for i, r := range records {
		var b strings.Builder
		fmt.Fprintf(&b, "Date: %s\n", storage.DisplayTimestamp(r.Timestamp, e.location()))
		fmt.Fprintf(&b, "App: %s\n", orUnknown(r.AppName()))
		if u := r.URLString(); u != "" {
			fmt.Fprintf(&b, "URL: %s\n", u)
		}
		fmt.Fprintf(&b, "Words: %d\n", r.Words())
		b.WriteString("\n")
		b.WriteString(r.DisplayText())
		b.WriteString("\n\n")
		b.WriteString(Separator)
		b.WriteString("\n")
		blocks[i] = b.String()
	}
	return strings.Join(blocks, "\n")
}

func (e Exporter) location() *time.Location {
	if e.Location == nil {
		return time.Local
	}
	return e.Location
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func optionalInt(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

func optionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
