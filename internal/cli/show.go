package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/runnerr0/flowlog/internal/storage"
)

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for show command")
	}
	return runWithStore(c.globals, func(ctx context.Context, s *session, store storage.Store) error {
		return c.executeWithStore(ctx, s, store)
	})
}

func (c *ShowCommand) executeWithStore(ctx context.Context, s *session, store storage.Store) error {
	rec, err := store.Get(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("show %s: %w", c.ID, err)
	}

	if s.json {
		return c.outputJSON(rec)
	}
	c.outputFull(s, rec)
	return nil
}

func (c *ShowCommand) outputFull(s *session, r *storage.Transcription) {
	fmt.Println(s.styles.heading.Render(r.ID))
	fmt.Printf("Date:      %s\n", storage.DisplayTimestamp(r.Timestamp, s.loc))
	fmt.Printf("App:       %s\n", orDash(r.AppName()))
	if u := r.URLString(); u != "" {
		fmt.Printf("URL:       %s\n", u)
	}
	fmt.Printf("Shared:    %s\n", yesNo(r.IsShared()))
	if r.Status != nil {
		fmt.Printf("Status:    %s\n", *r.Status)
	}
	if r.Language != nil {
		fmt.Printf("Language:  %s\n", *r.Language)
	}
	if r.WordCount != nil {
		fmt.Printf("Words:     %s\n", humanize.Comma(*r.WordCount))
	}
	if r.DurationSeconds != nil {
		fmt.Printf("Duration:  %ss\n", strconv.FormatFloat(*r.DurationSeconds, 'f', -1, 64))
	}

	printed := false
	for _, v := range []struct {
		label string
		text  *string
	}{
		{"Formatted", r.FormattedText},
		{"Raw", r.RawText},
		{"Edited", r.EditedText},
	} {
		if v.text == nil {
			continue
		}
		fmt.Println()
		fmt.Printf("--- %s ---\n", v.label)
		fmt.Println(*v.text)
		printed = true
	}
	if !printed {
		fmt.Println()
		fmt.Println(storage.NoTextPlaceholder)
	}
}

func (c *ShowCommand) outputJSON(r *storage.Transcription) error {
	result := map[string]interface{}{
		"id":        r.ID,
		"timestamp": r.Timestamp,
		"text":      r.DisplayText(),
		"shared":    r.IsShared(),
	}
	optional := map[string]*string{
		"rawText":       r.RawText,
		"formattedText": r.FormattedText,
		"editedText":    r.EditedText,
		"application":   r.Application,
		"url":           r.URL,
		"shareType":     r.ShareType,
		"status":        r.Status,
		"language":      r.Language,
	}
	for k, v := range optional {
		if v != nil {
			result[k] = *v
		}
	}
	if r.WordCount != nil {
		result["wordCount"] = *r.WordCount
	}
	if r.DurationSeconds != nil {
		result["durationSeconds"] = *r.DurationSeconds
	}

	return printJSON(result)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
