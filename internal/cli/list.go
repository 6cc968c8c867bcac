package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"github.com/runnerr0/flowlog/internal/export"
	"github.com/runnerr0/flowlog/internal/storage"
)

// previewWidth bounds the text line printed under each record.
const previewWidth = 120

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	return runWithStore(c.globals, func(ctx context.Context, s *session, store storage.Store) error {
		return c.executeWithStore(ctx, s, store)
	})
}

// executeWithStore runs list against a provided store (for testing).
func (c *ListCommand) executeWithStore(ctx context.Context, s *session, store storage.Store) error {
	limit := s.limit(c.Limit)
	if c.All {
		limit = math.MaxInt
	}

	records, err := store.List(ctx, limit, c.App, c.Shared)
	if err != nil {
		return fmt.Errorf("list transcriptions: %w", err)
	}
	s.log.Debug("list", zap.Int("limit", limit), zap.String("app", c.App), zap.Bool("shared", c.Shared), zap.Int("count", len(records)))

	if s.json {
		out, err := export.New(s.loc).JSON(records)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}
	return c.printHuman(s, records)
}

func (c *ListCommand) printHuman(s *session, records []storage.Transcription) error {
	if len(records) == 0 {
		fmt.Println("No transcriptions found")
		return nil
	}

	fmt.Println(s.styles.heading.Render(fmt.Sprintf("Showing %s %s",
		humanize.Comma(int64(len(records))), plural(len(records), "transcription", "transcriptions"))))
	fmt.Println()

	for i, r := range records {
		printRecordHeader(s, i+1, r)
		fmt.Printf("   %s\n", preview(r.DisplayText()))
		if i < len(records)-1 {
			fmt.Println()
		}
	}
	return nil
}

// printRecordHeader prints "N. date · app · words · shared".
func printRecordHeader(s *session, n int, r storage.Transcription) {
	meta := []string{storage.DisplayTimestamp(r.Timestamp, s.loc)}
	if app := r.AppName(); app != "" {
		meta = append(meta, app)
	}
	if r.WordCount != nil {
		meta = append(meta, fmt.Sprintf("%s %s", humanize.Comma(*r.WordCount), plural(int(*r.WordCount), "word", "words")))
	}
	if r.IsShared() {
		meta = append(meta, "shared")
	}
	fmt.Printf("%d. %s %s\n", n, strings.Join(meta, " · "), s.styles.dim.Render("["+r.ID+"]"))
}

// preview flattens text to one line and truncates it to previewWidth cells.
func preview(text string) string {
	line := strings.Join(strings.Fields(text), " ")
	if runewidth.StringWidth(line) > previewWidth {
		line = runewidth.Truncate(line, previewWidth, "...")
	}
	return line
}
