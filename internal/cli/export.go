package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/runnerr0/flowlog/internal/export"
	"github.com/runnerr0/flowlog/internal/storage"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	if _, err := export.ParseFormat(c.Format); err != nil {
		return err
	}
	return runWithStore(c.globals, func(ctx context.Context, s *session, store storage.Store) error {
		return c.executeWithStore(ctx, s, store)
	})
}

// executeWithStore runs the export against a provided store (for testing).
func (c *ExportCommand) executeWithStore(ctx context.Context, s *session, store storage.Store) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	records, err := store.ExportRange(ctx, c.From, c.To)
	if err != nil {
		return fmt.Errorf("export range: %w", err)
	}

	out, err := export.New(s.loc).Render(format, records)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	if c.Output == "" {
		fmt.Print(out)
		return nil
	}

	if err := writeExport(c.Output, out); err != nil {
		return err
	}
	s.log.Info("export written",
		zap.String("path", c.Output),
		zap.String("format", string(format)),
		zap.Int("records", len(records)))
	fmt.Printf("Exported %s %s to %s\n",
		humanize.Comma(int64(len(records))), plural(len(records), "transcription", "transcriptions"), c.Output)
	return nil
}

// writeExport persists rendered output. Failures are IO errors carrying the
// destination path; the rendered string itself is unaffected.
func writeExport(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return &storage.Error{Kind: storage.KindIO, Op: "write export", Path: path, Err: err}
	}
	return nil
}
