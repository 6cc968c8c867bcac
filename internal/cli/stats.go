package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/runnerr0/flowlog/internal/stats"
	"github.com/runnerr0/flowlog/internal/storage"
)

// statsJSON is the JSON output structure for the stats command.
type statsJSON struct {
	Version             string            `json:"version"`
	Period              string            `json:"period"`
	TotalTranscriptions int               `json:"total_transcriptions"`
	TotalWords          int64             `json:"total_words"`
	TotalDuration       float64           `json:"total_duration_seconds"`
	AverageWPM          float64           `json:"average_wpm"`
	UnparsedTimestamps  int               `json:"unparsed_timestamps"`
	TopApps             []appCountJSON    `json:"top_apps"`
	Activity            []periodCountJSON `json:"activity"`
}

type appCountJSON struct {
	Application     string  `json:"application"`
	Count           int     `json:"count"`
	Words           int64   `json:"words"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type periodCountJSON struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	if _, err := stats.ParseGranularity(c.Period); err != nil {
		return err
	}
	return runWithStore(c.globals, func(ctx context.Context, s *session, store storage.Store) error {
		return c.executeWithStore(ctx, s, store)
	})
}

// executeWithStore runs stats against a provided store (for testing).
func (c *StatsCommand) executeWithStore(ctx context.Context, s *session, store storage.Store) error {
	g, err := stats.ParseGranularity(c.Period)
	if err != nil {
		return err
	}

	records, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	sum := stats.Aggregator{Granularity: g, Location: s.loc, Logger: s.log}.Compute(records)

	if s.json {
		return c.printStatsJSON(sum)
	}
	return c.printStatsHuman(s, sum)
}

func (c *StatsCommand) printStatsHuman(s *session, sum stats.Summary) error {
	fmt.Println(s.styles.heading.Render("Flow Statistics"))
	fmt.Println("===============")
	fmt.Printf("Transcriptions: %s\n", humanize.Comma(int64(sum.TotalTranscriptions)))
	fmt.Printf("Words:          %s\n", humanize.Comma(sum.TotalWords))
	fmt.Printf("Duration:       %s\n", formatSeconds(sum.TotalDuration))
	fmt.Printf("Average WPM:    %.1f\n", sum.AverageWPM)
	if sum.Unparsed > 0 {
		fmt.Printf("Undated:        %s (not in activity)\n", humanize.Comma(int64(sum.Unparsed)))
	}

	apps := sum.TopApplications(c.Top)
	if len(apps) > 0 {
		width := 0
		for _, a := range apps {
			if w := runewidth.StringWidth(a.Name); w > width {
				width = w
			}
		}
		fmt.Println()
		fmt.Println(s.styles.heading.Render("Top Applications:"))
		for _, a := range apps {
			fmt.Printf("  %s  %s\n", runewidth.FillRight(a.Name, width), humanize.Comma(int64(a.Count)))
		}
	}

	periods := sum.RecentPeriods(c.Top)
	if len(periods) > 0 {
		fmt.Println()
		fmt.Println(s.styles.heading.Render(fmt.Sprintf("Activity by %s:", sum.Granularity)))
		for _, p := range periods {
			fmt.Printf("  %-10s  %s\n", p.Label, humanize.Comma(int64(p.Count)))
		}
	}

	return nil
}

func (c *StatsCommand) printStatsJSON(sum stats.Summary) error {
	apps := sum.TopApplications(c.Top)
	periods := sum.RecentPeriods(c.Top)

	out := statsJSON{
		Version:             c.version,
		Period:              string(sum.Granularity),
		TotalTranscriptions: sum.TotalTranscriptions,
		TotalWords:          sum.TotalWords,
		TotalDuration:       sum.TotalDuration,
		AverageWPM:          sum.AverageWPM,
		UnparsedTimestamps:  sum.Unparsed,
		TopApps:             make([]appCountJSON, len(apps)),
		Activity:            make([]periodCountJSON, len(periods)),
	}
	for i, a := range apps {
		out.TopApps[i] = appCountJSON{Application: a.Name, Count: a.Count, Words: a.Words, DurationSeconds: a.DurationSeconds}
	}
	for i, p := range periods {
		out.Activity[i] = periodCountJSON{Period: p.Label, Count: p.Count}
	}

	return printJSON(out)
}

// formatSeconds renders a duration like "1h2m3s", rounded to the second.
func formatSeconds(sec float64) string {
	return (time.Duration(sec * float64(time.Second))).Round(time.Second).String()
}
