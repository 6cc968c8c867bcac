package cli

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/runnerr0/flowlog/internal/search"
	"github.com/runnerr0/flowlog/internal/storage"
)

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
	query := strings.Join(args, " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search query is required")
	}
	return runWithStore(c.globals, func(ctx context.Context, s *session, store storage.Store) error {
		return c.executeWithStore(ctx, s, store, args)
	})
}

// executeWithStore runs the search against a provided store (for testing).
func (c *SearchCommand) executeWithStore(ctx context.Context, s *session, store storage.Store, args []string) error {
	query := strings.Join(args, " ")

	records, err := store.Search(ctx, query, s.limit(c.Limit))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	results := search.Annotate(records, query)
	s.log.Debug("search", zap.String("query", query), zap.Int("count", len(results)))

	if s.json {
		return c.printJSON(s, query, results)
	}
	return c.printHuman(s, query, results)
}

func (c *SearchCommand) printHuman(s *session, query string, results []search.Result) error {
	if len(results) == 0 {
		fmt.Printf("No results found for %q\n", query)
		return nil
	}

	fmt.Println(s.styles.heading.Render(fmt.Sprintf("Found %d %s for %q",
		len(results), plural(len(results), "result", "results"), query)))
	fmt.Println()

	for i, res := range results {
		printRecordHeader(s, i+1, res.Transcription)
		if res.HasSnippet() {
			fmt.Printf("   %s\n", highlight(s, res))
		} else {
			fmt.Printf("   %s %s\n", preview(res.Transcription.DisplayText()), s.styles.dim.Render("(matched in edited text)"))
		}
		if i < len(results)-1 {
			fmt.Println()
		}
	}
	return nil
}

// highlight renders the snippet with the matched runes styled.
func highlight(s *session, res search.Result) string {
	runes := []rune(res.Snippet)
	end := res.MatchStart + res.MatchLen
	if res.MatchStart < 0 || end > len(runes) {
		return res.Snippet
	}
	before := strings.ReplaceAll(string(runes[:res.MatchStart]), "\n", " ")
	after := strings.ReplaceAll(string(runes[end:]), "\n", " ")
	return before + s.styles.match.Render(string(runes[res.MatchStart:end])) + after
}

type jsonResult struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Application string `json:"application,omitempty"`
	Text        string `json:"text"`
	Snippet     string `json:"snippet,omitempty"`
	MatchStart  *int   `json:"match_start,omitempty"`
}

type jsonSearchOutput struct {
	Count   int          `json:"count"`
	Query   string       `json:"query"`
	Results []jsonResult `json:"results"`
}

func (c *SearchCommand) printJSON(s *session, query string, results []search.Result) error {
	out := jsonSearchOutput{
		Count:   len(results),
		Query:   query,
		Results: make([]jsonResult, len(results)),
	}

	for i, res := range results {
		r := res.Transcription
		jr := jsonResult{
			ID:          r.ID,
			Timestamp:   r.Timestamp,
			Application: r.AppName(),
			Text:        r.DisplayText(),
			Snippet:     res.Snippet,
		}
		if res.HasSnippet() {
			start := res.MatchStart
			jr.MatchStart = &start
		}
		out.Results[i] = jr
	}

	return printJSON(out)
}
