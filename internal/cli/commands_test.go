package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/flowlog/internal/storage"
)

// --- list ---

func TestList_AllRecordsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	cmd := &ListCommand{globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		err := cmd.executeWithStore(context.Background(), testSession(false), store)
		require.NoError(t, err)
	})

	assert.Contains(t, output, "Showing 4 transcriptions")
	assert.Contains(t, output, "1. Mar 4, 2024 at 12:00:00 PM · Xcode · 4 words · shared [rec-1]")
	assert.Contains(t, output, "Refactor the parser module")
	// unparseable timestamp shown raw and sorted last
	assert.Contains(t, output, "4. garbage · Terminal [rec-4]")
	assert.Less(t, strings.Index(output, "rec-2"), strings.Index(output, "rec-3"))
}

func TestList_DefaultLimitFromConfig(t *testing.T) {
	store := openTestStore(t)
	s := testSession(false)
	s.cfg.Output.DefaultLimit = 2

	output := captureOutput(t, func() {
		require.NoError(t, (&ListCommand{}).executeWithStore(context.Background(), s, store))
	})

	assert.Contains(t, output, "Showing 2 transcriptions")
	assert.NotContains(t, output, "rec-3")

	output = captureOutput(t, func() {
		require.NoError(t, (&ListCommand{All: true}).executeWithStore(context.Background(), s, store))
	})
	assert.Contains(t, output, "Showing 4 transcriptions")
}

func TestList_Filters(t *testing.T) {
	store := openTestStore(t)

	output := captureOutput(t, func() {
		cmd := &ListCommand{App: "Xcode"}
		require.NoError(t, cmd.executeWithStore(context.Background(), testSession(false), store))
	})
	assert.Contains(t, output, "rec-1")
	assert.Contains(t, output, "rec-3")
	assert.NotContains(t, output, "rec-2")

	output = captureOutput(t, func() {
		cmd := &ListCommand{Shared: true}
		require.NoError(t, cmd.executeWithStore(context.Background(), testSession(false), store))
	})
	assert.Contains(t, output, "Showing 1 transcription\n")
	assert.Contains(t, output, "rec-1")
}

func TestList_NoMatches(t *testing.T) {
	store := openTestStore(t)

	output := captureOutput(t, func() {
		cmd := &ListCommand{App: "Photoshop"}
		require.NoError(t, cmd.executeWithStore(context.Background(), testSession(false), store))
	})
	assert.Equal(t, "No transcriptions found\n", output)
}

func TestList_NegativeLimit(t *testing.T) {
	store := openTestStore(t)
	err := (&ListCommand{Limit: -1}).executeWithStore(context.Background(), testSession(false), store)
	assert.True(t, errors.Is(err, storage.ErrInvalidArgument))
}

func TestList_JSONOutput(t *testing.T) {
	store := openTestStore(t)

	output := captureOutput(t, func() {
		require.NoError(t, (&ListCommand{}).executeWithStore(context.Background(), testSession(true), store))
	})

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &records))
	require.Len(t, records, 4)
	assert.Equal(t, "rec-1", records[0]["id"])
	assert.Equal(t, "rec-4", records[3]["id"])
	_, hasURL := records[0]["url"]
	assert.False(t, hasURL)
}

// --- search ---

func TestSearch_WithResults(t *testing.T) {
	store := openTestStore(t)

	output := captureOutput(t, func() {
		err := (&SearchCommand{}).executeWithStore(context.Background(), testSession(false), store, []string{"parser"})
		require.NoError(t, err)
	})

	assert.Contains(t, output, `Found 1 result for "parser"`)
	assert.Contains(t, output, "...Refactor the parser module...")
	assert.Contains(t, output, "rec-1")
}

func TestSearch_MatchOnlyInEditedText(t *testing.T) {
	store := openTestStore(t)

	output := captureOutput(t, func() {
		err := (&SearchCommand{}).executeWithStore(context.Background(), testSession(false), store, []string{"codeword"})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "rec-3")
	assert.Contains(t, output, "quick notes (matched in edited text)")
}

func TestSearch_NoResults(t *testing.T) {
	store := openTestStore(t)

	output := captureOutput(t, func() {
		err := (&SearchCommand{}).executeWithStore(context.Background(), testSession(false), store, []string{"nonexistentterm12345"})
		require.NoError(t, err)
	})

	assert.Contains(t, output, "No results found")
}

func TestSearch_JSONOutput(t *testing.T) {
	store := openTestStore(t)

	output := captureOutput(t, func() {
		err := (&SearchCommand{}).executeWithStore(context.Background(), testSession(true), store, []string{"dana"})
		require.NoError(t, err)
	})

	var out jsonSearchOutput
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "dana", out.Query)
	require.Len(t, out.Results, 1)

	res := out.Results[0]
	assert.Equal(t, "rec-2", res.ID)
	assert.Equal(t, "Mail", res.Application)
	assert.Equal(t, `...Reply to "Dana", thanks...`, res.Snippet)
	require.NotNil(t, res.MatchStart)
	assert.Equal(t, 13, *res.MatchStart)
}

func TestSearch_LimitRespected(t *testing.T) {
	store := openTestStore(t)

	output := captureOutput(t, func() {
		err := (&SearchCommand{Limit: 1}).executeWithStore(context.Background(), testSession(true), store, []string{"e"})
		require.NoError(t, err)
	})

	var out jsonSearchOutput
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "rec-1", out.Results[0].ID)
}

// --- show ---

func TestShow_AllFields(t *testing.T) {
	store := openTestStore(t)

	output := captureOutput(t, func() {
		require.NoError(t, (&ShowCommand{ID: "rec-2"}).executeWithStore(context.Background(), testSession(false), store))
	})

	assert.Contains(t, output, "rec-2")
	assert.Contains(t, output, "Date:      Mar 3, 2024 at 8:00:00 AM")
	assert.Contains(t, output, "App:       Mail")
	assert.Contains(t, output, "URL:       https://mail.example.com")
	assert.Contains(t, output, "Shared:    no")
	assert.Contains(t, output, "Language:  en")
	assert.Contains(t, output, "Duration:  4s")
	assert.Contains(t, output, "--- Formatted ---\nReply to \"Dana\", thanks")
	assert.Contains(t, output, "--- Raw ---\nreply to dana thanks")
	assert.NotContains(t, output, "--- Edited ---")
}

func TestShow_NotFound(t *testing.T) {
	store := openTestStore(t)

	err := (&ShowCommand{ID: "missing"}).executeWithStore(context.Background(), testSession(false), store)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Contains(t, err.Error(), "missing")
}

func TestShow_JSONOutput(t *testing.T) {
	store := openTestStore(t)

	output := captureOutput(t, func() {
		require.NoError(t, (&ShowCommand{ID: "rec-3"}).executeWithStore(context.Background(), testSession(true), store))
	})

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, "rec-3", result["id"])
	assert.Equal(t, "quick notes", result["text"])
	assert.Equal(t, "secret codeword", result["editedText"])
	assert.Equal(t, false, result["shared"])
	assert.Equal(t, float64(2), result["wordCount"])
	_, hasFormatted := result["formattedText"]
	assert.False(t, hasFormatted)
}

// --- export ---

func TestExport_CSVRangeToStdout(t *testing.T) {
	store := openTestStore(t)
	cmd := &ExportCommand{Format: "csv", From: "2024-03-02", To: "2024-03-04"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), testSession(false), store))
	})

	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Timestamp,App,URL,Words,Duration,Text", lines[0])
	assert.Contains(t, lines[1], `"Refactor the parser module"`)
	assert.Contains(t, lines[2], `"Reply to ""Dana"", thanks"`)
}

func TestExport_ToFile(t *testing.T) {
	store := openTestStore(t)
	outPath := filepath.Join(t.TempDir(), "flow.json")
	cmd := &ExportCommand{Format: "json", Output: outPath}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), testSession(false), store))
	})
	assert.Contains(t, output, "Exported 4 transcriptions to "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &records))
	assert.Len(t, records, 4)
}

func TestExport_WriteFailureIsIOError(t *testing.T) {
	store := openTestStore(t)
	outPath := filepath.Join(t.TempDir(), "missing-dir", "flow.txt")
	cmd := &ExportCommand{Format: "text", Output: outPath}

	err := cmd.executeWithStore(context.Background(), testSession(false), store)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrIO))

	var serr *storage.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, outPath, serr.Path)
}

func TestExport_InvalidInputs(t *testing.T) {
	store := openTestStore(t)

	err := (&ExportCommand{Format: "json", From: "03/01/2024"}).executeWithStore(context.Background(), testSession(false), store)
	assert.True(t, errors.Is(err, storage.ErrInvalidArgument))

	err = (&ExportCommand{Format: "xml"}).executeWithStore(context.Background(), testSession(false), store)
	assert.True(t, errors.Is(err, storage.ErrInvalidArgument))
}

// --- stats ---

func TestStats_HumanOutput(t *testing.T) {
	store := openTestStore(t)
	cmd := &StatsCommand{Period: "day", Top: 10, version: "dev"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), testSession(false), store))
	})

	assert.Contains(t, output, "Flow Statistics")
	assert.Contains(t, output, "Transcriptions: 4")
	assert.Contains(t, output, "Words:          10")
	assert.Contains(t, output, "Duration:       6s")
	assert.Contains(t, output, "Average WPM:    100.0")
	assert.Contains(t, output, "Undated:        1")
	assert.Contains(t, output, "Top Applications:")
	assert.Contains(t, output, "  Xcode     2")
	assert.Contains(t, output, "Activity by day:")
	assert.Contains(t, output, "  2024-03-04  1")

	// tie between Mail and Terminal broken by name
	assert.Less(t, strings.Index(output, "Mail"), strings.Index(output, "Terminal"))
}

func TestStats_JSONByWeek(t *testing.T) {
	store := openTestStore(t)
	cmd := &StatsCommand{Period: "week", Top: 1, version: "dev"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), testSession(true), store))
	})

	var out statsJSON
	require.NoError(t, json.Unmarshal([]byte(output), &out))
	assert.Equal(t, "dev", out.Version)
	assert.Equal(t, "week", out.Period)
	assert.Equal(t, 4, out.TotalTranscriptions)
	assert.Equal(t, int64(10), out.TotalWords)
	assert.InDelta(t, 100.0, out.AverageWPM, 1e-9)
	assert.Equal(t, 1, out.UnparsedTimestamps)

	require.Len(t, out.TopApps, 1)
	assert.Equal(t, "Xcode", out.TopApps[0].Application)
	require.Len(t, out.Activity, 1)
	assert.Equal(t, periodCountJSON{Period: "2024-W10", Count: 1}, out.Activity[0])
}

func TestStats_InvalidPeriod(t *testing.T) {
	store := openTestStore(t)
	err := (&StatsCommand{Period: "year"}).executeWithStore(context.Background(), testSession(false), store)
	assert.True(t, errors.Is(err, storage.ErrInvalidArgument))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0s", formatSeconds(0))
	assert.Equal(t, "1m30s", formatSeconds(90.4))
	assert.Equal(t, "1h2m3s", formatSeconds(3723))
}
