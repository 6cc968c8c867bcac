package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runnerr0/flowlog/internal/config"
	"github.com/runnerr0/flowlog/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// writeTestDB creates a transcription database with four records:
//
//	rec-1  2024-03-04  Xcode     shared, "Refactor the parser module"
//	rec-2  2024-03-03  Mail      quoted text and a URL
//	rec-3  2024-03-01  Xcode     match only in edited text ("codeword")
//	rec-4  unparseable Terminal
func writeTestDB(t *testing.T) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "flow.sqlite")
	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE transcriptions (
		id TEXT PRIMARY KEY,
		rawText TEXT,
		formattedText TEXT,
		editedText TEXT,
		timestamp TEXT,
		application TEXT,
		url TEXT,
		shareType TEXT,
		status TEXT,
		language TEXT,
		durationSeconds REAL,
		wordCount INTEGER
	)`)
	require.NoError(t, err)

	rows := []struct {
		id, ts                      string
		raw, formatted, edited, app interface{}
		url, share                  interface{}
		duration, words             interface{}
	}{
		{"rec-1", "2024-03-04T12:00:00Z", "refactor the parser module", "Refactor the parser module", nil, "Xcode", nil, "yes", 2.0, 4},
		{"rec-2", "2024-03-03 08:00:00.000 +00:00", "reply to dana thanks", `Reply to "Dana", thanks`, nil, "Mail", "https://mail.example.com", "no", 4.0, 4},
		{"rec-3", "2024-03-01 09:00:00", "quick notes", nil, "secret codeword", "Xcode", nil, nil, nil, 2},
		{"rec-4", "garbage", "ls -la", nil, nil, "Terminal", nil, nil, nil, nil},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO transcriptions
			(id, rawText, formattedText, editedText, timestamp, application, url, shareType, status, language, durationSeconds, wordCount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'complete', 'en', ?, ?)`,
			r.id, r.raw, r.formatted, r.edited, r.ts, r.app, r.url, r.share, r.duration, r.words)
		require.NoError(t, err)
	}

	return dbPath
}

// openTestStore opens the fixture database read-only in UTC.
func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.Open(context.Background(), writeTestDB(t), storage.Options{Location: time.UTC})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// testSession returns a session with default config, UTC display and no color.
func testSession(jsonOut bool) *session {
	return &session{
		cfg:    config.DefaultConfig(),
		log:    zap.NewNop(),
		loc:    time.UTC,
		json:   jsonOut,
		styles: newStyles(false),
	}
}

// writeTestConfig writes a YAML config that disables color and points the
// store at dbPath.
func writeTestConfig(t *testing.T, dbPath string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "store:\n  path: \"" + dbPath + "\"\noutput:\n  color: \"never\"\n  timezone: \"UTC\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return cfgPath
}
