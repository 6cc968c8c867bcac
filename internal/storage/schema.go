package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Columns maps each Transcription field to its column name in the table.
type Columns struct {
	ID              string
	RawText         string
	FormattedText   string
	EditedText      string
	Timestamp       string
	Application     string
	URL             string
	ShareType       string
	Status          string
	Language        string
	DurationSeconds string
	WordCount       string
}

// Schema names the table read by the store and its column mapping.
// It is a plain value; every store receives its own copy.
type Schema struct {
	Table   string
	Columns Columns
}

// DefaultSchema returns the layout written by the recorder.
func DefaultSchema() Schema {
	return Schema{
		Table: "transcriptions",
		Columns: Columns{
			ID:              "id",
			RawText:         "rawText",
			FormattedText:   "formattedText",
			EditedText:      "editedText",
			Timestamp:       "timestamp",
			Application:     "application",
			URL:             "url",
			ShareType:       "shareType",
			Status:          "status",
			Language:        "language",
			DurationSeconds: "durationSeconds",
			WordCount:       "wordCount",
		},
	}
}

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ordered returns the column names in scan order.
func (c Columns) ordered() []string {
	return []string{
		c.ID, c.RawText, c.FormattedText, c.EditedText, c.Timestamp,
		c.Application, c.URL, c.ShareType, c.Status, c.Language,
		c.DurationSeconds, c.WordCount,
	}
}

// Validate checks that every name is a plain SQL identifier so it can be
// interpolated into queries.
func (s Schema) Validate() error {
	if !identifierRE.MatchString(s.Table) {
		return NewError(KindInvalidArgument, "validate schema", fmt.Errorf("invalid table name %q", s.Table))
	}
	for _, col := range s.Columns.ordered() {
		if !identifierRE.MatchString(col) {
			return NewError(KindInvalidArgument, "validate schema", fmt.Errorf("invalid column name %q", col))
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}

// selectList returns the quoted, comma-separated column list.
func (s Schema) selectList() string {
	cols := s.Columns.ordered()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// verifySchema confirms the table exists and exposes every mapped column.
// It only reads PRAGMA output.
func verifySchema(ctx context.Context, db *sql.DB, s Schema) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(s.Table)+")")
	if err != nil {
		return NewError(KindQuery, "table info", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return NewError(KindQuery, "scan table info", err)
		}
		present[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return NewError(KindQuery, "table info", err)
	}

	if len(present) == 0 {
		return NewError(KindSchema, "verify schema", fmt.Errorf("table %s not found", s.Table))
	}

	var missing []string
	for _, col := range s.Columns.ordered() {
		if !present[strings.ToLower(col)] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return NewError(KindSchema, "verify schema",
			fmt.Errorf("table %s missing columns: %s", s.Table, strings.Join(missing, ", ")))
	}
	return nil
}
