package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Store defines the read-only queries over the transcription log.
type Store interface {
	List(ctx context.Context, limit int, application string, sharedOnly bool) ([]Transcription, error)
	Search(ctx context.Context, query string, limit int) ([]Transcription, error)
	ExportRange(ctx context.Context, startDate, endDate string) ([]Transcription, error)
	Get(ctx context.Context, id string) (*Transcription, error)
	All(ctx context.Context) ([]Transcription, error)
	Close() error
}

// Options configures a store. The zero value uses DefaultSchema, the local
// time zone and a no-op logger.
type Options struct {
	Schema   Schema
	Location *time.Location
	Logger   *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Schema.Table == "" {
		o.Schema = DefaultSchema()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// SQLiteStore implements Store over a SQLite file opened read-only.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	schema Schema
	loc    *time.Location
	log    *zap.Logger

	getRecord *sql.Stmt
}

// Open opens the database at path in read-only mode and verifies that the
// configured table and columns exist. A missing file fails with
// KindStoreNotFound.
func Open(ctx context.Context, path string, opts Options) (*SQLiteStore, error) {
	opts = opts.withDefaults()
	if err := opts.Schema.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &Error{Kind: KindStoreNotFound, Op: "open", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &Error{Kind: KindStoreNotFound, Op: "open", Path: path, Err: errors.New("path is a directory")}
	}

	db, err := sql.Open("sqlite3", readOnlyDSN(path))
	if err != nil {
		return nil, &Error{Kind: KindStoreNotFound, Op: "open", Path: path, Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &Error{Kind: KindStoreNotFound, Op: "open", Path: path, Err: err}
	}

	s, err := newSQLiteStore(ctx, db, path, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	opts.Logger.Debug("store opened", zap.String("path", path), zap.String("table", opts.Schema.Table))
	return s, nil
}

// NewSQLiteStore wraps an already-opened database. The store takes
// ownership of db and closes it in Close.
func NewSQLiteStore(ctx context.Context, db *sql.DB, opts Options) (*SQLiteStore, error) {
	opts = opts.withDefaults()
	if err := opts.Schema.Validate(); err != nil {
		return nil, err
	}
	return newSQLiteStore(ctx, db, "", opts)
}

func newSQLiteStore(ctx context.Context, db *sql.DB, path string, opts Options) (*SQLiteStore, error) {
	if err := verifySchema(ctx, db, opts.Schema); err != nil {
		if e, ok := err.(*Error); ok {
			e.Path = path
		}
		return nil, err
	}

	s := &SQLiteStore{
		db:     db,
		path:   path,
		schema: opts.Schema,
		loc:    opts.Location,
		log:    opts.Logger,
	}

	var err error
	s.getRecord, err = db.PrepareContext(ctx, s.selectSQL()+" WHERE "+quoteIdent(s.schema.Columns.ID)+" = ?")
	if err != nil {
		return nil, &Error{Kind: KindQuery, Op: "prepare statements", Path: path, Err: err}
	}
	return s, nil
}

// WithStore opens the store, runs fn and closes the store on every exit
// path. A close failure is reported only when fn succeeded.
func WithStore(ctx context.Context, path string, opts Options, fn func(Store) error) (err error) {
	s, err := Open(ctx, path, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// readOnlyDSN builds a SQLite URI that never creates or writes the file.
func readOnlyDSN(path string) string {
	u := url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro"}
	if !strings.HasPrefix(path, "/") {
		// relative paths stay relative: file:rel/path?mode=ro
		u = url.URL{Scheme: "file", Opaque: (&url.URL{Path: path}).EscapedPath(), RawQuery: "mode=ro"}
	}
	return u.String()
}

func (s *SQLiteStore) selectSQL() string {
	return "SELECT " + s.schema.selectList() + " FROM " + quoteIdent(s.schema.Table)
}

// List returns at most limit records, newest first. A non-empty application
// keeps exact matches only; sharedOnly keeps records whose share type is "yes".
func (s *SQLiteStore) List(ctx context.Context, limit int, application string, sharedOnly bool) ([]Transcription, error) {
	if limit <= 0 {
		return nil, NewError(KindInvalidArgument, "list", fmt.Errorf("limit must be positive, got %d", limit))
	}

	var clauses []string
	var args []interface{}
	cols := s.schema.Columns

	if application != "" {
		clauses = append(clauses, quoteIdent(cols.Application)+" = ?")
		args = append(args, application)
	}
	if sharedOnly {
		clauses = append(clauses, quoteIdent(cols.ShareType)+" = 'yes'")
	}

	records, err := s.query(ctx, "list", clauses, args...)
	if err != nil {
		return nil, err
	}
	return truncate(records, limit), nil
}

// Search returns records whose raw, formatted or edited text contains query,
// newest first, capped at limit. Matching is case-insensitive for ASCII, as
// provided by SQLite LIKE.
func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]Transcription, error) {
	if query == "" {
		return nil, NewError(KindInvalidArgument, "search", errors.New("empty query"))
	}
	if limit <= 0 {
		return nil, NewError(KindInvalidArgument, "search", fmt.Errorf("limit must be positive, got %d", limit))
	}

	cols := s.schema.Columns
	pattern := "%" + escapeLike(query) + "%"
	var match []string
	var args []interface{}
	for _, c := range []string{cols.RawText, cols.FormattedText, cols.EditedText} {
		match = append(match, quoteIdent(c)+` LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}

	records, err := s.query(ctx, "search", []string{"(" + strings.Join(match, " OR ") + ")"}, args...)
	if err != nil {
		return nil, err
	}
	return truncate(records, limit), nil
}

// ExportRange returns every record between startDate and endDate
// (YYYY-MM-DD, both inclusive, in the store's location), newest first.
// An empty bound is open on that side. When a bound is given, records whose
// timestamp cannot be parsed are excluded since they cannot be compared.
func (s *SQLiteStore) ExportRange(ctx context.Context, startDate, endDate string) ([]Transcription, error) {
	var start, end time.Time
	if startDate != "" {
		d, err := ParseDate(startDate, s.loc)
		if err != nil {
			return nil, err
		}
		start = d
	}
	if endDate != "" {
		d, err := ParseDate(endDate, s.loc)
		if err != nil {
			return nil, err
		}
		end = endOfDay(d)
	}
	records, err := s.query(ctx, "export range", nil)
	if err != nil {
		return nil, err
	}
	if start.IsZero() && end.IsZero() {
		return records, nil
	}

	out := make([]Transcription, 0, len(records))
	for _, r := range records {
		ts, err := ParseTimestampIn(r.Timestamp, s.loc)
		if err != nil {
			continue
		}
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && ts.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// All returns every record, newest first.
func (s *SQLiteStore) All(ctx context.Context) ([]Transcription, error) {
	return s.query(ctx, "all", nil)
}

// Get retrieves a single record by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Transcription, error) {
	r, err := scanTranscription(s.getRecord.QueryRowContext(ctx, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, NewError(KindNotFound, "get", fmt.Errorf("transcription %s", id))
		}
		return nil, &Error{Kind: KindQuery, Op: "get", Path: s.path, Err: err}
	}
	return &r, nil
}

// query runs a SELECT with the given WHERE clauses and returns the rows
// ordered newest first by parsed timestamp.
func (s *SQLiteStore) query(ctx context.Context, op string, clauses []string, args ...interface{}) ([]Transcription, error) {
	q := s.selectSQL()
	if len(clauses) > 0 {
		q += " WHERE " + strings.Join(clauses, " AND ")
	}
	q += " ORDER BY " + quoteIdent(s.schema.Columns.Timestamp) + " DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, &Error{Kind: KindQuery, Op: op, Path: s.path, Err: err}
	}
	defer rows.Close()

	records := []Transcription{}
	for rows.Next() {
		r, err := scanTranscription(rows)
		if err != nil {
			return nil, &Error{Kind: KindQuery, Op: op, Path: s.path, Err: fmt.Errorf("scan transcription: %w", err)}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Kind: KindQuery, Op: op, Path: s.path, Err: err}
	}

	s.sortNewestFirst(records)
	s.log.Debug("query complete", zap.String("op", op), zap.Int("rows", len(records)))
	return records, nil
}

// sortNewestFirst orders records by parsed instant, descending. The on-disk
// format varies, so the SQL ordering is only a first approximation.
// Unparseable timestamps go last in their SQL order.
func (s *SQLiteStore) sortNewestFirst(records []Transcription) {
	type keyed struct {
		t  time.Time
		ok bool
	}
	keys := make(map[string]keyed, len(records))
	for _, r := range records {
		t, err := ParseTimestampIn(r.Timestamp, s.loc)
		if err != nil {
			s.log.Debug("unparseable timestamp", zap.String("id", r.ID), zap.String("raw", r.Timestamp))
		}
		keys[r.ID] = keyed{t: t, ok: err == nil}
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := keys[records[i].ID], keys[records[j].ID]
		if a.ok != b.ok {
			return a.ok
		}
		return a.ok && a.t.After(b.t)
	})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTranscription(row rowScanner) (Transcription, error) {
	var (
		t                                           Transcription
		raw, formatted, edited, app, u, share, stat sql.NullString
		lang                                        sql.NullString
		duration                                    sql.NullFloat64
		words                                       sql.NullInt64
		ts                                          sql.NullString
	)
	if err := row.Scan(&t.ID, &raw, &formatted, &edited, &ts, &app, &u, &share, &stat, &lang, &duration, &words); err != nil {
		return Transcription{}, err
	}
	t.Timestamp = ts.String
	t.RawText = nullString(raw)
	t.FormattedText = nullString(formatted)
	t.EditedText = nullString(edited)
	t.Application = nullString(app)
	t.URL = nullString(u)
	t.ShareType = nullString(share)
	t.Status = nullString(stat)
	t.Language = nullString(lang)
	if duration.Valid {
		d := duration.Float64
		t.DurationSeconds = &d
	}
	if words.Valid {
		w := words.Int64
		t.WordCount = &w
	}
	return t, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// escapeLike escapes LIKE wildcards so query is matched literally.
func escapeLike(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(query)
}

func truncate(records []Transcription, limit int) []Transcription {
	if len(records) > limit {
		return records[:limit]
	}
	return records
}

// Close releases the prepared statements and the database handle.
func (s *SQLiteStore) Close() error {
	if s.getRecord != nil {
		s.getRecord.Close()
	}
	if err := s.db.Close(); err != nil {
		return &Error{Kind: KindIO, Op: "close", Path: s.path, Err: err}
	}
	s.log.Debug("store closed", zap.String("path", s.path))
	return nil
}
