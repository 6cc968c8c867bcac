package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/runnerr0/flowlog/internal/config"
	"github.com/runnerr0/flowlog/internal/logging"
	"github.com/runnerr0/flowlog/internal/storage"
)

// session is the per-invocation state shared by every command: resolved
// config, logger, display zone and output styles.
type session struct {
	cfg    *config.Config
	log    *zap.Logger
	loc    *time.Location
	json   bool
	styles styles
}

type styles struct {
	heading lipgloss.Style
	match   lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(color bool) styles {
	r := lipgloss.NewRenderer(os.Stdout)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		match:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// useColor resolves output.color against the terminal state of stdout.
func useColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// newSession loads configuration and builds the logger.
func newSession(globals *GlobalFlags) (*session, error) {
	if globals == nil {
		globals = &GlobalFlags{}
	}

	cfg, err := config.LoadOrDefault(globals.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Logging.Level, globals.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:    cfg,
		log:    log,
		loc:    loc,
		json:   globals.JSON,
		styles: newStyles(!globals.JSON && useColor(cfg.Output.Color)),
	}, nil
}

// resolveDBPath determines the SQLite database file path.
// Priority: --db flag > store.path from config/env > default.
func (s *session) resolveDBPath(globals *GlobalFlags) (string, error) {
	if globals != nil && globals.DB != "" {
		return globals.DB, nil
	}
	return s.cfg.StorePath()
}

func (s *session) storeOptions() storage.Options {
	return storage.Options{
		Schema:   s.cfg.Schema(),
		Location: s.loc,
		Logger:   s.log,
	}
}

// limit returns n, or output.default_limit when n is unset.
func (s *session) limit(n int) int {
	if n == 0 {
		return s.cfg.Output.DefaultLimit
	}
	return n
}

// runWithStore opens the store for the duration of fn and closes it on
// every exit path.
func runWithStore(globals *GlobalFlags, fn func(ctx context.Context, s *session, store storage.Store) error) error {
	s, err := newSession(globals)
	if err != nil {
		return err
	}
	defer s.log.Sync() //nolint:errcheck

	path, err := s.resolveDBPath(globals)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return storage.WithStore(ctx, path, s.storeOptions(), func(store storage.Store) error {
		return fn(ctx, s, store)
	})
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return storage.NewError(storage.KindSerialization, "encode json", err)
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
