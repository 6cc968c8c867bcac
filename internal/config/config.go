package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/runnerr0/flowlog/internal/storage"
)

// Default config file path. The file is optional.
const DefaultConfigPath = "~/.config/flowlog/config.yaml"

// EnvPrefix prefixes every environment override, e.g. FLOWLOG_STORE_PATH.
const EnvPrefix = "flowlog"

// Config holds all flowlog configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" toml:"store" split_words:"true"`
	Output  OutputConfig  `yaml:"output" toml:"output" split_words:"true"`
	Logging LoggingConfig `yaml:"logging" toml:"logging" split_words:"true"`
}

type StoreConfig struct {
	Path    string        `yaml:"path" toml:"path" split_words:"true"`
	Table   string        `yaml:"table" toml:"table" split_words:"true"`
	Columns ColumnsConfig `yaml:"columns" toml:"columns" split_words:"true"`
}

// ColumnsConfig maps record fields to column names in Store.Table.
type ColumnsConfig struct {
	ID              string `yaml:"id" toml:"id" split_words:"true"`
	RawText         string `yaml:"raw_text" toml:"raw_text" split_words:"true"`
	FormattedText   string `yaml:"formatted_text" toml:"formatted_text" split_words:"true"`
	EditedText      string `yaml:"edited_text" toml:"edited_text" split_words:"true"`
	Timestamp       string `yaml:"timestamp" toml:"timestamp" split_words:"true"`
	Application     string `yaml:"application" toml:"application" split_words:"true"`
	URL             string `yaml:"url" toml:"url" split_words:"true"`
	ShareType       string `yaml:"share_type" toml:"share_type" split_words:"true"`
	Status          string `yaml:"status" toml:"status" split_words:"true"`
	Language        string `yaml:"language" toml:"language" split_words:"true"`
	DurationSeconds string `yaml:"duration_seconds" toml:"duration_seconds" split_words:"true"`
	WordCount       string `yaml:"word_count" toml:"word_count" split_words:"true"`
}

type OutputConfig struct {
	DefaultLimit int    `yaml:"default_limit" toml:"default_limit" split_words:"true"`
	Timezone     string `yaml:"timezone" toml:"timezone" split_words:"true"`
	Color        string `yaml:"color" toml:"color" split_words:"true"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level" split_words:"true"`
}

// Load reads a YAML or TOML config file at path, merges it over defaults and
// applies FLOWLOG_* environment overrides. Files ending in .toml are decoded
// as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return finish(cfg)
}

// LoadOrDefault loads path, or DefaultConfigPath when path is empty. A
// missing default file yields the defaults; a missing explicit file is an
// error. Nothing is ever written.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	def, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(def); errors.Is(err, os.ErrNotExist) {
		return finish(DefaultConfig())
	}
	return Load(def)
}

func finish(cfg *Config) (*Config, error) {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no command could use.
func (c *Config) Validate() error {
	if c.Output.DefaultLimit <= 0 {
		return fmt.Errorf("output.default_limit must be positive, got %d", c.Output.DefaultLimit)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return c.Schema().Validate()
}

// StorePath returns the database path with ~ expanded.
func (c *Config) StorePath() (string, error) {
	return expandPath(c.Store.Path)
}

// Schema converts the store section to the value passed to the store.
func (c *Config) Schema() storage.Schema {
	cols := c.Store.Columns
	return storage.Schema{
		Table: c.Store.Table,
		Columns: storage.Columns{
			ID:              cols.ID,
			RawText:         cols.RawText,
			FormattedText:   cols.FormattedText,
			EditedText:      cols.EditedText,
			Timestamp:       cols.Timestamp,
			Application:     cols.Application,
			URL:             cols.URL,
			ShareType:       cols.ShareType,
			Status:          cols.Status,
			Language:        cols.Language,
			DurationSeconds: cols.DurationSeconds,
			WordCount:       cols.WordCount,
		},
	}
}

// Location resolves output.timezone. Empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Output.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Output.Timezone)
	if err != nil {
		return nil, fmt.Errorf("output.timezone: %w", err)
	}
	return loc, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
