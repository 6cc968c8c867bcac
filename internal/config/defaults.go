package config

import "github.com/runnerr0/flowlog/internal/storage"

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	schema := storage.DefaultSchema()
	cols := schema.Columns

	return &Config{
		Store: StoreConfig{
			Path:  "~/Library/Application Support/Wispr Flow/flow.sqlite",
			Table: schema.Table,
			Columns: ColumnsConfig{
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
		},
		Output: OutputConfig{
			DefaultLimit: 20,
			Timezone:     "",
			Color:        "auto",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
