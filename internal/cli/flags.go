package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file (YAML or TOML)" default:""`
	DB      string `long:"db" description:"Path to the transcription database (overrides store.path)"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging on stderr"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ListCommand prints recent transcriptions.
type ListCommand struct {
	Limit  int    `long:"limit" description:"Maximum records (default: output.default_limit)"`
	All    bool   `long:"all" description:"Print every matching record"`
	App    string `long:"app" description:"Only records from this application (exact name)"`
	Shared bool   `long:"shared" description:"Only shared records"`

	globals *GlobalFlags
	version string
}

// SearchCommand runs a substring search over transcription text.
type SearchCommand struct {
	Limit int `long:"limit" description:"Maximum results (default: output.default_limit)"`

	globals *GlobalFlags
	version string
}

// ShowCommand prints one transcription in full.
type ShowCommand struct {
	ID string `long:"id" description:"Transcription ID (required)"`

	globals *GlobalFlags
	version string
}

// ExportCommand serializes a date range as JSON, CSV or text.
type ExportCommand struct {
	Format string `long:"format" description:"Output format: json | csv | text" default:"json"`
	From   string `long:"from" description:"First day to include (YYYY-MM-DD)"`
	To     string `long:"to" description:"Last day to include (YYYY-MM-DD)"`
	Output string `long:"output" short:"o" description:"Write to file instead of stdout"`

	globals *GlobalFlags
	version string
}

// StatsCommand reports usage totals, top applications and activity by period.
type StatsCommand struct {
	Period string `long:"period" description:"Activity bucket: day | week | month" default:"day"`
	Top    int    `long:"top" description:"Applications and periods to show" default:"10"`

	globals *GlobalFlags
	version string
}

// ImportCommand imports from a second dictation source (not implemented).
type ImportCommand struct {
	Source string `long:"source" description:"Source to import from" default:"superwhisper"`

	globals *GlobalFlags
	version string
}
