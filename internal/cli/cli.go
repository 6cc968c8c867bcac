package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	List   *ListCommand
	Search *SearchCommand
	Show   *ShowCommand
	Export *ExportCommand
	Stats  *StatsCommand
	Import *ImportCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "flowlog"
	parser.LongDescription = "Read-only search, statistics and export over the local dictation history."

	cmds := &commands{
		List:   &ListCommand{globals: &globals, version: version},
		Search: &SearchCommand{globals: &globals, version: version},
		Show:   &ShowCommand{globals: &globals, version: version},
		Export: &ExportCommand{globals: &globals, version: version},
		Stats:  &StatsCommand{globals: &globals, version: version},
		Import: &ImportCommand{globals: &globals, version: version},
	}

	parser.AddCommand("list", "List recent transcriptions", "List recent transcriptions, newest first, with optional application and shared filters.", cmds.List)
	parser.AddCommand("search", "Search transcription text", "Search raw, formatted and edited text for a substring and show a preview of each match.", cmds.Search)
	parser.AddCommand("show", "Print one transcription", "Print every field and text variant of a single transcription.", cmds.Show)
	parser.AddCommand("export", "Export transcriptions", "Export transcriptions in a date range as JSON, CSV or plain text.", cmds.Export)
	parser.AddCommand("stats", "Show usage statistics", "Show totals, words per minute, top applications and activity by day, week or month.", cmds.Stats)
	parser.AddCommand("import", "Import from another dictation app", "Import history from another dictation app (not implemented).", cmds.Import)

	return parser, &globals, cmds
}

// Run is the main entry point for the flowlog CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("flowlog %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
