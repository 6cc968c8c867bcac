package cli

import "fmt"

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	// TODO: read the second source's history database once its schema is mapped.
	return fmt.Errorf("import from %s: not implemented", c.Source)
}
