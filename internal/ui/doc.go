// Package ui renders non-interactive output for the customers CLI.
//
// The interactive screen lives in internal/tui. This package covers the
// run-once commands (list, add, discover): a customer table fitted to the
// terminal width, indented JSON for scripting, and success or failure
// boxes with troubleshooting hints derived from api.Error.
//
// Example:
//
//	p := ui.NewPrinter(os.Stdout)
//	list, err := client.ListCustomers(ctx)
//	if err != nil {
//	    p.PrintError("Could not load customers", err)
//	    return err
//	}
//	return p.PrintCustomers(list, ui.FormatTable)
//
// Colors are dropped automatically when stdout is not a terminal.
package ui
