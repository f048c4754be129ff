// Customers is a terminal client for the customers API.
//
// Running without arguments opens the interactive customer list, where
// new customers are added through a dialog. The remaining commands cover
// scripting (list, add), finding a local API over mDNS (discover) and
// configuration.
//
// Usage:
//
//	customers [command] [flags]
//
// See 'customers --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/customers/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "customers",
	Short: "Customer management client",
	Long: `A terminal client for the customers API.

Lists customers and adds new ones through a dialog with required-field
validation. The list refreshes after every successful add, and on every
change pushed by the server when live updates are enabled.

If no command is specified, the interactive screen launches automatically.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd, args)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("customers %s\n", version.Full())
	},
}
