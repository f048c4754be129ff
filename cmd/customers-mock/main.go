// Customers-mock serves a development customers API.
//
// It implements GET and POST /api/customers with the same validation and
// error payloads the client expects, a WebSocket change feed and a health
// check. Customers are kept in memory, or in SQLite with --db.
//
// Usage:
//
//	customers-mock serve [flags]
//
// See 'customers-mock serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/customers/internal/logging"
	"github.com/muurk/customers/internal/mockapi"
	"github.com/muurk/customers/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "customers-mock",
	Short: "Mock customers API",
	Long: `A standalone development backend for the customers client.

Validation mirrors the client form: first name, last name and email are
required. Duplicate emails are rejected with 409.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command flags
var (
	addr      string
	dbPath    string
	seed      bool
	advertise bool
	name      string
	latency   time.Duration
	logLevel  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mock API",
	Long: `Start the mock customers API.

Stops gracefully on SIGINT or SIGTERM: WebSocket clients are disconnected,
in-flight requests finish and the database is closed.`,
	Example: `  # In-memory store with sample customers
  customers-mock serve --seed

  # Persistent store, announced on the local network
  customers-mock serve --db ./customers.db --advertise

  # Slow responses, to watch loading and submitting states
  customers-mock serve --seed --latency 1500ms --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", mockapi.DefaultAddr, "Listen address")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file (in-memory when empty)")
	serveCmd.Flags().BoolVar(&seed, "seed", false, "Load sample customers into an empty store")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Announce the API over mDNS")
	serveCmd.Flags().StringVar(&name, "name", "", "mDNS instance name (default \"customers-mock on <hostname>\")")
	serveCmd.Flags().DurationVar(&latency, "latency", 0, "Delay added before every API response")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if latency < 0 {
		return fmt.Errorf("--latency must not be negative, got %s", latency)
	}
	if err := logging.Initialize(logging.Options{Level: logLevel}); err != nil {
		return err
	}

	srv, err := mockapi.New(mockapi.Config{
		Addr:      addr,
		DBPath:    dbPath,
		Seed:      seed,
		Latency:   latency,
		Advertise: advertise,
		Name:      name,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("customers-mock %s\n", version.Full())
	},
}
