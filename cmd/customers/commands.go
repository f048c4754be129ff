package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/customers/internal/config"
	"github.com/muurk/customers/internal/discovery"
	"github.com/muurk/customers/internal/feed"
	"github.com/muurk/customers/internal/form"
	"github.com/muurk/customers/internal/logging"
	"github.com/muurk/customers/internal/tui"
	"github.com/muurk/customers/internal/ui"
)

// Global flags
var (
	apiURL          string
	configPath      string
	logLevel        string
	discoverAPI     bool
	discoverTimeout time.Duration
	liveUpdates     bool
)

// Per-command flags
var (
	outputFormat string
	firstName    string
	lastName     string
	email        string
	businessName string
	forceInit    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", config.DefaultAPIURL, "Base URL of the customers API")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	rootCmd.PersistentFlags().BoolVar(&discoverAPI, "discover", false, "Find the API on the local network over mDNS")
	rootCmd.PersistentFlags().DurationVar(&discoverTimeout, "discover-timeout", discovery.DefaultScanTimeout, "How long --discover and discover listen")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(configCmd)

	for _, cmd := range []*cobra.Command{rootCmd, browseCmd} {
		cmd.Flags().BoolVar(&liveUpdates, "live", false, "Refresh on server change events")
	}
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive customer list",
	Long: `Open the interactive customer list.

Keys on the list: a to add a customer, r to refresh, q to quit.
In the add dialog: tab and shift+tab move between fields, enter submits
once first name, last name and email are filled in, esc cancels.

Logs are written to the log file while the screen is open.`,
	Example: `  # Against the default local API
  customers browse

  # Against a mock API found on the network, with live updates
  customers browse --discover --live`,
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !ui.IsTerminal(os.Stdout) {
		return errors.New("the interactive screen needs a terminal; use 'customers list' for scripts")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg, true); err != nil {
		return err
	}
	defer logging.Sync()

	opts := tui.Options{
		Client:         newClient(cfg),
		NoticeDuration: cfg.NoticeDuration,
	}
	if cfg.Live {
		if opts.FeedURL, err = cfg.WebSocketURL(feed.Path); err != nil {
			return err
		}
	}

	model, err := tui.NewModel(opts)
	if err != nil {
		return err
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("customers screen error: %w", err)
	}
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all customers",
	Long: `Fetch the customer list once and print it.

The table is fitted to the terminal width. Use --format json for scripting;
an empty list prints [].`,
	Example: `  customers list
  customers list --format json | jq '.[].email'`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := ui.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg, false); err != nil {
		return err
	}
	defer logging.Sync()

	list, err := newClient(cfg).ListCustomers(cmd.Context())
	if err != nil {
		if format == ui.FormatTable {
			ui.NewPrinter(os.Stderr).PrintError("Could not load customers", err)
		}
		return fmt.Errorf("failed to list customers: %w", err)
	}

	return ui.NewPrinter(os.Stdout).PrintCustomers(list, format)
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a customer",
	Long: `Create a customer without opening the interactive screen.

First name, last name and email are required and may not be blank.
Business name is optional.`,
	Example: `  customers add --first-name Ada --last-name Lovelace --email ada@example.com

  customers add --first-name Grace --last-name Hopper \
    --email grace@example.com --business-name "US Navy"`,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&firstName, "first-name", "", "First name (required)")
	addCmd.Flags().StringVar(&lastName, "last-name", "", "Last name (required)")
	addCmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	addCmd.Flags().StringVar(&businessName, "business-name", "", "Business name")
	addCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	format, err := ui.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	f := form.New()
	f.SetField(form.FieldFirstName, firstName)
	f.SetField(form.FieldLastName, lastName)
	f.SetField(form.FieldEmail, email)
	f.SetField(form.FieldBusinessName, businessName)
	if err := f.Validate(); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg, false); err != nil {
		return err
	}
	defer logging.Sync()

	created, err := newClient(cfg).CreateCustomer(cmd.Context(), f.Draft().Customer())
	if err != nil {
		if format == ui.FormatTable {
			ui.NewPrinter(os.Stderr).PrintError("Could not add customer", err)
		}
		return fmt.Errorf("failed to add customer: %w", err)
	}

	if format == ui.FormatJSON {
		return ui.WriteJSON(os.Stdout, created)
	}

	business := created.BusinessName
	if business == "" {
		business = "-"
	}
	ui.NewPrinter(os.Stdout).PrintSuccess("Customer added",
		ui.Detail{Key: "Name", Value: created.DisplayName()},
		ui.Detail{Key: "Email", Value: created.Email},
		ui.Detail{Key: "Business", Value: business},
	)
	return nil
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find customers APIs on the local network",
	Long: `Listen for customers APIs announced over mDNS/DNS-SD.

customers-mock announces itself when started with --advertise. Use the
printed URL with --api-url, or pass --discover to any command when exactly
one API is on the network.`,
	Example: `  customers discover
  customers discover --discover-timeout 10s --format json`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format (table, json)")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	format, err := ui.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	if err := logging.Initialize(logging.Options{Level: logLevel}); err != nil {
		return err
	}
	defer logging.Sync()

	if format == ui.FormatTable {
		fmt.Fprintf(os.Stderr, "Listening for customers APIs (%s)...\n\n", discoverTimeout)
	}

	services, err := discovery.Browse(cmd.Context(), discoverTimeout)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}
	return ui.NewPrinter(os.Stdout).PrintServices(services, format)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the config file, .env, CUSTOMERS_*
environment variables and flags have been applied.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		cfg := config.Default()
		if cmd.Flags().Changed("api-url") {
			cfg.APIURL = apiURL
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
