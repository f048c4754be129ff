// Package config loads the customers client configuration.
//
// Settings are layered, later layers winning:
//
//  1. Built-in defaults (Default)
//  2. The YAML file, by default in the OS config directory:
//     - Linux: $XDG_CONFIG_HOME/customers/config.yaml or $HOME/.config/customers/config.yaml
//     - macOS: $HOME/.config/customers/config.yaml
//     - Windows: %LOCALAPPDATA%\customers\config.yaml
//  3. An optional .env file in the working directory (LoadDotEnv)
//  4. CUSTOMERS_* environment variables (ApplyEnv)
//  5. Command-line flags, applied by the caller
//
// # Example File
//
//	version: 1
//	api_url: http://localhost:3000
//	timeout: 10s
//	notice_duration: 3s
//	log_level: debug
//	live: true
//
// Nothing about customers themselves is stored locally; the list always
// comes from the server.
package config
