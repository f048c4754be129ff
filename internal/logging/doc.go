// Package logging provides structured logging for the customers tools.
//
// It wraps a package-global zap logger. Logging is silent unless a level
// is supplied, either through Options.Level or the CUSTOMERS_LOG_LEVEL
// environment variable. The interactive screen owns the terminal, so it
// points the logger at a file; CLI commands and the mock backend log to
// stderr.
//
// # Usage
//
//	if err := logging.Initialize(logging.Options{Level: "debug", OutputPath: "/tmp/customers.log"}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
//	logging.Info("Customer created", zap.String("email", c.Email))
//
// Domain helpers (LogRequest, LogResponse, LogStoreTransition,
// LogHTTPRequest) keep field names consistent across packages.
package logging
