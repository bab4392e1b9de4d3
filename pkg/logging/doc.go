// Package logging provides the process-wide structured logger for readinglist.
//
// It is a thin layer over log/slog that tags every entry with a subsystem
// name, so output from the token issuer, the session resolver and the request
// dispatcher can be told apart in a single stream.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Bootstrap", "Loaded configuration from %s", configPath)
//	logging.Debug("Dispatcher", "%s %s -> %d", method, path, status)
//	logging.Error("BookService", err, "Failed to add book")
//
// Components that prefer attribute-style logging receive logging.Logger()
// as an injected *slog.Logger.
//
// Secrets never reach the log: use Mask for configuration values and
// oauth.RedactedToken for tokens.
package logging
