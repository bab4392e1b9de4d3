package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"readinglist/internal/cli"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates no session or machine credentials, or an expired session.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the sign-in flow or token issuance failed.
	ExitCodeAuthFailed = 3
	// ExitCodeAccessDenied indicates the API answered 403.
	ExitCodeAccessDenied = 4
	// ExitCodeUnavailable indicates the API could not be reached.
	ExitCodeUnavailable = 5
)

// Global flags.
var (
	rootDebug      bool
	rootLogLevel   string
	rootConfigPath string
	rootNoBrowser  bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "readinglist",
	Short: "Manage your reading list from the terminal",
	Long: `readinglist talks to the reading-list API behind a managed-auth gateway.

It signs requests with an OAuth2 client-credentials token when machine
credentials are configured, and otherwise rides on the session cookies
obtained through "readinglist auth login". "readinglist serve" runs the
book API itself for local development.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a semantic exit code on error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "readinglist version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps an error to an exit code for scripting.
func getExitCode(err error) int {
	var authRequired *cli.AuthRequiredError
	if errors.As(err, &authRequired) {
		return ExitCodeAuthRequired
	}

	var authExpired *cli.AuthExpiredError
	if errors.As(err, &authExpired) {
		return ExitCodeAuthRequired
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	var managed *cli.ManagedAuthError
	if errors.As(err, &managed) {
		return ExitCodeAuthFailed
	}

	var denied *cli.AccessDeniedError
	if errors.As(err, &denied) {
		return ExitCodeAccessDenied
	}

	var connErr *cli.ConnectionError
	if errors.As(err, &connErr) {
		return ExitCodeUnavailable
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Log level (debug, info, warn, error); logs are silent when unset")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Configuration directory (default: ~/.config/readinglist)")
	rootCmd.PersistentFlags().BoolVar(&rootNoBrowser, "no-browser", false, "Print sign-in URLs instead of opening a browser")

	rootCmd.AddCommand(newVersionCmd())
}
