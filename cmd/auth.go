package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"readinglist/internal/cli"
	"readinglist/internal/session"
)

var authQuiet bool

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication for readinglist",
	Long: `Manage how readinglist authenticates to the reading-list API.

With machine credentials (CONSUMERKEY and CONSUMERSECRET) every request
carries a client-credentials bearer token and no sign-in is needed.
Otherwise requests ride on gateway session cookies obtained by signing in.

Examples:
  readinglist auth login                          # Open the sign-in page
  readinglist auth login --listen                 # Sign in and capture the redirect
  readinglist auth login --callback-url '<url>'   # Finish sign-in from a pasted URL
  readinglist auth status                         # Show mode, session and token
  readinglist auth whoami                         # Show the signed-in identity
  readinglist auth logout                         # Sign out`,
}

// authLogoutCmd represents the auth logout command
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear stored cookies",
	Long: `Sign out of the managed-auth gateway.

The persisted identity and every stored cookie are removed, then the
gateway logout page is opened so the browser session ends too.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogout,
}

// authWhoamiCmd represents the auth whoami command
var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current identity",
	Args:  cobra.NoArgs,
	RunE:  runAuthWhoami,
}

// authPrintf prints unless --quiet is set.
func authPrintf(cmd *cobra.Command, format string, args ...interface{}) {
	if !authQuiet {
		fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	}
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authWhoamiCmd)

	authCmd.PersistentFlags().BoolVarP(&authQuiet, "quiet", "q", false, "Suppress non-essential output")
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	svc := application.Services()
	ctx := commandContext(cmd)

	target, err := svc.Session.Logout(ctx)
	if err != nil {
		return err
	}
	if err := svc.Jar.Clear(); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}

	authPrintf(cmd, "%s\n", cli.FormatSuccess("Signed out"))
	if svc.Credentials.Configured() {
		return nil
	}
	return cli.NewBrowserNavigator(cmd.ErrOrStderr(), !rootNoBrowser).Navigate(ctx, target)
}

func runAuthWhoami(cmd *cobra.Command, args []string) error {
	application, err := resolvedApplication(cmd)
	if err != nil {
		return err
	}
	svc := application.Services()
	state := svc.Session.State()

	switch {
	case state.Identity != nil:
		fmt.Fprintln(cmd.OutOrStdout(), describeIdentity(state.Identity))
	case state.Authenticated:
		fmt.Fprintln(cmd.OutOrStdout(), "machine credentials")
	default:
		return &cli.AuthRequiredError{LoginURL: svc.LoginURL.String()}
	}
	return nil
}

func describeIdentity(id *session.Identity) string {
	name := id.DisplayName()
	if name == "" {
		name = "(anonymous)"
	}
	if id.Organization != "" {
		return fmt.Sprintf("%s (%s)", name, id.Organization)
	}
	return name
}
