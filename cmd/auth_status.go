package cmd

import (
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"readinglist/internal/cli"
	"readinglist/pkg/oauth"
)

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long: `Show how requests are authenticated.

The output names the request mode (bearer or cookie), where the session
state came from and, with machine credentials, the cached token's
expiry and claims.`,
	Args: cobra.NoArgs,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	application, err := resolvedApplication(cmd)
	if err != nil {
		return err
	}
	svc := application.Services()
	state := svc.Session.State()

	rows := []cli.KeyValue{
		{Key: "API", Value: svc.BaseURL.String()},
		{Key: "Mode", Value: svc.Dispatcher.Strategy().Mode()},
		{Key: "Session", Value: formatSessionSource(state.Source())},
	}
	if state.Identity != nil {
		rows = append(rows, cli.KeyValue{Key: "Identity", Value: describeIdentity(state.Identity)})
	}

	if svc.Credentials.Configured() {
		rows = append(rows, cli.KeyValue{Key: "Token endpoint", Value: svc.Credentials.Endpoint()})
		rows = append(rows, tokenRows(cmd, svc.Issuer)...)
	}

	cli.RenderDetails(cmd.OutOrStdout(), "Authentication", rows)
	return nil
}

func tokenRows(cmd *cobra.Command, issuer *oauth.TokenIssuer) []cli.KeyValue {
	tok, err := issuer.GetValidToken(commandContext(cmd))
	if err != nil {
		return []cli.KeyValue{{Key: "Token", Value: text.FgRed.Sprint("unavailable: " + err.Error())}}
	}

	rows := []cli.KeyValue{
		{Key: "Token", Value: text.FgGreen.Sprint("valid")},
		{Key: "Refresh after", Value: tok.ExpiresAt.Local().Format(time.RFC3339)},
	}
	claims, err := oauth.InspectClaims(tok.Value.Value())
	if err != nil {
		return rows
	}
	if claims.ClientID != "" {
		rows = append(rows, cli.KeyValue{Key: "Client", Value: claims.ClientID})
	}
	if claims.Issuer != "" {
		rows = append(rows, cli.KeyValue{Key: "Issuer", Value: claims.Issuer})
	}
	if len(claims.Scopes) > 0 {
		rows = append(rows, cli.KeyValue{Key: "Scopes", Value: strings.Join(claims.Scopes, " ")})
	}
	return rows
}

// formatSessionSource colors the session source for the status table.
func formatSessionSource(source string) string {
	switch source {
	case "session", "machine credentials":
		return text.FgGreen.Sprint(source)
	case "none":
		return text.FgYellow.Sprint("not signed in")
	default:
		return text.FgHiBlack.Sprint(source)
	}
}
