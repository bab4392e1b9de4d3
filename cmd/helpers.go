package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"readinglist/internal/app"
	"readinglist/internal/cli"
)

// newApplication loads configuration and wires the client pipeline.
// Logging stays quiet unless --debug or --log-level is set.
func newApplication(cmd *cobra.Command) (*app.Application, error) {
	cfg := app.NewConfig(rootDebug, !rootDebug && rootLogLevel == "", rootConfigPath)
	cfg.LogLevel = rootLogLevel
	cfg.LogOutput = cmd.ErrOrStderr()
	cfg.Navigator = cli.NewBrowserNavigator(cmd.ErrOrStderr(), !rootNoBrowser)
	return app.NewApplication(cfg)
}

// resolvedApplication is newApplication followed by session resolution,
// which consumes any pending login artifact.
func resolvedApplication(cmd *cobra.Command) (*app.Application, error) {
	application, err := newApplication(cmd)
	if err != nil {
		return nil, err
	}
	application.Services().Session.Resolve(commandContext(cmd))
	return application, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// translate converts pipeline errors into the CLI error types.
func translate(application *app.Application, err error) error {
	if err == nil {
		return nil
	}
	svc := application.Services()
	return cli.Translate(err, svc.LoginURL.String(), svc.Credentials.Endpoint(), svc.BaseURL.String())
}
