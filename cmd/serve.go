package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"readinglist/internal/app"
	"readinglist/internal/config"
	"readinglist/pkg/logging"
)

// Serve-specific flags
var (
	serveHost        string
	servePort        int
	serveStorage     string
	serveDatabaseURL string
)

// serveCmd defines the serve command structure.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reading-list book API",
	Long: `Runs the reading-list REST API on /reading-list/books.

Books are kept in memory by default. With --storage postgres they are
stored in PostgreSQL and the schema is migrated on startup.

The server also exposes /healthz and Prometheus metrics on /metrics,
and notifies systemd when it is ready if started as a notify service.

Configuration:
  server.host, server.port, server.storage and server.databaseURL in
  config.yaml, READINGLIST_STORAGE and READINGLIST_DATABASE_URL in the
  environment, or the flags below, in increasing order of precedence.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(rootDebug, false, rootConfigPath)
	cfg.LogOutput = cmd.ErrOrStderr()
	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	settings := application.Settings()
	applyServeFlags(cmd, &settings.Server)
	if err := config.ValidateConfig(*settings); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bookServer, err := app.NewBookServer(ctx, settings.Server)
	if err != nil {
		return err
	}
	defer func() {
		if err := bookServer.Close(); err != nil {
			logging.Warn("Serve", "Failed to close database: %v", err)
		}
	}()

	addr, err := bookServer.Server.Listen()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving the reading list on http://%s (storage: %s)\n", addr, settings.Server.Storage)

	return bookServer.Server.Serve(ctx)
}

// applyServeFlags overrides server settings with flags the user set.
func applyServeFlags(cmd *cobra.Command, s *config.ServerConfig) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		s.Host = serveHost
	}
	if flags.Changed("port") {
		s.Port = servePort
	}
	if flags.Changed("storage") {
		s.Storage = config.StorageDriver(serveStorage)
	}
	if flags.Changed("database-url") {
		s.DatabaseURL = serveDatabaseURL
	}
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", config.DefaultServerHost, "Address to bind")
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultServerPort, "Port to listen on (0 picks a free port)")
	serveCmd.Flags().StringVar(&serveStorage, "storage", string(config.StorageMemory), "Storage driver (memory, postgres)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "database-url", "", "PostgreSQL connection string for --storage postgres")
}

