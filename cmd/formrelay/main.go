package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/h190k/formrelay/internal/config"
	"github.com/h190k/formrelay/internal/logging"
	"github.com/h190k/formrelay/internal/server"
	"github.com/h190k/formrelay/internal/telemetry"
	"github.com/h190k/formrelay/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "formrelay",
	Short: "Dynamic Form API - relays website form submissions to email",
	Long: `formrelay accepts JSON form submissions from allow-listed websites,
optionally verifies a CAPTCHA token, renders the submission into an HTML
notification and mails it to the form's recipients.

Configuration is read from the environment and from .env files.
Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "formrelay %s\n", version.Info())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Logging())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	logger.Info("starting server", "env", cfg.Environment, "version", version.Version)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	// Requests are logged through the structured logger
	gin.DefaultWriter = io.Discard

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:       cfg.OTLPEndpoint,
		Insecure:       cfg.OTLPInsecure,
		ServiceName:    server.ServiceName,
		ServiceVersion: version.Version,
	})
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		return err
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(formsCmd)
	rootCmd.AddCommand(checkConfigCmd)
	rootCmd.AddCommand(checkSMTPCmd)
	rootCmd.AddCommand(versionCmd)

	checkSMTPCmd.Flags().Duration("timeout", 30*time.Second, "Time allowed for connecting and authenticating")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
