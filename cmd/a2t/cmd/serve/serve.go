package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"hy-whisper/internal/api/server"
	"hy-whisper/internal/app/common"
	"hy-whisper/internal/config"
)

var (
	configFile  string
	port        string
	environment string
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the transcription HTTP server",
	Long: `Start the HTTP server. Configuration comes from the built-in defaults, the
optional --config YAML file, .env and the environment, in that order; the
flags below override all of them.

On SIGINT or SIGTERM the server stops accepting requests, waits for the ones in
flight and removes every file left in the uploads directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		return run(cmd.Context(), verbose)
	},
}

func init() {
	Cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	Cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")
	Cmd.Flags().StringVarP(&environment, "env", "e", "", "environment name, e.g. development or production (overrides APP_ENV)")
}

func run(ctx context.Context, verbose bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := common.NewLogger(verbose || !cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialise server", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal, stopping server")
	case serveErr = <-srv.Errors():
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile})
	if err != nil {
		return config.Config{}, err
	}
	if port != "" {
		cfg.Port = port
	}
	if environment != "" {
		cfg.Environment = environment
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
