package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Forkspace/backend/internal/infrastructure/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	port       string
	host       string
	dev        bool
)

var rootCmd = &cobra.Command{
	Use:          "forkspace-server",
	Short:        "Forkspace backend",
	Long:         "Serve sandboxed filesystem access, PTY sessions and git worktree management to the Forkspace front end.",
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "settings file (.yaml, .yml or .toml); defaults to $"+config.PathEnv)
	rootCmd.Flags().StringVar(&port, "port", "", "listen port (overrides config)")
	rootCmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	rootCmd.Flags().BoolVar(&dev, "dev", false, "development logging")
}

func run(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = os.Getenv(config.PathEnv)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port != "" {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if dev {
		cfg.Logging.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)
	defer func() { _ = log.Sync() }()

	srv, err := server.New(cfg, log, server.Options{})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, srv, log.Logger, cfg.Addr())
}

type runner interface {
	Run(ctx context.Context) error
}

// serve runs srv until ctx is cancelled or the listener fails.
func serve(ctx context.Context, srv runner, log *zap.Logger, addr string) error {
	err := srv.Run(ctx)
	if ctx.Err() != nil {
		log.Info("shutdown signal received", zap.String("addr", addr))
	}
	return err
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
