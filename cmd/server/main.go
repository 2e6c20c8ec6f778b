package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/yourusername/dltrack/internal/app"
	"github.com/yourusername/dltrack/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file (default: ./configs, $HOME/.dltrack, /etc/dltrack)")

func main() {
	flag.Parse()

	if err := runMain(); err != nil {
		fmt.Fprintf(os.Stderr, "dltrack-server: %v\n", err)
		os.Exit(1)
	}
}

func runMain() error {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// engine, control and error categories get their own files when logs_dir is set
	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Logging.LogsDir,
		General: logger.Config{
			Level:      config.Logging.Level,
			Format:     config.Logging.Format,
			OutputPath: config.Logging.OutputPath,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer multiLog.Close()

	log := multiLog.General()

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	log.Info("Starting dltrack server",
		zap.String("addr", listener.Addr().String()),
		zap.String("engine", config.Engine.BaseURL),
		zap.Strings("artifact_extensions", config.Artifacts.Extensions),
		zap.Bool("restore_on_start", config.Store.RestoreOnStart))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, config, multiLog, listener); err != nil {
		multiLog.LogAppError("Server stopped with error", zap.Error(err))
		return err
	}

	log.Info("Server exited")
	return nil
}
