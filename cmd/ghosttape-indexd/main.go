// Package main provides the entry point for ghosttape-indexd.
//
// ghosttape-indexd is the ghost index daemon. It maintains a
// persistent index of a ghost trace directory and exposes index
// statistics in Prometheus format.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/veldra/ghosttape/internal/indexd"
	"github.com/veldra/ghosttape/internal/infra/buildinfo"
	"github.com/veldra/ghosttape/internal/infra/confloader"
	"github.com/veldra/ghosttape/internal/infra/shutdown"
	"github.com/veldra/ghosttape/internal/telemetry/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("ghosttape-indexd %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	build := buildinfo.Get()
	log.Info("starting ghosttape-indexd",
		"version", build.Version,
		"commit", build.Commit,
		"config", *configFile)

	server, err := indexd.New(cfg, log)
	if err != nil {
		return fmt.Errorf("init daemon: %w", err)
	}

	ctx := context.Background()
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(30 * time.Second)
	shutdownHandler.OnShutdown("daemon", server.Shutdown)

	log.Info("daemon started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("daemon stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*indexd.Config, error) {
	cfg := indexd.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := indexd.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
