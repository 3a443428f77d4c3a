// Command server runs the Code Resources web server.
//
// Configuration comes from coderesources.hcl, CR_* environment variables
// and flags (see internal/config). The main package stays minimal: build
// the logger, the optional sandbox and the server, then block until shutdown.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/code-resources/internal/config"
	"github.com/sakif/code-resources/internal/executor"
	"github.com/sakif/code-resources/internal/executor/docker"
	"github.com/sakif/code-resources/internal/server"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Validate has already rejected unknown levels.
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// The sandbox is optional; without Docker the playground endpoints
	// answer 503. exec must stay a nil interface in that case, not a nil
	// *docker.Executor.
	var exec executor.Executor
	if cfg.ExecutorEnabled {
		dockerCfg := docker.DefaultConfig()
		dockerCfg.Timeout = cfg.ExecutorTimeout
		dockerCfg.PoolSize = cfg.ExecutorPoolSize

		dockerExec, err := docker.New(dockerCfg, logger)
		if err != nil {
			logger.Warn("docker executor unavailable, code execution disabled",
				slog.String("error", err.Error()),
			)
		} else {
			defer dockerExec.Close()
			exec = dockerExec
		}
	}

	srv, err := server.New(cfg, logger, exec)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
