// Package main is the MCP entry point for the uveitis screening calculator.
// Configuration comes from UVECHECK_* environment variables, or from a YAML
// file when started with --config <path>.
package main

import (
	"context"
	"os"
	"strings"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/uvecheck-mcp-server/internal/config"
	"github.com/uvecheck-mcp-server/internal/logging"
	"github.com/uvecheck-mcp-server/internal/mcp"
)

func main() {
	cfg := config.LoadLiteConfig()
	if path := configFileArg(os.Args[1:]); path != "" {
		manager, err := config.NewManagerFromFile(path)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to load configuration")
		}
		cfg = manager.LiteConfig()
	}

	// stdout carries the stdio transport, so logs always go to stderr
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	server, err := mcp.NewServer(cfg, mcp.WithLogger(logger))
	if err != nil {
		logger.WithError(err).Fatal("Failed to create MCP server")
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("MCP server failed")
		return
	}

	logger.WithFields(logrus.Fields{"cache": server.CacheStats()}).Info("MCP server stopped")
}

// configFileArg returns the value of --config, accepting both
// "--config path" and "--config=path"
func configFileArg(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config" && i+1 < len(args):
			return args[i+1]
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}
