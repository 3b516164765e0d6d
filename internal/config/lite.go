// Package config provides configuration management for the HTTP API and MCP server.
// This file contains the environment-only configuration used by the MCP server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Transport types supported by the MCP server
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// LiteConfig is the environment-only configuration for the MCP server.
// It needs no config file and falls back to sensible defaults.
type LiteConfig struct {
	// Server identity reported during MCP initialization
	ServerName    string
	ServerVersion string

	// Cache settings
	CacheMaxItems int           // Maximum cached tool results; 0 disables the cache
	CacheTTL      time.Duration // Lifetime of a cached tool result
	RedisURL      string        // Optional shared cache tier, e.g. redis://localhost:6379/0

	// Transport settings
	Transport string // Transport type: stdio, http
	HTTPHost  string // Bind host (if transport is http)
	HTTPPort  int    // HTTP port (if transport is http)

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	return &LiteConfig{
		ServerName:    "uvecheck-mcp-server",
		ServerVersion: "1.0.0",
		CacheMaxItems: 1000,
		CacheTTL:      time.Hour,
		Transport:     TransportStdio,
		HTTPHost:      "127.0.0.1",
		HTTPPort:      8081,
		LogLevel:      "info",
		LogFormat:     "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	// Cache settings
	if v := os.Getenv("UVECHECK_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("UVECHECK_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CacheTTL = d
		}
	}

	if v := os.Getenv("UVECHECK_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}

	// Transport
	if v := os.Getenv("UVECHECK_TRANSPORT"); v != "" {
		cfg.Transport = v
	}
	if v := os.Getenv("UVECHECK_HTTP_HOST"); v != "" {
		cfg.HTTPHost = v
	}
	if v := os.Getenv("UVECHECK_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HTTPPort = n
		}
	}

	// Logging
	if v := os.Getenv("UVECHECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("UVECHECK_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// Validate checks the transport selection
func (c *LiteConfig) Validate() error {
	switch c.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
			return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
		}
	default:
		return fmt.Errorf("unsupported transport: %s", c.Transport)
	}
	return nil
}

// HTTPAddr returns the listen address for the HTTP transport
func (c *LiteConfig) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}
