// Package cli implements the bndl command-line interface.
//
// This package provides commands for exporting node graphs to BNDL
// text, replaying documents back into graphs, generating Python replay
// scripts, rounding numeric literals, inspecting documents, rendering
// diagrams, and running the HTTP API. The CLI is built using cobra
// with styled output via lipgloss and logging via charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - export: Convert a JSON node graph to a .bndl document
//   - replay: Rebuild a node graph from a .bndl document
//   - script: Generate a Python replay script from a .bndl document
//   - round: Round numeric literals in a document
//   - inspect: Show header, statistics and warnings for a document
//   - render: Draw a document's node graph as SVG, PNG, PDF or DOT
//   - serve: Run the HTTP API
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --log-level for debug output. Loggers are
// passed through context.Context to allow structured progress
// tracking.
//
// # Example
//
//	import "github.com/KDB-USJP/BNDL-Lite/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/KDB-USJP/BNDL-Lite/pkg/cache"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "bndl"

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/bndl/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the default config file path using XDG standard
// (~/.config/bndl/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache builds the cache backend the config selects. Backend
// failures degrade to a null cache rather than failing the command.
func newCache(ctx context.Context, cfg Config) cache.Cache {
	switch cfg.Cache.Backend {
	case cacheBackendNone:
		return cache.NewNullCache()
	case cacheBackendRedis:
		c, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			loggerFromContext(ctx).Warnf("Redis cache unavailable, caching disabled: %v", err)
			return cache.NewNullCache()
		}
		return c
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache()
			}
			dir = d
		}
		c, err := cache.NewFileCache(dir)
		if err != nil {
			loggerFromContext(ctx).Warnf("File cache unavailable, caching disabled: %v", err)
			return cache.NewNullCache()
		}
		return c
	}
}
