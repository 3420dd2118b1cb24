// Package main is the entry point for the snippet sharing server.
//
// Its job is deliberately small: read configuration from the environment,
// build the optional Docker runner, and hand everything to internal/server.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/snippetshare/internal/runner"
	"github.com/sakif/snippetshare/internal/runner/docker"
	"github.com/sakif/snippetshare/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/snippetshare.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// The Docker runner is optional: without a daemon the server still
	// serves everything except snippet execution.
	var run runner.Runner
	dockerRunner, err := docker.New(docker.DefaultConfig(), logger)
	if err != nil {
		logger.Warn("Docker runner unavailable, snippet execution disabled",
			slog.String("error", err.Error()),
		)
	} else {
		defer dockerRunner.Close()
		run = dockerRunner
	}

	// JWT_SECRET should be a long random string, e.g.
	//   JWT_SECRET=$(openssl rand -hex 32)
	// If unset, authentication is disabled and the server is read-only.
	jwtSecret := os.Getenv("JWT_SECRET")

	githubCallbackURL := os.Getenv("GITHUB_CALLBACK_URL")
	if githubCallbackURL == "" {
		githubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", port)
	}

	cfg := server.Config{
		Port:               port,
		DBPath:             dbPath,
		JWTSecret:          jwtSecret,
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  githubCallbackURL,
	}

	srv, err := server.New(cfg, logger, run)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
