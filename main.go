// Command dots-and-boxes starts the Dots and Boxes game server.
//
// It supports two modes:
//  1. "serve" (default) - runs the HTTP server exposing the WebSocket
//     protocol, the REST inspection API, and optionally an /mcp endpoint
//  2. "mcp" - runs an MCP stdio server over an in-process game service
//
// Configuration comes from environment variables (see game/config),
// with a .env file in the working directory honored when present.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/nkapoor/dots-and-boxes/api"
	"github.com/nkapoor/dots-and-boxes/game/config"
	"github.com/nkapoor/dots-and-boxes/game/match"
	"github.com/nkapoor/dots-and-boxes/game/service"
	"github.com/nkapoor/dots-and-boxes/game/session"
	"github.com/nkapoor/dots-and-boxes/game/user"
	"github.com/nkapoor/dots-and-boxes/transport/mcp"
	"github.com/nkapoor/dots-and-boxes/transport/websocket"
)

const (
	Version = "1.0.0"
	AppName = "Dots and Boxes Server"
)

func main() {
	cmd := &cli.Command{
		Name:    "dots-and-boxes",
		Usage:   AppName,
		Version: Version,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (WebSocket, REST API, MCP endpoint)",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run an MCP stdio server over an in-process game service",
				Action: runMCP,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and wires the game service.
func setup() (config.Config, *service.Service, *slog.Logger, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return config.Config{}, nil, nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	logger := newLogger(cfg.LogLevel)
	svc, err := newService(cfg, logger)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, svc, logger, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newService assembles the registries behind the game service.
func newService(cfg config.Config, logger *slog.Logger) (*service.Service, error) {
	users, err := user.NewStore(cfg.UsersFile, logger)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}

	sessions := session.NewRegistry(cfg.SessionTTL, logger)
	matches := match.NewRegistry(sessions, cfg.Grid(), cfg.Timeouts(), logger)
	queue := match.NewQueue(sessions, matches, logger)
	return service.New(users, sessions, matches, queue, logger), nil
}

func runServe(ctx context.Context, _ *cli.Command) error {
	cfg, svc, logger, err := setup()
	if err != nil {
		return err
	}

	ws := websocket.NewServer(svc, logger)
	var mcpHandler http.Handler
	if cfg.EnableMCP {
		mcpHandler = mcp.NewServer(svc).HTTPHandler()
	}
	apiServer := api.NewServer(svc, ws, mcpHandler, logger)

	httpServer := &http.Server{
		Addr:        cfg.Addr,
		Handler:     apiServer,
		IdleTimeout: 60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"addr", cfg.Addr,
			"grid", fmt.Sprintf("%dx%d", cfg.GridRows, cfg.GridColumns),
			"mcp", cfg.EnableMCP)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func runMCP(ctx context.Context, _ *cli.Command) error {
	_, svc, logger, err := setup()
	if err != nil {
		return err
	}

	logger.Info("mcp stdio server ready")
	return mcp.NewServer(svc).ServeStdio()
}
