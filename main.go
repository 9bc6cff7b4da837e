package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/genniabot/gbot-core/agent"
	"github.com/genniabot/gbot-core/config"
	"github.com/genniabot/gbot-core/ipc"
	"github.com/genniabot/gbot-core/record"
	"github.com/genniabot/gbot-core/rules"
)

const banner = `
 ██████╗ ██████╗  ██████╗ ████████╗
██╔════╝ ██╔══██╗██╔═══██╗╚══██╔══╝
██║  ███╗██████╔╝██║   ██║   ██║
██║   ██║██╔══██╗██║   ██║   ██║
╚██████╔╝██████╔╝╚██████╔╝   ██║
 ╚═════╝ ╚═════╝  ╚═════╝    ╚═╝

Fog-of-War Territory Bot`

func main() {
	cfg, err := config.Parse(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting gbot", "server", cfg.Server, "room", cfg.Room, "name", cfg.Name)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("bot stopped", "error", err)
		stop()
		os.Exit(1)
	}
	slog.Info("shutting down")
}

func run(ctx context.Context, cfg config.Config) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine, err := rules.NewEngine(cfg.Doctrine, rand.New(rand.NewSource(seed)))
	if err != nil {
		return fmt.Errorf("build rule engine: %w", err)
	}

	conn, err := ipc.Dial(ctx, cfg.Server, url.Values{
		"roomId":   {cfg.Room},
		"username": {cfg.Name},
	})
	if err != nil {
		return err
	}

	a, err := agent.New(conn, engine, cfg.Room)
	if err != nil {
		conn.Close()
		return err
	}
	if cfg.Record.TurnLogDir != "" {
		a.Turns = record.NewTurnLog(cfg.Record.TurnLogDir)
		defer a.Turns.Close()
	}
	if cfg.Record.IndexPath != "" {
		idx, err := record.OpenIndex(filepath.Clean(cfg.Record.IndexPath))
		if err != nil {
			conn.Close()
			return fmt.Errorf("open match index: %w", err)
		}
		defer idx.Close()
		a.Index = idx
		if _, err := a.ReportHistory(ctx, 5); err != nil {
			slog.Warn("match history unavailable", "error", err)
		}
	}

	for event, h := range a.Handlers() {
		conn.RegisterHandler(event, h)
	}
	if err := conn.GetRoomInfo(); err != nil {
		conn.Close()
		return err
	}

	err = conn.ReadLoop(ctx)
	if errors.Is(err, ipc.ErrClosed) {
		slog.Info("server closed the session")
		return nil
	}
	return err
}
