package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/lox/liarsbar/cmd/liarsbar/shared"
	"github.com/lox/liarsbar/internal/config"
	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/server"
)

// ServerCmd runs the game and admin listeners
type ServerCmd struct {
	Config       string        `short:"c" default:"liarsbar.hcl" help:"Path to HCL configuration file (optional)"`
	Addr         string        `short:"a" help:"Game server address (overrides config)"`
	AdminAddr    string        `help:"Admin server address (overrides config)"`
	LogLevel     string        `short:"l" help:"Log level (overrides config)"`
	Debug        bool          `help:"Enable debug logging"`
	AdvanceDelay time.Duration `help:"Delay before the turn moves on after a play (overrides config)"`
	RevealDelay  time.Duration `help:"Delay before a reveal is resolved (overrides config)"`
	Seed         *int64        `help:"Sequence seed (overrides config)"`
}

const shutdownTimeout = 5 * time.Second

func (c *ServerCmd) Run() error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.applyOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(os.Stderr, shared.DebugLevel(level, c.Debug))

	room, err := game.NewRoom(cfg.RoomConfig(), logger, quartz.NewReal())
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}

	logger.Info("Starting liar's bar server",
		"addr", cfg.Server.Address,
		"admin", cfg.Server.AdminAddress,
		"advance_delay", cfg.Game.AdvanceDelay,
		"reveal_delay", cfg.Game.RevealDelay,
		"seed", cfg.Sequence.Seed)

	ctx := shared.SetupSignalHandlerWithLogger(logger)
	return serve(ctx, cfg, room, logger)
}

func (c *ServerCmd) applyOverrides(cfg *config.Config) {
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.AdminAddr != "" {
		cfg.Server.AdminAddress = c.AdminAddr
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.AdvanceDelay != 0 {
		cfg.Game.AdvanceDelay = c.AdvanceDelay
	}
	if c.RevealDelay != 0 {
		cfg.Game.RevealDelay = c.RevealDelay
	}
	if c.Seed != nil {
		cfg.Sequence.Seed = *c.Seed
	}
}

// serve runs the room, the game server and the admin server until ctx is
// cancelled or one of them fails
func serve(ctx context.Context, cfg *config.Config, room *game.Room, logger *log.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	wsServer := server.NewServer(cfg.Server.Address, room, logger)
	admin := &http.Server{
		Addr:              cfg.Server.AdminAddress,
		Handler:           server.NewAdminRouter(room, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		room.Run(ctx)
		return nil
	})

	g.Go(wsServer.Start)

	g.Go(func() error {
		logger.Info("Starting admin server", "addr", admin.Addr)
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin listen on %s: %w", admin.Addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := errors.Join(wsServer.Shutdown(shutdownCtx), admin.Shutdown(shutdownCtx))
		room.Stop()
		return err
	})

	return g.Wait()
}
