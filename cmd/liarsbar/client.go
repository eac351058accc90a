package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/liarsbar/cmd/liarsbar/shared"
	"github.com/lox/liarsbar/internal/client"
	"github.com/lox/liarsbar/internal/server"
	"github.com/lox/liarsbar/internal/tui"
)

// ClientCmd connects an interactive terminal client
type ClientCmd struct {
	Server  string        `short:"s" default:"http://localhost:4000" help:"Game server URL"`
	ID      string        `help:"Player id (random if empty)"`
	Name    string        `short:"n" help:"Display name, entered after joining when set"`
	LogFile string        `default:"liarsbar-client.log" help:"Log file path"`
	Debug   bool          `help:"Enable debug logging"`
	Wait    time.Duration `default:"10s" help:"How long to wait for the server to become healthy"`
}

func (c *ClientCmd) Run() error {
	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger := shared.SetupLogger(logFile, shared.DebugLevel(log.InfoLevel, c.Debug))

	serverURL := strings.TrimRight(strings.TrimSpace(c.Server), "/")
	waitCtx, cancel := context.WithTimeout(context.Background(), c.Wait)
	defer cancel()
	if err := server.WaitForHealthy(waitCtx, nil, serverURL); err != nil {
		return fmt.Errorf("server %s not healthy: %w", serverURL, err)
	}

	playerID := c.ID
	if playerID == "" {
		playerID = client.NewPlayerID()
	}
	logger.Info("Starting liar's bar client", "server", serverURL, "player", playerID)

	wsClient := client.NewClient(serverURL, logger)
	model := tui.NewTUIModel(logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	bridge := tui.NewBridge(wsClient, client.NewTable(), model, program.Send, logger)
	defer bridge.Close()

	if err := wsClient.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = wsClient.Disconnect() }()

	if err := wsClient.Join(playerID, c.Name); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	if c.Name != "" {
		if err := wsClient.EnterName(c.Name); err != nil {
			return fmt.Errorf("enter name: %w", err)
		}
	}

	model.AddLogEntry("=== Liar's Bar ===")
	model.AddLogEntry("Connected to " + serverURL)
	model.AddLogEntry(tui.HelpText)
	model.AddLogEntry("")

	bridge.Start()

	go func() {
		<-wsClient.Done()
		logger.Info("Disconnected from server")
		model.SendQuitSignal()
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
