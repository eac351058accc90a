package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/liarsbar/internal/client"
	"github.com/lox/liarsbar/internal/deck"
	"github.com/lox/liarsbar/internal/protocol"
)

// GameClient is the part of client.Client the bridge drives
type GameClient interface {
	EnterName(name string) error
	PlayCards(cards []deck.Card) error
	Reveal() error
	AddEventHandler(messageType protocol.MessageType, handler client.EventHandler) func()
}

// Bridge feeds server messages into the table view and user commands into the client
type Bridge struct {
	client GameClient
	table  *client.Table
	tui    *TUIModel
	notify func(tea.Msg)
	logger *log.Logger
	remove func()
	done   chan struct{}
}

// NewBridge creates a new bridge between client and TUI. notify delivers
// messages to the running program, usually tea.Program.Send.
func NewBridge(gc GameClient, table *client.Table, tui *TUIModel, notify func(tea.Msg), logger *log.Logger) *Bridge {
	b := &Bridge{
		client: gc,
		table:  table,
		tui:    tui,
		notify: notify,
		logger: logger.WithPrefix("bridge"),
		done:   make(chan struct{}),
	}
	b.remove = gc.AddEventHandler("", b.handleMessage)
	return b
}

// Start begins the command handling loop (non-blocking)
func (b *Bridge) Start() {
	go b.commandLoop()
}

// Done is closed once the command loop exits
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Close stops applying server messages
func (b *Bridge) Close() {
	b.remove()
}

func (b *Bridge) handleMessage(msg *protocol.Message) {
	lines, err := b.table.Apply(msg)
	if err != nil {
		b.logger.Warn("Failed to apply message", "type", msg.Type, "error", err)
		return
	}
	b.notify(TableUpdateMsg{Lines: lines, Snapshot: b.table.Snapshot()})
}

func (b *Bridge) commandLoop() {
	defer close(b.done)

	for {
		action, args, shouldContinue, err := b.tui.WaitForAction()
		if err != nil {
			continue
		}
		if !shouldContinue || !b.execute(action, args) {
			return
		}
	}
}

// execute runs one command and reports whether the loop should keep going
func (b *Bridge) execute(action string, args []string) bool {
	cmd, err := ParseCommand(action, args, b.table.Snapshot().Hand)
	if err != nil {
		b.notify(LogMsg{Line: ErrorStyle.Render(err.Error())})
		return true
	}

	switch cmd.Kind {
	case CommandHelp:
		b.notify(LogMsg{Line: HelpStyle.Render(HelpText)})
	case CommandName:
		err = b.client.EnterName(cmd.Name)
	case CommandPlay:
		err = b.client.PlayCards(cmd.Cards)
		if err == nil {
			b.notify(LogMsg{Line: InfoStyle.Render(fmt.Sprintf("You play %d card(s)", len(cmd.Cards)))})
		}
	case CommandReveal:
		err = b.client.Reveal()
	case CommandQuit:
		b.tui.SendQuitSignal()
		return false
	}

	if err != nil {
		b.logger.Error("Failed to send command", "action", action, "error", err)
		b.notify(LogMsg{Line: ErrorStyle.Render(fmt.Sprintf("Failed to send %s: %v", action, err))})
	}
	return true
}
