package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lox/liarsbar/internal/deck"
)

// CommandKind identifies a user command
type CommandKind int

const (
	CommandHelp CommandKind = iota
	CommandName
	CommandPlay
	CommandReveal
	CommandQuit
)

// Command is a parsed line of user input
type Command struct {
	Kind  CommandKind
	Name  string
	Cards []deck.Card
}

var errEmptyCommand = errors.New("type 'help' for commands")

// HelpText lists the commands the client understands
const HelpText = "Commands: name <name> | play <n> [n...] (cards by position in your hand) | reveal | quit"

// ParseCommand parses action and args against the current hand. Card positions
// are 1-based and may not repeat.
func ParseCommand(action string, args []string, hand []deck.Card) (Command, error) {
	switch strings.ToLower(action) {
	case "":
		return Command{}, errEmptyCommand

	case "help", "?":
		return Command{Kind: CommandHelp}, nil

	case "name", "n":
		name := strings.TrimSpace(strings.Join(args, " "))
		if name == "" {
			return Command{}, errors.New("usage: name <name>")
		}
		return Command{Kind: CommandName, Name: name}, nil

	case "play", "p":
		if len(args) == 0 {
			return Command{}, errors.New("usage: play <n> [n...]")
		}
		var picked []int
		cards := make([]deck.Card, 0, len(args))
		for _, arg := range args {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 || n > len(hand) {
				return Command{}, fmt.Errorf("no card at position %q, you hold %d", arg, len(hand))
			}
			if slices.Contains(picked, n) {
				return Command{}, fmt.Errorf("card %d picked twice", n)
			}
			picked = append(picked, n)
			cards = append(cards, hand[n-1])
		}
		return Command{Kind: CommandPlay, Cards: cards}, nil

	case "reveal", "r", "liar":
		return Command{Kind: CommandReveal}, nil

	case "quit", "exit", "q":
		return Command{Kind: CommandQuit}, nil
	}

	return Command{}, fmt.Errorf("unknown command %q, %s", action, errEmptyCommand)
}
