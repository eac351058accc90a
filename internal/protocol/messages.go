// Package protocol defines the JSON envelope and payloads exchanged between the
// game server and its clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/liarsbar/internal/deck"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", messageType, err)
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Decode unmarshals the message payload into v
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("decode %s: empty payload", m.Type)
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", m.Type, err)
	}
	return nil
}

// Client → Server Messages

type JoinData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type EnterNameData struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type PlayCardData struct {
	PlayerID      string      `json:"playerId"`
	SelectedCards []deck.Card `json:"selectedCards"`
}

type RevealData struct {
	PlayerID string `json:"playerId"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TableState is the part of the session every broadcast carries
type TableState struct {
	CurrentTurn     string      `json:"currentTurn"`
	LastPlayedCards []deck.Card `json:"lastPlayedCards"`
	LastPlayerID    string      `json:"lastPlayerId,omitempty"`
	ClaimedRank     deck.Rank   `json:"claimedRank"`
	RevealActive    bool        `json:"revealActive"`
	Eliminated      []string    `json:"eliminated"`
}

type InitialStateData struct {
	PlayerID         string         `json:"playerId"`
	Name             string         `json:"name"`
	Seat             int            `json:"seat"`
	Cards            []deck.Card    `json:"cards"`
	RemainingCards   map[string]int `json:"remainingCards"`
	ConnectedPlayers int            `json:"connectedPlayers"`
	AllPlayers       map[string]int `json:"allPlayers"` // player id -> seat
	TableState
}

type ReadyPlayersData struct {
	ReadyPlayers []string `json:"readyPlayers"`
}

type StartGameData struct {
	Players int `json:"players"`
}

type PlayerCountData struct {
	ConnectedPlayers int `json:"connectedPlayers"`
}

// PlayerSummary is the public view of one seat
type PlayerSummary struct {
	Remaining int    `json:"remaining"`
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	Strikes   int    `json:"strikes"`
}

type UpdateAllPlayersData struct {
	PlayerStates map[string]PlayerSummary `json:"playerStates"`
	TableState
}

type TurnChangeData struct {
	TableState
}

type AnnouncementData struct {
	Message string `json:"message"`
}

// DialogLine is one narrative line spoken by a player
type DialogLine struct {
	Player  string `json:"player"`
	Message string `json:"message"`
}

type DialogEventData struct {
	Dialogs []DialogLine `json:"dialogs"`
}

type RevealResultData struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
	TableState
}
