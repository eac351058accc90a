package game

import (
	"slices"

	"github.com/lox/liarsbar/internal/deck"
)

// PlayerSnapshot is the operator view of a seat, including the hidden threshold
type PlayerSnapshot struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Seat       int      `json:"seat"`
	Hand       []string `json:"hand"`
	Strikes    int      `json:"strikes"`
	Threshold  int      `json:"threshold"`
	Ready      bool     `json:"ready"`
	Eliminated bool     `json:"eliminated"`
}

// Snapshot is a point-in-time copy of the session for the admin surface
type Snapshot struct {
	Started        bool             `json:"started"`
	TurnSeat       int              `json:"turnSeat"`
	CurrentTurn    string           `json:"currentTurn"`
	ClaimedRank    deck.Rank        `json:"claimedRank"`
	LastPlayed     []string         `json:"lastPlayed"`
	LastPlayerID   string           `json:"lastPlayerId,omitempty"`
	RevealActive   bool             `json:"revealActive"`
	RevealInFlight bool             `json:"revealInFlight"`
	Eliminated     []string         `json:"eliminated"`
	Winner         string           `json:"winner,omitempty"`
	Players        []PlayerSnapshot `json:"players"`
}

// Snapshot captures the session state
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Started:        s.started,
		TurnSeat:       s.turnSeat,
		CurrentTurn:    s.currentTurn(),
		ClaimedRank:    s.claimed,
		LastPlayed:     []string{},
		RevealActive:   s.revealOpen,
		RevealInFlight: s.reveal != nil,
		Eliminated:     append([]string{}, s.eliminated...),
		Players:        make([]PlayerSnapshot, 0, len(s.players)),
	}
	if s.pending != nil {
		snap.LastPlayed = deck.Codes(s.pending.Cards)
		snap.LastPlayerID = s.pending.By
	}
	if winner, ok := s.Winner(); ok {
		snap.Winner = winner
	}

	ready := s.ReadyPlayers()
	for _, p := range s.seated() {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:         p.ID,
			Name:       p.Name,
			Seat:       p.Seat,
			Hand:       deck.Codes(p.Hand),
			Strikes:    p.Strikes,
			Threshold:  p.Threshold,
			Ready:      slices.Contains(ready, p.ID),
			Eliminated: s.isEliminated(p.ID),
		})
	}
	return snap
}

