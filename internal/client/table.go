package client

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/lox/liarsbar/internal/deck"
	"github.com/lox/liarsbar/internal/protocol"
)

// Seat is what a player can see about another seat
type Seat struct {
	ID         string
	Name       string
	Seat       int
	Remaining  int
	Strikes    int
	Ready      bool
	Eliminated bool
}

// Table is the local view of a room built from server messages
type Table struct {
	mu sync.RWMutex

	playerID  string
	hand      []deck.Card
	seats     map[string]*Seat
	ready     []string
	started   bool
	connected int
	state     protocol.TableState
	announced string
}

// NewTable creates an empty view
func NewTable() *Table {
	return &Table{seats: make(map[string]*Seat)}
}

// TableSnapshot is a copy of the view for rendering
type TableSnapshot struct {
	PlayerID  string
	Hand      []deck.Card
	Seats     []Seat
	Started   bool
	Connected int
	protocol.TableState
}

// MyTurn reports whether the viewing player holds the turn
func (s TableSnapshot) MyTurn() bool {
	return s.PlayerID != "" && s.CurrentTurn == s.PlayerID
}

// NameOf returns the display name of id, falling back to the id
func (s TableSnapshot) NameOf(id string) string {
	for _, seat := range s.Seats {
		if seat.ID == id && seat.Name != "" {
			return seat.Name
		}
	}
	return id
}

// Winner returns the last player standing once a started game is down to a
// single seat that is not eliminated
func (s TableSnapshot) Winner() (string, bool) {
	return winnerOf(s.Started, s.Seats)
}

func winnerOf(started bool, seats []Seat) (string, bool) {
	if !started {
		return "", false
	}
	winner, standing := "", 0
	for _, seat := range seats {
		if !seat.Eliminated {
			winner = seat.ID
			standing++
		}
	}
	if standing != 1 {
		return "", false
	}
	return winner, true
}

// Snapshot returns a copy of the view with seats in seat order
func (t *Table) Snapshot() TableSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := TableSnapshot{
		PlayerID:   t.playerID,
		Hand:       slices.Clone(t.hand),
		Started:    t.started,
		Connected:  t.connected,
		TableState: t.state,
	}
	snap.LastPlayedCards = slices.Clone(t.state.LastPlayedCards)
	snap.Eliminated = slices.Clone(t.state.Eliminated)

	for _, seat := range t.seats {
		snap.Seats = append(snap.Seats, *seat)
	}
	slices.SortFunc(snap.Seats, func(a, b Seat) int { return a.Seat - b.Seat })
	return snap
}

// Apply folds msg into the view and returns log lines describing it. The
// message that leaves a single player standing also announces the winner.
func (t *Table) Apply(msg *protocol.Message) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	lines, err := t.apply(msg)
	if err != nil {
		return nil, err
	}

	winner, ok := t.winner()
	switch {
	case ok && winner != t.announced:
		t.announced = winner
		if winner == t.playerID {
			lines = append(lines, "You are the last one standing. You win!")
		} else {
			lines = append(lines, fmt.Sprintf("%s is the last one standing and wins the game", t.nameOf(winner)))
		}
	case !ok:
		t.announced = ""
	}
	return lines, nil
}

func (t *Table) winner() (string, bool) {
	seats := make([]Seat, 0, len(t.seats))
	for _, seat := range t.seats {
		seats = append(seats, *seat)
	}
	return winnerOf(t.started, seats)
}

func (t *Table) apply(msg *protocol.Message) ([]string, error) {
	switch msg.Type {
	case protocol.MessageTypeInitialState:
		var data protocol.InitialStateData
		if err := msg.Decode(&data); err != nil {
			return nil, err
		}
		t.playerID = data.PlayerID
		t.hand = data.Cards
		t.connected = data.ConnectedPlayers
		t.seats = make(map[string]*Seat, len(data.AllPlayers))
		for id, seat := range data.AllPlayers {
			t.seats[id] = &Seat{ID: id, Seat: seat, Remaining: data.RemainingCards[id]}
		}
		if me, ok := t.seats[data.PlayerID]; ok {
			me.Name = data.Name
		}
		t.setState(data.TableState)
		return []string{
			fmt.Sprintf("Seated in seat %d as %s", data.Seat, data.PlayerID),
			fmt.Sprintf("Your hand: %s", strings.Join(deck.Codes(t.hand), " ")),
		}, nil

	case protocol.MessageTypePlayerCount:
		var data protocol.PlayerCountData
		if err := msg.Decode(&data); err != nil {
			return nil, err
		}
		t.connected = data.ConnectedPlayers
		return []string{fmt.Sprintf("%d/4 players connected", data.ConnectedPlayers)}, nil

	case protocol.MessageTypeReadyPlayersUpdate:
		var data protocol.ReadyPlayersData
		if err := msg.Decode(&data); err != nil {
			return nil, err
		}
		t.ready = data.ReadyPlayers
		t.markReady()
		return []string{fmt.Sprintf("%d/4 players ready", len(data.ReadyPlayers))}, nil

	case protocol.MessageTypeStartGame:
		t.started = true
		return []string{"The game has started"}, nil

	case protocol.MessageTypeUpdateAllPlayers:
		var data protocol.UpdateAllPlayersData
		if err := msg.Decode(&data); err != nil {
			return nil, err
		}
		seats := make(map[string]*Seat, len(data.PlayerStates))
		for id, summary := range data.PlayerStates {
			seats[id] = &Seat{
				ID:        id,
				Name:      summary.Name,
				Seat:      summary.Seat,
				Remaining: summary.Remaining,
				Strikes:   summary.Strikes,
			}
		}
		t.seats = seats
		t.markReady()
		t.setState(data.TableState)
		t.syncHand()
		return nil, nil

	case protocol.MessageTypeTurnChange:
		var data protocol.TurnChangeData
		if err := msg.Decode(&data); err != nil {
			return nil, err
		}
		t.setState(data.TableState)
		if data.CurrentTurn == t.playerID {
			return []string{"Your turn"}, nil
		}
		return []string{fmt.Sprintf("%s's turn", t.nameOf(data.CurrentTurn))}, nil

	case protocol.MessageTypeAnnouncement:
		var data protocol.AnnouncementData
		if err := msg.Decode(&data); err != nil {
			return nil, err
		}
		return []string{data.Message}, nil

	case protocol.MessageTypeDialogEvent:
		var data protocol.DialogEventData
		if err := msg.Decode(&data); err != nil {
			return nil, err
		}
		lines := make([]string, 0, len(data.Dialogs))
		for _, d := range data.Dialogs {
			lines = append(lines, fmt.Sprintf("%s: %s", t.nameOf(d.Player), d.Message))
		}
		return lines, nil

	case protocol.MessageTypeRevealResult:
		var data protocol.RevealResultData
		if err := msg.Decode(&data); err != nil {
			return nil, err
		}
		revealed := strings.Join(deck.Codes(data.LastPlayedCards), " ")
		t.setState(data.TableState)
		return []string{
			fmt.Sprintf("Revealed: %s", revealed),
			data.Message,
			fmt.Sprintf("Claimed rank is now %s", data.ClaimedRank),
		}, nil

	case protocol.MessageTypeError:
		var data protocol.ErrorData
		if err := msg.Decode(&data); err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("Error: %s", data.Message)}, nil
	}

	return nil, nil
}

func (t *Table) setState(state protocol.TableState) {
	t.state = state
	for id, seat := range t.seats {
		seat.Eliminated = slices.Contains(state.Eliminated, id)
	}
}

func (t *Table) markReady() {
	for id, seat := range t.seats {
		seat.Ready = slices.Contains(t.ready, id)
	}
}

// syncHand drops our last play from the hand once the server counts it
func (t *Table) syncHand() {
	me, ok := t.seats[t.playerID]
	if !ok || t.state.LastPlayerID != t.playerID || me.Remaining >= len(t.hand) {
		return
	}

	hand := slices.Clone(t.hand)
	for _, c := range t.state.LastPlayedCards {
		if i := slices.Index(hand, c); i >= 0 {
			hand = slices.Delete(hand, i, i+1)
		}
	}
	if len(hand) == me.Remaining {
		t.hand = hand
	}
}

func (t *Table) nameOf(id string) string {
	if seat, ok := t.seats[id]; ok && seat.Name != "" {
		return seat.Name
	}
	return id
}
