package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsbar/internal/deck"
	"github.com/lox/liarsbar/internal/protocol"
)

func mustMessage(t *testing.T, messageType protocol.MessageType, data any) *protocol.Message {
	t.Helper()
	msg, err := protocol.NewMessage(messageType, data)
	require.NoError(t, err)
	return msg
}

func mustCards(t *testing.T, codes ...string) []deck.Card {
	t.Helper()
	cards, err := deck.ParseCards(codes)
	require.NoError(t, err)
	return cards
}

func apply(t *testing.T, table *Table, messageType protocol.MessageType, data any) []string {
	t.Helper()
	lines, err := table.Apply(mustMessage(t, messageType, data))
	require.NoError(t, err)
	return lines
}

func seatedTable(t *testing.T) *Table {
	t.Helper()
	table := NewTable()
	apply(t, table, protocol.MessageTypeInitialState, protocol.InitialStateData{
		PlayerID:         "p2",
		Name:             "Bob",
		Seat:             2,
		Cards:            mustCards(t, "J♠", "J♣", "Q♣", "J♥", "Q♦"),
		RemainingCards:   map[string]int{"p1": 5, "p2": 5},
		ConnectedPlayers: 2,
		AllPlayers:       map[string]int{"p1": 1, "p2": 2},
		TableState: protocol.TableState{
			ClaimedRank:     deck.Ace,
			LastPlayedCards: []deck.Card{},
			Eliminated:      []string{},
		},
	})
	return table
}

func TestTableInitialState(t *testing.T) {
	table := seatedTable(t)
	snap := table.Snapshot()

	assert.Equal(t, "p2", snap.PlayerID)
	assert.Equal(t, []string{"J♠", "J♣", "Q♣", "J♥", "Q♦"}, deck.Codes(snap.Hand))
	assert.Equal(t, 2, snap.Connected)
	assert.Equal(t, deck.Ace, snap.ClaimedRank)
	require.Len(t, snap.Seats, 2)
	assert.Equal(t, "p1", snap.Seats[0].ID)
	assert.Equal(t, "Bob", snap.Seats[1].Name)
	assert.False(t, snap.MyTurn())
}

func TestTableTracksReadyAndStart(t *testing.T) {
	table := seatedTable(t)

	lines := apply(t, table, protocol.MessageTypeReadyPlayersUpdate, protocol.ReadyPlayersData{ReadyPlayers: []string{"p2"}})
	assert.Equal(t, []string{"1/4 players ready"}, lines)

	snap := table.Snapshot()
	assert.False(t, snap.Seats[0].Ready)
	assert.True(t, snap.Seats[1].Ready)

	apply(t, table, protocol.MessageTypeStartGame, protocol.StartGameData{Players: 4})
	assert.True(t, table.Snapshot().Started)
}

func TestTableRemovesOwnPlayOnceCounted(t *testing.T) {
	table := seatedTable(t)

	state := protocol.TableState{
		CurrentTurn:     "p2",
		LastPlayedCards: mustCards(t, "J♠", "J♥"),
		LastPlayerID:    "p2",
		ClaimedRank:     deck.Jack,
		Eliminated:      []string{},
	}
	apply(t, table, protocol.MessageTypeUpdateAllPlayers, protocol.UpdateAllPlayersData{
		PlayerStates: map[string]protocol.PlayerSummary{
			"p1": {Remaining: 5, Seat: 1, Name: "Ann"},
			"p2": {Remaining: 3, Seat: 2, Name: "Bob"},
		},
		TableState: state,
	})
	assert.Equal(t, []string{"J♣", "Q♣", "Q♦"}, deck.Codes(table.Snapshot().Hand))

	// The same state again does not remove anything twice
	apply(t, table, protocol.MessageTypeTurnChange, protocol.TurnChangeData{TableState: state})
	apply(t, table, protocol.MessageTypeUpdateAllPlayers, protocol.UpdateAllPlayersData{
		PlayerStates: map[string]protocol.PlayerSummary{
			"p1": {Remaining: 5, Seat: 1, Name: "Ann"},
			"p2": {Remaining: 3, Seat: 2, Name: "Bob"},
		},
		TableState: state,
	})
	snap := table.Snapshot()
	assert.Len(t, snap.Hand, 3)
	assert.True(t, snap.MyTurn())
	assert.Equal(t, "Ann", snap.NameOf("p1"))
}

func TestTableDescribesReveal(t *testing.T) {
	table := seatedTable(t)
	apply(t, table, protocol.MessageTypeUpdateAllPlayers, protocol.UpdateAllPlayersData{
		PlayerStates: map[string]protocol.PlayerSummary{
			"p1": {Remaining: 3, Seat: 1, Name: "Ann"},
			"p2": {Remaining: 5, Seat: 2, Name: "Bob"},
		},
		TableState: protocol.TableState{Eliminated: []string{}},
	})

	lines := apply(t, table, protocol.MessageTypeDialogEvent, protocol.DialogEventData{Dialogs: []protocol.DialogLine{
		{Player: "p2", Message: "Liar! Let's see those cards!"},
		{Player: "p1", Message: "Me? So be it..."},
	}})
	assert.Equal(t, []string{"Bob: Liar! Let's see those cards!", "Ann: Me? So be it..."}, lines)

	lines = apply(t, table, protocol.MessageTypeRevealResult, protocol.RevealResultData{
		IsValid: false,
		Message: "The cards do NOT match the claimed rank.",
		TableState: protocol.TableState{
			CurrentTurn:     "p2",
			LastPlayedCards: mustCards(t, "Q♠", "Q♣"),
			LastPlayerID:    "p1",
			ClaimedRank:     deck.King,
			RevealActive:    true,
			Eliminated:      []string{"p1"},
		},
	})
	assert.Equal(t, []string{
		"Revealed: Q♠ Q♣",
		"The cards do NOT match the claimed rank.",
		"Claimed rank is now K",
	}, lines)

	snap := table.Snapshot()
	assert.True(t, snap.Seats[0].Eliminated)
	assert.False(t, snap.Seats[1].Eliminated)
	assert.True(t, snap.RevealActive)
	assert.Equal(t, deck.King, snap.ClaimedRank)
}

func TestTableRejectsBadPayload(t *testing.T) {
	table := NewTable()
	_, err := table.Apply(&protocol.Message{Type: protocol.MessageTypePlayerCount, Data: []byte(`"four"`)})
	require.Error(t, err)

	lines, err := table.Apply(&protocol.Message{Type: "somethingElse", Data: []byte(`{}`)})
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestTableAnnouncesWinner(t *testing.T) {
	table := seatedTable(t)
	apply(t, table, protocol.MessageTypeStartGame, protocol.StartGameData{Players: 2})

	players := func(eliminated ...string) protocol.UpdateAllPlayersData {
		return protocol.UpdateAllPlayersData{
			PlayerStates: map[string]protocol.PlayerSummary{
				"p1": {Remaining: 3, Seat: 1, Name: "Ann"},
				"p2": {Remaining: 5, Seat: 2, Name: "Bob"},
			},
			TableState: protocol.TableState{Eliminated: append([]string{}, eliminated...)},
		}
	}

	assert.Empty(t, apply(t, table, protocol.MessageTypeUpdateAllPlayers, players()))
	_, ok := table.Snapshot().Winner()
	assert.False(t, ok)

	lines := apply(t, table, protocol.MessageTypeRevealResult, protocol.RevealResultData{
		Message:    "The cards do NOT match the claimed rank.",
		TableState: protocol.TableState{ClaimedRank: deck.King, Eliminated: []string{"p1"}},
	})
	assert.Equal(t, "You are the last one standing. You win!", lines[len(lines)-1])

	winner, ok := table.Snapshot().Winner()
	require.True(t, ok)
	assert.Equal(t, "p2", winner)

	// Announced once
	assert.Empty(t, apply(t, table, protocol.MessageTypeUpdateAllPlayers, players("p1")))

	// A reset brings the game back, and the next survivor is announced again
	assert.Empty(t, apply(t, table, protocol.MessageTypeUpdateAllPlayers, players()))
	lines = apply(t, table, protocol.MessageTypeUpdateAllPlayers, players("p2"))
	assert.Equal(t, []string{"Ann is the last one standing and wins the game"}, lines)
}

func TestSnapshotWinnerNeedsStartedGame(t *testing.T) {
	seats := []Seat{{ID: "p1"}, {ID: "p2", Eliminated: true}}

	_, ok := TableSnapshot{Seats: seats}.Winner()
	assert.False(t, ok)

	winner, ok := TableSnapshot{Started: true, Seats: seats}.Winner()
	assert.True(t, ok)
	assert.Equal(t, "p1", winner)

	_, ok = TableSnapshot{Started: true, Seats: []Seat{{ID: "p1"}, {ID: "p2"}}}.Winner()
	assert.False(t, ok)
}
