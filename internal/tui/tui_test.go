package tui

import (
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsbar/internal/client"
	"github.com/lox/liarsbar/internal/deck"
	"github.com/lox/liarsbar/internal/protocol"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func mustCards(t *testing.T, codes ...string) []deck.Card {
	t.Helper()
	cards, err := deck.ParseCards(codes)
	require.NoError(t, err)
	return cards
}

func startedSnapshot(t *testing.T) client.TableSnapshot {
	return client.TableSnapshot{
		PlayerID: "p2",
		Hand:     mustCards(t, "J♠", "J♣", "Q♣"),
		Seats: []client.Seat{
			{ID: "p1", Name: "Alice", Seat: 1, Remaining: 3, Strikes: 1},
			{ID: "p2", Name: "Bob", Seat: 2, Remaining: 3},
			{ID: "p3", Name: "Cara", Seat: 3, Remaining: 5, Strikes: 6, Eliminated: true},
		},
		Started:   true,
		Connected: 3,
		TableState: protocol.TableState{
			CurrentTurn:     "p2",
			ClaimedRank:     deck.King,
			LastPlayerID:    "p1",
			LastPlayedCards: mustCards(t, "A♥", "Q♠"),
			Eliminated:      []string{"p3"},
		},
	}
}

func TestTUITestMode(t *testing.T) {
	logger := testLogger()

	t.Run("test mode captures log entries", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		assert.True(t, tui.IsTestMode())
		assert.Empty(t, tui.GetCapturedLog())

		tui.AddLogEntry("Seated in seat 1 as p1")
		tui.AddLogEntry("Your turn")

		assert.Equal(t, []string{"Seated in seat 1 as p1", "Your turn"}, tui.GetCapturedLog())
	})

	t.Run("production mode does not capture logs", func(t *testing.T) {
		tui := NewTUIModel(logger)

		assert.False(t, tui.IsTestMode())
		tui.AddLogEntry("Some log entry")
		assert.Nil(t, tui.GetCapturedLog())
	})

	t.Run("action injection works in test mode", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		require.NoError(t, tui.InjectAction("reveal", nil))

		action, args, cont, err := tui.WaitForAction()
		require.NoError(t, err)
		assert.Equal(t, "reveal", action)
		assert.Empty(t, args)
		assert.True(t, cont)
	})

	t.Run("action injection fails when channel is full", func(t *testing.T) {
		tui := NewTUIModelWithOptions(logger, true)

		require.NoError(t, tui.InjectAction("reveal", nil))
		assert.Error(t, tui.InjectAction("reveal", nil))
	})

	t.Run("action injection fails in production mode", func(t *testing.T) {
		tui := NewTUIModel(logger)
		assert.Error(t, tui.InjectAction("reveal", nil))
	})
}

func TestProcessActionKeepsArgumentCase(t *testing.T) {
	tui := NewTUIModelWithOptions(testLogger(), true)

	tui.processAction("NAME Mad Hatter")

	action, args, _, _ := tui.WaitForAction()
	assert.Equal(t, "name", action)
	assert.Equal(t, []string{"Mad", "Hatter"}, args)
}

func TestUpdateAppliesTableMessages(t *testing.T) {
	tui := NewTUIModelWithOptions(testLogger(), true)
	snap := startedSnapshot(t)

	_, cmd := tui.Update(TableUpdateMsg{Lines: []string{"Your turn"}, Snapshot: snap})
	assert.Nil(t, cmd)
	_, _ = tui.Update(LogMsg{Line: "hello"})

	assert.Equal(t, []string{"Your turn", "hello"}, tui.GetCapturedLog())
	assert.Equal(t, "p2", tui.Table().CurrentTurn)
}

func TestViewRendersTable(t *testing.T) {
	tui := NewTUIModelWithOptions(testLogger(), true)
	assert.Equal(t, "Loading...", tui.View())

	_, _ = tui.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	_, _ = tui.Update(TableUpdateMsg{Snapshot: startedSnapshot(t)})

	view := tui.View()
	assert.Contains(t, view, "Claimed rank: K")
	assert.Contains(t, view, "Alice")
	assert.Contains(t, view, "Bob (you)")
	assert.Contains(t, view, "OUT")
	assert.Contains(t, view, "1:J♠")
	assert.Contains(t, view, "3:Q♣")
	assert.Contains(t, view, "Your turn. Claim K")
	assert.Contains(t, view, "[reveal]")
	assert.Contains(t, view, "Last play: 2 by Alice")
}

func TestViewBeforeStart(t *testing.T) {
	tui := NewTUIModelWithOptions(testLogger(), true)
	_, _ = tui.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	_, _ = tui.Update(TableUpdateMsg{Snapshot: client.TableSnapshot{
		PlayerID:  "p1",
		Connected: 2,
		Seats:     []client.Seat{{ID: "p1", Seat: 1, Remaining: 5, Ready: true}},
	}})

	view := tui.View()
	assert.Contains(t, view, "Waiting: 2/4 connected")
	assert.Contains(t, view, "ready")
	assert.Contains(t, view, "Enter a name to get ready")
}

func TestQuitKeySubmitsQuit(t *testing.T) {
	tui := NewTUIModelWithOptions(testLogger(), true)

	_, cmd := tui.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)

	action, _, cont, _ := tui.WaitForAction()
	assert.Equal(t, "quit", action)
	assert.False(t, cont)
	assert.Empty(t, tui.View())
}

func TestViewShowsWinner(t *testing.T) {
	tui := NewTUIModelWithOptions(testLogger(), true)
	_, _ = tui.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	snap := startedSnapshot(t)
	snap.Seats[0].Eliminated = true
	snap.Eliminated = []string{"p1", "p3"}
	_, _ = tui.Update(TableUpdateMsg{Snapshot: snap})
	assert.Contains(t, tui.View(), "You win!")

	snap.Seats[0].Eliminated = false
	snap.Seats[1].Eliminated = true
	snap.Eliminated = []string{"p2", "p3"}
	_, _ = tui.Update(TableUpdateMsg{Snapshot: snap})
	view := tui.View()
	assert.Contains(t, view, "Alice wins. You lose.")
	assert.NotContains(t, view, "Your turn")
}
