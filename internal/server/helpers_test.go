package server

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsbar/internal/client"
	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/protocol"
)

const waitTimeout = 5 * time.Second

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

type testServer struct {
	url    string
	room   *game.Room
	clock  *quartz.Mock
	server *Server
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := testLogger()
	clock := quartz.NewMock(t)

	room, err := game.NewRoom(game.DefaultRoomConfig(), logger, clock)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		room.Run(ctx)
	}()

	srv := NewServer("127.0.0.1:0", room, logger)
	httpServer := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), waitTimeout)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
		httpServer.Close()
		cancel()
		<-done
	})

	return &testServer{url: httpServer.URL, room: room, clock: clock, server: srv}
}

// sync waits until the room has handled everything queued so far
func (ts *testServer) sync(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, ts.room.Do(ctx, func(*game.Session) {}))
}

func (ts *testServer) advance(t *testing.T, d time.Duration) {
	t.Helper()
	ts.sync(t)
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	ts.clock.Advance(d).MustWait(ctx)
}

// inbox records every message a client receives
type inbox struct {
	mu     sync.Mutex
	msgs   []*protocol.Message
	notify chan struct{}
}

func (i *inbox) add(msg *protocol.Message) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.msgs = append(i.msgs, msg)
	close(i.notify)
	i.notify = make(chan struct{})
}

// waitFor returns the first received message of messageType accepted by match
func (i *inbox) waitFor(t *testing.T, messageType protocol.MessageType, match func(*protocol.Message) bool) *protocol.Message {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		i.mu.Lock()
		for _, msg := range i.msgs {
			if msg.Type == messageType && (match == nil || match(msg)) {
				i.mu.Unlock()
				return msg
			}
		}
		notify := i.notify
		i.mu.Unlock()

		select {
		case <-notify:
		case <-deadline:
			t.Fatalf("timed out waiting for %s", messageType)
		}
	}
}

func (i *inbox) count(messageType protocol.MessageType) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	n := 0
	for _, msg := range i.msgs {
		if msg.Type == messageType {
			n++
		}
	}
	return n
}

type testPlayer struct {
	*client.Client
	id    string
	inbox *inbox
}

func connectPlayer(t *testing.T, ts *testServer, id string) *testPlayer {
	t.Helper()
	c := client.NewClient(ts.url, testLogger())
	box := &inbox{notify: make(chan struct{})}
	c.AddEventHandler("", box.add)
	require.NoError(t, c.Connect())
	t.Cleanup(func() { _ = c.Disconnect() })
	return &testPlayer{Client: c, id: id, inbox: box}
}

func joinPlayer(t *testing.T, ts *testServer, id string) *testPlayer {
	t.Helper()
	p := connectPlayer(t, ts, id)
	require.NoError(t, p.Join(id, "name-"+id))
	p.inbox.waitFor(t, protocol.MessageTypeInitialState, nil)
	return p
}

// startGame seats p1..p4 and waits until everyone has seen the start
func startGame(t *testing.T, ts *testServer) []*testPlayer {
	t.Helper()
	players := make([]*testPlayer, 0, game.MaxPlayers)
	for i := 1; i <= game.MaxPlayers; i++ {
		players = append(players, joinPlayer(t, ts, fmt.Sprintf("p%d", i)))
	}
	for _, p := range players {
		require.NoError(t, p.EnterName("Player "+p.id))
	}
	for _, p := range players {
		p.inbox.waitFor(t, protocol.MessageTypeStartGame, nil)
	}
	return players
}

func turnOf(id string) func(*protocol.Message) bool {
	return func(msg *protocol.Message) bool {
		var data protocol.TurnChangeData
		return msg.Decode(&data) == nil && data.CurrentTurn == id
	}
}

func nameIs(id, name string) func(*protocol.Message) bool {
	return func(msg *protocol.Message) bool {
		var data protocol.UpdateAllPlayersData
		return msg.Decode(&data) == nil && data.PlayerStates[id].Name == name
	}
}

func roomSnapshot(t *testing.T, ts *testServer) game.Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	snap, err := ts.room.Snapshot(ctx)
	require.NoError(t, err)
	return snap
}
