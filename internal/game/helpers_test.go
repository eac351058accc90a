package game

import (
	"fmt"
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/liarsbar/internal/deck"
	"github.com/lox/liarsbar/internal/protocol"
	"github.com/lox/liarsbar/internal/sequence"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// recordingSink captures every message sent to a player
type recordingSink struct {
	mu       sync.Mutex
	messages []*protocol.Message
	closed   bool
}

func (r *recordingSink) SendMessage(msg *protocol.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordingSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingSink) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *recordingSink) types() []protocol.MessageType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]protocol.MessageType, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Type
	}
	return out
}

func (r *recordingSink) count(t protocol.MessageType) int {
	n := 0
	for _, mt := range r.types() {
		if mt == t {
			n++
		}
	}
	return n
}

// last decodes the most recent message of type mt into v
func (r *recordingSink) last(t *testing.T, mt protocol.MessageType, v any) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].Type == mt {
			require.NoError(t, r.messages[i].Decode(v))
			return
		}
	}
	t.Fatalf("no %s message received", mt)
}

func (r *recordingSink) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}

type scheduledTask struct {
	delay time.Duration
	fn    func()
}

// manualScheduler holds delayed work until the test runs it
type manualScheduler struct {
	tasks []scheduledTask
}

func (m *manualScheduler) After(d time.Duration, fn func()) {
	m.tasks = append(m.tasks, scheduledTask{delay: d, fn: fn})
}

// runNext runs the oldest queued task and returns its delay
func (m *manualScheduler) runNext(t *testing.T) time.Duration {
	t.Helper()
	require.NotEmpty(t, m.tasks, "no scheduled task to run")
	task := m.tasks[0]
	m.tasks = m.tasks[1:]
	task.fn()
	return task.delay
}

// drain runs queued tasks, including ones they schedule, until none are left
func (m *manualScheduler) drain() {
	for len(m.tasks) > 0 {
		task := m.tasks[0]
		m.tasks = m.tasks[1:]
		task.fn()
	}
}

// fixedSource returns the same fraction forever
type fixedSource float64

func (f fixedSource) Next() float64 { return float64(f) }

// testTable is a session with four recording players p1..p4 in seats 1..4
type testTable struct {
	s     *Session
	sched *manualScheduler
	sinks map[string]*recordingSink
}

func newTestTable(t *testing.T, src Source) *testTable {
	t.Helper()
	sched := &manualScheduler{}
	return &testTable{
		s:     NewSession(src, sched, testLogger(), Options{}),
		sched: sched,
		sinks: make(map[string]*recordingSink),
	}
}

func (tt *testTable) join(t *testing.T, id string) *recordingSink {
	t.Helper()
	sink := &recordingSink{}
	require.NoError(t, tt.s.Join(id, "name-"+id, sink))
	tt.sinks[id] = sink
	return sink
}

func (tt *testTable) seatAll(t *testing.T) {
	t.Helper()
	for i := 1; i <= MaxPlayers; i++ {
		tt.join(t, fmt.Sprintf("p%d", i))
	}
}

func (tt *testTable) startAll(t *testing.T) {
	t.Helper()
	tt.seatAll(t)
	for i := 1; i <= MaxPlayers; i++ {
		id := fmt.Sprintf("p%d", i)
		tt.s.EnterName(id, "Player "+id)
	}
	require.True(t, tt.s.Started())
}

func (tt *testTable) player(t *testing.T, id string) Player {
	t.Helper()
	p, ok := tt.s.Player(id)
	require.True(t, ok, "player %s not seated", id)
	return p
}

// startedDefault starts a table on the default sequence. With it the deal is:
//
//	p1: A♥ Q♠ Q♣ J♥ A♠  threshold 1
//	p2: J♠ J♣ Q♣ J♥ Q♦  threshold 1
//	p3: Q♦ K♠ A♦ Q♣ A♠  threshold 5
//	p4: Q♥ K♠ Q♣ A♥ J♠  threshold 4
//
// and the claimed rank is A until the second reveal resolves.
func startedDefault(t *testing.T) *testTable {
	t.Helper()
	tt := newTestTable(t, sequence.MustDefault())
	tt.startAll(t)
	return tt
}

func cards(t *testing.T, codes ...string) []deck.Card {
	t.Helper()
	c, err := deck.ParseCards(codes)
	require.NoError(t, err)
	return c
}

func seatsOf(s *Session) []int {
	var seats []int
	for _, p := range s.Players() {
		seats = append(seats, p.Seat)
	}
	slices.Sort(seats)
	return seats
}
