package game

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/liarsbar/internal/deck"
	"github.com/lox/liarsbar/internal/sequence"
)

const inboxSize = 256

// RoomConfig configures a room
type RoomConfig struct {
	Sequence     sequence.Params
	AdvanceDelay time.Duration
	RevealDelay  time.Duration
}

// DefaultRoomConfig returns the standard table setup
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		Sequence:     sequence.DefaultParams,
		AdvanceDelay: DefaultAdvanceDelay,
		RevealDelay:  DefaultRevealDelay,
	}
}

// Room serializes every event and every delayed resolution of one session onto
// a single worker goroutine
type Room struct {
	session *Session
	clock   quartz.Clock
	logger  *log.Logger
	inbox   chan func()
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewRoom creates a room whose randomness comes from a fresh sequence table.
// Call Run to start processing.
func NewRoom(cfg RoomConfig, logger *log.Logger, clock quartz.Clock) (*Room, error) {
	gen, err := sequence.New(cfg.Sequence)
	if err != nil {
		return nil, fmt.Errorf("create sequence: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Room{
		clock:  clock,
		logger: logger.WithPrefix("room"),
		inbox:  make(chan func(), inboxSize),
		ctx:    ctx,
		cancel: cancel,
	}
	r.session = NewSession(gen, r, logger, Options{
		AdvanceDelay: cfg.AdvanceDelay,
		RevealDelay:  cfg.RevealDelay,
	})

	return r, nil
}

// Run processes queued work until ctx is cancelled or Stop is called
func (r *Room) Run(ctx context.Context) {
	r.logger.Info("Room started")
	defer r.logger.Info("Room stopped")

	for {
		select {
		case fn := <-r.inbox:
			fn()
		case <-ctx.Done():
			r.cancel()
			return
		case <-r.ctx.Done():
			return
		}
	}
}

// Stop stops the worker. Queued and scheduled work is dropped.
func (r *Room) Stop() {
	r.cancel()
}

// After implements Scheduler. The callback is queued behind whatever events
// arrived before the timer fired.
func (r *Room) After(d time.Duration, fn func()) {
	r.clock.AfterFunc(d, func() {
		r.enqueue(fn)
	}, "room", "after")
}

func (r *Room) enqueue(fn func()) bool {
	select {
	case r.inbox <- fn:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// Do runs fn on the worker and waits for it to finish
func (r *Room) Do(ctx context.Context, fn func(s *Session)) error {
	done := make(chan struct{})
	if !r.enqueue(func() {
		defer close(done)
		fn(r.session)
	}) {
		return ErrRoomClosed
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.ctx.Done():
		return ErrRoomClosed
	}
}

// Join runs a join event and waits for it. It reports whether sink is now
// the connection seated as id; a join for an id seated behind another sink
// leaves that seat alone and returns false. A full room returns ErrRoomFull.
func (r *Room) Join(ctx context.Context, id, name string, sink Sink) (bool, error) {
	var (
		seated  bool
		joinErr error
	)
	err := r.Do(ctx, func(s *Session) {
		joinErr = s.Join(id, name, sink)
		seated = joinErr == nil && s.SeatedBy(id, sink)
	})
	if err != nil {
		return false, err
	}
	if joinErr != nil {
		r.logger.Warn("Join rejected", "player", id, "error", joinErr)
	}
	return seated, joinErr
}

// EnterName queues a name event
func (r *Room) EnterName(id, name string) {
	r.enqueue(func() { r.session.EnterName(id, name) })
}

// PlayCards queues a play event
func (r *Room) PlayCards(id string, cards []deck.Card) {
	r.enqueue(func() { r.session.PlayCards(id, cards) })
}

// Reveal queues a challenge of the previous play
func (r *Room) Reveal(id string) {
	r.enqueue(func() { r.session.RevealPreviousCards(id) })
}

// Disconnect queues the removal of whoever is seated behind sink
func (r *Room) Disconnect(sink Sink) {
	r.enqueue(func() { r.session.Disconnect(sink) })
}

// ResetEliminations clears every ban and waits for it to take effect
func (r *Room) ResetEliminations(ctx context.Context) error {
	return r.Do(ctx, func(s *Session) { s.ResetEliminations() })
}

// Snapshot returns the current session state
func (r *Room) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := r.Do(ctx, func(s *Session) { snap = s.Snapshot() })
	return snap, err
}
