package game

import (
	"slices"

	"github.com/lox/liarsbar/internal/protocol"
)

// Join seats a new player, deals their hand and draws their threshold.
// A known id is ignored. When all seats are taken the sink receives an error,
// is closed, and ErrRoomFull is returned.
func (s *Session) Join(id, name string, sink Sink) error {
	if id == "" {
		s.logger.Debug("Ignoring join without player id")
		return nil
	}

	if _, exists := s.players[id]; exists {
		s.logger.Debug("Player already seated, ignoring join", "player", id)
		return nil
	}

	if len(s.players) >= MaxPlayers {
		s.logger.Warn("Room is full, rejecting player", "player", id)
		s.sendTo(sink, protocol.MessageTypeError, protocol.ErrorData{
			Code:    protocol.ErrorCodeRoomFull,
			Message: "The room is full. Try again later.",
		})
		_ = sink.Close() // Ignore close errors on a rejected connection
		return ErrRoomFull
	}

	p := &Player{
		ID:   id,
		Name: name,
		Hand: s.deck.Deal(HandSize),
		Seat: len(s.players) + 1,
		sink: sink,
	}
	s.drawThreshold(p)
	s.players[id] = p

	s.logger.Info("Player joined", "player", id, "name", name, "seat", p.Seat, "players", len(s.players))

	s.send(p, protocol.MessageTypeInitialState, s.initialState(p))
	s.broadcastPlayerCount()
	s.broadcastPlayers()
	return nil
}

// SeatedBy reports whether id is seated behind sink
func (s *Session) SeatedBy(id string, sink Sink) bool {
	p, ok := s.players[id]
	return ok && p.sink == sink
}

// EnterName records a display name and marks the player ready. The fourth ready
// player starts the game. Once started, a name only renames.
func (s *Session) EnterName(id, name string) {
	p, ok := s.players[id]
	if !ok {
		s.logger.Debug("Ignoring name from unknown player", "player", id)
		return
	}

	p.Name = name
	if s.started {
		s.broadcastPlayers()
		return
	}

	if !slices.Contains(s.ready, id) {
		s.ready = append(s.ready, id)
	}
	s.logger.Info("Player ready", "player", id, "name", name, "ready", len(s.ready))
	s.broadcastReady()

	if len(s.ready) == MaxPlayers {
		s.start()
	}
}

func (s *Session) start() {
	for _, p := range s.seated() {
		s.drawThreshold(p)
	}
	s.started = true
	s.turnSeat = 1

	s.logger.Info("Game started", "players", len(s.players), "claimed", s.claimed)

	s.broadcast(protocol.MessageTypeStartGame, protocol.StartGameData{Players: len(s.players)})
	s.broadcastReady()
	s.broadcastPlayers()
}

// Disconnect removes the player whose connection is sink and compacts the seats.
// A sink that owns no seat is ignored.
//
// A reveal involving the leaver is cancelled and a play made by the leaver is
// cleared. The turn stays with its holder; when the leaver held it during a
// game, it passes to the next active seat.
func (s *Session) Disconnect(sink Sink) {
	var gone *Player
	for _, p := range s.players {
		if p.sink == sink {
			gone = p
			break
		}
	}
	if gone == nil {
		return
	}

	delete(s.players, gone.ID)
	s.ready = slices.DeleteFunc(s.ready, func(id string) bool { return id == gone.ID })
	for _, p := range s.players {
		if p.Seat > gone.Seat {
			p.Seat--
		}
	}

	if s.reveal != nil && (s.reveal.challenger == gone.ID || s.reveal.defender == gone.ID) {
		s.logger.Info("Cancelling reveal, participant left", "player", gone.ID)
		s.reveal = nil
	}
	if s.pending != nil && s.pending.By == gone.ID {
		s.pending = nil
		s.revealOpen = false
	}

	heldTurn := gone.Seat == s.turnSeat
	if gone.Seat < s.turnSeat {
		s.turnSeat--
	}

	s.logger.Info("Player left", "player", gone.ID, "seat", gone.Seat, "players", len(s.players))

	s.broadcastPlayerCount()
	s.broadcastPlayers()

	if heldTurn && s.started {
		s.bump()
		s.turnSeat = gone.Seat - 1
		if s.turnSeat < 1 {
			s.turnSeat = MaxPlayers
		}
		s.AdvanceTurn()
	}
}

// ResetEliminations clears every ban without touching the rest of the session
func (s *Session) ResetEliminations() {
	s.logger.Info("Resetting eliminations", "cleared", len(s.eliminated))
	s.eliminated = nil
	s.broadcastPlayers()
}
