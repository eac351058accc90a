package game

import (
	"github.com/lox/liarsbar/internal/deck"
	"github.com/lox/liarsbar/internal/protocol"
)

func (s *Session) sendTo(sink Sink, messageType protocol.MessageType, data any) {
	msg, err := protocol.NewMessage(messageType, data)
	if err != nil {
		s.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	if err := sink.SendMessage(msg); err != nil {
		s.logger.Warn("Failed to send message", "type", messageType, "error", err)
	}
}

func (s *Session) send(p *Player, messageType protocol.MessageType, data any) {
	s.sendTo(p.sink, messageType, data)
}

// broadcast sends one message to every seated player
func (s *Session) broadcast(messageType protocol.MessageType, data any) {
	msg, err := protocol.NewMessage(messageType, data)
	if err != nil {
		s.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}

	for _, p := range s.seated() {
		if err := p.sink.SendMessage(msg); err != nil {
			s.logger.Warn("Failed to send message", "type", messageType, "player", p.ID, "error", err)
		}
	}
}

func (s *Session) tableState() protocol.TableState {
	state := protocol.TableState{
		CurrentTurn:     s.currentTurn(),
		LastPlayedCards: []deck.Card{},
		ClaimedRank:     s.claimed,
		RevealActive:    s.revealOpen,
		Eliminated:      s.Eliminated(),
	}
	if state.Eliminated == nil {
		state.Eliminated = []string{}
	}
	if s.pending != nil {
		state.LastPlayedCards = append(state.LastPlayedCards, s.pending.Cards...)
		state.LastPlayerID = s.pending.By
	}
	return state
}

func (s *Session) initialState(p *Player) protocol.InitialStateData {
	remaining := make(map[string]int, len(s.players))
	seats := make(map[string]int, len(s.players))
	for id, other := range s.players {
		remaining[id] = len(other.Hand)
		seats[id] = other.Seat
	}

	return protocol.InitialStateData{
		PlayerID:         p.ID,
		Name:             p.Name,
		Seat:             p.Seat,
		Cards:            append([]deck.Card{}, p.Hand...),
		RemainingCards:   remaining,
		ConnectedPlayers: len(s.players),
		AllPlayers:       seats,
		TableState:       s.tableState(),
	}
}

func (s *Session) broadcastPlayers() {
	states := make(map[string]protocol.PlayerSummary, len(s.players))
	for id, p := range s.players {
		states[id] = protocol.PlayerSummary{
			Remaining: len(p.Hand),
			Seat:      p.Seat,
			Name:      p.Name,
			Strikes:   p.Strikes,
		}
	}

	s.broadcast(protocol.MessageTypeUpdateAllPlayers, protocol.UpdateAllPlayersData{
		PlayerStates: states,
		TableState:   s.tableState(),
	})
}

func (s *Session) broadcastPlayerCount() {
	s.broadcast(protocol.MessageTypePlayerCount, protocol.PlayerCountData{ConnectedPlayers: len(s.players)})
}

func (s *Session) broadcastReady() {
	ready := s.ReadyPlayers()
	if ready == nil {
		ready = []string{}
	}
	s.broadcast(protocol.MessageTypeReadyPlayersUpdate, protocol.ReadyPlayersData{ReadyPlayers: ready})
}

func (s *Session) broadcastDialog(lines ...protocol.DialogLine) {
	s.broadcast(protocol.MessageTypeDialogEvent, protocol.DialogEventData{Dialogs: lines})
}
