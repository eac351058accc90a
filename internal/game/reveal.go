package game

import (
	"github.com/lox/liarsbar/internal/deck"
	"github.com/lox/liarsbar/internal/protocol"
)

// IsTruthful reports whether every played card has the claimed rank
func IsTruthful(cards []deck.Card, claimed deck.Rank) bool {
	for _, c := range cards {
		if c.Rank != claimed {
			return false
		}
	}
	return true
}

// RevealPreviousCards challenges the last play. The turn holder may challenge a
// play they did not make and that has not been revealed yet. The outcome is
// resolved after the reveal delay.
func (s *Session) RevealPreviousCards(id string) {
	p, ok := s.players[id]
	switch {
	case !ok || !s.started:
		s.logger.Debug("Ignoring reveal", "player", id, "started", s.started)
		return
	case !s.holdsTurn(p) || s.isEliminated(id):
		s.logger.Debug("Ignoring reveal out of turn", "player", id, "seat", p.Seat, "turn", s.turnSeat)
		return
	case s.pending == nil:
		s.logger.Debug("Ignoring reveal with nothing played", "player", id)
		return
	case s.pending.By == id || s.pending.Revealed:
		s.logger.Debug("Ignoring reveal of own or already revealed play", "player", id)
		return
	case s.reveal != nil:
		s.logger.Debug("Ignoring reveal, one is already in flight", "player", id)
		return
	}

	r := &pendingReveal{challenger: id, defender: s.pending.By}
	s.reveal = r

	s.logger.Info("Reveal requested", "challenger", r.challenger, "defender", r.defender)
	s.broadcastDialog(
		protocol.DialogLine{Player: r.challenger, Message: "Liar! Let's see those cards!"},
		protocol.DialogLine{Player: r.defender, Message: "Me? So be it..."},
	)

	s.scheduler.After(s.opts.RevealDelay, func() {
		if s.reveal != r {
			s.logger.Debug("Dropping cancelled reveal", "challenger", r.challenger, "defender", r.defender)
			return
		}
		s.reveal = nil
		s.resolveReveal(r)
	})
}

func (s *Session) resolveReveal(r *pendingReveal) {
	play := s.pending
	valid := IsTruthful(play.Cards, s.claimed)
	s.revealOpen = true
	play.Revealed = true

	loser := s.players[r.defender]
	if valid {
		loser = s.players[r.challenger]
	}
	loser.Strikes++
	eliminated := loser.Strikes >= loser.Threshold
	if eliminated && !s.isEliminated(loser.ID) {
		s.eliminated = append(s.eliminated, loser.ID)
	}

	s.logger.Info("Reveal resolved",
		"valid", valid,
		"loser", loser.ID,
		"strikes", loser.Strikes,
		"eliminated", eliminated)

	switch {
	case valid && eliminated:
		s.pending = nil
		s.revealOpen = false
		s.broadcastDialog(
			protocol.DialogLine{Player: r.defender, Message: "HA HA HA!"},
			protocol.DialogLine{Player: r.challenger, Message: "... (dies)"},
		)
	case valid:
		s.broadcastDialog(
			protocol.DialogLine{Player: r.defender, Message: "No faith in me? HA HA HA!"},
			protocol.DialogLine{Player: r.challenger, Message: "Phew, I survived!"},
		)
	case eliminated:
		s.broadcastDialog(
			protocol.DialogLine{Player: r.challenger, Message: "One dead liar!"},
			protocol.DialogLine{Player: r.defender, Message: "... (dies)"},
		)
	default:
		s.broadcastDialog(
			protocol.DialogLine{Player: r.challenger, Message: "You got away with it... liar!"},
			protocol.DialogLine{Player: r.defender, Message: "Luck is on my side."},
		)
	}

	s.claimed = s.drawRank()
	s.bump()

	message := "The cards do NOT match the claimed rank."
	if valid {
		message = "The cards match the claimed rank."
	}
	s.broadcast(protocol.MessageTypeRevealResult, protocol.RevealResultData{
		IsValid:    valid,
		Message:    message,
		TableState: s.tableState(),
	})
	s.broadcastPlayers()

	if eliminated && s.holdsTurn(loser) {
		s.AdvanceTurn()
	}
}
