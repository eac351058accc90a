package game

import (
	"fmt"
	"slices"

	"github.com/lox/liarsbar/internal/deck"
	"github.com/lox/liarsbar/internal/protocol"
)

// PlayCards puts cards from id's hand down as the current claimed rank.
//
// Only the turn holder may play, and only while no reveal is in flight and no
// earlier play is waiting for its turn advance. An eliminated turn holder passes
// instead. So does a player with an empty hand sending an empty play. Anything
// else that is not a non-empty subset of the hand is ignored.
func (s *Session) PlayCards(id string, cards []deck.Card) {
	p, ok := s.players[id]
	switch {
	case !ok:
		s.logger.Debug("Ignoring play from unknown player", "player", id)
		return
	case !s.started:
		s.logger.Debug("Ignoring play before game start", "player", id)
		return
	case !s.holdsTurn(p):
		s.logger.Debug("Ignoring play out of turn", "player", id, "seat", p.Seat, "turn", s.turnSeat)
		return
	case s.reveal != nil || s.advancePending:
		s.logger.Debug("Ignoring play while another resolution is in flight", "player", id)
		return
	}

	if s.isEliminated(id) {
		s.logger.Info("Eliminated player passes", "player", id)
		s.AdvanceTurn()
		return
	}

	if len(cards) == 0 && len(p.Hand) == 0 {
		s.logger.Info("Player with no cards passes", "player", id)
		s.AdvanceTurn()
		return
	}

	hand, ok := removeCards(p.Hand, cards)
	if !ok {
		s.logger.Debug("Ignoring play of cards not in hand", "player", id, "cards", deck.Codes(cards))
		return
	}

	p.Hand = hand
	s.pending = &Play{Cards: slices.Clone(cards), By: id}
	s.revealOpen = false

	s.logger.Info("Cards played", "player", id, "count", len(cards), "claimed", s.claimed)

	s.broadcast(protocol.MessageTypeAnnouncement, protocol.AnnouncementData{
		Message: fmt.Sprintf("%d %s(s) in play", len(cards), s.claimed),
	})
	s.broadcastPlayers()
	s.scheduleAdvance()
}

// scheduleAdvance passes the turn after the challenge window unless something
// else moved it first
func (s *Session) scheduleAdvance() {
	epoch := s.epoch
	s.advancePending = true
	s.scheduler.After(s.opts.AdvanceDelay, func() {
		if epoch != s.epoch {
			s.logger.Debug("Dropping stale turn advance", "scheduled", epoch, "current", s.epoch)
			return
		}
		s.advancePending = false
		s.AdvanceTurn()
	})
}

// AdvanceTurn moves the turn to the next occupied seat that is not eliminated,
// wrapping after seat 4. A sole survivor keeps the turn. With no active player
// at all nothing happens.
func (s *Session) AdvanceTurn() {
	if len(s.activePlayers()) == 0 {
		return
	}

	s.bump()
	for range MaxPlayers {
		s.turnSeat = s.turnSeat%MaxPlayers + 1
		if s.isActive(s.playerAt(s.turnSeat)) {
			break
		}
	}
	s.revealOpen = false

	s.logger.Info("Turn changed", "seat", s.turnSeat, "player", s.currentTurn())
	s.broadcast(protocol.MessageTypeTurnChange, protocol.TurnChangeData{TableState: s.tableState()})
}

// removeCards returns hand without cards, or false if cards is empty or not a
// sub-multiset of hand
func removeCards(hand, cards []deck.Card) ([]deck.Card, bool) {
	if len(cards) == 0 {
		return hand, false
	}

	remaining := slices.Clone(hand)
	for _, c := range cards {
		i := slices.Index(remaining, c)
		if i < 0 {
			return hand, false
		}
		remaining = slices.Delete(remaining, i, i+1)
	}
	return remaining, true
}
