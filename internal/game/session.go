package game

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/liarsbar/internal/deck"
	"github.com/lox/liarsbar/internal/protocol"
)

const (
	// MaxPlayers is the number of seats at the table
	MaxPlayers = 4

	// HandSize is the number of cards dealt on join
	HandSize = 5

	// MaxThreshold is the largest elimination threshold a player can draw
	MaxThreshold = 6

	DefaultAdvanceDelay = 2010 * time.Millisecond
	DefaultRevealDelay  = 3 * time.Second
)

// Source supplies the fractions every random decision is derived from
type Source = deck.Source

// Sink receives the notifications addressed to one player. Sends are fire and
// forget; an error only gets logged.
type Sink interface {
	SendMessage(msg *protocol.Message) error
	Close() error
}

// Scheduler runs fn once after d, on the goroutine that owns the session
type Scheduler interface {
	After(d time.Duration, fn func())
}

// Options tune the delays of a session
type Options struct {
	AdvanceDelay time.Duration
	RevealDelay  time.Duration
}

func (o Options) withDefaults() Options {
	if o.AdvanceDelay <= 0 {
		o.AdvanceDelay = DefaultAdvanceDelay
	}
	if o.RevealDelay <= 0 {
		o.RevealDelay = DefaultRevealDelay
	}
	return o
}

// Player is a seated player
type Player struct {
	ID        string
	Name      string
	Hand      []deck.Card
	Seat      int
	Threshold int
	Strikes   int

	sink Sink
}

// Play is the most recent set of cards put down
type Play struct {
	Cards    []deck.Card
	By       string
	Revealed bool
}

type pendingReveal struct {
	challenger string
	defender   string
}

// Session is the state of one room
type Session struct {
	src       Source
	deck      *deck.Deck
	scheduler Scheduler
	logger    *log.Logger
	opts      Options

	players    map[string]*Player
	ready      []string
	started    bool
	turnSeat   int
	claimed    deck.Rank
	pending    *Play
	revealOpen bool
	eliminated []string

	epoch          uint64
	advancePending bool
	reveal         *pendingReveal
}

// NewSession creates an empty room and draws its opening claimed rank
func NewSession(src Source, scheduler Scheduler, logger *log.Logger, opts Options) *Session {
	s := &Session{
		src:       src,
		deck:      deck.NewDeck(src),
		scheduler: scheduler,
		logger:    logger.WithPrefix("session"),
		opts:      opts.withDefaults(),
		players:   make(map[string]*Player),
		turnSeat:  1,
	}
	s.claimed = s.drawRank()
	return s
}

func (s *Session) drawRank() deck.Rank {
	return deck.Ranks[int(s.src.Next()*float64(len(deck.Ranks)))]
}

func (s *Session) drawThreshold(p *Player) {
	p.Threshold = int(s.src.Next()*MaxThreshold) + 1
	p.Strikes = 0
}

// bump invalidates every turn advance scheduled so far
func (s *Session) bump() {
	s.epoch++
	s.advancePending = false
}

// seated returns the players ordered by seat
func (s *Session) seated() []*Player {
	players := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	slices.SortFunc(players, func(a, b *Player) int { return a.Seat - b.Seat })
	return players
}

func (s *Session) playerAt(seat int) *Player {
	for _, p := range s.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

func (s *Session) isEliminated(id string) bool {
	return slices.Contains(s.eliminated, id)
}

func (s *Session) isActive(p *Player) bool {
	return p != nil && !s.isEliminated(p.ID)
}

func (s *Session) activePlayers() []*Player {
	var active []*Player
	for _, p := range s.seated() {
		if s.isActive(p) {
			active = append(active, p)
		}
	}
	return active
}

func (s *Session) currentTurn() string {
	if p := s.playerAt(s.turnSeat); p != nil {
		return p.ID
	}
	return ""
}

func (s *Session) holdsTurn(p *Player) bool {
	return p.Seat == s.turnSeat
}

// Started reports whether all four players have entered their names
func (s *Session) Started() bool { return s.started }

// TurnSeat returns the seat whose turn it is
func (s *Session) TurnSeat() int { return s.turnSeat }

// CurrentTurn returns the id of the player holding the turn, or "" for an empty seat
func (s *Session) CurrentTurn() string { return s.currentTurn() }

// ClaimedRank returns the rank the current trick claims to match
func (s *Session) ClaimedRank() deck.Rank { return s.claimed }

// RevealOpen reports whether the last reveal's cards are visible
func (s *Session) RevealOpen() bool { return s.revealOpen }

// RevealInFlight reports whether a challenge is waiting to resolve
func (s *Session) RevealInFlight() bool { return s.reveal != nil }

// AdvancePending reports whether a play is waiting for its automatic turn advance
func (s *Session) AdvancePending() bool { return s.advancePending }

// PendingPlay returns a copy of the last play
func (s *Session) PendingPlay() (Play, bool) {
	if s.pending == nil {
		return Play{}, false
	}
	p := *s.pending
	p.Cards = slices.Clone(s.pending.Cards)
	return p, true
}

// IsEliminated reports whether id has been eliminated
func (s *Session) IsEliminated(id string) bool { return s.isEliminated(id) }

// Eliminated returns eliminated ids in elimination order
func (s *Session) Eliminated() []string { return slices.Clone(s.eliminated) }

// ReadyPlayers returns the ids that entered a name, in order
func (s *Session) ReadyPlayers() []string { return slices.Clone(s.ready) }

// Player returns a copy of a seated player
func (s *Session) Player(id string) (Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	cp := *p
	cp.Hand = slices.Clone(p.Hand)
	return cp, true
}

// Players returns copies of every seated player ordered by seat
func (s *Session) Players() []Player {
	out := make([]Player, 0, len(s.players))
	for _, p := range s.seated() {
		cp := *p
		cp.Hand = slices.Clone(p.Hand)
		out = append(out, cp)
	}
	return out
}

// Winner returns the sole remaining player once everyone else is eliminated
func (s *Session) Winner() (string, bool) {
	if !s.started || len(s.players) < 2 {
		return "", false
	}
	active := s.activePlayers()
	if len(active) != 1 {
		return "", false
	}
	return active[0].ID, true
}
