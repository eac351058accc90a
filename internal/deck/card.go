package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Spades
	Clubs
	Diamonds
)

// Suits lists the suits in deck order
var Suits = []Suit{Hearts, Spades, Clubs, Diamonds}

// String returns the symbol used on the wire for a suit
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents one of the four ranks in play
type Rank int

const (
	Ace Rank = iota
	King
	Queen
	Jack
)

// Ranks lists the ranks in deck order. Claimed ranks are drawn by index into it.
var Ranks = []Rank{Ace, King, Queen, Jack}

// String returns the single character used on the wire for a rank
func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case King:
		return "K"
	case Queen:
		return "Q"
	case Jack:
		return "J"
	default:
		return "?"
	}
}

// MarshalText encodes a rank as its character
func (r Rank) MarshalText() ([]byte, error) {
	if r < Ace || r > Jack {
		return nil, fmt.Errorf("invalid rank: %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rank character
func (r *Rank) UnmarshalText(b []byte) error {
	rank, err := ParseRank(string(b))
	if err != nil {
		return err
	}
	*r = rank
	return nil
}

// ParseRank parses "A", "K", "Q" or "J" (case insensitive)
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(s) {
	case "A":
		return Ace, nil
	case "K":
		return King, nil
	case "Q":
		return Queen, nil
	case "J":
		return Jack, nil
	}
	return 0, fmt.Errorf("invalid rank: %q", s)
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the card code (e.g., "A♥")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// MarshalText encodes the card as its code so JSON carries "K♠" rather than an object
func (c Card) MarshalText() ([]byte, error) {
	if _, err := c.Rank.MarshalText(); err != nil {
		return nil, err
	}
	if c.Suit < Hearts || c.Suit > Diamonds {
		return nil, fmt.Errorf("invalid suit: %d", int(c.Suit))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card code
func (c *Card) UnmarshalText(b []byte) error {
	card, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// ParseCard parses a card code: a rank character followed by a suit symbol
func ParseCard(s string) (Card, error) {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) != 2 {
		return Card{}, fmt.Errorf("invalid card code: %q", s)
	}

	rank, err := ParseRank(string(runes[0]))
	if err != nil {
		return Card{}, fmt.Errorf("invalid card code %q: %w", s, err)
	}

	var suit Suit
	switch runes[1] {
	case '♥':
		suit = Hearts
	case '♠':
		suit = Spades
	case '♣':
		suit = Clubs
	case '♦':
		suit = Diamonds
	default:
		return Card{}, fmt.Errorf("invalid card code %q: unknown suit", s)
	}

	return NewCard(rank, suit), nil
}

// ParseCards parses a list of card codes
func ParseCards(codes []string) ([]Card, error) {
	cards := make([]Card, 0, len(codes))
	for _, code := range codes {
		card, err := ParseCard(code)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Codes returns the card codes of cards
func Codes(cards []Card) []string {
	codes := make([]string, len(cards))
	for i, c := range cards {
		codes[i] = c.String()
	}
	return codes
}
