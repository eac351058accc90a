package deck

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCard(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Card
		wantErr  bool
	}{
		{name: "ace of hearts", input: "A♥", expected: Card{Rank: Ace, Suit: Hearts}},
		{name: "king of spades", input: "K♠", expected: Card{Rank: King, Suit: Spades}},
		{name: "queen of clubs", input: "Q♣", expected: Card{Rank: Queen, Suit: Clubs}},
		{name: "lower case rank", input: "j♦", expected: Card{Rank: Jack, Suit: Diamonds}},
		{name: "surrounding space", input: " A♠ ", expected: Card{Rank: Ace, Suit: Spades}},
		{name: "ten is not in play", input: "T♥", wantErr: true},
		{name: "ascii suit", input: "Ah", wantErr: true},
		{name: "too long", input: "A♥♥", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := ParseCard(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, card)
		})
	}
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "A♥", NewCard(Ace, Hearts).String())
	assert.Equal(t, "J♣", NewCard(Jack, Clubs).String())
	assert.True(t, NewCard(Queen, Diamonds).IsRed())
	assert.False(t, NewCard(Queen, Spades).IsRed())
}

func TestCardJSON(t *testing.T) {
	hand := []Card{NewCard(King, Spades), NewCard(Ace, Diamonds)}

	data, err := json.Marshal(hand)
	require.NoError(t, err)
	assert.JSONEq(t, `["K♠","A♦"]`, string(data))

	var decoded []Card
	require.NoError(t, json.Unmarshal([]byte(`["Q♥","J♠"]`), &decoded))
	assert.Equal(t, []Card{NewCard(Queen, Hearts), NewCard(Jack, Spades)}, decoded)

	assert.Error(t, json.Unmarshal([]byte(`["9♥"]`), &decoded))
}

func TestRankJSON(t *testing.T) {
	data, err := json.Marshal(Queen)
	require.NoError(t, err)
	assert.Equal(t, `"Q"`, string(data))

	var r Rank
	require.NoError(t, json.Unmarshal([]byte(`"k"`), &r))
	assert.Equal(t, King, r)

	_, err = json.Marshal(Rank(9))
	assert.Error(t, err)
}

func TestParseCardsAndCodes(t *testing.T) {
	cards, err := ParseCards([]string{"A♥", "K♦"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A♥", "K♦"}, Codes(cards))

	_, err = ParseCards([]string{"A♥", "nope"})
	assert.Error(t, err)
}
