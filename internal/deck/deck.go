package deck

// Size is the number of cards in a deck: four ranks in four suits.
const Size = 16

// Source supplies fractions in [0, 1). The session's sequence generator is the
// only implementation outside tests.
type Source interface {
	Next() float64
}

// Deck is the single 16-card deck of a room. Dealing never removes cards: every
// hand is the top of a freshly reordered deck, so hands of different players may
// share cards.
type Deck struct {
	cards []Card
	src   Source
}

// NewDeck creates a deck in canonical order (A♥ A♠ A♣ A♦ K♥ ... J♦)
func NewDeck(src Source) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		src:   src,
	}

	for _, rank := range Ranks {
		for _, suit := range Suits {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}

	return d
}

// Shuffle reorders the deck in place with a comparison sort whose comparator
// ignores the cards and returns 0.5 - next(). Each call starts from the order left
// by the previous one. The result is not a uniform permutation.
func (d *Deck) Shuffle() {
	sortWith(d.cards, func(_, _ Card) float64 {
		return 0.5 - d.src.Next()
	})
}

// Top returns a copy of the first n cards
func (d *Deck) Top(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	hand := make([]Card, n)
	copy(hand, d.cards[:n])
	return hand
}

// Cards returns a copy of the current order
func (d *Deck) Cards() []Card {
	return d.Top(len(d.cards))
}

// Deal shuffles and returns the top n cards
func (d *Deck) Deal(n int) []Card {
	d.Shuffle()
	return d.Top(n)
}

// sortWith sorts a short slice the way a run-detecting merge sort handles input
// below its minimum run length: find the leading run (reversing it when strictly
// descending) and binary-insert every remaining element. cmp(a, b) < 0 orders a
// before b. The number and order of cmp calls are part of the contract because
// cmp may consume randomness.
func sortWith(cards []Card, cmp func(a, b Card) float64) {
	n := len(cards)
	if n < 2 {
		return
	}

	run := countRun(cards, cmp)
	for start := run; start < n; start++ {
		pivot := cards[start]
		left, right := 0, start
		for left < right {
			mid := left + (right-left)/2
			if cmp(pivot, cards[mid]) < 0 {
				right = mid
			} else {
				left = mid + 1
			}
		}
		copy(cards[left+1:start+1], cards[left:start])
		cards[left] = pivot
	}
}

func countRun(cards []Card, cmp func(a, b Card) float64) int {
	n := len(cards)
	if n == 1 {
		return 1
	}

	run := 2
	descending := cmp(cards[1], cards[0]) < 0
	prev := cards[1]
	for i := 2; i < n; i++ {
		order := cmp(cards[i], prev)
		if descending && order >= 0 {
			break
		}
		if !descending && order < 0 {
			break
		}
		prev = cards[i]
		run++
	}

	if descending {
		for i, j := 0, run-1; i < j; i, j = i+1, j-1 {
			cards[i], cards[j] = cards[j], cards[i]
		}
	}
	return run
}
