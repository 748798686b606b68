package poker

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrDeckExhausted is returned when more cards are requested than remain in the deck
var ErrDeckExhausted = errors.New("deck exhausted")

// ErrInvalidCount is returned when a negative number of cards is requested
var ErrInvalidCount = errors.New("invalid card count")

// DeckExhaustedError carries the details of a failed deal
type DeckExhaustedError struct {
	Requested int
	Remaining int
}

func (e *DeckExhaustedError) Error() string {
	return fmt.Sprintf("deck exhausted: requested %d cards, %d remaining", e.Requested, e.Remaining)
}

// Is matches ErrDeckExhausted
func (e *DeckExhaustedError) Is(target error) bool {
	return target == ErrDeckExhausted
}

// Deck is an ordered sequence of cards consumed from the end (the "top")
type Deck struct {
	cards []Card
}

// NewDeck returns the 52 distinct cards in canonical (unshuffled) order
func NewDeck() *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for _, rank := range Ranks {
		for _, suit := range Suits {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	return d
}

// NewShuffledDeck returns a full deck shuffled with rng
func NewShuffledDeck(rng *rand.Rand) *Deck {
	d := NewDeck()
	d.Shuffle(rng)
	return d
}

// NewDeckFromCards builds a deck whose top card is the last element of cards.
// Intended for stacked decks in tests and replays.
func NewDeckFromCards(cards []Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// Shuffle produces a uniformly random permutation using Fisher-Yates
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top n cards in the order they were popped
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if n > len(d.cards) {
		return nil, &DeckExhaustedError{Requested: n, Remaining: len(d.cards)}
	}
	out := make([]Card, n)
	for i := range out {
		last := len(d.cards) - 1
		out[i] = d.cards[last]
		d.cards = d.cards[:last]
	}
	return out, nil
}

// Burn discards the top card
func (d *Deck) Burn() (Card, error) {
	cards, err := d.Deal(1)
	if err != nil {
		return Card{}, err
	}
	return cards[0], nil
}

// Remaining returns the number of cards left
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, bottom first
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}
