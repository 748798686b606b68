package poker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists the four suits in deck construction order
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the suit symbol
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Letter returns the single ASCII letter used in card notation ("h", "d", "c", "s")
func (s Suit) Letter() byte {
	if s > Spades {
		return '?'
	}
	return "hdcs"[s]
}

// IsRed returns true for hearts and diamonds
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. The numeric value is the card's value, 2 through 14 (ace high).
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankChars = "23456789TJQKA"

// Ranks lists the thirteen ranks from lowest to highest
var Ranks = [...]Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// String returns the rank character ("2".."9", "T", "J", "Q", "K", "A")
func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return string(rankChars[r-Two])
}

// Card is an immutable playing card. Two cards are equal when suit and rank match.
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Suit: suit, Rank: rank}
}

// Value returns the numeric value of the card, 2-14 with aces high
func (c Card) Value() int {
	return int(c.Rank)
}

// String returns the display form, e.g. "A♠"
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Notation returns the two-letter ASCII form, e.g. "As"
func (c Card) Notation() string {
	return c.Rank.String() + string(c.Suit.Letter())
}

// Valid reports whether the card has an in-range suit and rank
func (c Card) Valid() bool {
	return c.Suit <= Spades && c.Rank >= Two && c.Rank <= Ace
}

// MarshalJSON encodes the card in ASCII notation
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Notation())
}

// UnmarshalJSON decodes ASCII notation
func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCard(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses "As", "Td", "2h" and also accepts the suit symbols ("A♠")
func ParseCard(s string) (Card, error) {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) != 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}

	idx := strings.IndexRune(rankChars, toUpper(runes[0]))
	if idx < 0 {
		return Card{}, fmt.Errorf("invalid rank in card %q", s)
	}

	var suit Suit
	switch runes[1] {
	case 'h', 'H', '♥':
		suit = Hearts
	case 'd', 'D', '♦':
		suit = Diamonds
	case 'c', 'C', '♣':
		suit = Clubs
	case 's', 'S', '♠':
		suit = Spades
	default:
		return Card{}, fmt.Errorf("invalid suit in card %q", s)
	}

	return Card{Suit: suit, Rank: Two + Rank(idx)}, nil
}

// ParseCards parses a whitespace separated list of cards
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards for fixtures; it panics on malformed input
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards joins cards with spaces using the display form
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}
