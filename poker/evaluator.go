package poker

import (
	"slices"
	"strconv"
	"strings"
)

// Category enumerates the categories of poker hands ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	HighCard:      "High Card",
	Pair:          "Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown"
}

// Base returns the score band of the category (0, 1000, ... 8000)
func (c Category) Base() int {
	return int(c) * 1000
}

// HandRank is the result of evaluating the best five-card hand out of up to seven cards.
//
// Score is the display value (category base refined by the top ranks). Two hands
// are ordered by Compare, which looks at Category then TieBreakers; Score alone is
// not a total order for full houses (QQQAA scores above KKK22).
type HandRank struct {
	Score       int      `json:"score"`
	Category    Category `json:"category"`
	TieBreakers []int    `json:"tie_breakers"`
}

// IsRoyal reports whether the hand is an ace-high straight flush
func (hr HandRank) IsRoyal() bool {
	return hr.Category == StraightFlush && len(hr.TieBreakers) > 0 && hr.TieBreakers[0] == int(Ace)
}

// String returns a human-readable hand description.
func (hr HandRank) String() string {
	if hr.IsRoyal() {
		return "Royal Flush"
	}
	return hr.Category.String()
}

// Describe returns the category name with its deciding ranks, e.g. "Full House (K over 2)"
func (hr HandRank) Describe() string {
	if len(hr.TieBreakers) == 0 {
		return hr.String()
	}
	rank := func(i int) string {
		if i >= len(hr.TieBreakers) {
			return "?"
		}
		return Rank(hr.TieBreakers[i]).String()
	}
	switch hr.Category {
	case FullHouse:
		return hr.String() + " (" + rank(0) + " over " + rank(1) + ")"
	case TwoPair:
		return hr.String() + " (" + rank(0) + " and " + rank(1) + ")"
	case StraightFlush, Straight, Flush, HighCard:
		if hr.IsRoyal() {
			return hr.String()
		}
		return hr.String() + " (" + rank(0) + " high)"
	default:
		return hr.String() + " (" + rank(0) + ")"
	}
}

// Compare orders two hand ranks: positive when a beats b, negative when b beats a,
// zero on an exact tie. Missing tie-break elements count as zero.
func Compare(a, b HandRank) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}
	n := max(len(a.TieBreakers), len(b.TieBreakers))
	for i := range n {
		av, bv := at(a.TieBreakers, i), at(b.TieBreakers, i)
		if av != bv {
			if av > bv {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Beats reports whether hr is strictly stronger than other
func (hr HandRank) Beats(other HandRank) bool {
	return Compare(hr, other) > 0
}

// Evaluate returns the best ranking of the hole cards combined with the board.
// It accepts anywhere from zero to seven cards in total; fewer than five cards
// degrade to high card / pair style evaluations over what is present.
func Evaluate(hole, board []Card) HandRank {
	cards := make([]Card, 0, len(hole)+len(board))
	cards = append(cards, hole...)
	cards = append(cards, board...)
	if len(cards) == 0 {
		return HandRank{Category: HighCard, TieBreakers: []int{}}
	}

	slices.SortStableFunc(cards, func(a, b Card) int { return b.Value() - a.Value() })

	// Cards of the flush suit, highest first
	var suited [4][]Card
	var flushCards []Card
	for _, c := range cards {
		if c.Suit > Spades {
			continue
		}
		suited[c.Suit] = append(suited[c.Suit], c)
		if len(suited[c.Suit]) >= 5 && flushCards == nil {
			flushCards = suited[c.Suit]
		}
	}
	if flushCards != nil {
		// re-slice after the loop so every card of the suit is considered
		flushCards = suited[flushCards[0].Suit]
		if high, ok := straightHigh(flushCards); ok {
			return HandRank{Score: StraightFlush.Base() + high, Category: StraightFlush, TieBreakers: []int{high}}
		}
	}

	counts := make(map[int]int, len(cards))
	var values []int
	for _, c := range cards {
		if counts[c.Value()] == 0 {
			values = append(values, c.Value())
		}
		counts[c.Value()]++
	}

	var quads, trips, pairs []int
	for _, v := range values {
		switch counts[v] {
		case 4:
			quads = append(quads, v)
		case 3:
			trips = append(trips, v)
		case 2:
			pairs = append(pairs, v)
		}
	}

	if len(quads) > 0 {
		q := quads[0]
		return HandRank{
			Score:       FourOfAKind.Base() + q,
			Category:    FourOfAKind,
			TieBreakers: []int{q, firstExcept(values, q)},
		}
	}

	if len(trips) > 0 && (len(pairs) > 0 || len(trips) > 1) {
		t := trips[0]
		p := 0
		if len(trips) > 1 {
			p = trips[1]
		}
		if len(pairs) > 0 && pairs[0] > p {
			p = pairs[0]
		}
		return HandRank{
			Score:       FullHouse.Base() + t*10 + p,
			Category:    FullHouse,
			TieBreakers: []int{t, p},
		}
	}

	if flushCards != nil {
		top := make([]int, 5)
		for i := range top {
			top[i] = flushCards[i].Value()
		}
		return HandRank{Score: Flush.Base() + top[0], Category: Flush, TieBreakers: top}
	}

	if high, ok := straightHigh(cards); ok {
		return HandRank{Score: Straight.Base() + high, Category: Straight, TieBreakers: []int{high}}
	}

	if len(trips) > 0 {
		t := trips[0]
		return HandRank{
			Score:       ThreeOfAKind.Base() + t,
			Category:    ThreeOfAKind,
			TieBreakers: append([]int{t}, kickers(values, 2, t)...),
		}
	}

	if len(pairs) >= 2 {
		hi, lo := pairs[0], pairs[1]
		return HandRank{
			Score:       TwoPair.Base() + hi*10 + lo,
			Category:    TwoPair,
			TieBreakers: []int{hi, lo, firstExcept(values, hi, lo)},
		}
	}

	if len(pairs) == 1 {
		p := pairs[0]
		return HandRank{
			Score:       Pair.Base() + p,
			Category:    Pair,
			TieBreakers: append([]int{p}, kickers(values, 3, p)...),
		}
	}

	top := kickers(values, 5)
	return HandRank{Score: top[0], Category: HighCard, TieBreakers: top}
}

// straightHigh finds the highest five-card run among cards sorted by value
// descending. The wheel (A-2-3-4-5) counts with a high card of five, and only
// when no higher run exists.
func straightHigh(cards []Card) (int, bool) {
	var distinct []int
	for _, c := range cards {
		if len(distinct) == 0 || distinct[len(distinct)-1] != c.Value() {
			distinct = append(distinct, c.Value())
		}
	}

	for i := 0; i+4 < len(distinct); i++ {
		if distinct[i]-distinct[i+4] == 4 {
			return distinct[i], true
		}
	}

	if slices.Contains(distinct, int(Ace)) {
		wheel := true
		for v := 2; v <= 5; v++ {
			if !slices.Contains(distinct, v) {
				wheel = false
				break
			}
		}
		if wheel {
			return 5, true
		}
	}
	return 0, false
}

// kickers returns up to n distinct values, highest first, skipping the excluded ones
func kickers(values []int, n int, exclude ...int) []int {
	out := make([]int, 0, n)
	for _, v := range values {
		if len(out) == n {
			break
		}
		if !slices.Contains(exclude, v) {
			out = append(out, v)
		}
	}
	return out
}

func firstExcept(values []int, exclude ...int) int {
	if k := kickers(values, 1, exclude...); len(k) > 0 {
		return k[0]
	}
	return 0
}

func at(v []int, i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// FormatTieBreakers renders a tie-break vector as "[13 2]" style text using ranks
func FormatTieBreakers(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		if x >= int(Two) && x <= int(Ace) {
			parts[i] = Rank(x).String()
		} else {
			parts[i] = strconv.Itoa(x)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
