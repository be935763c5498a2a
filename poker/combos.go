package poker

import (
	"fmt"
	"math/bits"
)

// Combo is an unordered pair of hole cards. Hi carries the higher rank;
// on equal ranks the lower suit index (clubs first) is Hi. The zero
// value is not a valid combo.
type Combo struct {
	Hi Card
	Lo Card
}

// NewCombo builds a combo from two distinct cards.
func NewCombo(a, b Card) (Combo, error) {
	if a.Rank() > 12 || b.Rank() > 12 {
		return Combo{}, fmt.Errorf("%w: combo needs two cards", ErrInvalidCard)
	}
	if a == b {
		return Combo{}, fmt.Errorf("%w: duplicate %s", ErrInvalidCard, a)
	}
	if comboLess(b, a) {
		a, b = b, a
	}
	return Combo{Hi: a, Lo: b}, nil
}

// ParseCombo parses a four-character combo like "AsKh".
func ParseCombo(s string) (Combo, error) {
	if len(s) != 4 {
		return Combo{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	a, err := ParseCard(s[:2])
	if err != nil {
		return Combo{}, err
	}
	b, err := ParseCard(s[2:])
	if err != nil {
		return Combo{}, err
	}
	return NewCombo(a, b)
}

// ComboFromMask rebuilds a combo from a two-card hand mask.
func ComboFromMask(h Hand) (Combo, error) {
	if h.CountCards() != 2 {
		return Combo{}, fmt.Errorf("%w: mask holds %d cards", ErrInvalidCard, h.CountCards())
	}
	lo := Card(1) << bits.TrailingZeros64(uint64(h))
	hi := Card(1) << (63 - bits.LeadingZeros64(uint64(h)))
	return NewCombo(lo, hi)
}

// Mask returns the two-bit hand for dead-card arithmetic.
func (c Combo) Mask() Hand {
	return Hand(c.Hi) | Hand(c.Lo)
}

// Paired reports whether both cards share a rank.
func (c Combo) Paired() bool {
	return c.Hi.Rank() == c.Lo.Rank()
}

// Suited reports whether both cards share a suit.
func (c Combo) Suited() bool {
	return c.Hi.Suit() == c.Lo.Suit()
}

// HighRank returns the rank of the higher card.
func (c Combo) HighRank() uint8 {
	return c.Hi.Rank()
}

// LowRank returns the rank of the lower card.
func (c Combo) LowRank() uint8 {
	return c.Lo.Rank()
}

// Key returns the canonical 169-class key: "AA", "AKs" or "AKo".
func (c Combo) Key() string {
	hi, lo := c.Hi.Rank(), c.Lo.Rank()
	if hi == lo {
		return string([]byte{RankChar(hi), RankChar(lo)})
	}
	mod := byte('o')
	if c.Suited() {
		mod = 's'
	}
	return string([]byte{RankChar(hi), RankChar(lo), mod})
}

// String returns the exact four-character form, e.g. "AsKh".
func (c Combo) String() string {
	return c.Hi.String() + c.Lo.String()
}

// comboLess orders cards rank-descending, then suit-ascending (clubs
// first). Enumerate and Combo Hi/Lo placement both use this order.
func comboLess(a, b Card) bool {
	ar, br := a.Rank(), b.Rank()
	if ar != br {
		return ar > br
	}
	return a.Suit() < b.Suit()
}

// allCardsOrdered lists the 52 cards in enumeration order.
var allCardsOrdered = func() [52]Card {
	var cards [52]Card
	i := 0
	for rank := int(Ace); rank >= 0; rank-- {
		for suit := uint8(0); suit < 4; suit++ {
			cards[i] = NewCard(uint8(rank), suit)
			i++
		}
	}
	return cards
}()

// Enumerate returns every two-card combo that avoids the dead cards, in
// a fixed order: pairs of positions (i, j) with i < j over the 52 cards
// sorted rank-descending then suit-ascending. With no dead cards the
// result holds all 1326 combos.
func Enumerate(dead Hand) []Combo {
	live := make([]Card, 0, 52)
	for _, c := range allCardsOrdered {
		if !dead.HasCard(c) {
			live = append(live, c)
		}
	}

	n := len(live)
	combos := make([]Combo, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			combos = append(combos, Combo{Hi: live[i], Lo: live[j]})
		}
	}
	return combos
}
