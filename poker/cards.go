// Package poker provides bit-packed card primitives and hole-card combo
// enumeration for range analysis.
package poker

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// Card represents a single card as a bit position in a uint64.
// Layout: [13 spades][13 hearts][13 diamonds][13 clubs], with ranks
// ordered deuce (bit 0 of each suit block) through ace (bit 12).
type Card uint64

// Hand is a set of cards: multiple bits set in the same layout.
type Hand uint64

// ErrInvalidCard reports an unparseable card string or a duplicate card.
var ErrInvalidCard = errors.New("invalid card")

// Suit constants
const (
	Clubs    uint8 = 0
	Diamonds uint8 = 1
	Hearts   uint8 = 2
	Spades   uint8 = 3
)

// Rank constants (0-12 for 2-A)
const (
	Two   uint8 = 0
	Three uint8 = 1
	Four  uint8 = 2
	Five  uint8 = 3
	Six   uint8 = 4
	Seven uint8 = 5
	Eight uint8 = 6
	Nine  uint8 = 7
	Ten   uint8 = 8
	Jack  uint8 = 9
	Queen uint8 = 10
	King  uint8 = 11
	Ace   uint8 = 12
)

const (
	rankChars = "23456789TJQKA"
	suitChars = "cdhs"

	// RanksMask covers the 13 rank bits of a single suit block.
	RanksMask = 0x1FFF
)

// NewCard creates a card from rank and suit.
func NewCard(rank, suit uint8) Card {
	return Card(1) << (suit*13 + rank)
}

// Rank returns the rank of the card (0-12), or 255 for an invalid card.
func (c Card) Rank() uint8 {
	if c == 0 || bits.OnesCount64(uint64(c)) != 1 {
		return 255
	}
	return uint8(bits.TrailingZeros64(uint64(c))) % 13
}

// Suit returns the suit of the card (0-3), or 255 for an invalid card.
func (c Card) Suit() uint8 {
	if c == 0 || bits.OnesCount64(uint64(c)) != 1 {
		return 255
	}
	return uint8(bits.TrailingZeros64(uint64(c))) / 13
}

// String returns the two-character form, e.g. "As" or "Kh".
func (c Card) String() string {
	rank := c.Rank()
	suit := c.Suit()
	if rank > 12 || suit > 3 {
		return "??"
	}
	return string(rankChars[rank]) + string(suitChars[suit])
}

// ParseCard parses a two-character card like "As". Rank accepts either
// case; suit accepts either case.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	rankCh := s[0]
	if rankCh >= 'a' && rankCh <= 'z' {
		rankCh -= 'a' - 'A'
	}
	if rankCh == '1' { // reject "10"-style input early
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	rank := strings.IndexByte(rankChars, rankCh)

	suitCh := s[1]
	if suitCh >= 'A' && suitCh <= 'Z' {
		suitCh += 'a' - 'A'
	}
	suit := strings.IndexByte(suitChars, suitCh)

	if rank < 0 || suit < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	return NewCard(uint8(rank), uint8(suit)), nil
}

// ParseHand parses a run of concatenated or space-separated cards,
// e.g. "AsKh7d" or "As Kh 7d". Duplicates are rejected.
func ParseHand(s string) (Hand, error) {
	var h Hand
	fields := strings.Fields(s)
	if len(fields) == 1 && len(fields[0]) > 2 {
		runs := fields[0]
		if len(runs)%2 != 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
		}
		fields = fields[:0]
		for i := 0; i < len(runs); i += 2 {
			fields = append(fields, runs[i:i+2])
		}
	}
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return 0, err
		}
		if h.HasCard(c) {
			return 0, fmt.Errorf("%w: duplicate %s", ErrInvalidCard, c)
		}
		h.AddCard(c)
	}
	return h, nil
}

// NewHand creates a hand from multiple cards.
func NewHand(cards ...Card) Hand {
	var h Hand
	for _, c := range cards {
		h |= Hand(c)
	}
	return h
}

// AddCard adds a card to the hand.
func (h *Hand) AddCard(c Card) {
	*h |= Hand(c)
}

// HasCard reports whether the hand contains the card.
func (h Hand) HasCard(c Card) bool {
	return h&Hand(c) != 0
}

// Overlaps reports whether the two hands share any card.
func (h Hand) Overlaps(other Hand) bool {
	return h&other != 0
}

// CountCards returns the number of cards in the hand.
func (h Hand) CountCards() int {
	return bits.OnesCount64(uint64(h))
}

// Cards returns the individual cards in descending rank order,
// suits ordered clubs first within a rank.
func (h Hand) Cards() []Card {
	cards := make([]Card, 0, h.CountCards())
	for rank := int(Ace); rank >= 0; rank-- {
		for suit := uint8(0); suit < 4; suit++ {
			c := NewCard(uint8(rank), suit)
			if h.HasCard(c) {
				cards = append(cards, c)
			}
		}
	}
	return cards
}

// String joins the cards in the order Cards returns them.
func (h Hand) String() string {
	var sb strings.Builder
	for i, c := range h.Cards() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.String())
	}
	return sb.String()
}

// GetSuitMask returns the 13 rank bits present for one suit.
func (h Hand) GetSuitMask(suit uint8) uint16 {
	return uint16((h >> (suit * 13)) & RanksMask)
}

// GetRankMask returns a bitmask of which ranks are present. The ace is
// duplicated at bit 13 so ace-high straight scans need no special case.
func (h Hand) GetRankMask() uint16 {
	mask := uint16(0)
	for suit := uint8(0); suit < 4; suit++ {
		mask |= h.GetSuitMask(suit)
	}
	if mask&(1<<Ace) != 0 {
		mask |= 1 << 13
	}
	return mask
}

// RankCounts returns how many cards of each rank the hand holds.
func (h Hand) RankCounts() [13]int {
	var counts [13]int
	for suit := uint8(0); suit < 4; suit++ {
		suitMask := h.GetSuitMask(suit)
		for suitMask != 0 {
			rank := bits.TrailingZeros16(suitMask)
			counts[rank]++
			suitMask &= suitMask - 1
		}
	}
	return counts
}

// RankChar returns the display character for a rank (0-12).
func RankChar(rank uint8) byte {
	if rank > 12 {
		return '?'
	}
	return rankChars[rank]
}
