// Package classification assigns hero-relative hand categories, draw
// flags, and strength scores to hole-card combos on a board.
package classification

import (
	"math/bits"

	"github.com/handlens/handlens/poker"
)

// Category is the made-hand class of a combo on a board, strongest
// first. Board-made pairs are kept distinct from hole-card pairs
// because they carry much less information about the holder.
type Category int

const (
	StraightFlush Category = iota
	Quads
	FullHouse
	Flush
	Straight
	Set
	Trips
	TwoPair
	Overpair
	TwoPairBoard
	TopPair
	SecondPair
	Pair
	PairBoard
	Air
)

var categoryNames = [...]string{
	"straight_flush",
	"quads",
	"full_house",
	"flush",
	"straight",
	"set",
	"trips",
	"two_pair",
	"overpair",
	"two_pair_board",
	"top_pair",
	"second_pair",
	"pair",
	"pair_board",
	"air",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Categorize returns the category of the best hand the combo makes with
// the board. With an empty board a pocket pair rates as an overpair and
// anything else as air. With one or two board cards only pairing
// information is available; the full classification needs three.
func Categorize(hole poker.Combo, board poker.Hand) Category {
	boardCount := board.CountCards()
	if boardCount == 0 {
		if hole.Paired() {
			return Overpair
		}
		return Air
	}
	if boardCount < 3 {
		return categorizeShortBoard(hole, board)
	}

	union := hole.Mask() | board
	counts := union.RankCounts()
	boardCounts := board.RankCounts()

	if flushSuit, ok := findFlushSuit(union); ok {
		if straightHigh(union.GetSuitMask(flushSuit)) > 0 {
			return StraightFlush
		}
		// Quads and full houses outrank flushes.
		if hasQuads(counts) {
			return Quads
		}
		if hasFullHouse(counts) {
			return FullHouse
		}
		return Flush
	}
	if hasQuads(counts) {
		return Quads
	}
	if hasFullHouse(counts) {
		return FullHouse
	}
	if straightHigh(rankMask13(union)) > 0 {
		return Straight
	}

	hiRank, loRank := hole.HighRank(), hole.LowRank()

	if hole.Paired() {
		if boardCounts[hiRank] >= 1 {
			return Set
		}
		if int(hiRank) > maxBoardRank(boardCounts) {
			return Overpair
		}
		if boardPairRank(boardCounts) >= 0 {
			return TwoPairBoard
		}
		return Pair
	}

	hiMatch := boardCounts[hiRank] >= 1
	loMatch := boardCounts[loRank] >= 1

	if (hiMatch && boardCounts[hiRank] == 2) || (loMatch && boardCounts[loRank] == 2) {
		return Trips
	}
	if hiMatch && loMatch {
		return TwoPair
	}
	if hiMatch || loMatch {
		if boardPairRank(boardCounts) >= 0 {
			return TwoPairBoard
		}
		matched := hiRank
		if !hiMatch {
			matched = loRank
		}
		switch int(matched) {
		case maxBoardRank(boardCounts):
			return TopPair
		case secondBoardRank(boardCounts):
			return SecondPair
		default:
			return Pair
		}
	}
	if boardPairRank(boardCounts) >= 0 {
		return PairBoard
	}
	return Air
}

// categorizeShortBoard covers one and two board cards, where only
// pairing can be judged.
func categorizeShortBoard(hole poker.Combo, board poker.Hand) Category {
	boardCounts := board.RankCounts()
	hiRank, loRank := hole.HighRank(), hole.LowRank()

	if hole.Paired() {
		if boardCounts[hiRank] >= 1 {
			return Set
		}
		if int(hiRank) > maxBoardRank(boardCounts) {
			return Overpair
		}
		return Pair
	}
	if boardCounts[hiRank] >= 1 || boardCounts[loRank] >= 1 {
		return Pair
	}
	if boardPairRank(boardCounts) >= 0 {
		return PairBoard
	}
	return Air
}

func hasQuads(counts [13]int) bool {
	for _, n := range counts {
		if n >= 4 {
			return true
		}
	}
	return false
}

func hasFullHouse(counts [13]int) bool {
	tripsRank := -1
	for rank := 12; rank >= 0; rank-- {
		if counts[rank] >= 3 {
			tripsRank = rank
			break
		}
	}
	if tripsRank < 0 {
		return false
	}
	for rank := 12; rank >= 0; rank-- {
		if rank != tripsRank && counts[rank] >= 2 {
			return true
		}
	}
	return false
}

// findFlushSuit returns the suit holding five or more cards, if any.
func findFlushSuit(union poker.Hand) (uint8, bool) {
	for suit := uint8(0); suit < 4; suit++ {
		if bits.OnesCount16(union.GetSuitMask(suit)) >= 5 {
			return suit, true
		}
	}
	return 0, false
}

// maxBoardRank returns the highest rank present, or -1 for an empty board.
func maxBoardRank(boardCounts [13]int) int {
	for rank := 12; rank >= 0; rank-- {
		if boardCounts[rank] > 0 {
			return rank
		}
	}
	return -1
}

// secondBoardRank returns the second-highest distinct rank, or -1.
func secondBoardRank(boardCounts [13]int) int {
	seen := 0
	for rank := 12; rank >= 0; rank-- {
		if boardCounts[rank] > 0 {
			seen++
			if seen == 2 {
				return rank
			}
		}
	}
	return -1
}

// boardPairRank returns the highest rank paired on the board itself, or -1.
func boardPairRank(boardCounts [13]int) int {
	for rank := 12; rank >= 0; rank-- {
		if boardCounts[rank] >= 2 {
			return rank
		}
	}
	return -1
}

// rankMask13 collapses a hand to its 13 rank bits.
func rankMask13(h poker.Hand) uint16 {
	mask := uint16(0)
	for suit := uint8(0); suit < 4; suit++ {
		mask |= h.GetSuitMask(suit)
	}
	return mask
}

// straightHigh returns the high-card rank of the best straight in a
// 13-bit rank mask, or 0 if none. The wheel reports Five. The cascade
// runs first so a wheel never masks a higher straight.
func straightHigh(mask uint16) uint8 {
	mask &= poker.RanksMask

	seq := mask & (mask >> 1) & (mask >> 2) & (mask >> 3) & (mask >> 4)
	if seq != 0 {
		return uint8(bits.Len16(seq)-1) + 4
	}

	const wheelMask = 0x100F // Ace + 2-3-4-5
	if mask&wheelMask == wheelMask {
		return poker.Five
	}
	return 0
}
