package classification

import (
	"math/bits"
	"strings"

	"github.com/handlens/handlens/poker"
)

// DrawType identifies one draw flag.
type DrawType int

const (
	FlushDraw DrawType = iota
	OESD
	Gutshot
	DoubleGutshot
	ComboDraw
	WheelDraw
)

var drawNames = [...]string{
	"flush_draw",
	"oesd",
	"gutshot",
	"double_gutshot",
	"combo_draw",
	"wheel_draw",
}

func (d DrawType) String() string {
	if d < 0 || int(d) >= len(drawNames) {
		return "unknown"
	}
	return drawNames[d]
}

// DrawSet is a bitmask of active draw flags.
type DrawSet uint8

// Has reports whether the flag is set.
func (s DrawSet) Has(d DrawType) bool {
	return s&(1<<uint(d)) != 0
}

// Add returns the set with the flag added.
func (s DrawSet) Add(d DrawType) DrawSet {
	return s | 1<<uint(d)
}

// Empty reports whether no flag is set.
func (s DrawSet) Empty() bool {
	return s == 0
}

// Types returns the active flags in declaration order.
func (s DrawSet) Types() []DrawType {
	if s == 0 {
		return nil
	}
	types := make([]DrawType, 0, bits.OnesCount8(uint8(s)))
	for d := FlushDraw; d <= WheelDraw; d++ {
		if s.Has(d) {
			types = append(types, d)
		}
	}
	return types
}

func (s DrawSet) String() string {
	if s == 0 {
		return "none"
	}
	parts := make([]string, 0, 2)
	for _, d := range s.Types() {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "+")
}

// hasStraightDraw reports whether any straight-completion flag is set.
func (s DrawSet) hasStraightDraw() bool {
	return s.Has(OESD) || s.Has(Gutshot) || s.Has(DoubleGutshot) || s.Has(WheelDraw)
}

// DetectDraws returns the draw flags for a combo on a board. Draws only
// exist on the flop and turn: short boards have nothing to draw against
// yet and the river ends the drawing. A made straight suppresses the
// straight-draw family, a made flush leaves no four-card suit. When a
// flush draw coexists with any straight draw the set collapses to the
// single combo_draw flag.
func DetectDraws(hole poker.Combo, board poker.Hand) DrawSet {
	boardCount := board.CountCards()
	if boardCount < 3 || boardCount >= 5 {
		return 0
	}

	union := hole.Mask() | board
	var set DrawSet

	for suit := uint8(0); suit < 4; suit++ {
		if bits.OnesCount16(union.GetSuitMask(suit)) == 4 {
			set = set.Add(FlushDraw)
			break
		}
	}

	set |= straightDrawFlags(rankMask13(union))

	if set.Has(FlushDraw) && set.hasStraightDraw() {
		return DrawSet(0).Add(ComboDraw)
	}
	return set
}

// straightDrawFlags classifies the straight-draw shape of a 13-bit rank
// mask by one-card completion analysis.
func straightDrawFlags(mask uint16) DrawSet {
	if straightHigh(mask) > 0 {
		return 0
	}

	// Every absent rank whose addition completes a straight.
	var completions []uint8
	for rank := uint8(0); rank < 13; rank++ {
		if mask&(1<<rank) != 0 {
			continue
		}
		if straightHigh(mask|1<<rank) > 0 {
			completions = append(completions, rank)
		}
	}
	if len(completions) == 0 {
		return 0
	}

	if isOpenEnded(mask, completions) {
		return DrawSet(0).Add(OESD)
	}
	if len(completions) >= 2 {
		return DrawSet(0).Add(DoubleGutshot)
	}

	only := completions[0]
	if straightHigh(mask|1<<only) == poker.Five {
		return DrawSet(0).Add(WheelDraw)
	}
	return DrawSet(0).Add(Gutshot)
}

// isOpenEnded reports a four-card run whose both ends complete. The low
// end of a 2-3-4-5 run is the ace.
func isOpenEnded(mask uint16, completions []uint8) bool {
	completes := func(rank uint8) bool {
		for _, c := range completions {
			if c == rank {
				return true
			}
		}
		return false
	}

	for start := uint8(0); start <= 9; start++ {
		run := uint16(0xF) << start
		if mask&run != run {
			continue
		}
		low := poker.Ace
		if start > 0 {
			low = start - 1
		}
		high := start + 4
		if high > poker.Ace {
			continue
		}
		if completes(low) && completes(high) {
			return true
		}
	}
	return false
}
