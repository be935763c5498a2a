package ranges

import (
	"errors"
	"sort"

	"github.com/handlens/handlens/classification"
	"github.com/handlens/handlens/poker"
)

// ErrRangeCollapsed reports that normalization found zero total mass.
var ErrRangeCollapsed = errors.New("range collapsed to zero mass")

// ActionClass collapses betting actions into the three update columns.
type ActionClass int

const (
	BetRaise ActionClass = iota
	CallCheck
	Fold
)

func (a ActionClass) String() string {
	switch a {
	case BetRaise:
		return "bet_raise"
	case CallCheck:
		return "call_check"
	case Fold:
		return "fold"
	default:
		return "unknown"
	}
}

const (
	// weightFloor lower-bounds every surviving weight after an update.
	weightFloor = 1e-4

	pruneDefault   = 1e-3
	pruneFold      = 1e-5
	pruneSmall     = 1e-4
	smallRangeSize = 50
)

// Range is a weighted distribution over hole-card combos, always
// conditioned on a dead-card set. Stage methods return fresh values;
// a Range is never mutated after construction.
type Range struct {
	weights map[poker.Hand]float64
	dead    poker.Hand
}

// NewPreflopRange builds the full prior range minus dead cards.
func NewPreflopRange(dead poker.Hand) *Range {
	r := &Range{
		weights: make(map[poker.Hand]float64, 1326),
		dead:    dead,
	}
	for _, c := range poker.Enumerate(dead) {
		r.weights[c.Mask()] = PriorWeight(c)
	}
	return r
}

// emptyLike keeps the dead-card conditioning of a source range.
func emptyLike(r *Range) *Range {
	return &Range{weights: make(map[poker.Hand]float64), dead: r.dead}
}

// Size returns the number of combos with any mass.
func (r *Range) Size() int {
	return len(r.weights)
}

// Dead returns the dead-card set the range is conditioned on.
func (r *Range) Dead() poker.Hand {
	return r.dead
}

// Weight returns the mass on a combo mask, zero if absent.
func (r *Range) Weight(mask poker.Hand) float64 {
	return r.weights[mask]
}

// TotalWeight sums all masses.
func (r *Range) TotalWeight() float64 {
	total := 0.0
	for _, w := range r.weights {
		total += w
	}
	return total
}

// Entry pairs a combo with its weight.
type Entry struct {
	Combo  poker.Combo
	Weight float64
}

// Entries returns the combos in ascending mask order, so iteration is
// reproducible across runs.
func (r *Range) Entries() []Entry {
	masks := make([]poker.Hand, 0, len(r.weights))
	for mask := range r.weights {
		masks = append(masks, mask)
	}
	sort.Slice(masks, func(i, j int) bool { return masks[i] < masks[j] })

	entries := make([]Entry, 0, len(masks))
	for _, mask := range masks {
		combo, err := poker.ComboFromMask(mask)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Combo: combo, Weight: r.weights[mask]})
	}
	return entries
}

// Clone returns an independent copy.
func (r *Range) Clone() *Range {
	out := &Range{weights: make(map[poker.Hand]float64, len(r.weights)), dead: r.dead}
	for mask, w := range r.weights {
		out.weights[mask] = w
	}
	return out
}

// updateRow holds the three multiplier columns of one table row.
type updateRow struct {
	betRaise  float64
	callCheck float64
	fold      float64
}

func (u updateRow) mult(a ActionClass) float64 {
	switch a {
	case BetRaise:
		return u.betRaise
	case CallCheck:
		return u.callCheck
	default:
		return u.fold
	}
}

var (
	rowMonster    = updateRow{2.00, 1.50, 0.001} // straight flush, quads, full house
	rowMadeBig    = updateRow{1.50, 1.50, 0.01}  // flush, straight
	rowSet        = updateRow{1.50, 1.50, 0.01}
	rowTwoPair    = updateRow{1.50, 1.50, 0.10}
	rowTopPair    = updateRow{1.20, 1.20, 0.05} // overpair, top pair
	rowComboDraw  = updateRow{1.20, 1.10, 1.50}
	rowStrongDraw = updateRow{1.10, 0.80, 1.80} // flush draw, oesd, double gutshot
	rowWeakDraw   = updateRow{0.90, 0.60, 2.00} // gutshot, wheel draw
	rowWeakPair   = updateRow{0.70, 0.50, 1.20} // second pair, bare pair
	rowAir        = updateRow{0.05, 0.01, 2.50}
	rowOther      = updateRow{0.50, 0.30, 1.00} // trips, board-made pairs
)

// rowFor selects the table row for a combo: made-hand rows first, then
// draw rows, then the weak made hands and air.
func rowFor(cat classification.Category, draws classification.DrawSet) updateRow {
	switch cat {
	case classification.StraightFlush, classification.Quads, classification.FullHouse:
		return rowMonster
	case classification.Flush, classification.Straight:
		return rowMadeBig
	case classification.Set:
		return rowSet
	case classification.TwoPair:
		return rowTwoPair
	case classification.Overpair, classification.TopPair:
		return rowTopPair
	}

	switch {
	case draws.Has(classification.ComboDraw):
		return rowComboDraw
	case draws.Has(classification.FlushDraw),
		draws.Has(classification.OESD),
		draws.Has(classification.DoubleGutshot):
		return rowStrongDraw
	case draws.Has(classification.Gutshot), draws.Has(classification.WheelDraw):
		return rowWeakDraw
	}

	switch cat {
	case classification.SecondPair, classification.Pair:
		return rowWeakPair
	case classification.Air:
		return rowAir
	default:
		return rowOther
	}
}

// Update applies the multiplicative table for one observed action on
// the given board and returns the resulting range. Weights that were
// positive stay at or above the floor so a later action can still
// revive them.
func (r *Range) Update(action ActionClass, board poker.Hand) *Range {
	out := emptyLike(r)
	for mask, w := range r.weights {
		if w == 0 {
			continue
		}
		combo, err := poker.ComboFromMask(mask)
		if err != nil {
			continue
		}
		cat := classification.Categorize(combo, board)
		draws := classification.DetectDraws(combo, board)

		next := w * rowFor(cat, draws).mult(action)
		if next < weightFloor {
			next = weightFloor
		}
		out.weights[mask] = next
	}
	return out
}

// Filter removes combos touching any of the dead cards and extends the
// range's dead-card conditioning.
func (r *Range) Filter(dead poker.Hand) *Range {
	out := &Range{
		weights: make(map[poker.Hand]float64, len(r.weights)),
		dead:    r.dead | dead,
	}
	for mask, w := range r.weights {
		if mask.Overlaps(dead) {
			continue
		}
		out.weights[mask] = w
	}
	return out
}

// pruneThreshold picks the cutoff for the action that produced the update.
func pruneThreshold(action ActionClass, size int) float64 {
	if action == Fold {
		return pruneFold
	}
	if size < smallRangeSize {
		return pruneSmall
	}
	return pruneDefault
}

// NormalizeAndPrune drops combos below the action-dependent threshold
// and rescales the rest to a probability distribution. A range with no
// remaining mass comes back empty alongside ErrRangeCollapsed.
func (r *Range) NormalizeAndPrune(action ActionClass) (*Range, error) {
	return r.NormalizeAndPruneAt(pruneThreshold(action, len(r.weights)))
}

// NormalizeAndPruneAt is NormalizeAndPrune with a caller-chosen prune
// threshold.
func (r *Range) NormalizeAndPruneAt(tau float64) (*Range, error) {
	out := emptyLike(r)
	total := 0.0
	for mask, w := range r.weights {
		if w < tau {
			continue
		}
		out.weights[mask] = w
		total += w
	}

	if total == 0 {
		return emptyLike(r), ErrRangeCollapsed
	}
	for mask, w := range out.weights {
		out.weights[mask] = w / total
	}
	return out, nil
}
