package ranges

import (
	"sort"

	"github.com/handlens/handlens/classification"
	"github.com/handlens/handlens/poker"
)

// StrengthCategory is the one-word label of a range summary.
type StrengthCategory int

const (
	VeryStrong StrengthCategory = iota
	StrongRange
	MediumStrong
	MediumRange
	MediumWeak
	WeakRange
	Balanced
)

var strengthCategoryNames = [...]string{
	"very_strong",
	"strong",
	"medium_strong",
	"medium",
	"medium_weak",
	"weak",
	"balanced",
}

func (s StrengthCategory) String() string {
	if s < 0 || int(s) >= len(strengthCategoryNames) {
		return "unknown"
	}
	return strengthCategoryNames[s]
}

// ComboStrength carries one combo's evaluation on a board.
type ComboStrength struct {
	Combo    poker.Combo
	Key      string
	Weight   float64
	Strength float64
	Category classification.Category
	Draws    classification.DrawSet
}

// Strength summarizes a weighted range on a board.
type Strength struct {
	AverageStrength  float64
	StrengthVariance float64

	// Distribution buckets by strength cutoffs 0.8, 0.6, 0.4, 0.2,
	// strongest first, as weighted fractions.
	Distribution [5]float64

	StrongPct  float64 // strength >= 0.7
	MediumPct  float64 // 0.4 <= strength < 0.7
	WeakPct    float64 // strength < 0.4
	DrawingPct float64 // any draw flag

	Top    []ComboStrength
	Bottom []ComboStrength

	RangeDensity     float64
	DrawingPotential float64

	NuttedCount       int
	ValueCount        int
	BluffCatcherCount int

	Category StrengthCategory
	Texture  classification.Texture
}

// EvaluateRange scores every combo on the board, strongest first.
// Equal strengths fall back to mask order so the result is stable.
func EvaluateRange(r *Range, board poker.Hand) []ComboStrength {
	entries := r.Entries()
	combos := make([]ComboStrength, 0, len(entries))
	for _, e := range entries {
		cat := classification.Categorize(e.Combo, board)
		draws := classification.DetectDraws(e.Combo, board)
		combos = append(combos, ComboStrength{
			Combo:    e.Combo,
			Key:      e.Combo.Key(),
			Weight:   e.Weight,
			Strength: classification.Strength(cat, draws),
			Category: cat,
			Draws:    draws,
		})
	}
	sort.SliceStable(combos, func(i, j int) bool {
		if combos[i].Strength != combos[j].Strength {
			return combos[i].Strength > combos[j].Strength
		}
		return combos[i].Combo.Mask() < combos[j].Combo.Mask()
	})
	return combos
}

// nuttedCategory is the made-hand set that plays for stacks.
func nuttedCategory(cat classification.Category) bool {
	switch cat {
	case classification.StraightFlush, classification.Quads,
		classification.FullHouse, classification.Flush, classification.Straight:
		return true
	}
	return false
}

// valueCategory is the broader set counted as value when strong enough.
func valueCategory(cat classification.Category) bool {
	if nuttedCategory(cat) {
		return true
	}
	switch cat {
	case classification.Set, classification.Trips, classification.TwoPair,
		classification.Overpair, classification.TopPair:
		return true
	}
	return false
}

func bluffCatcherCategory(cat classification.Category) bool {
	switch cat {
	case classification.TopPair, classification.SecondPair, classification.Pair:
		return true
	}
	return false
}

// Summarize produces the strength summary of a range on a board. topN
// bounds the Top and Bottom lists.
func Summarize(r *Range, board poker.Hand, topN int) Strength {
	combos := EvaluateRange(r, board)

	s := Strength{
		RangeDensity: float64(len(combos)) / 1326.0,
		Texture:      classification.BoardTexture(board),
		Category:     WeakRange,
	}
	if len(combos) == 0 {
		return s
	}

	total := 0.0
	for _, c := range combos {
		total += c.Weight
	}
	if total == 0 {
		return s
	}

	mean := 0.0
	for _, c := range combos {
		frac := c.Weight / total
		mean += frac * c.Strength

		switch {
		case c.Strength >= 0.8:
			s.Distribution[0] += frac
		case c.Strength >= 0.6:
			s.Distribution[1] += frac
		case c.Strength >= 0.4:
			s.Distribution[2] += frac
		case c.Strength >= 0.2:
			s.Distribution[3] += frac
		default:
			s.Distribution[4] += frac
		}

		switch {
		case c.Strength >= 0.7:
			s.StrongPct += frac
		case c.Strength >= 0.4:
			s.MediumPct += frac
		default:
			s.WeakPct += frac
		}

		if !c.Draws.Empty() {
			s.DrawingPct += frac
			s.DrawingPotential += c.Weight
		}

		if nuttedCategory(c.Category) ||
			(c.Category == classification.Set && c.Draws.Has(classification.ComboDraw)) {
			s.NuttedCount++
		}
		if c.Strength >= 0.7 && valueCategory(c.Category) {
			s.ValueCount++
		}
		if c.Strength >= 0.4 && c.Strength < 0.7 && bluffCatcherCategory(c.Category) {
			s.BluffCatcherCount++
		}
	}
	s.AverageStrength = mean

	variance := 0.0
	for _, c := range combos {
		d := c.Strength - mean
		variance += (c.Weight / total) * d * d
	}
	s.StrengthVariance = variance

	if topN <= 0 {
		topN = 10
	}
	if topN > len(combos) {
		topN = len(combos)
	}
	s.Top = append([]ComboStrength(nil), combos[:topN]...)
	bottom := append([]ComboStrength(nil), combos[len(combos)-topN:]...)
	// Bottom reads weakest first.
	for i, j := 0, len(bottom)-1; i < j; i, j = i+1, j-1 {
		bottom[i], bottom[j] = bottom[j], bottom[i]
	}
	s.Bottom = bottom

	s.Category = labelRange(mean, s.StrongPct, s.WeakPct)
	return s
}

// labelRange names the range. A polar range with heavy mass on both
// ends reads balanced regardless of its mean.
func labelRange(mean, strongPct, weakPct float64) StrengthCategory {
	if strongPct >= 0.25 && weakPct >= 0.25 {
		return Balanced
	}
	switch {
	case mean >= 0.75:
		return VeryStrong
	case mean >= 0.65:
		return StrongRange
	case mean >= 0.55:
		return MediumStrong
	case mean >= 0.45:
		return MediumRange
	case mean >= 0.35:
		return MediumWeak
	default:
		return WeakRange
	}
}
