// Package response estimates how an opponent distributes their continuing
// range over fold, call, and raise when facing a bet, and splits a weighted
// range into the three matching sub-ranges. Estimates flow through a fixed
// staged pipeline so every adjustment is visible in the output trace.
package response

import (
	"fmt"
	"math"

	"github.com/handlens/handlens/history"
	"github.com/handlens/handlens/ranges"
)

// Sizing buckets a bet by the price it lays the responder.
type Sizing int

const (
	SizingSmall Sizing = iota
	SizingMedium
	SizingLarge
	SizingAllIn
)

var sizingNames = [...]string{"small", "medium", "large", "all-in"}

func (s Sizing) String() string {
	if s < 0 || int(s) >= len(sizingNames) {
		return "unknown"
	}
	return sizingNames[s]
}

// SizingForPrice buckets a bet by the responder's price ratio, call divided
// by pot plus call. Prices run from near 0 (tiny bets) toward 0.5 (huge
// overbets). A bet committing the bettor's stack is all-in regardless of
// price.
func SizingForPrice(ratio float64, allIn bool) Sizing {
	switch {
	case allIn:
		return SizingAllIn
	case ratio < 0.26:
		return SizingSmall
	case ratio < 0.36:
		return SizingMedium
	default:
		return SizingLarge
	}
}

// Position is the responder's position relative to the hero on the street
// under analysis.
type Position int

const (
	InPosition Position = iota
	OutOfPosition
)

func (p Position) String() string {
	if p == OutOfPosition {
		return "out_of_position"
	}
	return "in_position"
}

// ConfidenceLevel grades how much the independent estimates agreed.
type ConfidenceLevel int

const (
	ConfidenceLow ConfidenceLevel = iota
	ConfidenceMedium
	ConfidenceHigh
)

var confidenceNames = [...]string{"low", "medium", "high"}

func (c ConfidenceLevel) String() string {
	if c < 0 || int(c) >= len(confidenceNames) {
		return "unknown"
	}
	return confidenceNames[c]
}

// PotOdds carries the responder's price. Ratio is call / (pot + call).
// Implied stretches the ratio for future streets; StackToPot is the
// effective stack over the current pot.
type PotOdds struct {
	Ratio      float64
	Implied    float64
	StackToPot float64
}

// ActionContext describes the bet being responded to.
type ActionContext struct {
	Street   history.Street
	Sizing   Sizing
	Position Position

	ContinuationBet bool
	ValueBet        bool
	Bluff           bool
}

// ComponentConfidence is the per-component confidence of a triple.
type ComponentConfidence struct {
	Fold  float64
	Call  float64
	Raise float64
}

// FrequencyTriple is the estimated response distribution. Fold, Call, and
// Raise are probabilities summing to 1.
type FrequencyTriple struct {
	Fold  float64
	Call  float64
	Raise float64

	Confidence ComponentConfidence
	Level      ConfidenceLevel
	Trace      []string
}

// Sum returns Fold + Call + Raise.
func (t FrequencyTriple) Sum() float64 {
	return t.Fold + t.Call + t.Raise
}

// Normalized returns a copy scaled so the components sum to exactly 1.
// A degenerate triple comes back as the neutral prior.
func (t FrequencyTriple) Normalized() FrequencyTriple {
	s := t.Sum()
	if s <= 0 || math.IsNaN(s) {
		n := NeutralTriple()
		n.Trace = append(t.Trace, "normalize: degenerate triple, reverting to neutral prior")
		return n
	}
	t.Fold /= s
	t.Call /= s
	t.Raise /= s
	return t
}

// Neutral prior used when inputs are missing or normalization fails.
const (
	neutralFold  = 0.6
	neutralCall  = 0.3
	neutralRaise = 0.1
)

// NeutralTriple is the fold-biased fallback distribution with low
// confidence.
func NeutralTriple() FrequencyTriple {
	return FrequencyTriple{
		Fold:       neutralFold,
		Call:       neutralCall,
		Raise:      neutralRaise,
		Confidence: confidenceFor(ConfidenceLow),
		Level:      ConfidenceLow,
	}
}

// DefaultBaseFold is the sizing-derived starting fold frequency handed to
// the estimator when no model supplies a better one.
func DefaultBaseFold(s Sizing) float64 {
	switch s {
	case SizingSmall:
		return 0.40
	case SizingLarge:
		return 0.62
	case SizingAllIn:
		return 0.66
	default:
		return 0.55
	}
}

// Stage q1: additive adjustments combined into one factor on the base fold.
var q1SizingAdj = map[Sizing]float64{
	SizingSmall:  -0.15,
	SizingMedium: 0,
	SizingLarge:  0.10,
	SizingAllIn:  0.20,
}

var q1CategoryAdj = map[ranges.StrengthCategory]float64{
	ranges.VeryStrong:   -0.30,
	ranges.StrongRange:  -0.20,
	ranges.MediumStrong: -0.10,
	ranges.MediumRange:  0,
	ranges.MediumWeak:   0.10,
	ranges.WeakRange:    0.20,
	ranges.Balanced:     0,
}

var q1StreetAdj = map[history.Street]float64{
	history.Preflop: 0.05,
	history.Flop:    0,
	history.Turn:    0.05,
	history.River:   0.10,
}

// Drawing ranges continue more often; the factor shrinks with draw density.
const q1DrawCoef = 0.60

// Stage q3: raise seeds by range strength, then multiplicative damping.
var raiseBase = map[ranges.StrengthCategory]float64{
	ranges.VeryStrong:   0.25,
	ranges.StrongRange:  0.15,
	ranges.MediumStrong: 0.12,
	ranges.MediumRange:  0.10,
	ranges.MediumWeak:   0.08,
	ranges.WeakRange:    0.05,
	ranges.Balanced:     0.10,
}

var streetRaiseRate = map[history.Street]float64{
	history.Preflop: 1.2,
	history.Flop:    1.0,
	history.Turn:    0.8,
	history.River:   0.6,
}

var sizingRaiseRate = map[Sizing]float64{
	SizingSmall:  1.3,
	SizingMedium: 1.0,
	SizingLarge:  0.7,
	SizingAllIn:  0.3,
}

const raiseCap = 0.5

// Stage q3': independent call estimate adjustments.
var q3pCategoryAdj = map[ranges.StrengthCategory]float64{
	ranges.VeryStrong:   0.20,
	ranges.StrongRange:  0.10,
	ranges.MediumStrong: 0.05,
	ranges.MediumRange:  0,
	ranges.MediumWeak:   -0.10,
	ranges.WeakRange:    -0.20,
	ranges.Balanced:     0,
}

var q3pStreetAdj = map[history.Street]float64{
	history.Preflop: 0.05,
	history.Flop:    0,
	history.Turn:    0,
	history.River:   -0.05,
}

var q3pSizingAdj = map[Sizing]float64{
	SizingSmall:  0.10,
	SizingMedium: 0,
	SizingLarge:  -0.10,
	SizingAllIn:  -0.20,
}

// Stage q6: blend weights toward the neutral prior by confidence level.
var blendWeight = map[ConfidenceLevel]float64{
	ConfidenceHigh:   0.05,
	ConfidenceMedium: 0.10,
	ConfidenceLow:    0.50,
}

// callFromOdds is the piecewise direct call estimate by price ratio.
func callFromOdds(ratio float64) float64 {
	switch {
	case ratio < 0.15:
		return 0.85
	case ratio < 0.28:
		return 0.60
	case ratio < 0.38:
		return 0.42
	case ratio <= 0.45:
		return 0.28
	default:
		return 0.15
	}
}

// EstimateFrequencies runs the staged response pipeline: aggregate
// adjustment factors, apply them to the base fold, derive a raise and call,
// cross-check the call against a direct pot-odds estimate, normalize, and
// blend toward the neutral prior by confidence. Preflop the made-hand
// category of a range is not meaningful, so range-strength adjustments are
// suspended there and the estimate leans on sizing and price.
//
// Missing inputs (an empty summary, or a NaN price) fall back to the
// neutral prior with low confidence.
func EstimateFrequencies(sum ranges.Strength, odds PotOdds, actx ActionContext, baseFold float64) FrequencyTriple {
	if sum.RangeDensity == 0 || math.IsNaN(odds.Ratio) || math.IsNaN(baseFold) {
		n := NeutralTriple()
		n.Trace = []string{"inputs missing, using neutral prior"}
		return n
	}

	trace := make([]string, 0, 8)
	preflop := actx.Street == history.Preflop

	// q1: combined adjustment factor.
	catAdj := q1CategoryAdj[sum.Category]
	if preflop {
		catAdj = 0
		trace = append(trace, "q1: preflop, range category neutralized")
	}
	posAdj := -0.05
	if actx.Position == OutOfPosition {
		posAdj = 0.05
	}
	adj := q1SizingAdj[actx.Sizing] + catAdj + q1StreetAdj[actx.Street] + posAdj - q1DrawCoef*sum.DrawingPct
	if actx.ContinuationBet {
		adj += 0.05
	}
	factor := clamp(1+adj, 0.5, 1.5)
	clampedFactor := factor != 1+adj
	trace = append(trace, fmt.Sprintf("q1: factor %.3f (sizing %s, category %s, street %s, %s, drawing %.2f)",
		factor, actx.Sizing, sum.Category, actx.Street, actx.Position, sum.DrawingPct))

	// q2: apply to base fold.
	fold := clamp(baseFold*factor, 0, 1)
	clampedFold := fold != baseFold*factor
	trace = append(trace, fmt.Sprintf("q2: fold %.3f from base %.3f", fold, baseFold))

	// q3: raise seed and derived call.
	base := raiseBase[sum.Category]
	if preflop {
		base = raiseBase[ranges.MediumRange]
	}
	oddsMult := 1.0
	if odds.Ratio < 0.20 {
		oddsMult = 1.5
	} else if odds.Ratio > 0.40 {
		oddsMult = 0.5
	}
	raise := base * (1 + sum.DrawingPct) * oddsMult * streetRaiseRate[actx.Street] * sizingRaiseRate[actx.Sizing]
	if raise > raiseCap {
		raise = raiseCap
	}
	derivedCall := 1 - fold - raise
	negativeCall := derivedCall < 0
	if negativeCall {
		raise = math.Max(0, 1-fold)
		derivedCall = 0
		trace = append(trace, "q3: call went negative, raise shrunk")
	}
	trace = append(trace, fmt.Sprintf("q3: raise %.3f, derived call %.3f", raise, derivedCall))

	// q3': independent call from price.
	indep := callFromOdds(odds.Ratio)
	if !preflop {
		indep += q3pCategoryAdj[sum.Category]
	}
	indep += q3pStreetAdj[actx.Street] + q3pSizingAdj[actx.Sizing] - posAdj
	if odds.StackToPot > 0 && odds.StackToPot < 1 {
		indep += 0.10
	} else if odds.StackToPot > 10 {
		indep -= 0.05
	}
	indep = clamp(indep, 0.05, 0.95)
	delta := math.Abs(derivedCall - indep)
	level := ConfidenceHigh
	switch {
	case delta > 0.20:
		level = ConfidenceLow
	case delta > 0.10:
		level = ConfidenceMedium
	}
	if clampedFactor || clampedFold || negativeCall {
		if level > ConfidenceLow {
			level--
		}
	}
	trace = append(trace, fmt.Sprintf("q3': independent call %.3f, delta %.3f, consistency %s", indep, delta, level))

	// q4: reconcile the two call estimates.
	call := 0.5 * (derivedCall + indep)

	// q5: exact normalization.
	total := fold + call + raise
	if total <= 0 || math.IsNaN(total) {
		n := NeutralTriple()
		n.Trace = append(trace, "q5: normalization failed, using neutral prior")
		return n
	}
	fold /= total
	call /= total
	raise /= total
	trace = append(trace, fmt.Sprintf("q5: normalized over %.3f", total))

	// q6: confidence blend toward the neutral prior.
	w := blendWeight[level]
	fold = (1-w)*fold + w*neutralFold
	call = (1-w)*call + w*neutralCall
	raise = (1-w)*raise + w*neutralRaise
	s := fold + call + raise
	fold, call, raise = fold/s, call/s, raise/s
	trace = append(trace, fmt.Sprintf("q6: blended %.2f toward neutral, confidence %s", w, level))

	if actx.ValueBet {
		trace = append(trace, "context: flagged value bet")
	}
	if actx.Bluff {
		trace = append(trace, "context: flagged bluff")
	}

	return FrequencyTriple{
		Fold:       fold,
		Call:       call,
		Raise:      raise,
		Confidence: confidenceFor(level),
		Level:      level,
		Trace:      trace,
	}
}

// confidenceFor expands a level into per-component confidence. Raise
// frequencies are the least observable, folds the most.
func confidenceFor(level ConfidenceLevel) ComponentConfidence {
	base := 0.45
	switch level {
	case ConfidenceMedium:
		base = 0.65
	case ConfidenceHigh:
		base = 0.85
	}
	return ComponentConfidence{
		Fold:  clamp(base+0.05, 0.05, 0.95),
		Call:  base,
		Raise: clamp(base-0.05, 0.05, 0.95),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
