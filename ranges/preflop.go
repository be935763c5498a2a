// Package ranges models weighted opponent ranges: the preflop prior,
// the action-driven update engine, and the strength summary.
package ranges

import (
	"github.com/handlens/handlens/poker"
)

// pairWeights covers AA down to 22, indexed by rank (0=2).
var pairWeights = [13]float64{
	0.55, // 22
	0.58, // 33
	0.60, // 44
	0.62, // 55
	0.65, // 66
	0.68, // 77
	0.72, // 88
	0.75, // 99
	0.80, // TT
	0.85, // JJ
	0.90, // QQ
	0.95, // KK
	1.00, // AA
}

// pinnedWeights fixes the broadway aces, the ace bands and the suited
// and offsuit connectors. Everything else comes from the tier formula.
var pinnedWeights = map[string]float64{
	"AKs": 0.98, "AKo": 0.95,
	"AQs": 0.93, "AQo": 0.90,
	"AJs": 0.90, "AJo": 0.85,
	"ATs": 0.88, "ATo": 0.82,

	"A9s": 0.90, "A8s": 0.87, "A7s": 0.84, "A6s": 0.81,
	"A5s": 0.78, "A4s": 0.75, "A3s": 0.72, "A2s": 0.70,

	"A9o": 0.80, "A8o": 0.77, "A7o": 0.74, "A6o": 0.71,
	"A5o": 0.68, "A4o": 0.65, "A3o": 0.62, "A2o": 0.60,

	"KQs": 0.85, "KQo": 0.80,
	"QJs": 0.78, "QJo": 0.70,
	"JTs": 0.75, "JTo": 0.67,
	"T9s": 0.70, "T9o": 0.62,
	"98s": 0.65, "98o": 0.57,
	"87s": 0.60, "87o": 0.52,
	"76s": 0.55, "76o": 0.47,
	"65s": 0.50, "65o": 0.42,
	"54s": 0.45, "54o": 0.37,
}

// tierBase is the unsuited base weight per high rank for combos the
// pinned table does not cover, indexed by rank (0=2).
var tierBase = [13]float64{
	0.16, // 2 high
	0.18, // 3 high
	0.21, // 4 high
	0.24, // 5 high
	0.27, // 6 high
	0.30, // 7 high
	0.34, // 8 high
	0.38, // 9 high
	0.42, // T high
	0.46, // J high
	0.50, // Q high
	0.55, // K high
	0.00, // ace combos are all pinned
}

const (
	kickerStep  = 0.02
	suitedBonus = 0.08
	floorWeight = 0.14
	capWeight   = 1.00
)

// classWeights maps every 169-class key to its prior weight, built once.
var classWeights = buildClassWeights()

func buildClassWeights() map[string]float64 {
	weights := make(map[string]float64, 169)

	for hi := uint8(0); hi < 13; hi++ {
		weights[pairKey(hi)] = pairWeights[hi]
		for lo := uint8(0); lo < hi; lo++ {
			for _, suited := range []bool{true, false} {
				key := classKey(hi, lo, suited)
				if w, ok := pinnedWeights[key]; ok {
					weights[key] = w
					continue
				}
				w := tierBase[hi] + kickerStep*float64(lo)
				if suited {
					w += suitedBonus
				}
				if w < floorWeight {
					w = floorWeight
				}
				if w > capWeight {
					w = capWeight
				}
				weights[key] = w
			}
		}
	}
	return weights
}

func pairKey(rank uint8) string {
	ch := poker.RankChar(rank)
	return string([]byte{ch, ch})
}

func classKey(hi, lo uint8, suited bool) string {
	mod := byte('o')
	if suited {
		mod = 's'
	}
	return string([]byte{poker.RankChar(hi), poker.RankChar(lo), mod})
}

// PriorWeight returns the preflop prior for a combo.
func PriorWeight(c poker.Combo) float64 {
	return classWeights[c.Key()]
}

// PriorClassWeight returns the prior for a 169-class key, or 0 for an
// unknown key.
func PriorClassWeight(key string) float64 {
	return classWeights[key]
}

// PriorFingerprint sums the prior over all 1326 combos. The constant is
// pinned by a test so the table cannot drift silently.
func PriorFingerprint() float64 {
	sum := 0.0
	for _, c := range poker.Enumerate(0) {
		sum += PriorWeight(c)
	}
	return sum
}
