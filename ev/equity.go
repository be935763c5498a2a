package ev

import (
	"github.com/handlens/handlens/classification"
	"github.com/handlens/handlens/history"
)

// Equity estimates stay inside [equityFloor, equityCeil]; the analysis never
// deals runouts, so nothing is ever certain to win or lose.
const (
	equityFloor = 0.05
	equityCeil  = 0.95
)

// categoryEquity maps a made-hand class to showdown equity against a
// continuing range.
var categoryEquity = map[classification.Category]float64{
	classification.StraightFlush: 0.95,
	classification.Quads:         0.93,
	classification.FullHouse:     0.90,
	classification.Flush:         0.86,
	classification.Straight:      0.82,
	classification.Set:           0.75,
	classification.Trips:         0.71,
	classification.TwoPair:       0.68,
	classification.Overpair:      0.63,
	classification.TopPair:       0.58,
	classification.TwoPairBoard:  0.55,
	classification.SecondPair:    0.48,
	classification.Pair:          0.42,
	classification.PairBoard:     0.34,
	classification.Air:           0.22,
}

// drawEquityBonus is the added equity for holding a draw with two cards to
// come. Only the strongest live draw counts; the flags never stack, since
// ComboDraw already prices combined outs.
var drawEquityBonus = map[classification.DrawType]float64{
	classification.ComboDraw:     0.30,
	classification.FlushDraw:     0.18,
	classification.OESD:          0.16,
	classification.DoubleGutshot: 0.14,
	classification.Gutshot:       0.08,
	classification.WheelDraw:     0.06,
}

// Equity estimates hero showdown equity from the made-hand category plus the
// best live draw. The draw bonus applies in full on the flop, halved on the
// turn, and not at all on the river.
func Equity(cat classification.Category, draws classification.DrawSet, street history.Street) float64 {
	eq := categoryEquity[cat]
	if !draws.Empty() && street != history.River {
		var bonus float64
		for dt, b := range drawEquityBonus {
			if draws.Has(dt) && b > bonus {
				bonus = b
			}
		}
		if street == history.Turn {
			bonus *= 0.5
		}
		eq += bonus
	}
	if eq < equityFloor {
		return equityFloor
	}
	if eq > equityCeil {
		return equityCeil
	}
	return eq
}
