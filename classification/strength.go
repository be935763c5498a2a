package classification

// categoryStrength is the base strength of each made-hand class.
var categoryStrength = map[Category]float64{
	StraightFlush: 1.00,
	Quads:         0.98,
	FullHouse:     0.95,
	Flush:         0.90,
	Straight:      0.85,
	Set:           0.82,
	Trips:         0.78,
	TwoPair:       0.75,
	Overpair:      0.70,
	TopPair:       0.65,
	TwoPairBoard:  0.60,
	SecondPair:    0.55,
	Pair:          0.45,
	PairBoard:     0.35,
	Air:           0.20,
}

// drawBonus is added on top of the base strength per active flag.
var drawBonus = map[DrawType]float64{
	ComboDraw:     0.15,
	FlushDraw:     0.10,
	OESD:          0.08,
	DoubleGutshot: 0.08,
	Gutshot:       0.05,
	WheelDraw:     0.05,
}

// Strength scores a combo in [0,1] from its category and draws.
func Strength(cat Category, draws DrawSet) float64 {
	s := categoryStrength[cat]
	for _, d := range draws.Types() {
		s += drawBonus[d]
	}
	if s > 1.0 {
		s = 1.0
	}
	return s
}
