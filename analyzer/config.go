package analyzer

import "github.com/handlens/handlens/ev"

// Config tunes the analysis pipeline. All fields have workable defaults;
// start from DefaultConfig and override.
type Config struct {
	// RakePct and RakeCap shape the rake taken on the opponent-folds
	// branch. RakeCap <= 0 means uncapped.
	RakePct float64
	RakeCap float64

	// Tau is the EV gap, in big blinds, under which a hero action still
	// grades positive.
	Tau float64

	// PruneTau overrides the range engine's prune threshold when > 0.
	PruneTau float64

	// Neutral prior used when frequency normalization drifts beyond
	// tolerance.
	NeutralFold  float64
	NeutralCall  float64
	NeutralRaise float64

	// TopN bounds the reported combo entries per range.
	TopN int

	// SeedSalt perturbs the deterministic split allocation.
	SeedSalt string
}

// DefaultConfig returns the stock configuration: no rake, the standard
// grading threshold, and the fold-biased neutral prior.
func DefaultConfig() Config {
	return Config{
		Tau:          ev.DefaultTau,
		NeutralFold:  0.6,
		NeutralCall:  0.3,
		NeutralRaise: 0.1,
		TopN:         10,
	}
}
