// Package ev prices the three opponent responses to a hero aggressive action
// and folds them into a single expected value per candidate line. All amounts
// are in big blinds.
package ev

import (
	"fmt"
	"math"
	"sort"

	"github.com/handlens/handlens/response"
)

// weightTol is the drift allowed in a frequency triple before Weighted
// renormalizes it.
const weightTol = 1e-6

// DefaultTau is the EV gap, in big blinds, below which a hero action still
// counts as positive.
const DefaultTau = 0.05

// BranchInput carries the pot geometry and the hero equity estimate for one
// aggressive action.
type BranchInput struct {
	// PotBefore is the pot before hero acts. Zero means nothing to win on
	// the fold branch.
	PotBefore float64
	// BetSize is hero's bet or raise amount.
	BetSize float64
	// RaiseSize is the villain's raise amount on the raise branch.
	RaiseSize float64
	// Equity is hero's showdown equity against the continuing range, in
	// [0,1]. Out-of-range values are clamped.
	Equity float64
	// RakePct and RakeCap shape the rake taken from the fold branch only.
	// RakeCap <= 0 means uncapped.
	RakePct float64
	RakeCap float64
}

// BranchEVs holds the expected value of each opponent response.
type BranchEVs struct {
	Fold  float64
	Call  float64
	Raise float64
}

// Branches prices the three opponent responses. The fold branch wins the pot
// less rake. The call branch realizes equity in the pot plus both bets. The
// raise branch assumes hero continues when that beats folding the bet away.
func Branches(in BranchInput) BranchEVs {
	eq := in.Equity
	if eq < 0 {
		eq = 0
	}
	if eq > 1 {
		eq = 1
	}

	var out BranchEVs
	if in.PotBefore > 0 {
		rake := 0.0
		if in.RakePct > 0 {
			rake = in.PotBefore * in.RakePct
			if in.RakeCap > 0 && rake > in.RakeCap {
				rake = in.RakeCap
			}
		}
		out.Fold = in.PotBefore - rake
	}

	out.Call = eq*(in.PotBefore+2*in.BetSize) - (1-eq)*in.BetSize

	continueEV := eq*(in.PotBefore+in.BetSize+in.RaiseSize) - (1-eq)*in.BetSize
	out.Raise = math.Max(continueEV, -in.BetSize)
	return out
}

// Weighted returns the probability-weighted EV across the three branches.
// A triple whose sum drifts beyond tolerance is renormalized first; a triple
// with no mass at all weighs to zero.
func Weighted(b BranchEVs, t response.FrequencyTriple) float64 {
	pf, pc, pr := t.Fold, t.Call, t.Raise
	sum := pf + pc + pr
	if math.Abs(sum-1) > weightTol {
		if sum <= 0 {
			return 0
		}
		pf, pc, pr = pf/sum, pc/sum, pr/sum
	}
	return pf*b.Fold + pc*b.Call + pr*b.Raise
}

// Candidate is one line hero could have taken, with its composed EV.
type Candidate struct {
	Label string
	EV    float64
	// Meta carries an optional annotation such as the sizing used.
	Meta string
}

// Verdict grades the hero action against the best candidate.
type Verdict int

const (
	VerdictPositive Verdict = iota
	VerdictNeutral
	VerdictNegative
)

var verdictNames = [...]string{"positive", "neutral", "negative"}

func (v Verdict) String() string {
	if v < VerdictPositive || v > VerdictNegative {
		return fmt.Sprintf("verdict(%d)", int(v))
	}
	return verdictNames[v]
}

// Comparison ranks the candidate lines and grades the one hero took.
type Comparison struct {
	// Ranked lists candidates by EV descending, stable on label.
	Ranked []Candidate
	Best   Candidate
	// Delta is Best.EV minus the hero candidate's EV, never negative.
	Delta   float64
	Verdict Verdict
}

// Compare sorts the candidates by EV, finds the best line, and grades hero's
// actual action by its EV gap against the threshold tau. A tau of zero or
// below selects DefaultTau.
func Compare(candidates []Candidate, heroLabel string, tau float64) (Comparison, error) {
	if len(candidates) == 0 {
		return Comparison{}, fmt.Errorf("ev: no candidate actions")
	}
	if tau <= 0 {
		tau = DefaultTau
	}

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].EV != ranked[j].EV {
			return ranked[i].EV > ranked[j].EV
		}
		return ranked[i].Label < ranked[j].Label
	})

	var hero *Candidate
	for i := range ranked {
		if ranked[i].Label == heroLabel {
			hero = &ranked[i]
			break
		}
	}
	if hero == nil {
		return Comparison{}, fmt.Errorf("ev: hero action %q not among candidates", heroLabel)
	}

	delta := ranked[0].EV - hero.EV
	verdict := VerdictNegative
	switch {
	case delta <= tau:
		verdict = VerdictPositive
	case delta <= 2*tau:
		verdict = VerdictNeutral
	}

	return Comparison{
		Ranked:  ranked,
		Best:    ranked[0],
		Delta:   delta,
		Verdict: verdict,
	}, nil
}
