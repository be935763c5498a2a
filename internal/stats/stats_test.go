package stats

import (
	"math"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handlens/handlens/analyzer"
	"github.com/handlens/handlens/ev"
	"github.com/handlens/handlens/history"
)

func rec(st history.Street, v ev.Verdict, delta, totalEV, conf float64) analyzer.ActionAnalysis {
	return analyzer.ActionAnalysis{
		Street:     st,
		Verdict:    v,
		Delta:      delta,
		TotalEV:    totalEV,
		Confidence: conf,
	}
}

func sampleSession() *Session {
	s := &Session{}
	s.Add("h1", rec(history.Flop, ev.VerdictPositive, 0, 2.0, 0.85))
	s.Add("h1", rec(history.Flop, ev.VerdictPositive, 0, 4.0, 0.65))
	s.Add("h2", rec(history.Turn, ev.VerdictNeutral, 0.06, 1.0, 0.65))

	faulted := rec(history.River, ev.VerdictNegative, 0.5, -1.0, 0.45)
	faulted.Faults = []analyzer.Fault{{Kind: analyzer.FaultInvalidCard, Message: "bad card", Recoverable: true}}
	s.Add("h2", faulted)
	return s
}

func TestSessionCounts(t *testing.T) {
	s := sampleSession()

	assert.Equal(t, 2, s.Hands)
	assert.Equal(t, 4, s.Actions)
	assert.Equal(t, 1, s.Faults)
	assert.Equal(t, [3]int{2, 1, 1}, s.Verdicts)
	assert.Equal(t, 2, s.VerdictCount(ev.VerdictPositive))
	assert.Equal(t, 1, s.VerdictCount(ev.VerdictNegative))
	assert.InDelta(t, 0.5, s.VerdictShare(ev.VerdictPositive), 1e-9)
	assert.Zero(t, s.VerdictCount(ev.Verdict(99)))
}

func TestSessionEVMoments(t *testing.T) {
	s := sampleSession()

	assert.InDelta(t, 1.5, s.MeanEV(), 1e-9)
	assert.InDelta(t, 13.0/3.0, s.EVVariance(), 1e-9)
	assert.InDelta(t, math.Sqrt(13.0/3.0), s.EVStdDev(), 1e-9)
	assert.InDelta(t, math.Sqrt(13.0/3.0)/2, s.EVStdError(), 1e-9)

	low, high := s.EVConfidenceInterval95()
	margin := 1.96 * s.EVStdError()
	assert.InDelta(t, 1.5-margin, low, 1e-9)
	assert.InDelta(t, 1.5+margin, high, 1e-9)
}

func TestSessionPercentiles(t *testing.T) {
	s := sampleSession()

	// Sorted EVs are -1, 1, 2, 4.
	assert.InDelta(t, 1.5, s.MedianEV(), 1e-9)
	assert.InDelta(t, -1.0, s.EVPercentile(0), 1e-9)
	assert.InDelta(t, 0.5, s.EVPercentile(0.25), 1e-9)
	assert.InDelta(t, 3.7, s.EVPercentile(0.95), 1e-9)
	assert.InDelta(t, 4.0, s.EVPercentile(1), 1e-9)

	s.Add("h3", rec(history.Preflop, ev.VerdictPositive, 0, 10.0, 0.85))
	assert.InDelta(t, 2.0, s.MedianEV(), 1e-9, "odd count takes the middle value")
}

func TestSessionDeltaAndConfidence(t *testing.T) {
	s := sampleSession()

	assert.InDelta(t, 0.14, s.MeanDelta(), 1e-9)
	assert.InDelta(t, 0.65, s.MeanConfidence(), 1e-9)

	assert.InDelta(t, 3.0, s.StreetMeanEV(history.Flop), 1e-9)
	assert.InDelta(t, 0.0, s.StreetMeanDelta(history.Flop), 1e-9)
	assert.InDelta(t, 0.06, s.StreetMeanDelta(history.Turn), 1e-9)
	assert.InDelta(t, 0.5, s.StreetMeanDelta(history.River), 1e-9)
	assert.Zero(t, s.StreetMeanDelta(history.Preflop), "no preflop actions recorded")
}

func TestSessionSingleAction(t *testing.T) {
	s := &Session{}
	s.Add("h1", rec(history.Flop, ev.VerdictPositive, 0, 1.25, 0.85))

	assert.InDelta(t, 1.25, s.MeanEV(), 1e-9)
	assert.Zero(t, s.EVVariance(), "one sample has no variance")
	assert.Zero(t, s.EVStdError())

	low, high := s.EVConfidenceInterval95()
	assert.InDelta(t, 1.25, low, 1e-9)
	assert.InDelta(t, 1.25, high, 1e-9)
}

func TestSessionEmpty(t *testing.T) {
	s := &Session{}

	assert.Zero(t, s.MeanEV())
	assert.Zero(t, s.MedianEV())
	assert.Zero(t, s.EVPercentile(0.5))
	assert.Zero(t, s.MeanDelta())
	assert.Zero(t, s.MeanConfidence())
	assert.Error(t, s.Validate())
}

func TestSessionAddHand(t *testing.T) {
	s := &Session{}
	s.AddHand(analyzer.HandAnalysis{
		HandID:  "h1",
		Actions: []analyzer.ActionAnalysis{rec(history.Flop, ev.VerdictPositive, 0, 2.0, 0.85)},
	})
	s.AddHand(analyzer.HandAnalysis{HandID: "h2"})
	s.AddHand(analyzer.HandAnalysis{HandID: "h1"})

	assert.Equal(t, 2, s.Hands, "hands count distinct ids, with or without actions")
	assert.Equal(t, 1, s.Actions)
}

func TestSessionValidate(t *testing.T) {
	s := sampleSession()
	require.NoError(t, s.Validate())

	tampered := sampleSession()
	tampered.Actions++
	err := tampered.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EV series length")

	tampered = sampleSession()
	tampered.Verdicts[0]--
	err = tampered.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verdict total")

	tampered = sampleSession()
	tampered.Streets[1].Actions--
	err = tampered.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "street total")

	tampered = sampleSession()
	tampered.SumDelta = -0.25
	err = tampered.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative delta sum")
}

func TestRender(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	s := sampleSession()
	out := s.Render()

	assert.Contains(t, out, "SESSION SUMMARY")
	assert.Contains(t, out, "EV (bb per action)")
	assert.Contains(t, out, "+1.500")
	assert.Contains(t, out, "Verdicts")
	assert.Contains(t, out, "positive")
	assert.Contains(t, out, "2 (50%)")
	assert.Contains(t, out, "0.140 bb")
	assert.Contains(t, out, "By street")
	assert.Contains(t, out, "flop")
	assert.Contains(t, out, "river")
	assert.NotContains(t, out, "preflop", "streets without actions are omitted")

	empty := &Session{}
	assert.Contains(t, empty.Render(), "no analyzed actions")
}
