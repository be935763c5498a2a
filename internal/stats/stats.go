// Package stats aggregates analysis records across a batch of hands into
// session-level accuracy and EV summaries.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/handlens/handlens/analyzer"
	"github.com/handlens/handlens/ev"
	"github.com/handlens/handlens/history"
)

// StreetStats tracks aggregates for the actions taken on one street.
type StreetStats struct {
	Actions  int
	SumDelta float64
	SumEV    float64
}

// Session tracks comprehensive statistics over analyzed hero actions.
// The zero value is ready to use.
type Session struct {
	Hands   int // distinct hands seen
	Actions int // hero actions analyzed

	SumEV  float64
	SumEV2 float64   // Sum of squares for variance calculation
	EVs    []float64 // Store all values for median/percentile calculation

	SumDelta      float64 // EV given up against the best line, never negative
	SumConfidence float64
	Faults        int

	// Verdict and street analytics
	Verdicts [3]int         // Indexed by ev.Verdict
	Streets  [4]StreetStats // Indexed by history.Street

	seen map[string]struct{}
}

// MeanEV returns the arithmetic mean of per-action total EV in big blinds.
func (s *Session) MeanEV() float64 {
	if s.Actions == 0 {
		return 0
	}
	return s.SumEV / float64(s.Actions)
}

// EVVariance returns the sample variance of per-action total EV.
func (s *Session) EVVariance() float64 {
	if s.Actions < 2 {
		return 0
	}
	mean := s.MeanEV()
	return (s.SumEV2 - float64(s.Actions)*mean*mean) / float64(s.Actions-1)
}

// EVStdDev returns the sample standard deviation of per-action total EV.
func (s *Session) EVStdDev() float64 {
	return math.Sqrt(s.EVVariance())
}

// EVStdError returns the standard error of the mean EV.
func (s *Session) EVStdError() float64 {
	if s.Actions == 0 {
		return 0
	}
	return s.EVStdDev() / math.Sqrt(float64(s.Actions))
}

// EVConfidenceInterval95 returns the 95% confidence interval for the mean EV.
func (s *Session) EVConfidenceInterval95() (float64, float64) {
	mean := s.MeanEV()
	se := s.EVStdError()
	margin := 1.96 * se // 95% confidence
	return mean - margin, mean + margin
}

// Add incorporates one analyzed hero action into the session.
func (s *Session) Add(handID string, rec analyzer.ActionAnalysis) {
	s.markHand(handID)

	total := rec.TotalEV
	s.Actions++
	s.SumEV += total
	s.SumEV2 += total * total
	s.EVs = append(s.EVs, total)

	s.SumDelta += rec.Delta
	s.SumConfidence += rec.Confidence
	s.Faults += len(rec.Faults)

	if v := int(rec.Verdict); v >= 0 && v < len(s.Verdicts) {
		s.Verdicts[v]++
	}
	if st := int(rec.Street); st >= 0 && st < len(s.Streets) {
		s.Streets[st].Actions++
		s.Streets[st].SumDelta += rec.Delta
		s.Streets[st].SumEV += total
	}
}

// AddHand incorporates every analyzed action of one hand. Hands without a
// voluntary hero action still count toward the hand total.
func (s *Session) AddHand(ha analyzer.HandAnalysis) {
	s.markHand(ha.HandID)
	for _, rec := range ha.Actions {
		s.Add(ha.HandID, rec)
	}
}

func (s *Session) markHand(id string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.Hands++
}

// MedianEV returns the median per-action total EV.
func (s *Session) MedianEV() float64 {
	if len(s.EVs) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.EVs))
	copy(sorted, s.EVs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// EVPercentile returns the per-action EV at the given percentile (0.0 to 1.0).
func (s *Session) EVPercentile(p float64) float64 {
	if len(s.EVs) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.EVs))
	copy(sorted, s.EVs)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// MeanDelta returns the mean EV given up per action against the best line.
func (s *Session) MeanDelta() float64 {
	if s.Actions == 0 {
		return 0
	}
	return s.SumDelta / float64(s.Actions)
}

// MeanConfidence returns the mean confidence across analyzed actions.
func (s *Session) MeanConfidence() float64 {
	if s.Actions == 0 {
		return 0
	}
	return s.SumConfidence / float64(s.Actions)
}

// VerdictCount returns how many actions received the given verdict.
func (s *Session) VerdictCount(v ev.Verdict) int {
	if int(v) < 0 || int(v) >= len(s.Verdicts) {
		return 0
	}
	return s.Verdicts[v]
}

// VerdictShare returns the fraction of actions with the given verdict.
func (s *Session) VerdictShare(v ev.Verdict) float64 {
	if s.Actions == 0 {
		return 0
	}
	return float64(s.VerdictCount(v)) / float64(s.Actions)
}

// StreetMeanDelta returns the mean delta for actions on one street.
func (s *Session) StreetMeanDelta(st history.Street) float64 {
	if int(st) < 0 || int(st) >= len(s.Streets) {
		return 0
	}
	b := s.Streets[st]
	if b.Actions == 0 {
		return 0
	}
	return b.SumDelta / float64(b.Actions)
}

// StreetMeanEV returns the mean total EV for actions on one street.
func (s *Session) StreetMeanEV(st history.Street) float64 {
	if int(st) < 0 || int(st) >= len(s.Streets) {
		return 0
	}
	b := s.Streets[st]
	if b.Actions == 0 {
		return 0
	}
	return b.SumEV / float64(b.Actions)
}

// Validate performs comprehensive validation of the session accounting.
func (s *Session) Validate() error {
	if s.Actions <= 0 {
		return fmt.Errorf("invalid action count: %d", s.Actions)
	}
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hand count: %d", s.Hands)
	}
	if len(s.EVs) != s.Actions {
		return fmt.Errorf("EV series length (%d) does not match action count (%d)",
			len(s.EVs), s.Actions)
	}

	verdictTotal := 0
	for _, n := range s.Verdicts {
		verdictTotal += n
	}
	if verdictTotal != s.Actions {
		return fmt.Errorf("verdict total (%d) does not match action count (%d)",
			verdictTotal, s.Actions)
	}

	streetTotal := 0
	for _, b := range s.Streets {
		streetTotal += b.Actions
	}
	if streetTotal != s.Actions {
		return fmt.Errorf("street total (%d) does not match action count (%d)",
			streetTotal, s.Actions)
	}

	if s.SumDelta < 0 {
		return fmt.Errorf("negative delta sum: %.6f", s.SumDelta)
	}
	return nil
}
