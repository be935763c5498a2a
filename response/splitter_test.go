package response

import (
	"math"
	"reflect"
	"testing"

	"github.com/handlens/handlens/classification"
	"github.com/handlens/handlens/poker"
	"github.com/handlens/handlens/ranges"
)

func priorRange(t *testing.T, board string) (*ranges.Range, poker.Hand) {
	t.Helper()
	b := mustBoard(t, board)
	return ranges.NewPreflopRange(b), b
}

func seed() SplitSeed {
	return SplitSeed{HandID: "h1", ActionID: "a1"}
}

func TestSplitBucketsAreDisjointAndCoverRange(t *testing.T) {
	r, board := priorRange(t, "2s 7h Kd")
	target := FrequencyTriple{Fold: 0.5, Call: 0.3, Raise: 0.2}
	split := SplitRange(r, board, target, seed())

	seen := make(map[string]Bucket)
	for _, b := range []Bucket{BucketRaise, BucketCall, BucketFold} {
		for _, a := range split.Bucket(b) {
			if prev, dup := seen[a.Key]; dup {
				t.Fatalf("key %s in both %v and %v", a.Key, prev, b)
			}
			seen[a.Key] = b
		}
	}
	want := make(map[string]bool)
	for _, e := range r.Entries() {
		want[e.Combo.Key()] = true
	}
	if len(seen) != len(want) {
		t.Fatalf("split covers %d keys, range has %d", len(seen), len(want))
	}
	for k := range want {
		if _, ok := seen[k]; !ok {
			t.Fatalf("key %s missing from split", k)
		}
	}
}

func TestSplitMassWithinTolerance(t *testing.T) {
	r, board := priorRange(t, "2s 7h Kd")
	target := FrequencyTriple{Fold: 0.5, Call: 0.3, Raise: 0.2}
	split := SplitRange(r, board, target, seed())

	total := split.Total()
	wants := map[Bucket]float64{
		BucketFold:  0.5 * total,
		BucketCall:  0.3 * total,
		BucketRaise: 0.2 * total,
	}
	for b, tgt := range wants {
		tol := splitTolerance(tgt, total)
		if diff := math.Abs(split.Mass(b) - tgt); diff > tol {
			t.Errorf("%v mass %.2f off target %.2f by %.2f, tolerance %.2f", b, split.Mass(b), tgt, diff, tol)
		}
	}
}

func TestSplitConservesWeight(t *testing.T) {
	r, board := priorRange(t, "9s Ts Js")
	target := FrequencyTriple{Fold: 0.4, Call: 0.4, Raise: 0.2}
	split := SplitRange(r, board, target, seed())
	if diff := math.Abs(split.Total() - r.TotalWeight()); diff > 1e-6 {
		t.Errorf("split total %.6f differs from range total %.6f", split.Total(), r.TotalWeight())
	}
}

func TestSplitDeterministic(t *testing.T) {
	r, board := priorRange(t, "9s Ts Js")
	target := FrequencyTriple{Fold: 0.4, Call: 0.4, Raise: 0.2}
	a := SplitRange(r, board, target, seed())
	b := SplitRange(r, board, target, seed())
	if !reflect.DeepEqual(a, b) {
		t.Error("identical seeds produced different splits")
	}
}

func TestSplitWetBoardRoutesComboDraws(t *testing.T) {
	r, board := priorRange(t, "9s Ts Js")
	target := FrequencyTriple{Fold: 0.41, Call: 0.42, Raise: 0.17}
	split := SplitRange(r, board, target, seed())

	mass := map[Bucket]float64{}
	for _, b := range []Bucket{BucketRaise, BucketCall, BucketFold} {
		for _, a := range split.Bucket(b) {
			if a.Draws.Has(classification.ComboDraw) {
				mass[b] += a.Weight
			}
		}
	}
	totalCD := mass[BucketRaise] + mass[BucketCall] + mass[BucketFold]
	if totalCD == 0 {
		t.Fatal("no combo draws found on a wet board")
	}
	callShare := mass[BucketCall] / totalCD
	if callShare < 0.5 {
		t.Errorf("combo draws in call = %.3f, want at least half", callShare)
	}
	if mass[BucketCall] <= mass[BucketFold] {
		t.Errorf("combo draws should prefer call (%.2f) over fold (%.2f)", mass[BucketCall], mass[BucketFold])
	}
	if mass[BucketRaise] == 0 {
		t.Error("some combo draws should raise")
	}
}

func TestSplitAllInCapsRaiseBucket(t *testing.T) {
	r, board := priorRange(t, "Kh 8d 3c 2s 7h")
	target := FrequencyTriple{Fold: 0.6865, Call: 0.2573, Raise: 0.0562}
	split := SplitRange(r, board, target, seed())
	frac := split.Mass(BucketRaise) / split.Total()
	if frac > 0.07 {
		t.Errorf("raise bucket holds %.4f of the range vs an all-in, want <= 0.07", frac)
	}
}

func TestSplitFoldMassTracksEstimate(t *testing.T) {
	r, board := priorRange(t, "2s 7h Kd")
	target := FrequencyTriple{Fold: 0.7262, Call: 0.2153, Raise: 0.0585}
	split := SplitRange(r, board, target, seed())
	frac := split.Mass(BucketFold) / split.Total()
	if math.Abs(frac-target.Fold) > 0.05 {
		t.Errorf("fold bucket %.4f deviates from target %.4f beyond 5%%", frac, target.Fold)
	}
}

func TestSplitNormalizesTargets(t *testing.T) {
	r, board := priorRange(t, "2s 7h Kd")
	raw := FrequencyTriple{Fold: 2, Call: 1, Raise: 1}
	split := SplitRange(r, board, raw, seed())
	total := split.Total()
	if diff := math.Abs(split.Mass(BucketFold) - 0.5*total); diff > splitTolerance(0.5*total, total) {
		t.Errorf("fold mass %.2f, want about half of %.2f", split.Mass(BucketFold), total)
	}
}

func TestSplitEmptyRange(t *testing.T) {
	var dead poker.Hand
	for suit := poker.Clubs; suit <= poker.Spades; suit++ {
		for rank := poker.Two; rank <= poker.Ace; rank++ {
			dead.AddCard(poker.NewCard(rank, suit))
		}
	}
	r := ranges.NewPreflopRange(dead)
	split := SplitRange(r, 0, FrequencyTriple{Fold: 1}, seed())
	if split.Total() != 0 || len(split.Raise)+len(split.Call)+len(split.Fold) != 0 {
		t.Errorf("empty range produced %+v", split)
	}
}

func TestSplitBucketsSortedByStrength(t *testing.T) {
	r, board := priorRange(t, "9s Ts Js")
	target := FrequencyTriple{Fold: 0.4, Call: 0.4, Raise: 0.2}
	split := SplitRange(r, board, target, seed())
	for _, b := range []Bucket{BucketRaise, BucketCall, BucketFold} {
		as := split.Bucket(b)
		for i := 1; i < len(as); i++ {
			if as[i].Strength > as[i-1].Strength {
				t.Fatalf("%v bucket unsorted at %d: %.3f after %.3f", b, i, as[i].Strength, as[i-1].Strength)
			}
		}
	}
}

func TestHash01Range(t *testing.T) {
	a := hash01("h1", "a1", "AKs", "")
	b := hash01("h1", "a1", "AKs", "")
	if a != b {
		t.Error("hash01 not stable")
	}
	if a < 0 || a >= 1 {
		t.Errorf("hash01 = %f outside [0,1)", a)
	}
	if hash01("h1", "a1", "AKs", "x") == a {
		t.Error("salt should perturb the hash")
	}
}
