package response

import (
	"hash/fnv"
	"sort"

	"github.com/handlens/handlens/classification"
	"github.com/handlens/handlens/poker"
	"github.com/handlens/handlens/ranges"
)

// Bucket names one of the three response sub-ranges.
type Bucket int

const (
	BucketRaise Bucket = iota
	BucketCall
	BucketFold
)

var bucketNames = [...]string{"raise", "call", "fold"}

func (b Bucket) String() string {
	if b < 0 || int(b) >= len(bucketNames) {
		return "unknown"
	}
	return bucketNames[b]
}

// Allocation is one canonical-key entry of a split bucket. Weight sums
// every suit combo of the key; Strength, Category, and Draws reflect the
// strongest combo of the group.
type Allocation struct {
	Key      string
	Weight   float64
	Strength float64
	Category classification.Category
	Draws    classification.DrawSet
}

// RangeSplit is a range divided into the three response sub-ranges.
// Buckets are disjoint in canonical keys and together cover the input
// range; each is sorted strongest first.
type RangeSplit struct {
	Raise []Allocation
	Call  []Allocation
	Fold  []Allocation
}

// Bucket returns the allocations of one bucket.
func (s RangeSplit) Bucket(b Bucket) []Allocation {
	switch b {
	case BucketRaise:
		return s.Raise
	case BucketCall:
		return s.Call
	default:
		return s.Fold
	}
}

// Mass returns the summed weight of one bucket.
func (s RangeSplit) Mass(b Bucket) float64 {
	var m float64
	for _, a := range s.Bucket(b) {
		m += a.Weight
	}
	return m
}

// Total returns the summed weight of all three buckets.
func (s RangeSplit) Total() float64 {
	return s.Mass(BucketRaise) + s.Mass(BucketCall) + s.Mass(BucketFold)
}

// SplitSeed reproducibly seeds the stochastic parts of an allocation.
type SplitSeed struct {
	HandID   string
	ActionID string
	Salt     string
}

// hash01 maps the seed parts to a uniform value in [0, 1).
func hash01(parts ...string) float64 {
	h := fnv.New64a()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{'|'})
		}
		h.Write([]byte(p))
	}
	return float64(h.Sum64()>>11) / float64(1<<53)
}

// keyGroup aggregates every suit combo of one canonical key. Allocation is
// key-atomic so the three buckets stay disjoint in canonical keys.
type keyGroup struct {
	key      string
	weight   float64
	strength float64
	category classification.Category
	draws    classification.DrawSet
}

// splitTolerance returns the acceptable deviation from a bucket target:
// 5% of the target mass, floored at 1% of the range total so thin buckets
// stay reachable with whole-key moves.
func splitTolerance(target, total float64) float64 {
	tol := 0.05 * target
	if floor := 0.01 * total; tol < floor {
		tol = floor
	}
	return tol
}

// SplitRange divides a weighted range into raise, call, and fold
// sub-ranges whose masses approximate the target triple. Combos are
// grouped by canonical key, walked strongest to weakest, and tentatively
// placed by a category and draw policy; a deterministic rebalance then
// moves whole key groups until every bucket is within tolerance of its
// target. The hash seed makes the stochastic tentative choices
// reproducible per (hand, action).
func SplitRange(r *ranges.Range, board poker.Hand, target FrequencyTriple, seed SplitSeed) RangeSplit {
	groups := buildKeyGroups(r, board)
	if len(groups) == 0 {
		return RangeSplit{}
	}
	var total float64
	for _, g := range groups {
		total += g.weight
	}
	t := target.Normalized()
	tgt := map[Bucket]float64{
		BucketRaise: t.Raise * total,
		BucketCall:  t.Call * total,
		BucketFold:  t.Fold * total,
	}
	tol := map[Bucket]float64{
		BucketRaise: splitTolerance(tgt[BucketRaise], total),
		BucketCall:  splitTolerance(tgt[BucketCall], total),
		BucketFold:  splitTolerance(tgt[BucketFold], total),
	}
	mass := map[Bucket]float64{}
	assigned := make(map[string]Bucket, len(groups))

	put := func(g keyGroup, want Bucket) {
		var chain []Bucket
		switch want {
		case BucketRaise:
			chain = []Bucket{BucketRaise, BucketCall, BucketFold}
		case BucketCall:
			chain = []Bucket{BucketCall, BucketFold}
		default:
			chain = []Bucket{BucketFold}
		}
		for _, b := range chain {
			if b == BucketFold || mass[b]+g.weight <= tgt[b]+tol[b] {
				assigned[g.key] = b
				mass[b] += g.weight
				return
			}
		}
	}

	// Tentative pass, strongest groups first. Strong made hands lean
	// raise, medium made hands call unless they carry a draw, draws call
	// for their price, and the rest folds apart from an occasional bluff
	// raise while that bucket runs short.
	for _, g := range groups {
		h := hash01(seed.HandID, seed.ActionID, g.key, seed.Salt)
		switch {
		case g.category <= classification.Set:
			if h < 0.8 {
				put(g, BucketRaise)
			} else {
				put(g, BucketCall)
			}
		case g.category <= classification.TopPair:
			if !g.draws.Empty() && h < 0.4 {
				put(g, BucketRaise)
			} else {
				put(g, BucketCall)
			}
		case g.draws.Has(classification.ComboDraw):
			switch {
			case h < 0.7:
				put(g, BucketCall)
			case h < 0.9:
				put(g, BucketRaise)
			default:
				put(g, BucketFold)
			}
		case !g.draws.Empty():
			if h < 0.5 {
				put(g, BucketCall)
			} else {
				put(g, BucketFold)
			}
		case g.strength >= 0.4:
			put(g, BucketCall)
		default:
			hb := hash01(seed.HandID, seed.ActionID, g.key, seed.Salt+"#bluff")
			if mass[BucketRaise] < tgt[BucketRaise]-tol[BucketRaise] && hb < 0.1 {
				put(g, BucketRaise)
			} else {
				put(g, BucketFold)
			}
		}
	}

	rebalance(groups, assigned, mass, tgt, tol)

	var out RangeSplit
	for _, g := range groups {
		a := Allocation{Key: g.key, Weight: g.weight, Strength: g.strength, Category: g.category, Draws: g.draws}
		switch assigned[g.key] {
		case BucketRaise:
			out.Raise = append(out.Raise, a)
		case BucketCall:
			out.Call = append(out.Call, a)
		default:
			out.Fold = append(out.Fold, a)
		}
	}
	return out
}

// buildKeyGroups classifies every combo of the range on the board and
// aggregates by canonical key, returning groups sorted strength
// descending with key order breaking ties.
func buildKeyGroups(r *ranges.Range, board poker.Hand) []keyGroup {
	byKey := make(map[string]*keyGroup)
	for _, e := range r.Entries() {
		cat := classification.Categorize(e.Combo, board)
		ds := classification.DetectDraws(e.Combo, board)
		s := classification.Strength(cat, ds)
		k := e.Combo.Key()
		g, ok := byKey[k]
		if !ok {
			g = &keyGroup{key: k, category: cat}
			byKey[k] = g
		}
		g.weight += e.Weight
		if s > g.strength {
			g.strength = s
		}
		if cat < g.category {
			g.category = cat
		}
		g.draws |= ds
	}
	groups := make([]keyGroup, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].strength != groups[j].strength {
			return groups[i].strength > groups[j].strength
		}
		return groups[i].key < groups[j].key
	})
	return groups
}

// bucketRank orders buckets by the strength of hands they normally hold.
var bucketRank = map[Bucket]int{BucketRaise: 2, BucketCall: 1, BucketFold: 0}

// rebalance moves whole key groups between buckets until each is within
// tolerance of its target, filling deficits in raise, call, fold priority.
// Pulls from a stronger bucket take its weakest groups first and vice
// versa; groups carrying a draw or real strength are preferred when
// filling the raise bucket.
func rebalance(groups []keyGroup, assigned map[string]Bucket, mass, tgt, tol map[Bucket]float64) {
	order := [3]Bucket{BucketRaise, BucketCall, BucketFold}
	for pass := 0; pass < 4; pass++ {
		balanced := true
		for _, b := range order {
			if diff := mass[b] - tgt[b]; diff > tol[b] || diff < -tol[b] {
				balanced = false
			}
		}
		if balanced {
			return
		}
		for _, dest := range order {
			need := tgt[dest] - mass[dest]
			if need <= tol[dest] {
				continue
			}
			var donors []Bucket
			for _, b := range order {
				if b != dest && mass[b]-tgt[b] > 0 {
					donors = append(donors, b)
				}
			}
			sort.SliceStable(donors, func(i, j int) bool {
				return tgt[donors[i]]-mass[donors[i]] < tgt[donors[j]]-mass[donors[j]]
			})
			for _, don := range donors {
				if need <= tol[dest] {
					break
				}
				var cand []keyGroup
				for _, g := range groups {
					if assigned[g.key] == don {
						cand = append(cand, g)
					}
				}
				fromStronger := bucketRank[don] > bucketRank[dest]
				sort.SliceStable(cand, func(i, j int) bool {
					if cand[i].strength != cand[j].strength {
						if fromStronger {
							return cand[i].strength < cand[j].strength
						}
						return cand[i].strength > cand[j].strength
					}
					return cand[i].key < cand[j].key
				})
				if dest == BucketRaise {
					sort.SliceStable(cand, func(i, j int) bool {
						return raiseWorthy(cand[i]) && !raiseWorthy(cand[j])
					})
				}
				for need > tol[dest] && mass[don]-tgt[don] > -tol[don] && len(cand) > 0 {
					picked := -1
					for i, g := range cand {
						if g.weight <= need+tol[dest] {
							picked = i
							break
						}
					}
					if picked < 0 {
						break
					}
					g := cand[picked]
					cand = append(cand[:picked], cand[picked+1:]...)
					assigned[g.key] = dest
					mass[don] -= g.weight
					mass[dest] += g.weight
					need = tgt[dest] - mass[dest]
				}
			}
		}
	}
}

func raiseWorthy(g keyGroup) bool {
	return !g.draws.Empty() || g.strength >= 0.7
}
