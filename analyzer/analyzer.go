// Package analyzer walks a hand history from the hero's point of view and
// produces one record per voluntary hero action: the opponent range at that
// point, the estimated fold/call/raise response, the response-weighted EVs
// of the hero's options, and a verdict on the action actually taken.
package analyzer

import (
	"fmt"
	"math"

	"github.com/handlens/handlens/classification"
	"github.com/handlens/handlens/ev"
	"github.com/handlens/handlens/history"
	"github.com/handlens/handlens/poker"
	"github.com/handlens/handlens/ranges"
	"github.com/handlens/handlens/response"
)

// RangeEntry is one canonical combo class of a reported range.
type RangeEntry struct {
	Key      string
	Weight   float64
	Strength float64
}

// ActionAnalysis is the full analysis of one hero action. Players appear
// only as canonical seats (hero is seat 0), so two hands that differ only
// in player naming analyze identically.
type ActionAnalysis struct {
	ActionID   string
	Street     history.Street
	HeroAction string

	// Pot geometry before the hero acted, in big blinds. PotOdds is the
	// hero's price when facing a bet, zero otherwise.
	PotBefore float64
	ToCall    float64
	PotOdds   float64

	// VillainSeat is the canonical seat of the opponent the analysis is
	// against, -1 when no live opponent remains.
	VillainSeat int

	HeroRange    []RangeEntry
	VillainRange []RangeEntry
	VillainLabel string

	// Frequencies is the estimated villain response to the hero's
	// aggressive line; the three key lists are the villain combos backing
	// each response, strongest first, with the fraction of range mass
	// each bucket absorbed.
	Frequencies response.FrequencyTriple
	FoldRange   []string
	CallRange   []string
	RaiseRange  []string
	FoldMass    float64
	CallMass    float64
	RaiseMass   float64

	// Branches holds the hero EV of each villain response to the
	// aggressive line. HeroEquity is the hero's showdown equity estimate.
	Branches   ev.BranchEVs
	HeroEquity float64

	Candidates []ev.Candidate
	BestLabel  string
	Delta      float64
	TotalEV    float64
	Verdict    ev.Verdict

	Confidence float64
	Trace      []string
	Faults     []Fault
}

// HandAnalysis is the per-hand result: one ActionAnalysis per voluntary
// hero action, in action order. Hand-level defects that stop analysis
// early land in Faults.
type HandAnalysis struct {
	HandID  string
	HeroID  string
	Actions []ActionAnalysis
	Faults  []Fault
}

// Analyze analyzes every voluntary hero action in the hand. A non-empty
// heroID overrides the hand's own hero designation. Per-action defects are
// recorded as faults on the action record; only structural problems that
// make the whole hand unanalyzable return an error.
func Analyze(hand history.Hand, heroID string, cfg Config) (HandAnalysis, error) {
	if heroID != "" {
		hand.HeroID = heroID
	}
	out := HandAnalysis{HandID: hand.ID, HeroID: hand.HeroID}

	h, err := hand.Canonicalize()
	if err != nil {
		f := faultf(FaultInputShapeMismatch, "%v", err)
		f.Recoverable = false
		out.Faults = append(out.Faults, f)
		return out, f
	}
	h.EnsureActionIDs()

	hole, holeFaults := heroHoleCards(h)
	out.Faults = append(out.Faults, holeFaults...)

	ps := NewPotState(h)
	for i := range h.Actions {
		a := h.Actions[i]
		if a.Street < ps.street {
			out.Faults = append(out.Faults, faultf(FaultInputShapeMismatch,
				"action %d on %s after %s, stopping", i, a.Street, ps.street))
			break
		}
		if _, seated := ps.stacks[a.PlayerID]; !seated {
			out.Faults = append(out.Faults, faultf(FaultInputShapeMismatch,
				"action %d by unseated player, skipped", i))
			continue
		}
		ps.Advance(a.Street)
		if a.PlayerID == h.HeroID && a.Kind.Voluntary() {
			out.Actions = append(out.Actions, analyzeAction(h, i, ps, hole, cfg))
		}
		ps.Observe(a)
	}
	return out, nil
}

// heroHoleCards returns the hero's shown hole cards, or zero with a fault
// when the shown cards are unusable.
func heroHoleCards(h *history.Hand) (poker.Hand, []Fault) {
	mask, ok := h.Shown[h.HeroID]
	if !ok || mask == 0 {
		return 0, nil
	}
	if mask.CountCards() != 2 {
		return 0, []Fault{faultf(FaultInvalidCard, "hero shows %d cards, ignoring them", mask.CountCards())}
	}
	if mask.Overlaps(h.Board.Final()) {
		return 0, []Fault{faultf(FaultInvalidCard, "hero hole cards overlap the board, ignoring them")}
	}
	return mask, nil
}

// analyzeAction builds the record for the hero action at idx. The pot
// state must describe the moment just before the action.
func analyzeAction(h *history.Hand, idx int, ps *PotState, hole poker.Hand, cfg Config) ActionAnalysis {
	a := h.Actions[idx]
	st := a.Street
	board := h.Board.AtStreet(st)

	res := ActionAnalysis{ActionID: a.ID, Street: st, VillainSeat: -1}

	if st > history.Preflop && board.CountCards() < 3 {
		res.Faults = append(res.Faults, faultf(FaultInsufficientBoard,
			"%s with %d board cards, falling back to preflop strength", st, board.CountCards()))
		board = 0
	}

	potBefore := ps.Pot()
	toCall := ps.ToCall(h.HeroID)
	res.PotBefore, res.ToCall = potBefore, toCall
	if toCall > 0 {
		res.PotOdds = toCall / (potBefore + toCall)
	}

	heroStack := ps.Stack(h.HeroID)
	heroCommit := ps.Committed(h.HeroID)
	res.HeroAction = heroLabel(a, heroCommit, heroStack, toCall)

	villainID := selectVillain(h, idx, ps)
	if villainID == "" {
		res.Faults = append(res.Faults, faultf(FaultInputShapeMismatch, "no live opponent to analyze against"))
	} else if p, ok := h.Player(villainID); ok {
		res.VillainSeat = p.Seat
	}

	vr, vFaults := opponentRange(h, idx, villainID, hole|board, cfg)
	hr, hFaults := perceivedHeroRange(h, idx, board, cfg)
	res.Faults = append(res.Faults, vFaults...)
	res.Faults = append(res.Faults, hFaults...)

	vsum := ranges.Summarize(vr, board, cfg.TopN)
	hsum := ranges.Summarize(hr, board, cfg.TopN)
	res.VillainLabel = vsum.Category.String()
	res.VillainRange = rangeEntries(vr, board, cfg.TopN)
	res.HeroRange = rangeEntries(hr, board, cfg.TopN)

	// The aggressive line being priced: the hero's actual bet or raise,
	// or the standard one when the hero played passively.
	ref := referenceAggression(a, ps, h.HeroID)

	villainStack := ps.Stack(villainID)
	villainCommit := ps.Committed(villainID)
	potAfter := potBefore + ref.added
	villainCall := ref.total - villainCommit
	if villainCall < 0 {
		villainCall = 0
	}
	if villainCall > villainStack {
		villainCall = villainStack
	}

	price := 0.0
	if potAfter+villainCall > 0 {
		price = villainCall / (potAfter + villainCall)
	}
	future := math.Min(math.Max(villainStack-villainCall, 0), potAfter)
	implied := 0.0
	if potAfter+villainCall+future > 0 {
		implied = villainCall / (potAfter + villainCall + future)
	}
	spr := 0.0
	if potAfter > 0 {
		spr = villainStack / potAfter
	}

	allIn := ref.allIn || (villainStack > 0 && villainCall >= villainStack-1e-9)
	sizing := response.SizingForPrice(price, allIn)

	pos := response.InPosition
	if villainID != "" && h.ActsBefore(st, villainID, h.HeroID) {
		pos = response.OutOfPosition
	}

	cbet := false
	if st > history.Preflop {
		_, already := ps.Aggressor(st)
		prev, ok := ps.Aggressor(st - 1)
		cbet = !already && ok && prev == h.HeroID
	}

	actx := response.ActionContext{
		Street:          st,
		Sizing:          sizing,
		Position:        pos,
		ContinuationBet: cbet,
	}
	odds := response.PotOdds{Ratio: price, Implied: implied, StackToPot: spr}

	triple := response.EstimateFrequencies(vsum, odds, actx, response.DefaultBaseFold(sizing))
	if math.Abs(triple.Sum()-1) > 1e-3 {
		res.Faults = append(res.Faults, faultf(FaultFrequencyNormalization,
			"frequencies sum to %.4f, reverting to neutral prior", triple.Sum()))
		triple = neutralTriple(cfg)
	}
	res.Frequencies = triple
	res.Confidence = (triple.Confidence.Fold + triple.Confidence.Call + triple.Confidence.Raise) / 3

	split := response.SplitRange(vr, board, triple, response.SplitSeed{
		HandID:   h.ID,
		ActionID: a.ID,
		Salt:     cfg.SeedSalt,
	})
	res.FoldRange = bucketKeys(split.Fold)
	res.CallRange = bucketKeys(split.Call)
	res.RaiseRange = bucketKeys(split.Raise)
	if total := split.Total(); total > 0 {
		res.FoldMass = split.Mass(response.BucketFold) / total
		res.CallMass = split.Mass(response.BucketCall) / total
		res.RaiseMass = split.Mass(response.BucketRaise) / total
	}

	eq, eqSource := heroEquity(hole, board, st, hsum)
	res.HeroEquity = eq

	res.Branches = ev.Branches(ev.BranchInput{
		PotBefore: potBefore,
		BetSize:   ref.added,
		RaiseSize: math.Min(3*ref.added, villainStack),
		Equity:    eq,
		RakePct:   cfg.RakePct,
		RakeCap:   cfg.RakeCap,
	})

	cands := []ev.Candidate{{Label: ref.label, EV: ev.Weighted(res.Branches, triple), Meta: "response weighted"}}
	if toCall > 0 {
		callCost := math.Min(toCall, heroStack)
		cands = append(cands,
			ev.Candidate{Label: "fold", EV: 0, Meta: "forfeit"},
			ev.Candidate{Label: "call", EV: eq*(potBefore+callCost) - (1-eq)*callCost, Meta: "showdown"})
	} else {
		cands = append(cands, ev.Candidate{Label: "check", EV: eq * potBefore, Meta: "showdown"})
		if a.Kind == history.Fold {
			cands = append(cands, ev.Candidate{Label: "fold", EV: 0, Meta: "forfeit"})
		}
	}

	cmp, err := ev.Compare(cands, res.HeroAction, cfg.Tau)
	if err != nil {
		res.Faults = append(res.Faults, faultf(FaultInputShapeMismatch, "candidate comparison: %v", err))
	} else {
		res.Candidates = cmp.Ranked
		res.BestLabel = cmp.Best.Label
		res.Delta = cmp.Delta
		res.TotalEV = cmp.Best.EV - cmp.Delta
		res.Verdict = cmp.Verdict
	}

	res.Trace = append(res.Trace,
		fmt.Sprintf("pot %.2f, to call %.2f, hero price %.3f", potBefore, toCall, res.PotOdds),
		fmt.Sprintf("villain seat %d %s, %s sizing, price %.3f, implied %.3f, spr %.2f",
			res.VillainSeat, pos, sizing, price, implied, spr),
		fmt.Sprintf("hero equity %.3f from %s", eq, eqSource))
	if cbet {
		res.Trace = append(res.Trace, "continuation bet")
	}
	return res
}

// heroLabel names the hero action with its street total, so a raise to 9
// reads "raise 9.0". A call with nothing owed reads as a check.
func heroLabel(a history.Action, commit, stack, toCall float64) string {
	switch a.Kind {
	case history.Fold:
		return "fold"
	case history.Check:
		return "check"
	case history.Call:
		if toCall <= 0 {
			return "check"
		}
		return "call"
	case history.Bet, history.Raise:
		amt := a.AmountBB
		if amt < commit {
			amt = commit
		}
		if amt-commit > stack {
			amt = commit + stack
		}
		verb := "bet"
		if a.Kind == history.Raise {
			verb = "raise"
		}
		return fmt.Sprintf("%s %.1f", verb, amt)
	default:
		return a.Kind.String()
	}
}

// aggression describes the aggressive line priced against the villain:
// the chips the hero adds, the hero's resulting street total, and a label.
type aggression struct {
	added float64
	total float64
	label string
	allIn bool
}

// referenceAggression returns the hero's actual bet or raise, or the
// standard aggressive option when the hero played passively: preflop a
// raise to three times the bet, postflop a pot-sized bet or raise.
func referenceAggression(a history.Action, ps *PotState, heroID string) aggression {
	commit := ps.Committed(heroID)
	stack := ps.Stack(heroID)
	facing := ps.Facing()
	pot := ps.Pot()

	var total float64
	verb := "bet"
	switch {
	case a.Kind.Aggressive():
		total = a.AmountBB
		if a.Kind == history.Raise {
			verb = "raise"
		}
	case a.Street == history.Preflop:
		total = 3 * facing
		verb = "raise"
	case facing == 0:
		total = commit + pot
	default:
		total = facing + pot
		verb = "raise"
	}

	if total < commit {
		total = commit
	}
	added := total - commit
	if added > stack {
		added = stack
		total = commit + added
	}
	allIn := a.AllIn && a.Kind.Aggressive()
	if stack > 0 && added >= stack-1e-9 {
		allIn = true
	}
	return aggression{
		added: added,
		total: total,
		label: fmt.Sprintf("%s %.1f", verb, total),
		allIn: allIn,
	}
}

// selectVillain picks the opponent to analyze against: the most recent
// live aggressor before the action, else the next live opponent after the
// hero in the street's acting order.
func selectVillain(h *history.Hand, idx int, ps *PotState) string {
	for j := idx - 1; j >= 0; j-- {
		act := h.Actions[j]
		if act.PlayerID == h.HeroID || !ps.Live(act.PlayerID) {
			continue
		}
		if act.Kind.Aggressive() {
			return act.PlayerID
		}
	}

	order := h.StreetOrder(h.Actions[idx].Street)
	start := 0
	for i, id := range order {
		if id == h.HeroID {
			start = i
			break
		}
	}
	for i := 1; i <= len(order); i++ {
		id := order[(start+i)%len(order)]
		if id != h.HeroID && ps.Live(id) {
			return id
		}
	}
	return ""
}

// opponentRange reconstructs the villain range at the action: the preflop
// prior minus dead cards, updated by each postflop villain action before
// idx. A collapsed range comes back empty with a fault, which downstream
// stages treat as missing input.
func opponentRange(h *history.Hand, idx int, villainID string, dead poker.Hand, cfg Config) (*ranges.Range, []Fault) {
	r := ranges.NewPreflopRange(dead)
	if villainID == "" {
		return r, nil
	}
	for j := 0; j < idx; j++ {
		act := h.Actions[j]
		if act.PlayerID != villainID || !act.Kind.Voluntary() || act.Street == history.Preflop {
			continue
		}
		class := ranges.CallCheck
		if act.Kind.Aggressive() {
			class = ranges.BetRaise
		}
		next, err := pruneRange(r.Update(class, h.Board.AtStreet(act.Street)), class, cfg)
		if err != nil {
			return next, []Fault{faultf(FaultRangeCollapsed,
				"villain range collapsed after %s on %s", class, act.Street)}
		}
		r = next
	}
	return r, nil
}

// perceivedHeroRange reconstructs the hero range as the villain sees it,
// conditioned on the board only.
func perceivedHeroRange(h *history.Hand, idx int, board poker.Hand, cfg Config) (*ranges.Range, []Fault) {
	r := ranges.NewPreflopRange(board)
	for j := 0; j < idx; j++ {
		act := h.Actions[j]
		if act.PlayerID != h.HeroID || !act.Kind.Voluntary() || act.Street == history.Preflop {
			continue
		}
		class := ranges.CallCheck
		if act.Kind.Aggressive() {
			class = ranges.BetRaise
		}
		next, err := pruneRange(r.Update(class, h.Board.AtStreet(act.Street)), class, cfg)
		if err != nil {
			return next, []Fault{faultf(FaultRangeCollapsed,
				"perceived hero range collapsed after %s on %s", class, act.Street)}
		}
		r = next
	}
	return r, nil
}

// pruneRange normalizes with either the configured fixed threshold or the
// action-sensitive default.
func pruneRange(r *ranges.Range, class ranges.ActionClass, cfg Config) (*ranges.Range, error) {
	if cfg.PruneTau > 0 {
		return r.NormalizeAndPruneAt(cfg.PruneTau)
	}
	return r.NormalizeAndPrune(class)
}

// heroEquity estimates the hero's showdown equity: from the shown hole
// cards when available, else from the mean strength of the perceived hero
// range. The second source conflates strength with equity and is only a
// fallback.
func heroEquity(hole, board poker.Hand, st history.Street, hsum ranges.Strength) (float64, string) {
	if hole != 0 {
		combo, err := poker.ComboFromMask(hole)
		if err == nil {
			cat := classification.Categorize(combo, board)
			draws := classification.DetectDraws(combo, board)
			return ev.Equity(cat, draws, st), cat.String()
		}
	}
	eq := hsum.AverageStrength
	if eq < 0.05 {
		eq = 0.05
	}
	if eq > 0.95 {
		eq = 0.95
	}
	return eq, "range mean"
}

// neutralTriple is the configured fallback distribution, the package
// default when the config carries none.
func neutralTriple(cfg Config) response.FrequencyTriple {
	t := response.NeutralTriple()
	if s := cfg.NeutralFold + cfg.NeutralCall + cfg.NeutralRaise; s > 0 {
		t.Fold = cfg.NeutralFold / s
		t.Call = cfg.NeutralCall / s
		t.Raise = cfg.NeutralRaise / s
	}
	return t
}

// rangeEntries aggregates a range into canonical key classes, strongest
// first, capped at n entries. A class's strength is its best suit combo
// on the board; its weight is the summed mass of all its combos.
func rangeEntries(r *ranges.Range, board poker.Hand, n int) []RangeEntry {
	combos := ranges.EvaluateRange(r, board)
	if n <= 0 {
		n = 10
	}

	type agg struct {
		weight   float64
		strength float64
	}
	seen := make(map[string]*agg, n)
	order := make([]string, 0, len(combos))
	for _, c := range combos {
		if a, ok := seen[c.Key]; ok {
			a.weight += c.Weight
			continue
		}
		seen[c.Key] = &agg{weight: c.Weight, strength: c.Strength}
		order = append(order, c.Key)
	}

	if n > len(order) {
		n = len(order)
	}
	out := make([]RangeEntry, 0, n)
	for _, k := range order[:n] {
		out = append(out, RangeEntry{Key: k, Weight: seen[k].weight, Strength: seen[k].strength})
	}
	return out
}

func bucketKeys(allocs []response.Allocation) []string {
	keys := make([]string, 0, len(allocs))
	for _, al := range allocs {
		keys = append(keys, al.Key)
	}
	return keys
}
