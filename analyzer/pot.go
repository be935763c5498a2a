package analyzer

import "github.com/handlens/handlens/history"

// PotState tracks committed chips through an action stream. Amounts follow
// the action model: AmountBB is the actor's total commitment on its street,
// so observing a raise replaces the actor's street total rather than adding
// to it.
type PotState struct {
	street  history.Street
	carried float64
	commit  map[string]float64
	stacks  map[string]float64
	folded  map[string]bool

	// last aggressor per street, for continuation-bet detection
	aggressor map[history.Street]string
}

// NewPotState starts tracking a hand from its player stacks.
func NewPotState(h *history.Hand) *PotState {
	ps := &PotState{
		street:    history.Preflop,
		commit:    make(map[string]float64, len(h.Players)),
		stacks:    make(map[string]float64, len(h.Players)),
		folded:    make(map[string]bool),
		aggressor: make(map[history.Street]string),
	}
	for _, p := range h.Players {
		ps.stacks[p.ID] = p.StackBB
	}
	return ps
}

// Advance rolls the state forward to a new street, folding the street
// commitments into the carried pot. Advancing to the current street is a
// no-op, so callers may advance before observing the same action.
func (ps *PotState) Advance(st history.Street) {
	if st == ps.street {
		return
	}
	for id, c := range ps.commit {
		ps.carried += c
		delete(ps.commit, id)
	}
	ps.street = st
}

// Observe advances the state past one action.
func (ps *PotState) Observe(a history.Action) {
	ps.Advance(a.Street)

	switch a.Kind {
	case history.Fold:
		ps.folded[a.PlayerID] = true
	case history.Check:
	default:
		prev := ps.commit[a.PlayerID]
		amt := a.AmountBB
		if amt < prev {
			amt = prev
		}
		add := amt - prev
		if add > ps.stacks[a.PlayerID] {
			add = ps.stacks[a.PlayerID]
			amt = prev + add
		}
		ps.commit[a.PlayerID] = amt
		ps.stacks[a.PlayerID] -= add
	}

	if a.Kind.Aggressive() {
		ps.aggressor[a.Street] = a.PlayerID
	}
}

// Pot is the total pot including the current street.
func (ps *PotState) Pot() float64 {
	total := ps.carried
	for _, c := range ps.commit {
		total += c
	}
	return total
}

// Committed returns the player's current-street commitment.
func (ps *PotState) Committed(id string) float64 {
	return ps.commit[id]
}

// Facing is the largest commitment on the current street.
func (ps *PotState) Facing() float64 {
	max := 0.0
	for _, c := range ps.commit {
		if c > max {
			max = c
		}
	}
	return max
}

// ToCall is what the player owes to match the current street.
func (ps *PotState) ToCall(id string) float64 {
	owed := ps.Facing() - ps.commit[id]
	if owed < 0 {
		return 0
	}
	return owed
}

// Stack returns the player's remaining chips.
func (ps *PotState) Stack(id string) float64 {
	return ps.stacks[id]
}

// Live reports whether the player has not folded.
func (ps *PotState) Live(id string) bool {
	return !ps.folded[id]
}

// Aggressor returns the last player to bet or raise on the street, if any.
func (ps *PotState) Aggressor(st history.Street) (string, bool) {
	id, ok := ps.aggressor[st]
	return id, ok
}
