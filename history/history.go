// Package history defines the parsed hand-history model: players, streets,
// betting actions, and board cards, all denominated in big blinds. Parsers
// under internal/handlog produce these records; the analyzer consumes them.
package history

import (
	"fmt"
	"sort"

	"github.com/handlens/handlens/poker"
)

// Street identifies a betting round.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

var streetNames = [...]string{"preflop", "flop", "turn", "river"}

func (s Street) String() string {
	if s < 0 || int(s) >= len(streetNames) {
		return fmt.Sprintf("street(%d)", int(s))
	}
	return streetNames[s]
}

// ParseStreet maps a lowercase street name to its Street value.
func ParseStreet(name string) (Street, error) {
	for i, n := range streetNames {
		if n == name {
			return Street(i), nil
		}
	}
	return 0, fmt.Errorf("unknown street %q", name)
}

// BoardSize reports how many community cards are visible on this street.
func (s Street) BoardSize() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River:
		return 5
	default:
		return 0
	}
}

// ActionKind identifies what a betting action did.
type ActionKind int

const (
	Post ActionKind = iota
	Fold
	Check
	Call
	Bet
	Raise
)

var actionKindNames = [...]string{"post", "fold", "check", "call", "bet", "raise"}

func (k ActionKind) String() string {
	if k < 0 || int(k) >= len(actionKindNames) {
		return fmt.Sprintf("action(%d)", int(k))
	}
	return actionKindNames[k]
}

// ParseActionKind maps a lowercase action name to its ActionKind.
func ParseActionKind(name string) (ActionKind, error) {
	for i, n := range actionKindNames {
		if n == name {
			return ActionKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// Aggressive reports whether the action puts new pressure on opponents.
func (k ActionKind) Aggressive() bool {
	return k == Bet || k == Raise
}

// Voluntary reports whether the action was a decision rather than a blind post.
func (k ActionKind) Voluntary() bool {
	return k != Post
}

// Player is one seat in a hand. StackBB is the stack at the start of the
// hand, in big blinds.
type Player struct {
	ID      string
	Seat    int
	StackBB float64
}

// Action is one betting action. AmountBB is the actor's total street
// commitment after the action: a raise to 6 records 6, a call matching a 6
// records 6, a check or fold records 0.
type Action struct {
	ID       string
	PlayerID string
	Street   Street
	Kind     ActionKind
	AmountBB float64
	AllIn    bool
}

// Board holds the community cards dealt so far. A zero Turn or River card
// means the street was never dealt.
type Board struct {
	Flop  []poker.Card
	Turn  poker.Card
	River poker.Card
}

// AtStreet returns the community cards visible at the start of the given
// street.
func (b Board) AtStreet(st Street) poker.Hand {
	var h poker.Hand
	if st >= Flop {
		for _, c := range b.Flop {
			h.AddCard(c)
		}
	}
	if st >= Turn && b.Turn != 0 {
		h.AddCard(b.Turn)
	}
	if st >= River && b.River != 0 {
		h.AddCard(b.River)
	}
	return h
}

// Final returns every community card dealt in the hand.
func (b Board) Final() poker.Hand {
	return b.AtStreet(River)
}

// Hand is one complete parsed hand history.
type Hand struct {
	ID         string
	Players    []Player
	ButtonSeat int
	BigBlind   float64
	HeroID     string
	Board      Board
	Actions    []Action
	Shown      map[string]poker.Hand
}

// Player returns the player with the given id.
func (h *Hand) Player(id string) (Player, bool) {
	for _, p := range h.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// seatOrder returns players sorted by seat number.
func (h *Hand) seatOrder() []Player {
	out := make([]Player, len(h.Players))
	copy(out, h.Players)
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out
}

// StreetOrder returns player ids in the acting order of the given street.
// Postflop the first actor sits left of the button and the button acts last.
// Preflop the first actor sits left of the big blind; heads-up the button
// posts the small blind and acts first.
func (h *Hand) StreetOrder(st Street) []string {
	sorted := h.seatOrder()
	n := len(sorted)
	if n == 0 {
		return nil
	}
	btn := 0
	for i, p := range sorted {
		if p.Seat == h.ButtonSeat {
			btn = i
			break
		}
	}
	start := btn + 1
	if st == Preflop {
		if n == 2 {
			start = btn
		} else {
			start = btn + 3
		}
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, sorted[(start+i)%n].ID)
	}
	return out
}

// ActsBefore reports whether player a acts before player b on the given
// street. Unknown players sort last.
func (h *Hand) ActsBefore(st Street, a, b string) bool {
	order := h.StreetOrder(st)
	ai, bi := len(order), len(order)
	for i, id := range order {
		if id == a {
			ai = i
		}
		if id == b {
			bi = i
		}
	}
	return ai < bi
}

// EnsureActionIDs fills empty action ids with deterministic per-hand values
// so re-analysis keys stay stable.
func (h *Hand) EnsureActionIDs() {
	for i := range h.Actions {
		if h.Actions[i].ID == "" {
			h.Actions[i].ID = fmt.Sprintf("a%03d", i)
		}
	}
}

// Validate checks structural integrity: player counts, seat uniqueness,
// street monotonicity, and action amounts. It returns the first problem
// found.
func (h *Hand) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("hand has no id")
	}
	if len(h.Players) < 2 || len(h.Players) > 10 {
		return fmt.Errorf("hand %s: player count %d outside 2..10", h.ID, len(h.Players))
	}
	if h.BigBlind <= 0 {
		return fmt.Errorf("hand %s: big blind %.2f must be positive", h.ID, h.BigBlind)
	}
	seats := make(map[int]bool, len(h.Players))
	ids := make(map[string]bool, len(h.Players))
	buttonSeen := false
	for _, p := range h.Players {
		if p.ID == "" {
			return fmt.Errorf("hand %s: player with empty id", h.ID)
		}
		if ids[p.ID] {
			return fmt.Errorf("hand %s: duplicate player id %q", h.ID, p.ID)
		}
		ids[p.ID] = true
		if seats[p.Seat] {
			return fmt.Errorf("hand %s: duplicate seat %d", h.ID, p.Seat)
		}
		seats[p.Seat] = true
		if p.Seat == h.ButtonSeat {
			buttonSeen = true
		}
		if p.StackBB < 0 {
			return fmt.Errorf("hand %s: player %q has negative stack", h.ID, p.ID)
		}
	}
	if !buttonSeen {
		return fmt.Errorf("hand %s: button seat %d not occupied", h.ID, h.ButtonSeat)
	}
	if len(h.Board.Flop) != 0 && len(h.Board.Flop) != 3 {
		return fmt.Errorf("hand %s: flop has %d cards", h.ID, len(h.Board.Flop))
	}
	if h.Board.Turn != 0 && len(h.Board.Flop) == 0 {
		return fmt.Errorf("hand %s: turn card without flop", h.ID)
	}
	if h.Board.River != 0 && h.Board.Turn == 0 {
		return fmt.Errorf("hand %s: river card without turn", h.ID)
	}
	if err := h.validateBoardCards(); err != nil {
		return err
	}
	prev := Preflop
	for i, a := range h.Actions {
		if !ids[a.PlayerID] {
			return fmt.Errorf("hand %s: action %d by unknown player %q", h.ID, i, a.PlayerID)
		}
		if a.Street < prev {
			return fmt.Errorf("hand %s: action %d street %s after %s", h.ID, i, a.Street, prev)
		}
		prev = a.Street
		if a.AmountBB < 0 {
			return fmt.Errorf("hand %s: action %d has negative amount", h.ID, i)
		}
		if (a.Kind == Fold || a.Kind == Check) && a.AmountBB != 0 {
			return fmt.Errorf("hand %s: action %d is a %s with amount %.2f", h.ID, i, a.Kind, a.AmountBB)
		}
		if a.Street.BoardSize() > len(h.Board.Flop)+cardCount(h.Board.Turn)+cardCount(h.Board.River) {
			return fmt.Errorf("hand %s: action %d on %s but board incomplete", h.ID, i, a.Street)
		}
	}
	if h.HeroID != "" && !ids[h.HeroID] {
		return fmt.Errorf("hand %s: hero %q not seated", h.ID, h.HeroID)
	}
	return nil
}

func (h *Hand) validateBoardCards() error {
	var seen poker.Hand
	add := func(c poker.Card) error {
		if c == 0 {
			return nil
		}
		if c.Rank() > poker.Ace || c.Suit() > poker.Spades {
			return fmt.Errorf("hand %s: %w on board", h.ID, poker.ErrInvalidCard)
		}
		if seen.HasCard(c) {
			return fmt.Errorf("hand %s: duplicate board card %s", h.ID, c)
		}
		seen.AddCard(c)
		return nil
	}
	for _, c := range h.Board.Flop {
		if err := add(c); err != nil {
			return err
		}
	}
	if err := add(h.Board.Turn); err != nil {
		return err
	}
	return add(h.Board.River)
}

func cardCount(c poker.Card) int {
	if c == 0 {
		return 0
	}
	return 1
}

// Canonicalize returns a copy of the hand with players rotated so the hero
// occupies index 0, seats renumbered 0..n-1 in the original cyclic order,
// and the button remapped. Analyses built on seat indexes then agree for
// hands that differ only in seat labels. The hand must have a seated hero.
func (h *Hand) Canonicalize() (*Hand, error) {
	if h.HeroID == "" {
		return nil, fmt.Errorf("hand %s: no hero designated", h.ID)
	}
	sorted := h.seatOrder()
	heroIdx := -1
	for i, p := range sorted {
		if p.ID == h.HeroID {
			heroIdx = i
			break
		}
	}
	if heroIdx < 0 {
		return nil, fmt.Errorf("hand %s: hero %q not seated", h.ID, h.HeroID)
	}
	out := *h
	out.Players = make([]Player, len(sorted))
	newButton := -1
	for i := range sorted {
		p := sorted[(heroIdx+i)%len(sorted)]
		if p.Seat == h.ButtonSeat {
			newButton = i
		}
		p.Seat = i
		out.Players[i] = p
	}
	out.ButtonSeat = newButton
	out.Actions = make([]Action, len(h.Actions))
	copy(out.Actions, h.Actions)
	return &out, nil
}
