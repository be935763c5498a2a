package history

import (
	"reflect"
	"testing"

	"github.com/handlens/handlens/poker"
)

func card(t *testing.T, s string) poker.Card {
	t.Helper()
	c, err := poker.ParseCard(s)
	if err != nil {
		t.Fatalf("ParseCard(%q): %v", s, err)
	}
	return c
}

func headsUp(t *testing.T) *Hand {
	t.Helper()
	return &Hand{
		ID:         "hu-1",
		BigBlind:   1,
		ButtonSeat: 2,
		HeroID:     "hero",
		Players: []Player{
			{ID: "hero", Seat: 5, StackBB: 100},
			{ID: "villain", Seat: 2, StackBB: 100},
		},
		Actions: []Action{
			{ID: "a000", PlayerID: "villain", Street: Preflop, Kind: Post, AmountBB: 0.5},
			{ID: "a001", PlayerID: "hero", Street: Preflop, Kind: Post, AmountBB: 1},
			{ID: "a002", PlayerID: "villain", Street: Preflop, Kind: Raise, AmountBB: 3},
			{ID: "a003", PlayerID: "hero", Street: Preflop, Kind: Call, AmountBB: 3},
		},
	}
}

func TestParseStreet(t *testing.T) {
	for i, name := range []string{"preflop", "flop", "turn", "river"} {
		st, err := ParseStreet(name)
		if err != nil {
			t.Fatalf("ParseStreet(%q): %v", name, err)
		}
		if st != Street(i) {
			t.Errorf("ParseStreet(%q) = %v, want %v", name, st, Street(i))
		}
		if st.String() != name {
			t.Errorf("Street(%d).String() = %q, want %q", i, st.String(), name)
		}
	}
	if _, err := ParseStreet("fourth"); err == nil {
		t.Error("ParseStreet(fourth) should fail")
	}
}

func TestStreetBoardSize(t *testing.T) {
	sizes := map[Street]int{Preflop: 0, Flop: 3, Turn: 4, River: 5}
	for st, want := range sizes {
		if got := st.BoardSize(); got != want {
			t.Errorf("%v.BoardSize() = %d, want %d", st, got, want)
		}
	}
}

func TestActionKind(t *testing.T) {
	for i, name := range []string{"post", "fold", "check", "call", "bet", "raise"} {
		k, err := ParseActionKind(name)
		if err != nil {
			t.Fatalf("ParseActionKind(%q): %v", name, err)
		}
		if k != ActionKind(i) || k.String() != name {
			t.Errorf("ParseActionKind(%q) = %v (%q)", name, k, k.String())
		}
	}
	if !Bet.Aggressive() || !Raise.Aggressive() {
		t.Error("bet and raise should be aggressive")
	}
	if Call.Aggressive() || Post.Aggressive() {
		t.Error("call and post should not be aggressive")
	}
	if Post.Voluntary() {
		t.Error("post should not be voluntary")
	}
}

func TestBoardAtStreet(t *testing.T) {
	b := Board{
		Flop:  []poker.Card{card(t, "2s"), card(t, "7h"), card(t, "Kd")},
		Turn:  card(t, "9c"),
		River: card(t, "Ah"),
	}
	counts := map[Street]int{Preflop: 0, Flop: 3, Turn: 4, River: 5}
	for st, want := range counts {
		if got := b.AtStreet(st).CountCards(); got != want {
			t.Errorf("AtStreet(%v) has %d cards, want %d", st, got, want)
		}
	}
	if !b.Final().HasCard(card(t, "Ah")) {
		t.Error("Final board should include the river card")
	}
}

func TestStreetOrderHeadsUp(t *testing.T) {
	h := headsUp(t)
	pre := h.StreetOrder(Preflop)
	if !reflect.DeepEqual(pre, []string{"villain", "hero"}) {
		t.Errorf("preflop order = %v, want button first", pre)
	}
	post := h.StreetOrder(Flop)
	if !reflect.DeepEqual(post, []string{"hero", "villain"}) {
		t.Errorf("postflop order = %v, want big blind first", post)
	}
	if !h.ActsBefore(Preflop, "villain", "hero") {
		t.Error("button should act before big blind preflop heads-up")
	}
	if h.ActsBefore(Flop, "villain", "hero") {
		t.Error("button should act last postflop")
	}
}

func TestStreetOrderThreeHanded(t *testing.T) {
	h := &Hand{
		ID:         "ring-1",
		BigBlind:   1,
		ButtonSeat: 1,
		Players: []Player{
			{ID: "btn", Seat: 1, StackBB: 100},
			{ID: "sb", Seat: 2, StackBB: 100},
			{ID: "bb", Seat: 3, StackBB: 100},
		},
	}
	pre := h.StreetOrder(Preflop)
	if !reflect.DeepEqual(pre, []string{"btn", "sb", "bb"}) {
		t.Errorf("preflop order = %v, want button (under the gun) first", pre)
	}
	post := h.StreetOrder(Turn)
	if !reflect.DeepEqual(post, []string{"sb", "bb", "btn"}) {
		t.Errorf("postflop order = %v, want small blind first", post)
	}
}

func TestValidateAcceptsWellFormedHand(t *testing.T) {
	h := headsUp(t)
	if err := h.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Hand)
	}{
		{"empty id", func(h *Hand) { h.ID = "" }},
		{"one player", func(h *Hand) { h.Players = h.Players[:1] }},
		{"zero big blind", func(h *Hand) { h.BigBlind = 0 }},
		{"duplicate seat", func(h *Hand) { h.Players[1].Seat = h.Players[0].Seat }},
		{"duplicate id", func(h *Hand) { h.Players[1].ID = h.Players[0].ID }},
		{"vacant button", func(h *Hand) { h.ButtonSeat = 9 }},
		{"unknown actor", func(h *Hand) { h.Actions[2].PlayerID = "ghost" }},
		{"street regression", func(h *Hand) {
			h.Board.Flop = []poker.Card{card(t, "2s"), card(t, "7h"), card(t, "Kd")}
			h.Actions = append(h.Actions, Action{PlayerID: "hero", Street: Flop, Kind: Check})
			h.Actions = append(h.Actions, Action{PlayerID: "hero", Street: Preflop, Kind: Check})
		}},
		{"negative amount", func(h *Hand) { h.Actions[2].AmountBB = -1 }},
		{"check with chips", func(h *Hand) {
			h.Actions = append(h.Actions, Action{PlayerID: "hero", Street: Preflop, Kind: Check, AmountBB: 2})
		}},
		{"flop action without board", func(h *Hand) {
			h.Actions = append(h.Actions, Action{PlayerID: "hero", Street: Flop, Kind: Check})
		}},
		{"two card flop", func(h *Hand) {
			h.Board.Flop = []poker.Card{card(t, "2s"), card(t, "7h")}
		}},
		{"turn without flop", func(h *Hand) { h.Board.Turn = card(t, "9c") }},
		{"duplicate board card", func(h *Hand) {
			h.Board.Flop = []poker.Card{card(t, "2s"), card(t, "2s"), card(t, "Kd")}
		}},
		{"unseated hero", func(h *Hand) { h.HeroID = "ghost" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := headsUp(t)
			tc.mutate(h)
			if err := h.Validate(); err == nil {
				t.Errorf("Validate accepted a hand with %s", tc.name)
			}
		})
	}
}

func TestEnsureActionIDs(t *testing.T) {
	h := headsUp(t)
	h.Actions[1].ID = ""
	h.Actions[3].ID = ""
	h.EnsureActionIDs()
	if h.Actions[1].ID != "a001" || h.Actions[3].ID != "a003" {
		t.Errorf("filled ids = %q, %q", h.Actions[1].ID, h.Actions[3].ID)
	}
	if h.Actions[0].ID != "a000" {
		t.Errorf("existing id overwritten: %q", h.Actions[0].ID)
	}
}

func TestCanonicalizeRotatesHeroToFront(t *testing.T) {
	h := &Hand{
		ID:         "ring-2",
		BigBlind:   1,
		ButtonSeat: 4,
		HeroID:     "c",
		Players: []Player{
			{ID: "a", Seat: 4, StackBB: 50},
			{ID: "b", Seat: 6, StackBB: 75},
			{ID: "c", Seat: 8, StackBB: 100},
		},
	}
	got, err := h.Canonicalize()
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if got.Players[0].ID != "c" || got.Players[0].Seat != 0 {
		t.Errorf("hero = %+v, want id c at seat 0", got.Players[0])
	}
	if got.Players[1].ID != "a" || got.Players[2].ID != "b" {
		t.Errorf("cyclic order broken: %+v", got.Players)
	}
	if got.ButtonSeat != 1 {
		t.Errorf("button remapped to %d, want 1", got.ButtonSeat)
	}
	if h.Players[0].Seat != 4 {
		t.Error("Canonicalize mutated its receiver")
	}
}

func TestCanonicalizeIsLabelInvariant(t *testing.T) {
	build := func(villainID string, seatA, seatB int) *Hand {
		return &Hand{
			ID:         "inv",
			BigBlind:   1,
			ButtonSeat: seatB,
			HeroID:     "hero",
			Players: []Player{
				{ID: "hero", Seat: seatA, StackBB: 100},
				{ID: villainID, Seat: seatB, StackBB: 100},
			},
		}
	}
	h1, err := build("v1", 3, 7).Canonicalize()
	if err != nil {
		t.Fatal(err)
	}
	h2, err := build("x9", 1, 5).Canonicalize()
	if err != nil {
		t.Fatal(err)
	}
	if h1.Players[0].Seat != h2.Players[0].Seat || h1.ButtonSeat != h2.ButtonSeat {
		t.Errorf("canonical seats differ: %+v vs %+v", h1.Players, h2.Players)
	}
	o1 := h1.StreetOrder(Flop)
	o2 := h2.StreetOrder(Flop)
	if (o1[0] == "hero") != (o2[0] == "hero") {
		t.Errorf("acting order depends on labels: %v vs %v", o1, o2)
	}
}

func TestCanonicalizeRequiresHero(t *testing.T) {
	h := headsUp(t)
	h.HeroID = ""
	if _, err := h.Canonicalize(); err == nil {
		t.Error("Canonicalize should fail without a hero")
	}
}
