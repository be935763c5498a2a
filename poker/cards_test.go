package poker

import (
	"errors"
	"testing"
)

func TestParseCard(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCard Card
		wantErr  bool
	}{
		{name: "ace of spades", input: "As", wantCard: NewCard(Ace, Spades)},
		{name: "two of hearts", input: "2h", wantCard: NewCard(Two, Hearts)},
		{name: "king of diamonds", input: "Kd", wantCard: NewCard(King, Diamonds)},
		{name: "ten of clubs", input: "Tc", wantCard: NewCard(Ten, Clubs)},
		{name: "lowercase rank", input: "qs", wantCard: NewCard(Queen, Spades)},
		{name: "uppercase suit", input: "9H", wantCard: NewCard(Nine, Hearts)},
		{name: "invalid rank", input: "Xs", wantErr: true},
		{name: "invalid suit", input: "Ax", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "too short", input: "A", wantErr: true},
		{name: "too long", input: "10c", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := ParseCard(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCard(%q) expected error, got %v", tt.input, card)
				}
				if !errors.Is(err, ErrInvalidCard) {
					t.Errorf("ParseCard(%q) error = %v, want ErrInvalidCard", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCard(%q) unexpected error: %v", tt.input, err)
			}
			if card != tt.wantCard {
				t.Errorf("ParseCard(%q) = %v, want %v", tt.input, card, tt.wantCard)
			}
		})
	}
}

func TestCardRoundTrip(t *testing.T) {
	for suit := uint8(0); suit < 4; suit++ {
		for rank := uint8(0); rank < 13; rank++ {
			card := NewCard(rank, suit)
			parsed, err := ParseCard(card.String())
			if err != nil {
				t.Fatalf("ParseCard(%q): %v", card.String(), err)
			}
			if parsed != card {
				t.Errorf("round trip %q: got %v, want %v", card.String(), parsed, card)
			}
			if card.Rank() != rank || card.Suit() != suit {
				t.Errorf("card %q: rank/suit = %d/%d, want %d/%d",
					card.String(), card.Rank(), card.Suit(), rank, suit)
			}
		}
	}
}

func TestParseHand(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{name: "concatenated run", input: "AsKh7d", wantCount: 3},
		{name: "space separated", input: "As Kh 7d", wantCount: 3},
		{name: "single card", input: "As", wantCount: 1},
		{name: "empty", input: "", wantCount: 0},
		{name: "duplicate card", input: "AsAs", wantErr: true},
		{name: "odd length run", input: "AsK", wantErr: true},
		{name: "bad card in run", input: "AsXx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHand(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseHand(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHand(%q) unexpected error: %v", tt.input, err)
			}
			if h.CountCards() != tt.wantCount {
				t.Errorf("ParseHand(%q) count = %d, want %d", tt.input, h.CountCards(), tt.wantCount)
			}
		})
	}
}

func TestGetRankMask(t *testing.T) {
	h, err := ParseHand("As5c4d")
	if err != nil {
		t.Fatal(err)
	}

	mask := h.GetRankMask()
	if mask&(1<<Ace) == 0 {
		t.Error("ace bit missing")
	}
	if mask&(1<<13) == 0 {
		t.Error("ace-low duplicate bit missing")
	}
	if mask&(1<<Five) == 0 || mask&(1<<Four) == 0 {
		t.Error("low card bits missing")
	}
}

func TestRankCounts(t *testing.T) {
	h, err := ParseHand("AsAhAc7d7h2c")
	if err != nil {
		t.Fatal(err)
	}

	counts := h.RankCounts()
	if counts[Ace] != 3 {
		t.Errorf("ace count = %d, want 3", counts[Ace])
	}
	if counts[Seven] != 2 {
		t.Errorf("seven count = %d, want 2", counts[Seven])
	}
	if counts[Two] != 1 {
		t.Errorf("two count = %d, want 1", counts[Two])
	}
	if counts[King] != 0 {
		t.Errorf("king count = %d, want 0", counts[King])
	}
}

func TestHandString(t *testing.T) {
	h, err := ParseHand("7dAsKh")
	if err != nil {
		t.Fatal(err)
	}
	// Descending rank order, clubs-first within a rank.
	if got := h.String(); got != "As Kh 7d" {
		t.Errorf("String() = %q, want %q", got, "As Kh 7d")
	}
}
