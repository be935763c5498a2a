package classification

import (
	"testing"

	"github.com/handlens/handlens/poker"
)

func mustCombo(t *testing.T, s string) poker.Combo {
	t.Helper()
	c, err := poker.ParseCombo(s)
	if err != nil {
		t.Fatalf("ParseCombo(%q): %v", s, err)
	}
	return c
}

func mustBoard(t *testing.T, s string) poker.Hand {
	t.Helper()
	h, err := poker.ParseHand(s)
	if err != nil {
		t.Fatalf("ParseHand(%q): %v", s, err)
	}
	return h
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name  string
		combo string
		board string
		want  Category
	}{
		{name: "straight flush", combo: "9s8s", board: "7s6s5s", want: StraightFlush},
		{name: "steel wheel", combo: "As2s", board: "3s4s5s", want: StraightFlush},
		{name: "quads", combo: "7h7d", board: "7s7cKd", want: Quads},
		{name: "board quads with kicker", combo: "AhKc", board: "7s7c7d7h2s", want: Quads},
		{name: "full house pocket over board", combo: "KhKd", board: "Ks7c7d", want: FullHouse},
		{name: "full house trips plus pair", combo: "7h2c", board: "7s7cQdQh9s", want: FullHouse},
		{name: "flush", combo: "AhTh", board: "7h4h2h", want: Flush},
		{name: "straight", combo: "9c8d", board: "7s6h5d", want: Straight},
		{name: "wheel straight", combo: "Ac2d", board: "3s4h5d", want: Straight},
		{name: "broadway", combo: "AcKd", board: "QsJhTd", want: Straight},
		{name: "set", combo: "JdJh", board: "2s7sJs", want: Set},
		{name: "trips one hole card", combo: "Ah7c", board: "7s7dQd", want: Trips},
		{name: "two pair both hole cards", combo: "KhQd", board: "Ks8cQh", want: TwoPair},
		{name: "overpair", combo: "QhQd", board: "Js8c2h", want: Overpair},
		{name: "overpair on paired board", combo: "AhAd", board: "Ks8cKh", want: Overpair},
		{name: "pocket pair under board pair", combo: "8h8d", board: "Ks2cKh", want: TwoPairBoard},
		{name: "top pair plus board pair", combo: "AhKc", board: "As4c4d", want: TwoPairBoard},
		{name: "top pair", combo: "AhKc", board: "Kd8s3c", want: TopPair},
		{name: "second pair", combo: "Ah8c", board: "Kd8s3c", want: SecondPair},
		{name: "third pair", combo: "Ah3c", board: "Kd8s3s", want: Pair},
		{name: "underpair between board ranks", combo: "ThTd", board: "Kd8s3c", want: Pair},
		{name: "paired board no connection", combo: "Ah7c", board: "Kd8sKs", want: PairBoard},
		{name: "board trips no connection", combo: "Ah7c", board: "KdKhKs", want: PairBoard},
		{name: "air", combo: "Ah7c", board: "Kd8s3c", want: Air},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(mustCombo(t, tt.combo), mustBoard(t, tt.board))
			if got != tt.want {
				t.Errorf("Categorize(%s on %s) = %v, want %v", tt.combo, tt.board, got, tt.want)
			}
		})
	}
}

func TestCategorizePreflop(t *testing.T) {
	if got := Categorize(mustCombo(t, "QhQd"), 0); got != Overpair {
		t.Errorf("pocket pair preflop = %v, want overpair", got)
	}
	if got := Categorize(mustCombo(t, "AhKc"), 0); got != Air {
		t.Errorf("unpaired preflop = %v, want air", got)
	}
}

func TestCategorizeShortBoard(t *testing.T) {
	tests := []struct {
		name  string
		combo string
		board string
		want  Category
	}{
		{name: "pair on two cards", combo: "AhKc", board: "Kd8s", want: Pair},
		{name: "set on two cards", combo: "8h8d", board: "8s2c", want: Set},
		{name: "overpair on one card", combo: "QhQd", board: "Js", want: Overpair},
		{name: "underpair on two cards", combo: "ThTd", board: "KdQs", want: Pair},
		{name: "air on two cards", combo: "Ah7c", board: "Kd8s", want: Air},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(mustCombo(t, tt.combo), mustBoard(t, tt.board))
			if got != tt.want {
				t.Errorf("Categorize(%s on %s) = %v, want %v", tt.combo, tt.board, got, tt.want)
			}
		})
	}
}

func TestCategorizeCardOrderInvariant(t *testing.T) {
	// The same combo parsed in either card order must classify the same.
	a := Categorize(mustCombo(t, "KhQd"), mustBoard(t, "Ks8cQh"))
	b := Categorize(mustCombo(t, "QdKh"), mustBoard(t, "Qh8cKs"))
	if a != b {
		t.Errorf("order-sensitive classification: %v vs %v", a, b)
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		cat  Category
		want string
	}{
		{StraightFlush, "straight_flush"},
		{Set, "set"},
		{TwoPairBoard, "two_pair_board"},
		{PairBoard, "pair_board"},
		{Air, "air"},
		{Category(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.cat.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.cat, got, tt.want)
		}
	}
}
