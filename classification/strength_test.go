package classification

import (
	"testing"
)

func TestStrengthBaseValues(t *testing.T) {
	tests := []struct {
		cat  Category
		want float64
	}{
		{StraightFlush, 1.00},
		{Quads, 0.98},
		{FullHouse, 0.95},
		{Flush, 0.90},
		{Straight, 0.85},
		{Set, 0.82},
		{TwoPair, 0.75},
		{Overpair, 0.70},
		{TopPair, 0.65},
		{SecondPair, 0.55},
		{Pair, 0.45},
		{PairBoard, 0.35},
		{Air, 0.20},
	}
	for _, tt := range tests {
		t.Run(tt.cat.String(), func(t *testing.T) {
			if got := Strength(tt.cat, 0); got != tt.want {
				t.Errorf("Strength(%v) = %v, want %v", tt.cat, got, tt.want)
			}
		})
	}
}

func TestStrengthDrawBonus(t *testing.T) {
	tests := []struct {
		name string
		cat  Category
		draw DrawType
		want float64
	}{
		{name: "air with flush draw", cat: Air, draw: FlushDraw, want: 0.30},
		{name: "air with combo draw", cat: Air, draw: ComboDraw, want: 0.35},
		{name: "pair with oesd", cat: Pair, draw: OESD, want: 0.53},
		{name: "air with gutshot", cat: Air, draw: Gutshot, want: 0.25},
		{name: "air with wheel draw", cat: Air, draw: WheelDraw, want: 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Strength(tt.cat, DrawSet(0).Add(tt.draw))
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Strength(%v, %v) = %v, want %v", tt.cat, tt.draw, got, tt.want)
			}
		})
	}
}

func TestStrengthClamped(t *testing.T) {
	if got := Strength(StraightFlush, DrawSet(0).Add(ComboDraw)); got != 1.0 {
		t.Errorf("clamped strength = %v, want 1.0", got)
	}
}

func TestStrengthEndToEnd(t *testing.T) {
	// Top set on a monotone board rates above 0.8.
	combo := mustCombo(t, "JdJh")
	board := mustBoard(t, "2s7sJs")
	cat := Categorize(combo, board)
	if cat != Set {
		t.Fatalf("category = %v, want set", cat)
	}
	s := Strength(cat, DetectDraws(combo, board))
	if s <= 0.8 {
		t.Errorf("top set strength = %v, want > 0.8", s)
	}
}

func TestBoardTexture(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  Texture
	}{
		{name: "dry rainbow", board: "2s7hKd", want: TextureDry},
		{name: "suited", board: "9sTsJs", want: TextureSuited},
		{name: "paired", board: "Ks2cKh", want: TexturePaired},
		{name: "paired beats suited", board: "KsKh2s3s", want: TexturePaired},
		{name: "connected rainbow", board: "9cTdJh", want: TextureConnected},
		{name: "two gap connected", board: "5c7d9h", want: TextureConnected},
		{name: "short board", board: "AsKs", want: TextureDry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BoardTexture(mustBoard(t, tt.board))
			if got != tt.want {
				t.Errorf("BoardTexture(%s) = %v, want %v", tt.board, got, tt.want)
			}
		})
	}
}

func TestTextureMonotone(t *testing.T) {
	board := mustBoard(t, "2s7sJs")
	if got := BoardTexture(board); got != TextureSuited {
		t.Errorf("monotone board texture = %v, want suited", got)
	}
}
