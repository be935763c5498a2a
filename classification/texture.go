package classification

import (
	"math/bits"

	"github.com/handlens/handlens/poker"
)

// Texture is a coarse board label, checked in precedence order:
// paired beats suited beats connected beats dry.
type Texture int

const (
	TexturePaired Texture = iota
	TextureSuited
	TextureConnected
	TextureDry
)

var textureNames = [...]string{"paired", "suited", "connected", "dry"}

func (t Texture) String() string {
	if t < 0 || int(t) >= len(textureNames) {
		return "unknown"
	}
	return textureNames[t]
}

// BoardTexture classifies a board. Paired means a repeated rank, suited
// means three or more of one suit, connected means at least two rank
// pairs no more than two apart. Boards shorter than three cards are dry.
func BoardTexture(board poker.Hand) Texture {
	if board.CountCards() < 3 {
		return TextureDry
	}

	for _, n := range board.RankCounts() {
		if n >= 2 {
			return TexturePaired
		}
	}

	for suit := uint8(0); suit < 4; suit++ {
		if bits.OnesCount16(board.GetSuitMask(suit)) >= 3 {
			return TextureSuited
		}
	}

	ranks := boardRanks(board)
	adjacent := 0
	for i := 0; i < len(ranks); i++ {
		for j := i + 1; j < len(ranks); j++ {
			if ranks[i]-ranks[j] <= 2 {
				adjacent++
			}
		}
	}
	if adjacent >= 2 {
		return TextureConnected
	}
	return TextureDry
}

// boardRanks returns the distinct ranks present, descending.
func boardRanks(board poker.Hand) []int {
	counts := board.RankCounts()
	ranks := make([]int, 0, board.CountCards())
	for rank := 12; rank >= 0; rank-- {
		if counts[rank] > 0 {
			ranks = append(ranks, rank)
		}
	}
	return ranks
}
