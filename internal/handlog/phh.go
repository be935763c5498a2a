package handlog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/handlens/handlens/history"
	"github.com/handlens/handlens/poker"
)

// phhHand mirrors the PHH TOML schema. Chip amounts are integers in the
// table's own denomination; conversion to big blinds happens afterwards.
type phhHand struct {
	Variant           string         `toml:"variant"`
	Table             string         `toml:"table,omitempty"`
	SeatCount         int            `toml:"seat_count,omitempty"`
	Seats             []int          `toml:"seats,omitempty"`
	Antes             []int          `toml:"antes"`
	BlindsOrStraddles []int          `toml:"blinds_or_straddles"`
	MinBet            int            `toml:"min_bet"`
	StartingStacks    []int          `toml:"starting_stacks"`
	Actions           []string       `toml:"actions"`
	Players           []string       `toml:"players,omitempty"`
	HandID            string         `toml:"hand"`
	LegacyHandID      string         `toml:"hand_id,omitempty"`
	Metadata          map[string]any `toml:"metadata,omitempty"`
}

// ParsePHH decodes a PHH session: either one TOML table per hand keyed
// hand_1, hand_2, ... or bare hand chunks separated by comment rules.
// Hands that fail structural validation are dropped with a warning.
func ParsePHH(data []byte) (*Result, error) {
	raws, err := decodePHH(string(data))
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("handlog: no hands in phh input")
	}

	res := &Result{}
	for i, raw := range raws {
		hand, warns, err := convertPHH(raw, i+1)
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			res.warnf("hand %d dropped: %v", i+1, err)
			continue
		}
		res.Hands = append(res.Hands, hand)
	}
	if len(res.Hands) == 0 {
		return nil, fmt.Errorf("handlog: no parseable hands in phh input")
	}
	return res, nil
}

func decodePHH(raw string) ([]phhHand, error) {
	if hands, ok := decodeSectionedPHH(raw); ok {
		return hands, nil
	}

	chunks := splitPHHChunks(raw)
	hands := make([]phhHand, 0, len(chunks))
	for idx, chunk := range chunks {
		var hand phhHand
		if _, err := toml.NewDecoder(strings.NewReader(chunk)).Decode(&hand); err != nil {
			return nil, fmt.Errorf("decode chunk %d: %w", idx+1, err)
		}
		hands = append(hands, hand)
	}
	return hands, nil
}

func decodeSectionedPHH(raw string) ([]phhHand, bool) {
	sections := make(map[string]phhHand)
	if _, err := toml.Decode(raw, &sections); err != nil {
		return nil, false
	}
	if len(sections) == 0 {
		return nil, false
	}
	keys := make([]string, 0, len(sections))
	for k := range sections {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return compareSectionKeys(keys[i], keys[j])
	})
	hands := make([]phhHand, 0, len(keys))
	for _, key := range keys {
		hand := sections[key]
		if hand.HandID == "" && hand.LegacyHandID == "" {
			hand.HandID = key
		}
		hands = append(hands, hand)
	}
	return hands, true
}

func compareSectionKeys(a, b string) bool {
	ai, errA := strconv.Atoi(strings.TrimLeft(a, "hand_"))
	bi, errB := strconv.Atoi(strings.TrimLeft(b, "hand_"))
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}

func splitPHHChunks(data string) []string {
	lines := strings.Split(data, "\n")
	var chunks []string
	cur := make([]string, 0, 64)
	flush := func() {
		if len(cur) == 0 {
			return
		}
		chunk := strings.TrimSpace(strings.Join(cur, "\n"))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		cur = cur[:0]
	}
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if strings.HasPrefix(trim, "# ─") {
			// explicit separator between hands
			flush()
			continue
		}
		if len(cur) > 0 && strings.HasPrefix(trim, "version") && strings.Contains(trim, "=") {
			flush()
		}
		if trim == "" && len(cur) == 0 {
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return chunks
}

// convertPHH turns one decoded PHH record into a big-blind denominated
// hand. Positions p1..pN are mapped to table seats via the seats array.
func convertPHH(raw phhHand, idx int) (history.Hand, []string, error) {
	var warns []string

	id := raw.HandID
	if id == "" {
		id = raw.LegacyHandID
	}
	if id == "" {
		id = fmt.Sprintf("hand-%d", idx)
	}

	count := len(raw.Players)
	if count == 0 {
		return history.Hand{}, warns, fmt.Errorf("no players")
	}
	bbChips := 0
	if len(raw.BlindsOrStraddles) >= 2 {
		bbChips = raw.BlindsOrStraddles[1]
	}
	if bbChips <= 0 {
		bbChips = raw.MinBet
	}
	if bbChips <= 0 {
		return history.Hand{}, warns, fmt.Errorf("no big blind")
	}
	bb := float64(bbChips)

	seatAt := func(pos int) int {
		if pos < len(raw.Seats) && raw.Seats[pos] > 0 {
			return raw.Seats[pos] - 1
		}
		return pos
	}

	h := history.Hand{ID: id, BigBlind: bb}
	stacks := make([]int, count)
	for pos := 0; pos < count; pos++ {
		chips := 0
		if pos < len(raw.StartingStacks) {
			chips = raw.StartingStacks[pos]
		}
		stacks[pos] = chips
		h.Players = append(h.Players, history.Player{
			ID:      raw.Players[pos],
			Seat:    seatAt(pos),
			StackBB: float64(chips) / bb,
		})
	}
	h.ButtonSeat = phhButtonSeat(raw, seatAt, count)

	// Antes and blinds come before the action list. AmountBB carries the
	// street total, so a blind on top of an ante posts the sum.
	committed := make([]int, count)
	post := func(pos, chips int) {
		if chips <= 0 || pos >= count {
			return
		}
		if chips > stacks[pos] {
			chips = stacks[pos]
		}
		committed[pos] += chips
		stacks[pos] -= chips
		h.Actions = append(h.Actions, history.Action{
			PlayerID: raw.Players[pos],
			Street:   history.Preflop,
			Kind:     history.Post,
			AmountBB: float64(committed[pos]) / bb,
			AllIn:    stacks[pos] == 0,
		})
	}
	for pos, ante := range raw.Antes {
		post(pos, ante)
	}
	currentBet := 0
	for pos, blind := range raw.BlindsOrStraddles {
		post(pos, blind)
		if pos < count && committed[pos] > currentBet {
			currentBet = committed[pos]
		}
	}

	var board []poker.Card
	shown := make(map[string]poker.Hand)
	for _, rawAct := range raw.Actions {
		line := strings.TrimSpace(rawAct)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "d dh "):
			if err := phhHoleDeal(line, raw.Players, shown); err != nil {
				warns = append(warns, fmt.Sprintf("hand %s: %v", id, err))
			}
		case strings.HasPrefix(line, "d db "):
			cards, _, err := parseCardRun(strings.TrimPrefix(line, "d db "))
			if err != nil {
				warns = append(warns, fmt.Sprintf("hand %s: board %v", id, err))
				continue
			}
			board = appendBoard(board, cards)
			// fresh street
			currentBet = 0
			for i := range committed {
				committed[i] = 0
			}
		case strings.HasPrefix(line, "p"):
			warn, err := phhPlayerAction(line, raw.Players, &h, shown, board, stacks, committed, &currentBet, bb)
			if warn != "" {
				warns = append(warns, fmt.Sprintf("hand %s: %s", id, warn))
			}
			if err != nil {
				return history.Hand{}, warns, err
			}
		default:
			warns = append(warns, fmt.Sprintf("hand %s: skipped action %q", id, line))
		}
	}

	if len(board) >= 3 {
		h.Board.Flop = append([]poker.Card(nil), board[:3]...)
	}
	if len(board) >= 4 {
		h.Board.Turn = board[3]
	}
	if len(board) >= 5 {
		h.Board.River = board[4]
	}
	if len(shown) > 0 {
		h.Shown = shown
	}
	h.EnsureActionIDs()

	if err := h.Validate(); err != nil {
		return history.Hand{}, warns, err
	}
	return h, warns, nil
}

// phhButtonSeat follows the PHH position convention: heads-up the first
// position holds the button, otherwise the last position does. Metadata may
// pin it explicitly.
func phhButtonSeat(raw phhHand, seatAt func(int) int, count int) int {
	if raw.Metadata != nil {
		if v, ok := metadataInt(raw.Metadata, "button_seat"); ok && v > 0 {
			return v - 1
		}
	}
	if count == 2 {
		return seatAt(0)
	}
	return seatAt(count - 1)
}

func metadataInt(meta map[string]any, key string) (int, bool) {
	switch v := meta[key].(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func phhHoleDeal(line string, players []string, shown map[string]poker.Hand) error {
	parts := strings.Fields(line)
	if len(parts) < 4 {
		return fmt.Errorf("short hole deal %q", line)
	}
	pos := parsePHHSeat(parts[2])
	if pos < 0 || pos >= len(players) {
		return fmt.Errorf("hole deal for unknown position %q", parts[2])
	}
	cards, hidden, err := parseCardRun(parts[3])
	if err != nil {
		return fmt.Errorf("hole cards %v", err)
	}
	if !hidden && len(cards) > 0 {
		shown[players[pos]] = poker.NewHand(cards...)
	}
	return nil
}

func phhPlayerAction(line string, players []string, h *history.Hand, shown map[string]poker.Hand, board []poker.Card, stacks, committed []int, currentBet *int, bb float64) (string, error) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return fmt.Sprintf("skipped action %q", line), nil
	}
	pos := parsePHHSeat(parts[0])
	if pos < 0 || pos >= len(players) {
		return fmt.Sprintf("action by unknown position %q", parts[0]), nil
	}
	st := streetForBoard(len(board))
	name := players[pos]

	switch parts[1] {
	case "f":
		h.Actions = append(h.Actions, history.Action{PlayerID: name, Street: st, Kind: history.Fold})
	case "cc":
		toCall := *currentBet - committed[pos]
		if toCall <= 0 {
			h.Actions = append(h.Actions, history.Action{PlayerID: name, Street: st, Kind: history.Check})
			return "", nil
		}
		if toCall > stacks[pos] {
			toCall = stacks[pos]
		}
		committed[pos] += toCall
		stacks[pos] -= toCall
		h.Actions = append(h.Actions, history.Action{
			PlayerID: name,
			Street:   st,
			Kind:     history.Call,
			AmountBB: float64(committed[pos]) / bb,
			AllIn:    stacks[pos] == 0,
		})
	case "cbr":
		if len(parts) < 3 {
			return "", fmt.Errorf("missing amount in %q", line)
		}
		total, err := strconv.Atoi(parts[2])
		if err != nil {
			return "", fmt.Errorf("bad amount in %q", line)
		}
		add := total - committed[pos]
		if add < 0 {
			add = 0
		}
		if add > stacks[pos] {
			add = stacks[pos]
			total = committed[pos] + add
		}
		kind := history.Raise
		if *currentBet == 0 {
			kind = history.Bet
		}
		committed[pos] = total
		stacks[pos] -= add
		if total > *currentBet {
			*currentBet = total
		}
		h.Actions = append(h.Actions, history.Action{
			PlayerID: name,
			Street:   st,
			Kind:     kind,
			AmountBB: float64(total) / bb,
			AllIn:    stacks[pos] == 0,
		})
	case "sm":
		if len(parts) >= 3 {
			cards, hidden, err := parseCardRun(parts[2])
			if err == nil && !hidden && len(cards) > 0 {
				shown[name] = poker.NewHand(cards...)
			}
		}
	default:
		return fmt.Sprintf("skipped action %q", line), nil
	}
	return "", nil
}

func parsePHHSeat(token string) int {
	if strings.HasPrefix(token, "p") {
		if v, err := strconv.Atoi(token[1:]); err == nil {
			return v - 1
		}
	}
	return -1
}

// appendBoard merges a dealt run into the board, tolerating legacy entries
// that repeat the whole board.
func appendBoard(board []poker.Card, cards []poker.Card) []poker.Card {
	if len(board) > 0 && len(cards) >= len(board) {
		return append([]poker.Card(nil), cards...)
	}
	return append(board, cards...)
}
