package handlog

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/handlens/handlens/history"
	"github.com/handlens/handlens/poker"
)

var (
	stakesRe  = regexp.MustCompile(`\(([^/()\s]+)/([^)\s]+)[^)]*\)`)
	buttonRe  = regexp.MustCompile(`Seat #(\d+) is the button`)
	seatRe    = regexp.MustCompile(`^Seat (\d+): (.+?) \(([^)]+) in chips\)`)
	dealtRe   = regexp.MustCompile(`^Dealt to (.+?) \[([^\]]+)\]`)
	streetRe  = regexp.MustCompile(`^\*\*\* (FLOP|TURN|RIVER) \*\*\*`)
	bracketRe = regexp.MustCompile(`\[([^\]]+)\]`)
	raiseToRe = regexp.MustCompile(`^raises .+? to (\S+)`)
)

// ParseSiteLog parses plain-text card-room logs. Hands that fail structural
// validation are dropped with a warning; unreadable lines inside a hand are
// skipped the same way.
func ParseSiteLog(data []byte) (*Result, error) {
	blocks := splitSiteBlocks(string(data))
	if len(blocks) == 0 {
		return nil, fmt.Errorf("handlog: no hands in site log")
	}

	res := &Result{}
	for _, block := range blocks {
		hand, warns, err := parseSiteHand(block)
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			res.warnf("hand %s dropped: %v", blockID(block), err)
			continue
		}
		res.Hands = append(res.Hands, hand)
	}
	if len(res.Hands) == 0 {
		return nil, fmt.Errorf("handlog: no parseable hands in site log")
	}
	return res, nil
}

func splitSiteBlocks(data string) [][]string {
	var blocks [][]string
	var cur []string
	for _, line := range strings.Split(data, "\n") {
		if siteHeaderRe.MatchString(line) {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
			}
			cur = []string{line}
			continue
		}
		if len(cur) > 0 {
			cur = append(cur, line)
		}
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

func blockID(block []string) string {
	if len(block) == 0 {
		return "?"
	}
	if m := siteHeaderRe.FindStringSubmatch(block[0]); m != nil {
		return m[1]
	}
	return "?"
}

// siteHand accumulates one hand while its lines stream through.
type siteHand struct {
	hand      history.Hand
	bb        float64
	street    history.Street
	committed map[string]float64
	names     []string
	shown     map[string]poker.Hand
	warns     []string
	done      bool
}

func parseSiteHand(block []string) (history.Hand, []string, error) {
	sh := &siteHand{
		committed: make(map[string]float64),
		shown:     make(map[string]poker.Hand),
	}

	head := block[0]
	m := siteHeaderRe.FindStringSubmatch(head)
	if m == nil {
		return history.Hand{}, sh.warns, fmt.Errorf("no hand header")
	}
	sh.hand.ID = m[1]
	stakes := stakesRe.FindStringSubmatch(head)
	if stakes == nil {
		return history.Hand{}, sh.warns, fmt.Errorf("no stakes in header")
	}
	bb, err := parseMoney(stakes[2])
	if err != nil || bb <= 0 {
		return history.Hand{}, sh.warns, fmt.Errorf("bad big blind %q", stakes[2])
	}
	sh.bb = bb
	sh.hand.BigBlind = bb

	for _, line := range block[1:] {
		line = strings.TrimSpace(line)
		if line == "" || sh.done {
			continue
		}
		sh.line(line)
	}

	if len(sh.shown) > 0 {
		sh.hand.Shown = sh.shown
	}
	sh.hand.EnsureActionIDs()
	if err := sh.hand.Validate(); err != nil {
		return history.Hand{}, sh.warns, err
	}
	return sh.hand, sh.warns, nil
}

func (sh *siteHand) line(line string) {
	switch {
	case strings.HasPrefix(line, "*** SUMMARY"):
		sh.done = true
	case strings.HasPrefix(line, "*** SHOW DOWN") || strings.HasPrefix(line, "*** HOLE CARDS"):
		// markers only; shows and deals carry their own lines
	case strings.HasPrefix(line, "***"):
		sh.streetMarker(line)
	case strings.HasPrefix(line, "Table "):
		if m := buttonRe.FindStringSubmatch(line); m != nil {
			seat, _ := strconv.Atoi(m[1])
			sh.hand.ButtonSeat = seat
		}
	case strings.HasPrefix(line, "Seat "):
		sh.seatLine(line)
	case strings.HasPrefix(line, "Dealt to "):
		sh.dealtLine(line)
	case strings.HasPrefix(line, "Uncalled bet") || strings.HasPrefix(line, "Total pot") ||
		strings.HasPrefix(line, "Board "):
		// settlement lines carry no betting information
	default:
		sh.playerLine(line)
	}
}

func (sh *siteHand) streetMarker(line string) {
	m := streetRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	groups := bracketRe.FindAllStringSubmatch(line, -1)
	if len(groups) == 0 {
		sh.warns = append(sh.warns, fmt.Sprintf("hand %s: street marker without cards: %s", sh.hand.ID, line))
		return
	}
	cards, err := parseCardList(groups[len(groups)-1][1])
	if err != nil {
		sh.warns = append(sh.warns, fmt.Sprintf("hand %s: %v", sh.hand.ID, err))
		return
	}
	switch m[1] {
	case "FLOP":
		sh.street = history.Flop
		sh.hand.Board.Flop = cards
	case "TURN":
		sh.street = history.Turn
		if len(cards) == 1 {
			sh.hand.Board.Turn = cards[0]
		}
	case "RIVER":
		sh.street = history.River
		if len(cards) == 1 {
			sh.hand.Board.River = cards[0]
		}
	}
	// street change resets commitments
	for k := range sh.committed {
		delete(sh.committed, k)
	}
}

func (sh *siteHand) seatLine(line string) {
	m := seatRe.FindStringSubmatch(line)
	if m == nil {
		// summary seat recaps land here once actions started; ignore
		return
	}
	seat, _ := strconv.Atoi(m[1])
	name := strings.TrimSpace(m[2])
	chips, err := parseMoney(m[3])
	if err != nil {
		sh.warns = append(sh.warns, fmt.Sprintf("hand %s: bad stack for %s: %v", sh.hand.ID, name, err))
		return
	}
	sh.hand.Players = append(sh.hand.Players, history.Player{
		ID:      name,
		Seat:    seat,
		StackBB: chips / sh.bb,
	})
	sh.names = append(sh.names, name)
	// longest first so "bob" never shadows "bobby"
	sort.Slice(sh.names, func(i, j int) bool { return len(sh.names[i]) > len(sh.names[j]) })
}

func (sh *siteHand) dealtLine(line string) {
	m := dealtRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	cards, err := parseCardList(m[2])
	if err != nil {
		sh.warns = append(sh.warns, fmt.Sprintf("hand %s: hole cards: %v", sh.hand.ID, err))
		return
	}
	sh.shown[m[1]] = poker.NewHand(cards...)
	if sh.hand.HeroID == "" {
		sh.hand.HeroID = m[1]
	}
}

// playerLine handles "name: verb ..." betting lines.
func (sh *siteHand) playerLine(line string) {
	var name, rest string
	for _, n := range sh.names {
		if strings.HasPrefix(line, n+": ") {
			name, rest = n, line[len(n)+2:]
			break
		}
	}
	if name == "" {
		// chat, connection notices, players not seated this hand
		return
	}

	allIn := strings.Contains(rest, "all-in")
	switch {
	case strings.HasPrefix(rest, "folds"):
		sh.addAction(name, history.Fold, 0, false)
	case strings.HasPrefix(rest, "checks"):
		sh.addAction(name, history.Check, 0, false)
	case strings.HasPrefix(rest, "calls "):
		amt, err := firstMoney(rest[len("calls "):])
		if err != nil {
			sh.warnLine(line, err)
			return
		}
		sh.committed[name] += amt
		sh.addAction(name, history.Call, sh.committed[name], allIn)
	case strings.HasPrefix(rest, "bets "):
		amt, err := firstMoney(rest[len("bets "):])
		if err != nil {
			sh.warnLine(line, err)
			return
		}
		sh.committed[name] += amt
		sh.addAction(name, history.Bet, sh.committed[name], allIn)
	case strings.HasPrefix(rest, "raises "):
		m := raiseToRe.FindStringSubmatch(rest)
		if m == nil {
			sh.warnLine(line, fmt.Errorf("no raise target"))
			return
		}
		amt, err := parseMoney(m[1])
		if err != nil {
			sh.warnLine(line, err)
			return
		}
		sh.committed[name] = amt
		sh.addAction(name, history.Raise, amt, allIn)
	case strings.HasPrefix(rest, "posts "):
		amt, err := lastMoney(rest)
		if err != nil {
			sh.warnLine(line, err)
			return
		}
		sh.committed[name] += amt
		sh.addAction(name, history.Post, sh.committed[name], allIn)
	case strings.HasPrefix(rest, "shows "):
		if m := bracketRe.FindStringSubmatch(rest); m != nil {
			if cards, err := parseCardList(m[1]); err == nil {
				sh.shown[name] = poker.NewHand(cards...)
			}
		}
	case strings.HasPrefix(rest, "mucks") || strings.HasPrefix(rest, "doesn't show") ||
		strings.HasPrefix(rest, "collected") || strings.HasPrefix(rest, "said,") ||
		strings.HasPrefix(rest, "joins") || strings.HasPrefix(rest, "leaves") ||
		strings.HasPrefix(rest, "is sitting out") || strings.HasPrefix(rest, "sits out") ||
		strings.HasPrefix(rest, "has timed out") || strings.HasPrefix(rest, "is disconnected") ||
		strings.HasPrefix(rest, "is connected") || strings.HasPrefix(rest, "was removed") ||
		strings.HasPrefix(rest, "finished the tournament"):
		// bookkeeping lines, no betting content
	default:
		sh.warnLine(line, fmt.Errorf("unrecognized action"))
	}
}

func (sh *siteHand) addAction(name string, kind history.ActionKind, total float64, allIn bool) {
	sh.hand.Actions = append(sh.hand.Actions, history.Action{
		PlayerID: name,
		Street:   sh.street,
		Kind:     kind,
		AmountBB: total / sh.bb,
		AllIn:    allIn,
	})
}

func (sh *siteHand) warnLine(line string, err error) {
	sh.warns = append(sh.warns, fmt.Sprintf("hand %s: %v: %s", sh.hand.ID, err, line))
}

// parseMoney reads one monetary token: currency symbol optional, thousands
// separators tolerated, trailing words ("USD") dropped.
func parseMoney(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "$€£¥")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad amount %q", s)
	}
	return v, nil
}

func firstMoney(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("missing amount")
	}
	return parseMoney(fields[0])
}

// lastMoney reads the final monetary token, for lines like
// "posts small & big blinds $1.50".
func lastMoney(s string) (float64, error) {
	fields := strings.Fields(s)
	for i := len(fields) - 1; i >= 0; i-- {
		if v, err := parseMoney(fields[i]); err == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("missing amount")
}
