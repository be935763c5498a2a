// Package handlog parses hand-history files into history.Hand records.
// Two formats are supported: PHH TOML session files as written by poker
// servers, and the plain-text logs card rooms hand to players. Amounts are
// normalized to big blinds during parsing; the original big-blind stake is
// kept on the hand for display.
package handlog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/handlens/handlens/history"
	"github.com/handlens/handlens/poker"
)

// Format identifies a supported hand-history file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatPHH
	FormatSiteLog
)

func (f Format) String() string {
	switch f {
	case FormatPHH:
		return "phh"
	case FormatSiteLog:
		return "sitelog"
	default:
		return "unknown"
	}
}

// Result carries the hands parsed from one input. Warnings record skipped
// lines and dropped hands; a result with warnings is still usable.
type Result struct {
	Hands    []history.Hand
	Warnings []string
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

var (
	siteHeaderRe = regexp.MustCompile(`Hand #([\w-]+)`)
	phhKeyRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*\s*=`)
)

// DetectFormat sniffs the input. PHH files open with TOML assignments or a
// section header; site logs with a hand header line.
func DetectFormat(data []byte) Format {
	for _, line := range strings.Split(string(data), "\n") {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			continue
		}
		if siteHeaderRe.MatchString(trim) {
			return FormatSiteLog
		}
		if strings.HasPrefix(trim, "[") || phhKeyRe.MatchString(trim) {
			return FormatPHH
		}
		return FormatUnknown
	}
	return FormatUnknown
}

// Parse decodes every hand in data, detecting the format first.
func Parse(data []byte) (*Result, error) {
	switch DetectFormat(data) {
	case FormatPHH:
		return ParsePHH(data)
	case FormatSiteLog:
		return ParseSiteLog(data)
	default:
		return nil, fmt.Errorf("handlog: unrecognized format")
	}
}

// ParseFile reads and parses one hand-history file.
func ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	res, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return res, nil
}

// parseCardRun splits a concatenated card run ("AhKd") into cards in deal
// order. Hidden cards ("????" or "??") report hidden true.
func parseCardRun(run string) ([]poker.Card, bool, error) {
	run = strings.TrimSpace(run)
	if run == "" {
		return nil, false, nil
	}
	if strings.Contains(run, "?") {
		return nil, true, nil
	}
	if len(run)%2 != 0 {
		return nil, false, fmt.Errorf("odd card run %q", run)
	}
	cards := make([]poker.Card, 0, len(run)/2)
	for i := 0; i+2 <= len(run); i += 2 {
		c, err := poker.ParseCard(run[i : i+2])
		if err != nil {
			return nil, false, err
		}
		cards = append(cards, c)
	}
	return cards, false, nil
}

// parseCardList parses space-separated card tokens, tolerating the "10h"
// spelling some rooms use for tens.
func parseCardList(s string) ([]poker.Card, error) {
	var out []poker.Card
	for _, tok := range strings.Fields(s) {
		if len(tok) == 3 && strings.HasPrefix(tok, "10") {
			tok = "T" + tok[2:]
		}
		c, err := poker.ParseCard(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// streetForBoard maps a board size to the street being played.
func streetForBoard(n int) history.Street {
	switch {
	case n >= 5:
		return history.River
	case n == 4:
		return history.Turn
	case n >= 3:
		return history.Flop
	default:
		return history.Preflop
	}
}
