package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"

	"github.com/handlens/handlens/analyzer"
	"github.com/handlens/handlens/history"
	"github.com/handlens/handlens/internal/archive"
	"github.com/handlens/handlens/internal/config"
	"github.com/handlens/handlens/internal/handlog"
	"github.com/handlens/handlens/internal/replay"
)

// ReplayCmd opens the interactive viewer for one hand.
type ReplayCmd struct {
	Target string `arg:"" name:"hand-id|file" help:"Stored hand id or history file"`
	Hero   string `help:"Hero player id, overriding the recorded one"`
}

func (c *ReplayCmd) Run(g *Globals) error {
	cfg, logger, err := setup(g, "replay")
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	hand, records, err := c.load(context.Background(), cfg, store, logger)
	if err != nil {
		return err
	}
	return replay.Run(hand, records)
}

// load resolves the target. File targets are analyzed on the fly; stored
// hands reuse the latest saved analysis when one fits.
func (c *ReplayCmd) load(ctx context.Context, cfg *config.Config, store *archive.Store, logger *log.Logger) (history.Hand, []analyzer.ActionAnalysis, error) {
	if _, statErr := os.Stat(c.Target); statErr == nil {
		res, err := handlog.ParseFile(c.Target)
		if err != nil {
			return history.Hand{}, nil, err
		}
		if len(res.Hands) > 1 {
			logger.Warn("file holds multiple hands, replaying the first", "hands", len(res.Hands))
		}
		return c.analyzed(cfg, res.Hands[0])
	}

	hand, err := store.GetHand(ctx, c.Target)
	if err != nil {
		return history.Hand{}, nil, err
	}

	if c.Hero == "" || c.Hero == hand.HeroID {
		stored, err := store.AnalysesForHand(ctx, hand.ID)
		if err != nil && !errors.Is(err, archive.ErrNoRuns) {
			return history.Hand{}, nil, err
		}
		if len(stored) > 0 {
			records := make([]analyzer.ActionAnalysis, len(stored))
			for i, sa := range stored {
				records[i] = sa.Record
			}
			return hand, records, nil
		}
	}
	return c.analyzed(cfg, hand)
}

func (c *ReplayCmd) analyzed(cfg *config.Config, hand history.Hand) (history.Hand, []analyzer.ActionAnalysis, error) {
	ha, err := analyzer.Analyze(hand, c.Hero, cfg.AnalyzerConfig())
	if err != nil {
		return history.Hand{}, nil, err
	}
	if c.Hero != "" {
		hand.HeroID = c.Hero
	}
	return hand, ha.Actions, nil
}
