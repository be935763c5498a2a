package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/handlens/handlens/internal/archive"
	"github.com/handlens/handlens/internal/stats"
)

// StatsCmd summarizes a stored analysis run.
type StatsCmd struct {
	RunID string `name:"run" help:"Run id (default: the latest run)"`
	Hero  string `help:"Only count hands with this hero"`
}

func (c *StatsCmd) Run(g *Globals) error {
	cfg, _, err := setup(g, "stats")
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	totals, err := store.Totals(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Archive: %d hands, %d runs, %d stored analyses\n",
		totals.Hands, totals.Runs, totals.Analyses)

	runID := c.RunID
	if runID == "" {
		latest, err := store.LatestRun(ctx)
		if errors.Is(err, archive.ErrNoRuns) {
			return errors.New("no analysis runs stored; run 'handlens analyze --save' first")
		}
		if err != nil {
			return err
		}
		runID = latest.ID
		fmt.Printf("Latest run %s started %s\n", latest.ID, latest.StartedAt.Format(time.RFC3339))
	}

	stored, err := store.AnalysesForRun(ctx, runID)
	if err != nil {
		return err
	}

	heroHands := map[string]bool{}
	if c.Hero != "" {
		infos, err := store.ListHands(ctx)
		if err != nil {
			return err
		}
		for _, info := range infos {
			if info.HeroID == c.Hero {
				heroHands[info.ID] = true
			}
		}
	}

	session := &stats.Session{}
	for _, sa := range stored {
		if c.Hero != "" && !heroHands[sa.HandID] {
			continue
		}
		session.Add(sa.HandID, sa.Record)
	}
	if session.Actions == 0 {
		fmt.Println("No analyses matched")
		return nil
	}
	if err := session.Validate(); err != nil {
		return fmt.Errorf("session ledger: %w", err)
	}
	fmt.Println(session.Render())

	// Cross-run context when the archive holds more than the shown run.
	if totals.Runs > 1 {
		counts, err := store.VerdictCounts(ctx, "")
		if err != nil {
			return err
		}
		fmt.Printf("\nAll runs: %d positive / %d neutral / %d negative\n",
			counts["positive"], counts["neutral"], counts["negative"])

		aggs, err := store.AggregateByStreet(ctx, "")
		if err != nil {
			return err
		}
		fmt.Println("All runs by street:")
		for _, agg := range aggs {
			fmt.Printf("  %-8s %6d actions  mean delta %6.3f  mean ev %+6.2f\n",
				agg.Street, agg.Actions, agg.MeanDelta, agg.MeanTotalEV)
		}
	}
	return nil
}
