package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/handlens/handlens/analyzer"
	"github.com/handlens/handlens/history"
	"github.com/handlens/handlens/internal/archive"
	"github.com/handlens/handlens/internal/export"
	"github.com/handlens/handlens/internal/handlog"
	"github.com/handlens/handlens/internal/stats"
)

// AnalyzeCmd runs the analysis pipeline over stored or on-disk hands.
type AnalyzeCmd struct {
	Targets []string `arg:"" optional:"" name:"file|hand-id" help:"History files or stored hand ids (default: every stored hand)"`
	Hero    string   `help:"Hero player id, overriding the recorded one"`
	Save    bool     `help:"Persist this analysis as a new run"`
	Out     string   `short:"o" type:"path" help:"Write the full analysis as JSON to this file"`
	Jobs    int      `short:"j" default:"0" help:"Hands analyzed concurrently (0 = config value, then CPU count)"`
}

func (c *AnalyzeCmd) Run(g *Globals) error {
	cfg, logger, err := setup(g, "analyze")
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	hands, err := c.collectHands(ctx, store, logger)
	if err != nil {
		return err
	}
	if len(hands) == 0 {
		return errors.New("nothing to analyze; import hands first or pass files")
	}

	acfg := cfg.AnalyzerConfig()
	jobs := c.Jobs
	if jobs == 0 {
		jobs = cfg.Analysis.Parallelism
	}
	logger.Debug("analyzing", "hands", len(hands), "jobs", jobs)

	results, err := analyzer.AnalyzeBatch(ctx, hands, c.Hero, acfg, jobs)
	if err != nil {
		return err
	}

	runID := ""
	if c.Save {
		runID, err = store.BeginRun(ctx, acfg)
		if err != nil {
			return err
		}
	}

	session := &stats.Session{}
	report := export.Report{GeneratedAt: time.Now().UTC(), Config: acfg}
	for _, res := range results {
		if res.Err != nil {
			logger.Error("hand failed", "hand", res.HandID, "error", res.Err)
			report.Failed = append(report.Failed, export.FailedHand{HandID: res.HandID, Error: res.Err.Error()})
			continue
		}
		printHandAnalysis(res.Analysis)
		session.AddHand(res.Analysis)
		report.Hands = append(report.Hands, res.Analysis)
		if c.Save {
			if err := store.PutAnalyses(ctx, runID, res.Analysis); err != nil {
				return fmt.Errorf("save analyses for %s: %w", res.HandID, err)
			}
		}
	}

	if session.Actions > 0 {
		fmt.Println()
		fmt.Println(session.Render())
	}
	if c.Out != "" {
		if err := export.WriteJSON(c.Out, report); err != nil {
			return err
		}
		logger.Info("wrote report", "path", c.Out, "hands", len(report.Hands))
	}
	if c.Save {
		fmt.Printf("Saved run %s\n", runID)
	}
	return nil
}

// collectHands resolves the targets. Paths that exist on disk are parsed as
// history files, everything else is looked up in the archive by hand id.
func (c *AnalyzeCmd) collectHands(ctx context.Context, store *archive.Store, logger *log.Logger) ([]history.Hand, error) {
	if len(c.Targets) == 0 {
		infos, err := store.ListHands(ctx)
		if err != nil {
			return nil, err
		}
		hands := make([]history.Hand, 0, len(infos))
		for _, info := range infos {
			h, err := store.GetHand(ctx, info.ID)
			if err != nil {
				return nil, err
			}
			hands = append(hands, h)
		}
		return hands, nil
	}

	var hands []history.Hand
	for _, target := range c.Targets {
		if _, statErr := os.Stat(target); statErr == nil {
			res, err := handlog.ParseFile(target)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", filepath.Base(target), err)
			}
			for _, w := range res.Warnings {
				logger.Warn(w, "file", filepath.Base(target))
			}
			hands = append(hands, res.Hands...)
			continue
		}
		h, err := store.GetHand(ctx, target)
		if err != nil {
			return nil, err
		}
		hands = append(hands, h)
	}
	return hands, nil
}

// printHandAnalysis prints the per-action report for one hand.
func printHandAnalysis(ha analyzer.HandAnalysis) {
	fmt.Printf("\n=== HAND %s (hero %s) ===\n", ha.HandID, ha.HeroID)
	for _, f := range ha.Faults {
		fmt.Printf("  fault: %s\n", f.Error())
	}
	if len(ha.Actions) == 0 {
		fmt.Println("  no voluntary hero actions")
		return
	}

	fmt.Printf("  %-14s %-8s %9s %9s %8s %8s  %s\n",
		"action", "street", "pot", "verdict", "delta", "ev", "best line")
	for _, rec := range ha.Actions {
		fmt.Printf("  %-14s %-8s %7.1fbb %9s %8.3f %+8.2f  %s\n",
			rec.HeroAction, rec.Street, rec.PotBefore, rec.Verdict, rec.Delta, rec.TotalEV, rec.BestLabel)
		for _, f := range rec.Faults {
			fmt.Printf("    fault: %s\n", f.Error())
		}
	}
}
