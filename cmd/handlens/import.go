package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/handlens/handlens/internal/handlog"
)

// ImportCmd parses hand history files and stores every hand they hold.
type ImportCmd struct {
	Files []string `arg:"" name:"files" type:"existingfile" help:"Hand history files (.phh or site logs)"`
}

func (c *ImportCmd) Run(g *Globals) error {
	cfg, logger, err := setup(g, "import")
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	total := 0
	for _, path := range c.Files {
		res, err := handlog.ParseFile(path)
		if err != nil {
			return fmt.Errorf("import %s: %w", filepath.Base(path), err)
		}
		for _, w := range res.Warnings {
			logger.Warn(w, "file", filepath.Base(path))
		}
		for i := range res.Hands {
			if err := store.PutHand(ctx, res.Hands[i]); err != nil {
				return fmt.Errorf("store hand %s: %w", res.Hands[i].ID, err)
			}
		}
		logger.Info("imported", "file", filepath.Base(path), "hands", len(res.Hands))
		total += len(res.Hands)
	}

	fmt.Printf("Imported %d hands from %d files\n", total, len(c.Files))
	return nil
}
