// Package config loads the tool configuration from HCL files.
package config

import (
	"fmt"
	"math"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/handlens/handlens/analyzer"
)

// Config is the complete tool configuration.
type Config struct {
	LogLevel string            `hcl:"log_level,optional"`
	Analysis *AnalysisSettings `hcl:"analysis,block"`
	Archive  *ArchiveSettings  `hcl:"archive,block"`
}

// AnalysisSettings tunes the analysis engine.
type AnalysisSettings struct {
	RakePct      float64 `hcl:"rake_pct,optional"`
	RakeCap      float64 `hcl:"rake_cap,optional"`
	Tau          float64 `hcl:"tau,optional"`
	PruneTau     float64 `hcl:"prune_tau,optional"`
	NeutralFold  float64 `hcl:"neutral_fold,optional"`
	NeutralCall  float64 `hcl:"neutral_call,optional"`
	NeutralRaise float64 `hcl:"neutral_raise,optional"`
	TopN         int     `hcl:"top_n,optional"`
	SeedSalt     string  `hcl:"seed_salt,optional"`
	Parallelism  int     `hcl:"parallelism,optional"`
}

// ArchiveSettings locates the hand archive.
type ArchiveSettings struct {
	Path string `hcl:"path,optional"`
}

// Default returns the stock configuration.
func Default() *Config {
	base := analyzer.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Analysis: &AnalysisSettings{
			Tau:          base.Tau,
			NeutralFold:  base.NeutralFold,
			NeutralCall:  base.NeutralCall,
			NeutralRaise: base.NeutralRaise,
			TopN:         base.TopN,
		},
		Archive: &ArchiveSettings{Path: "handlens.db"},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults; a present file decodes on top of them.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", path, diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %s", path, diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults backfills unset values. A zero rake, prune override, seed
// salt or parallelism is meaningful and stays.
func (c *Config) applyDefaults() {
	def := Default()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Analysis == nil {
		c.Analysis = def.Analysis
	}
	a := c.Analysis
	if a.Tau == 0 {
		a.Tau = def.Analysis.Tau
	}
	if a.NeutralFold == 0 && a.NeutralCall == 0 && a.NeutralRaise == 0 {
		a.NeutralFold = def.Analysis.NeutralFold
		a.NeutralCall = def.Analysis.NeutralCall
		a.NeutralRaise = def.Analysis.NeutralRaise
	}
	if a.TopN == 0 {
		a.TopN = def.Analysis.TopN
	}
	if c.Archive == nil {
		c.Archive = def.Archive
	}
	if c.Archive.Path == "" {
		c.Archive.Path = def.Archive.Path
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	if c.Analysis == nil {
		return fmt.Errorf("missing analysis settings")
	}
	a := c.Analysis
	if a.RakePct < 0 || a.RakePct >= 1 {
		return fmt.Errorf("rake_pct %.3f outside [0, 1)", a.RakePct)
	}
	if a.RakeCap < 0 {
		return fmt.Errorf("rake_cap must not be negative")
	}
	if a.Tau <= 0 {
		return fmt.Errorf("tau %.4f must be positive", a.Tau)
	}
	if a.PruneTau < 0 || a.PruneTau >= 1 {
		return fmt.Errorf("prune_tau %.4f outside [0, 1)", a.PruneTau)
	}
	if a.NeutralFold < 0 || a.NeutralCall < 0 || a.NeutralRaise < 0 {
		return fmt.Errorf("neutral prior must not be negative")
	}
	if sum := a.NeutralFold + a.NeutralCall + a.NeutralRaise; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("neutral prior sums to %.4f, want 1", sum)
	}
	if a.TopN < 1 {
		return fmt.Errorf("top_n %d must be at least 1", a.TopN)
	}
	if a.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative")
	}

	if c.Archive == nil || c.Archive.Path == "" {
		return fmt.Errorf("missing archive path")
	}
	return nil
}

// AnalyzerConfig maps the analysis settings onto the engine configuration.
func (c *Config) AnalyzerConfig() analyzer.Config {
	a := c.Analysis
	return analyzer.Config{
		RakePct:      a.RakePct,
		RakeCap:      a.RakeCap,
		Tau:          a.Tau,
		PruneTau:     a.PruneTau,
		NeutralFold:  a.NeutralFold,
		NeutralCall:  a.NeutralCall,
		NeutralRaise: a.NeutralRaise,
		TopN:         a.TopN,
		SeedSalt:     a.SeedSalt,
	}
}
