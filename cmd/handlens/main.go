package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/handlens/handlens/internal/archive"
	"github.com/handlens/handlens/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Config string `short:"c" type:"path" default:"handlens.hcl" help:"Path to HCL config file"`
	Debug  bool   `help:"Enable debug logging"`
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`

	Import  ImportCmd  `cmd:"" help:"Parse hand history files into the archive"`
	Analyze AnalyzeCmd `cmd:"" help:"Grade hero decisions in stored or given hands"`
	Replay  ReplayCmd  `cmd:"" help:"Step through one hand with its analysis"`
	Stats   StatsCmd   `cmd:"" help:"Summarize stored analysis runs"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("handlens"),
		kong.Description("Hand history analyzer: opponent ranges, response estimates and EV grades"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// setup loads the config file and builds the command's logger.
func setup(g *Globals, prefix string) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if g.Debug {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
		Prefix:          prefix,
	})
	return cfg, logger, nil
}

// openStore opens the archive named by the config.
func openStore(cfg *config.Config) (*archive.Store, error) {
	return archive.Open(cfg.Archive.Path, quartz.NewReal())
}
