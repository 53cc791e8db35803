// Package cli implements the macroplace command-line interface.
//
// Every command works on one benchmark from the configured benchmark table:
//   - front: random-guided search for a seed placement
//   - refine: evolutionary refinement of a seed placement
//   - evaluate: metrics of a placement file
//   - sweep: refinement over a grid of objective weights
//   - export: PDF report and DXF drawing of a placement file
//
// All commands support --verbose (-v) for debug-level logging and
// --config to point at a TOML or JSON run configuration.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/macroplace/internal/project"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Version is set at build time.
var Version = "dev"

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// newLogger creates a logger with timestamps formatted as "15:04:05.00".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "macroplace",
		Short:        "Macroplace places chip macros on a grid",
		Long:         `Macroplace is a grid-based macro placer. It builds placements greedily from wirelength, dataflow and regularity cost masks and refines them with swap-based evolutionary search.`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", project.DefaultConfigPath(), "run configuration (.toml or .json)")

	root.AddCommand(c.frontCommand())
	root.AddCommand(c.refineCommand())
	root.AddCommand(c.evaluateCommand())
	root.AddCommand(c.sweepCommand())
	root.AddCommand(c.exportCommand())

	return root
}

// loadConfig reads the run configuration. A missing file yields defaults.
func (c *CLI) loadConfig() (project.Config, error) {
	cfg, err := project.LoadConfig(c.ConfigPath)
	if err != nil {
		return project.Config{}, err
	}
	c.Logger.Debug("config loaded", "path", c.ConfigPath, "benchmarks", len(cfg.Benchmarks))
	return cfg, nil
}

// loadInput reads a benchmark and logs every import warning.
func (c *CLI) loadInput(cfg project.Config, name string) (*project.Input, error) {
	p := newProgress(c.Logger)
	in, err := cfg.LoadInput(name)
	if err != nil {
		return nil, err
	}
	for _, w := range in.Warnings {
		c.Logger.Warn(w, "benchmark", name)
	}
	if len(in.Design.Removed) > 0 {
		c.Logger.Debug("ports removed", "count", len(in.Design.Removed), "policy", in.Bench.Ports)
	}
	p.done("Loaded " + name)
	return in, nil
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
