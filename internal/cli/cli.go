// Package cli implements the wispify command-line interface.
//
// The commands mirror the stages of the strand pipeline:
//   - clump: assign every dense root to a guide and write the groupings table
//   - analyze: extract amplitude and phase spectra from example curves
//   - stats: summarize the spectra of a curve collection
//   - synthesize: grow one strand per (guide, root) pair
//   - library: list or delete collections in a spectra database
//
// All commands accept --verbose (-v) for debug logging and --config for a
// JSON or TOML settings file; flags given on the command line win over the
// file. The logger travels on the command context.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/banshee-data/wispify/internal/config"
	"github.com/banshee-data/wispify/internal/fsutil"
	"github.com/banshee-data/wispify/internal/monitoring"
	"github.com/banshee-data/wispify/internal/version"
)

// CLI holds state shared by all commands.
type CLI struct {
	FS     fsutil.FileSystem
	Out    io.Writer
	Err    io.Writer
	Config *config.SynthesisConfig

	verbose    bool
	configPath string
}

// New returns a CLI reading and writing through fsys.
func New(fsys fsutil.FileSystem, out, errw io.Writer) *CLI {
	return &CLI{FS: fsys, Out: out, Err: errw, Config: &config.SynthesisConfig{}}
}

// RootCommand creates the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wispify",
		Short:         "wispify grows dense hair strands from sparse guide curves",
		Long:          `wispify clumps dense scalp roots around sparse guide strands and synthesizes a curly strand per root from a library of frequency spectra.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if c.verbose {
				level = log.DebugLevel
			}
			logger := monitoring.NewLogger(c.Err, level)
			monitoring.SetLogger(logger)
			cmd.SetContext(withLogger(cmd.Context(), logger))

			if c.configPath == "" {
				return nil
			}
			cfg, err := config.LoadSynthesisConfig(c.configPath)
			if err != nil {
				return err
			}
			logger.Debug("loaded config", "path", c.configPath)
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(version.String() + "\n")
	root.SetOut(c.Out)
	root.SetErr(c.Err)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "settings file (.json or .toml)")

	root.AddCommand(c.clumpCommand())
	root.AddCommand(c.synthesizeCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.libraryCommand())
	root.AddCommand(c.versionCommand())
	return root
}

// Execute runs the CLI against the real filesystem and standard streams.
func Execute(ctx context.Context) error {
	c := New(fsutil.OSFileSystem{}, os.Stdout, os.Stderr)
	return c.RootCommand().ExecuteContext(ctx)
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(c.Out, version.String()+"\n")
			return err
		},
	}
}
