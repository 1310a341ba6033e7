package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banshee-data/wispify/internal/config"
	"github.com/banshee-data/wispify/internal/wisp/faults"
	"github.com/banshee-data/wispify/internal/wisp/pipeline"
	"github.com/banshee-data/wispify/internal/wisp/randutil"
	"github.com/banshee-data/wispify/internal/wisp/spectral"
	"github.com/banshee-data/wispify/internal/wisp/spectrastore"
	"github.com/banshee-data/wispify/internal/wisp/strandio"
	"github.com/banshee-data/wispify/internal/wisp/synth"
)

// librarySource names where the spectra come from: JSON files or a
// collection in a spectra database.
type librarySource struct {
	amps       string
	phases     string
	database   string
	collection string
}

func (c *CLI) loadLibrary(ctx context.Context, src librarySource) (*spectral.Library, spectral.Mode, error) {
	switch {
	case src.database != "":
		if src.collection == "" {
			return nil, 0, errors.New("--library-db needs --collection")
		}
		store, err := spectrastore.Open(src.database)
		if err != nil {
			return nil, 0, err
		}
		defer store.Close()
		lib, col, err := store.LoadCollection(ctx, src.collection)
		if err != nil {
			return nil, 0, err
		}
		return lib, col.Mode, nil

	case src.amps != "":
		lib, err := strandio.ReadLibraryJSON(c.FS, src.amps)
		if err != nil {
			return nil, 0, err
		}
		if src.phases != "" && src.phases != src.amps {
			phases, err := strandio.ReadLibraryJSON(c.FS, src.phases)
			if err != nil {
				return nil, 0, err
			}
			if lib, err = spectral.NewLibrary(lib.Amplitudes, phases.Phases); err != nil {
				return nil, 0, err
			}
		}
		return lib, spectral.Mode(lib.Amplitudes[0].Axes()), nil
	}
	return nil, 0, errors.New("no spectra: pass --amps or --library-db")
}

func (c *CLI) synthesizeCommand() *cobra.Command {
	var (
		src        librarySource
		tlRand     []float64
		lenRand    []float64
		wispR      []float64
		dropout    float64
		resolution int
		mode       int
		workers    int
		seed       uint64
		onError    string
		join       bool
	)

	cmd := &cobra.Command{
		Use:   "synthesize <guides.obj> <roots.obj> <groupings.csv> <out.obj>",
		Short: "Grow one strand per dense root from its guide",
		Long: `Reads the guide strands, the dense roots and the groupings table written by
clump, and synthesizes a strand for every (guide, root) pair with spectra
drawn from a library. Strands are written to one OBJ file in guide order.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.settings(cmd, map[string]override{
				"tl-rand":    func(s *config.SynthesisConfig) { s.RootTiming = tlRand },
				"len-rand":   func(s *config.SynthesisConfig) { s.LengthFraction = lenRand },
				"wisp-r":     func(s *config.SynthesisConfig) { s.WispRadius = wispR },
				"dropout":    func(s *config.SynthesisConfig) { s.Dropout = &dropout },
				"resolution": func(s *config.SynthesisConfig) { s.Resolution = &resolution },
				"mode":       func(s *config.SynthesisConfig) { s.Mode = &mode },
				"workers":    func(s *config.SynthesisConfig) { s.Workers = &workers },
				"seed":       func(s *config.SynthesisConfig) { s.Seed = &seed },
				"on-error":   func(s *config.SynthesisConfig) { s.OnError = &onError },
			})
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			lib, libMode, err := c.loadLibrary(ctx, src)
			if err != nil {
				return err
			}
			amps, phases := lib.Len()
			logger.Info("loaded spectra", "amplitudes", amps, "phases", phases, "mode", libMode)
			if cfg.Mode == nil {
				m := int(libMode)
				cfg.Mode = &m
			}
			p := cfg.PipelineParams()
			if p.Synth.Mode != libMode {
				return fmt.Errorf("mode %s does not match %s spectra: %w", p.Synth.Mode, libMode, faults.ErrShapeMismatch)
			}

			guides, err := readCurves(c.FS, args[0], join)
			if err != nil {
				return err
			}
			roots, err := strandio.ReadPoints(c.FS, args[1])
			if err != nil {
				return err
			}
			table, err := strandio.ReadTable(c.FS, args[2])
			if err != nil {
				return err
			}
			logger.Info("loaded inputs", "guides", len(guides), "roots", len(roots), "rows", table.Len())

			res, err := pipeline.Run(ctx, pipeline.Inputs{
				Guides:  guides,
				Roots:   roots,
				Table:   table,
				Library: lib,
			}, p)
			if err != nil {
				return err
			}

			if dir := filepath.Dir(args[3]); dir != "." {
				if err := c.FS.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := strandio.WriteCurves(c.FS, args[3], res.Curves); err != nil {
				return err
			}
			logger.Info("wrote strands", "path", args[3], "strands", len(res.Curves), "skipped", len(res.Skipped))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&src.amps, "amps", "", "library JSON supplying amplitude spectra")
	f.StringVar(&src.phases, "phases", "", "library JSON supplying phase spectra (defaults to --amps)")
	f.StringVar(&src.database, "library-db", "", "spectra database to draw from instead of JSON")
	f.StringVar(&src.collection, "collection", "", "collection name in --library-db")
	f.Float64SliceVar(&tlRand, "tl-rand", rangeFlag(synth.DefaultRootTiming), "root timing range, fraction of the carrier rebuilt near the root")
	f.Float64SliceVar(&lenRand, "len-rand", rangeFlag(synth.DefaultLengthFraction), "range of the strand length fraction kept")
	f.Float64SliceVar(&wispR, "wisp-r", rangeFlag(synth.DefaultWispRadius), "wisp radius range {tip, root}")
	f.Float64Var(&dropout, "dropout", synth.DefaultDropout, "probability that a tail point drops out")
	f.IntVar(&resolution, "resolution", 0, "points per output strand (0 keeps the natural count)")
	f.IntVar(&mode, "mode", int(spectral.Planar), "displacement axes, 2 or 3 (defaults to the library's)")
	f.IntVar(&workers, "workers", 0, "parallel workers (0 uses every CPU)")
	f.Uint64Var(&seed, "seed", randutil.DefaultSeed, "random seed")
	f.StringVar(&onError, "on-error", pipeline.Skip.String(), "per-strand failure policy: skip or abort")
	f.BoolVar(&join, "join-segments", false, "chain two-point segment records into whole guides")
	return cmd
}

func rangeFlag(r [2]float64) []float64 {
	return []float64{r[0], r[1]}
}
