package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/banshee-data/wispify/internal/config"
	"github.com/banshee-data/wispify/internal/wisp/spectral"
	"github.com/banshee-data/wispify/internal/wisp/spectrastore"
	"github.com/banshee-data/wispify/internal/wisp/strandio"
)

// profileCurves analyzes every curve of an OBJ file. Curves that fail are
// logged and left out; it is an error only when none survive.
func (c *CLI) profileCurves(cmd *cobra.Command, name string, join bool, mode spectral.Mode) ([]spectral.Profile, int, error) {
	logger := loggerFromContext(cmd.Context())
	curves, err := readCurves(c.FS, name, join)
	if err != nil {
		return nil, 0, err
	}
	profiles, err := spectral.CollectProfiles(curves, mode)
	if err != nil {
		if len(profiles) == 0 {
			return nil, 0, err
		}
		logger.Warn("some curves were not analyzed", "err", err)
	}
	logger.Info("analyzed curves", "path", name, "curves", len(curves), "profiles", len(profiles), "mode", mode)
	return profiles, len(curves) - len(profiles), nil
}

func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		out        string
		database   string
		collection string
		mode       int
		replace    bool
		join       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <curves.obj>",
		Short: "Extract amplitude and phase spectra from example curves",
		Long: `Measures every curve's displacement from its own smooth centerline and
stores the resulting amplitude and phase spectra, either as a library JSON
file (--out) or as a named collection in a spectra database (--library-db).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" && database == "" {
				return errors.New("nowhere to write: pass --out or --library-db")
			}
			cfg, err := c.settings(cmd, map[string]override{
				"mode": func(s *config.SynthesisConfig) { s.Mode = &mode },
			})
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())

			profiles, _, err := c.profileCurves(cmd, args[0], join, cfg.GetMode())
			if err != nil {
				return err
			}
			lib, err := spectral.NewLibraryFromProfiles(profiles)
			if err != nil {
				return err
			}

			if out != "" {
				if err := strandio.WriteLibraryJSON(c.FS, out, lib); err != nil {
					return err
				}
				logger.Info("wrote library", "path", out)
			}
			if database == "" {
				return nil
			}

			if collection == "" {
				collection = baseName(args[0])
			}
			store, err := spectrastore.Open(database)
			if err != nil {
				return err
			}
			defer store.Close()
			if replace {
				err := store.DeleteCollection(cmd.Context(), collection)
				if err != nil && !errors.Is(err, spectrastore.ErrNotFound) {
					return err
				}
			}
			saved, err := store.SaveCollection(cmd.Context(), collection, cfg.GetMode(), lib)
			if err != nil {
				return err
			}
			logger.Info("saved collection", "name", saved.Name, "id", saved.ID, "db", database)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&out, "out", "", "library JSON to write")
	f.StringVar(&database, "library-db", "", "spectra database to store the collection in")
	f.StringVar(&collection, "collection", "", "collection name (defaults to the curve file name)")
	f.IntVar(&mode, "mode", int(spectral.Planar), "displacement axes, 2 or 3")
	f.BoolVar(&replace, "replace", false, "overwrite an existing collection of the same name")
	f.BoolVar(&join, "join-segments", false, "chain two-point segment records into whole curves")
	return cmd
}

func (c *CLI) statsCommand() *cobra.Command {
	var (
		out  string
		mode int
		join bool
	)

	cmd := &cobra.Command{
		Use:   "stats <curves.obj>",
		Short: "Summarize the spectra of a curve collection",
		Long: `Analyzes every curve, resamples the spectra onto the finest frequency grid
and prints the bin-wise mean and spread of amplitude and phase.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.settings(cmd, map[string]override{
				"mode": func(s *config.SynthesisConfig) { s.Mode = &mode },
			})
			if err != nil {
				return err
			}
			profiles, skipped, err := c.profileCurves(cmd, args[0], join, cfg.GetMode())
			if err != nil {
				return err
			}
			st, err := spectral.CollectionStatistics(profiles)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.Out, StyleTitle.Render(fmt.Sprintf("%s: %d curves, %d skipped, %d bins",
				args[0], len(profiles), skipped, len(st.Frequencies))))
			fmt.Fprintln(c.Out, statisticsTable(st).Render())

			if out != "" {
				if err := strandio.WriteStatisticsJSON(c.FS, out, st); err != nil {
					return err
				}
				loggerFromContext(cmd.Context()).Info("wrote statistics", "path", out)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&out, "out", "", "also write the statistics as JSON")
	f.IntVar(&mode, "mode", int(spectral.Planar), "displacement axes, 2 or 3")
	f.BoolVar(&join, "join-segments", false, "chain two-point segment records into whole curves")
	return cmd
}

// statisticsTable lays out one row per frequency bin with a mean±std cell
// for the amplitude and phase of every axis.
func statisticsTable(st spectral.Statistics) *table.Table {
	axes := st.MeanAmplitude.Axes()
	headers := []string{"bin", "freq"}
	for a := 0; a < axes; a++ {
		headers = append(headers, fmt.Sprintf("amp[%d]", a))
	}
	for a := 0; a < axes; a++ {
		headers = append(headers, fmt.Sprintf("phase[%d]", a))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		Headers(headers...)
	for b, freq := range st.Frequencies {
		row := []string{strconv.Itoa(b), formatStat(freq)}
		for a := 0; a < axes; a++ {
			row = append(row, formatStat(st.MeanAmplitude[a][b])+" ± "+formatStat(st.StdAmplitude[a][b]))
		}
		for a := 0; a < axes; a++ {
			row = append(row, formatStat(st.MeanPhase[a][b])+" ± "+formatStat(st.StdPhase[a][b]))
		}
		t.Row(row...)
	}
	return t
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
