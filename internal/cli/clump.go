package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/banshee-data/wispify/internal/config"
	"github.com/banshee-data/wispify/internal/security"
	"github.com/banshee-data/wispify/internal/wisp/clump"
	"github.com/banshee-data/wispify/internal/wisp/randutil"
	"github.com/banshee-data/wispify/internal/wisp/strandio"
)

func (c *CLI) clumpCommand() *cobra.Command {
	var (
		outDir       string
		suffix       string
		policy       string
		pullRank     int
		smallestNode int
		workers      int
		ratio        float64
		seed         uint64
	)

	cmd := &cobra.Command{
		Use:   "clump <roots.obj> <guides.obj>",
		Short: "Assign every dense root to a nearby guide",
		Long: `Reads the dense root points and the guide root points, picks a guide for
every dense root among its nearest candidates and writes the groupings table
<guides>-<roots>-groupings<suffix>.csv to the output directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.settings(cmd, map[string]override{
				"pull-rank":     func(s *config.SynthesisConfig) { s.PullRank = &pullRank },
				"smallest-node": func(s *config.SynthesisConfig) { s.SmallestNode = &smallestNode },
				"ratio":         func(s *config.SynthesisConfig) { s.Ratio = &ratio },
				"policy":        func(s *config.SynthesisConfig) { s.Policy = &policy },
				"seed":          func(s *config.SynthesisConfig) { s.Seed = &seed },
				"workers":       func(s *config.SynthesisConfig) { s.Workers = &workers },
			})
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())

			roots, err := strandio.ReadPoints(c.FS, args[0])
			if err != nil {
				return err
			}
			guides, err := strandio.ReadPoints(c.FS, args[1])
			if err != nil {
				return err
			}
			logger.Info("loaded points", "roots", len(roots), "guides", len(guides))

			p := cfg.ClumpParams()
			logger.Debug("clump settings", "pull_rank", p.PullRank, "smallest_node", p.LeafThreshold,
				"ratio", p.Ratio, "policy", p.Policy, "seed", p.Seed)
			table, err := clump.Assign(cmd.Context(), roots, guides, p)
			if err != nil {
				return err
			}

			name := filepath.Join(outDir, strandio.GroupingsName(args[1], args[0], suffix))
			if err := security.ValidatePathWithinDirectory(name, outDir); err != nil {
				return err
			}
			if err := c.FS.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			if err := strandio.WriteTable(c.FS, name, table); err != nil {
				return err
			}
			logger.Info("wrote groupings", "path", name, "guides", len(table), "roots", table.Len())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&outDir, "out", ".", "directory for the groupings table")
	f.StringVar(&suffix, "suffix", "", "suffix appended to the table name")
	f.IntVar(&pullRank, "pull-rank", clump.DefaultPullRank, "number of nearest guides a root may join")
	f.IntVar(&smallestNode, "smallest-node", clump.DefaultLeafThreshold, "largest point count of an octree leaf")
	f.Float64Var(&ratio, "ratio", clump.DefaultRatio, "nearest/second distance ratio that forces the nearest guide (negative disables)")
	f.StringVar(&policy, "policy", clump.DefaultPolicy.String(), "zone selection: uniform or inverse")
	f.Uint64Var(&seed, "seed", randutil.DefaultSeed, "random seed")
	f.IntVar(&workers, "workers", 0, "parallel workers (0 uses every CPU)")
	return cmd
}
