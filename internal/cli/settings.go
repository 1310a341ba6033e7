package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/banshee-data/wispify/internal/config"
	"github.com/banshee-data/wispify/internal/fsutil"
	"github.com/banshee-data/wispify/internal/wisp/curvemath"
	"github.com/banshee-data/wispify/internal/wisp/strandio"
)

type override func(*config.SynthesisConfig)

// settings copies the loaded config and applies the overrides of every flag
// set on the command line.
func (c *CLI) settings(cmd *cobra.Command, overrides map[string]override) (*config.SynthesisConfig, error) {
	cfg := *c.Config
	for name, apply := range overrides {
		if cmd.Flags().Changed(name) {
			apply(&cfg)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readCurves loads the polylines of an OBJ file, optionally chaining
// two-point segment records back into whole strands.
func readCurves(fsys fsutil.FileSystem, name string, join bool) ([]curvemath.Curve, error) {
	cs, err := strandio.ReadCurveSet(fsys, name)
	if err != nil {
		return nil, err
	}
	if join {
		cs.Strands = strandio.JoinSegments(cs.Strands)
	}
	return cs.Curves()
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
