package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/wisp/clump"
	"github.com/banshee-data/wispify/internal/wisp/pipeline"
	"github.com/banshee-data/wispify/internal/wisp/randutil"
	"github.com/banshee-data/wispify/internal/wisp/spectral"
	"github.com/banshee-data/wispify/internal/wisp/synth"
)

// DefaultConfigPath is the canonical synthesis defaults file.
const DefaultConfigPath = "config/synthesis.defaults.json"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// SynthesisConfig holds every tunable of the clump and synthesize stages.
// Unset fields fall back to the package defaults through the Get* methods,
// so partial files are safe.
type SynthesisConfig struct {
	// Clumping
	PullRank     *int     `json:"pull_rank,omitempty" toml:"pull_rank,omitempty"`
	SmallestNode *int     `json:"smallest_node,omitempty" toml:"smallest_node,omitempty"`
	Ratio        *float64 `json:"ratio,omitempty" toml:"ratio,omitempty"`
	Policy       *string  `json:"policy,omitempty" toml:"policy,omitempty"` // "uniform" or "inverse"

	// Strand synthesis; ranges are [low, high] pairs
	RootTiming         []float64 `json:"root_timing,omitempty" toml:"root_timing,omitempty"`
	LengthFraction     []float64 `json:"length_fraction,omitempty" toml:"length_fraction,omitempty"`
	WispRadius         []float64 `json:"wisp_radius,omitempty" toml:"wisp_radius,omitempty"`
	Dropout            *float64  `json:"dropout,omitempty" toml:"dropout,omitempty"`
	Up                 []float64 `json:"up,omitempty" toml:"up,omitempty"`
	Resolution         *int      `json:"resolution,omitempty" toml:"resolution,omitempty"`
	ShortCarrierPoints *int      `json:"short_carrier_points,omitempty" toml:"short_carrier_points,omitempty"`
	MinSpectralPoints  *int      `json:"min_spectral_points,omitempty" toml:"min_spectral_points,omitempty"`
	Mode               *int      `json:"mode,omitempty" toml:"mode,omitempty"` // 2 planar, 3 volumetric

	// Batch
	Seed    *uint64 `json:"seed,omitempty" toml:"seed,omitempty"`
	Workers *int    `json:"workers,omitempty" toml:"workers,omitempty"`
	OnError *string `json:"on_error,omitempty" toml:"on_error,omitempty"` // "skip" or "abort"
}

// LoadSynthesisConfig reads a .json or .toml config file.
func LoadSynthesisConfig(path string) (*SynthesisConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".toml" {
		return nil, fmt.Errorf("config file must have .json or .toml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &SynthesisConfig{}
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config keys: %v", undecoded)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are set. Cross-field checks happen when
// the stage parameters are built.
func (c *SynthesisConfig) Validate() error {
	if c.PullRank != nil && *c.PullRank < 1 {
		return fmt.Errorf("pull_rank must be at least 1, got %d", *c.PullRank)
	}
	if c.SmallestNode != nil && *c.SmallestNode < 1 {
		return fmt.Errorf("smallest_node must be at least 1, got %d", *c.SmallestNode)
	}
	if c.Policy != nil {
		if _, err := clump.ParsePolicy(*c.Policy); err != nil {
			return err
		}
	}
	for _, r := range []struct {
		name string
		v    []float64
	}{
		{"root_timing", c.RootTiming},
		{"length_fraction", c.LengthFraction},
		{"wisp_radius", c.WispRadius},
	} {
		if r.v != nil && len(r.v) != 2 {
			return fmt.Errorf("%s must have 2 values, got %d", r.name, len(r.v))
		}
	}
	if c.Up != nil && len(c.Up) != 3 {
		return fmt.Errorf("up must have 3 values, got %d", len(c.Up))
	}
	if c.Dropout != nil && (*c.Dropout < 0 || *c.Dropout > 1) {
		return fmt.Errorf("dropout must be between 0 and 1, got %f", *c.Dropout)
	}
	if c.Resolution != nil && *c.Resolution < 0 {
		return fmt.Errorf("resolution must be non-negative, got %d", *c.Resolution)
	}
	if c.Mode != nil {
		if err := spectral.Mode(*c.Mode).Validate(); err != nil {
			return err
		}
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.OnError != nil {
		if _, err := pipeline.ParseFailurePolicy(*c.OnError); err != nil {
			return err
		}
	}
	return nil
}

// GetPullRank returns the pull_rank value or the default.
func (c *SynthesisConfig) GetPullRank() int {
	if c.PullRank == nil {
		return clump.DefaultPullRank
	}
	return *c.PullRank
}

// GetSmallestNode returns the smallest_node value or the default.
func (c *SynthesisConfig) GetSmallestNode() int {
	if c.SmallestNode == nil {
		return clump.DefaultLeafThreshold
	}
	return *c.SmallestNode
}

// GetRatio returns the ratio value or the default (disabled).
func (c *SynthesisConfig) GetRatio() float64 {
	if c.Ratio == nil {
		return clump.DefaultRatio
	}
	return *c.Ratio
}

// GetPolicy returns the zone selection policy or the default.
func (c *SynthesisConfig) GetPolicy() clump.Policy {
	if c.Policy == nil {
		return clump.DefaultPolicy
	}
	p, err := clump.ParsePolicy(*c.Policy)
	if err != nil {
		return clump.DefaultPolicy
	}
	return p
}

func pair(v []float64, def [2]float64) [2]float64 {
	if len(v) != 2 {
		return def
	}
	return [2]float64{v[0], v[1]}
}

// GetRootTiming returns the root_timing range or the default.
func (c *SynthesisConfig) GetRootTiming() [2]float64 {
	return pair(c.RootTiming, synth.DefaultRootTiming)
}

// GetLengthFraction returns the length_fraction range or the default.
func (c *SynthesisConfig) GetLengthFraction() [2]float64 {
	return pair(c.LengthFraction, synth.DefaultLengthFraction)
}

// GetWispRadius returns the wisp_radius range or the default.
func (c *SynthesisConfig) GetWispRadius() [2]float64 {
	return pair(c.WispRadius, synth.DefaultWispRadius)
}

// GetDropout returns the dropout value or the default.
func (c *SynthesisConfig) GetDropout() float64 {
	if c.Dropout == nil {
		return synth.DefaultDropout
	}
	return *c.Dropout
}

// GetUp returns the up vector or the default.
func (c *SynthesisConfig) GetUp() r3.Vec {
	if len(c.Up) != 3 {
		return synth.DefaultUp
	}
	return r3.Vec{X: c.Up[0], Y: c.Up[1], Z: c.Up[2]}
}

// GetResolution returns the output point count; 0 keeps the natural count.
func (c *SynthesisConfig) GetResolution() int {
	if c.Resolution == nil {
		return 0
	}
	return *c.Resolution
}

func (c *SynthesisConfig) GetShortCarrierPoints() int {
	if c.ShortCarrierPoints == nil {
		return synth.DefaultShortCarrierPoints
	}
	return *c.ShortCarrierPoints
}

func (c *SynthesisConfig) GetMinSpectralPoints() int {
	if c.MinSpectralPoints == nil {
		return synth.DefaultMinSpectralPoints
	}
	return *c.MinSpectralPoints
}

// GetMode returns the displacement mode or the default (planar).
func (c *SynthesisConfig) GetMode() spectral.Mode {
	if c.Mode == nil {
		return spectral.Planar
	}
	return spectral.Mode(*c.Mode)
}

// GetSeed returns the run seed or the default.
func (c *SynthesisConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return randutil.DefaultSeed
	}
	return *c.Seed
}

// GetWorkers returns the worker count; 0 means GOMAXPROCS.
func (c *SynthesisConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetOnError returns the batch failure policy or the default (skip).
func (c *SynthesisConfig) GetOnError() pipeline.FailurePolicy {
	if c.OnError == nil {
		return pipeline.Skip
	}
	p, err := pipeline.ParseFailurePolicy(*c.OnError)
	if err != nil {
		return pipeline.Skip
	}
	return p
}

// ClumpParams assembles the clump stage parameters.
func (c *SynthesisConfig) ClumpParams() clump.Params {
	return clump.Params{
		PullRank:      c.GetPullRank(),
		LeafThreshold: c.GetSmallestNode(),
		Ratio:         c.GetRatio(),
		Policy:        c.GetPolicy(),
		Seed:          c.GetSeed(),
		Workers:       c.GetWorkers(),
	}
}

// SynthParams assembles the per-strand parameters.
func (c *SynthesisConfig) SynthParams() synth.Params {
	return synth.Params{
		RootTiming:         c.GetRootTiming(),
		LengthFraction:     c.GetLengthFraction(),
		WispRadius:         c.GetWispRadius(),
		Dropout:            c.GetDropout(),
		Up:                 c.GetUp(),
		Resolution:         c.GetResolution(),
		ShortCarrierPoints: c.GetShortCarrierPoints(),
		MinSpectralPoints:  c.GetMinSpectralPoints(),
		Mode:               c.GetMode(),
	}
}

// PipelineParams assembles the batch parameters, including SynthParams.
func (c *SynthesisConfig) PipelineParams() pipeline.Params {
	return pipeline.Params{
		Synth:         c.SynthParams(),
		Seed:          c.GetSeed(),
		Workers:       c.GetWorkers(),
		FailurePolicy: c.GetOnError(),
	}
}
