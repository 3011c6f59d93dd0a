// Package config loads the annotator's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"plate-annotator/internal/plate"
	"plate-annotator/internal/taxonomy"
	"plate-annotator/pkg/geometry"
)

const defaultConfigFile = "plate-annotator.toml"

// Config is the top-level application configuration.
type Config struct {
	Plate   PlateConfig   `toml:"plate"`
	Suggest SuggestConfig `toml:"suggest"`
	Log     LogConfig     `toml:"log"`
}

// PlateConfig describes the well grid in original image coordinates.
type PlateConfig struct {
	Variant      string  `toml:"variant"`
	FirstWellX   float64 `toml:"first_well_x"`
	FirstWellY   float64 `toml:"first_well_y"`
	PitchX       float64 `toml:"pitch_x"`
	PitchY       float64 `toml:"pitch_y"`
	WellDiameter float64 `toml:"well_diameter"`
	Microbe      string  `toml:"microbe"`
}

// SuggestConfig tunes the automatic growth suggester.
type SuggestConfig struct {
	BlurKernel    int     `toml:"blur_kernel"`
	DarkThreshold float64 `toml:"dark_threshold"`
	MinCoverage   float64 `toml:"min_coverage"`
	HeavyCoverage float64 `toml:"heavy_coverage"`
	CenterRatio   float64 `toml:"center_ratio"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Default returns the configuration used when no file is present,
// matching the standard panoramic scan geometry.
func Default() Config {
	layout := plate.DefaultLayout()
	return Config{
		Plate: PlateConfig{
			Variant:      layout.Variant.String(),
			FirstWellX:   layout.FirstWell.X,
			FirstWellY:   layout.FirstWell.Y,
			PitchX:       layout.PitchX,
			PitchY:       layout.PitchY,
			WellDiameter: layout.WellDiameter,
			Microbe:      string(taxonomy.MicrobeBacteria),
		},
		Suggest: SuggestConfig{
			BlurKernel:    5,
			DarkThreshold: 110,
			MinCoverage:   0.02,
			HeavyCoverage: 0.45,
			CenterRatio:   2.0,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from path, or the default file when path is
// empty. A missing file yields the defaults, not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := plate.ParseVariant(c.Plate.Variant); err != nil {
		return err
	}
	if _, err := taxonomy.ParseMicrobeType(c.Plate.Microbe); err != nil {
		return err
	}
	return c.PlateLayout().Validate()
}

// PlateLayout builds the well grid layout from the configuration.
func (c Config) PlateLayout() plate.Layout {
	variant, err := plate.ParseVariant(c.Plate.Variant)
	if err != nil {
		variant = plate.VariantStandard
	}
	return plate.Layout{
		Rows:         plate.GridRows,
		Cols:         plate.GridCols,
		FirstWell:    geometry.Point2D{X: c.Plate.FirstWellX, Y: c.Plate.FirstWellY},
		PitchX:       c.Plate.PitchX,
		PitchY:       c.Plate.PitchY,
		WellDiameter: c.Plate.WellDiameter,
		Variant:      variant,
	}
}

// MicrobeType returns the configured organism class.
func (c Config) MicrobeType() taxonomy.MicrobeType {
	m, err := taxonomy.ParseMicrobeType(c.Plate.Microbe)
	if err != nil {
		return taxonomy.MicrobeBacteria
	}
	return m
}
