package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-annotator/internal/plate"
	"plate-annotator/internal/taxonomy"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	layout := cfg.PlateLayout()

	require.NoError(t, layout.Validate())
	assert.Equal(t, plate.VariantStandard, layout.Variant)
	assert.Equal(t, 750.0, layout.FirstWell.X)
	assert.Equal(t, 392.0, layout.FirstWell.Y)
	assert.Equal(t, taxonomy.MicrobeBacteria, cfg.MicrobeType())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	content := `
[plate]
variant = "offset"
first_well_x = 760.5
first_well_y = 400.0
microbe = "fungi"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	layout := cfg.PlateLayout()
	assert.Equal(t, plate.VariantOffset, layout.Variant)
	assert.Equal(t, 5, layout.StartWell())
	assert.Equal(t, 760.5, layout.FirstWell.X)
	// Unset keys keep their defaults.
	assert.Equal(t, 145.0, layout.PitchX)
	assert.Equal(t, taxonomy.MicrobeFungi, cfg.MicrobeType())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad variant", "[plate]\nvariant = \"hex\"\n"},
		{"bad microbe", "[plate]\nmicrobe = \"virus\"\n"},
		{"bad geometry", "[plate]\nwell_diameter = -5.0\n"},
		{"malformed toml", "[plate\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "app.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
