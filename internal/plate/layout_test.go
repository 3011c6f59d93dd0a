package plate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-annotator/pkg/geometry"
)

func TestDefaultLayoutValid(t *testing.T) {
	require.NoError(t, DefaultLayout().Validate())
}

func TestLayoutValidateRejectsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Layout)
	}{
		{"wrong grid", func(l *Layout) { l.Rows = 8 }},
		{"zero pitch", func(l *Layout) { l.PitchX = 0 }},
		{"zero diameter", func(l *Layout) { l.WellDiameter = 0 }},
		{"diameter exceeds pitch", func(l *Layout) { l.WellDiameter = 200 }},
		{"bad variant", func(l *Layout) { l.Variant = "round" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLayout()
			tt.mutate(&l)
			assert.Error(t, l.Validate())
		})
	}
}

func TestRowColRoundTrip(t *testing.T) {
	l := DefaultLayout()
	for well := 1; well <= WellCount; well++ {
		row, col, err := l.RowCol(well)
		require.NoError(t, err)
		back, err := l.WellAt(row, col)
		require.NoError(t, err)
		assert.Equal(t, well, back)
	}
}

func TestRowColRejectsOutOfRange(t *testing.T) {
	l := DefaultLayout()
	for _, well := range []int{0, -1, 121, 200} {
		_, _, err := l.RowCol(well)
		assert.ErrorIs(t, err, ErrInvalidWellNumber, "well %d", well)
	}
}

// Every well must map to a distinct center: the grid mapping is a
// bijection over [1, 120].
func TestWellCentersInjective(t *testing.T) {
	l := DefaultLayout()
	seen := make(map[geometry.Point2D]int, WellCount)
	for well := 1; well <= WellCount; well++ {
		c, err := l.WellCenter(well)
		require.NoError(t, err)
		prev, dup := seen[c]
		require.False(t, dup, "wells %d and %d share center %v", prev, well, c)
		seen[c] = well
	}
	assert.Len(t, seen, WellCount)
}

func TestWellCenterCorners(t *testing.T) {
	l := DefaultLayout()

	c1, err := l.WellCenter(1)
	require.NoError(t, err)
	assert.Equal(t, geometry.NewPoint2D(750, 392), c1)

	// Well 12 is the last column of the first row.
	c12, err := l.WellCenter(12)
	require.NoError(t, err)
	assert.Equal(t, geometry.NewPoint2D(750+11*145, 392), c12)

	// Well 120 is the bottom-right corner.
	c120, err := l.WellCenter(120)
	require.NoError(t, err)
	assert.Equal(t, geometry.NewPoint2D(750+11*145, 392+9*145), c120)
}

func TestLabels(t *testing.T) {
	l := DefaultLayout()

	tests := []struct {
		well  int
		label string
	}{
		{1, "A1"},
		{12, "A12"},
		{13, "B1"},
		{109, "J1"},
		{120, "J12"},
	}
	for _, tt := range tests {
		label, err := l.Label(tt.well)
		require.NoError(t, err)
		assert.Equal(t, tt.label, label)

		back, err := l.ParseLabel(tt.label)
		require.NoError(t, err)
		assert.Equal(t, tt.well, back)
	}
}

func TestParseLabelRejectsGarbage(t *testing.T) {
	l := DefaultLayout()
	for _, label := range []string{"", "A", "K1", "A0", "A13", "1A", "AA1"} {
		_, err := l.ParseLabel(label)
		assert.Error(t, err, "label %q", label)
	}
}

func TestVariantStartWell(t *testing.T) {
	assert.Equal(t, 1, VariantStandard.StartWell())
	assert.Equal(t, 5, VariantOffset.StartWell())
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantStandard, v)

	v, err = ParseVariant("Offset")
	require.NoError(t, err)
	assert.Equal(t, VariantOffset, v)

	_, err = ParseVariant("hexagonal")
	assert.Error(t, err)
}

func TestNavigationInfo(t *testing.T) {
	l := DefaultLayout()

	// Top-left corner.
	info, err := l.NavigationInfo(1)
	require.NoError(t, err)
	assert.Zero(t, info.Up)
	assert.Zero(t, info.Left)
	assert.Zero(t, info.Prev)
	assert.Equal(t, 13, info.Down)
	assert.Equal(t, 2, info.Right)
	assert.Equal(t, 2, info.Next)

	// Interior well.
	info, err = l.NavigationInfo(50)
	require.NoError(t, err)
	assert.Equal(t, 38, info.Up)
	assert.Equal(t, 62, info.Down)
	assert.Equal(t, 49, info.Left)
	assert.Equal(t, 51, info.Right)

	// Bottom-right corner.
	info, err = l.NavigationInfo(120)
	require.NoError(t, err)
	assert.Zero(t, info.Down)
	assert.Zero(t, info.Right)
	assert.Zero(t, info.Next)
	assert.Equal(t, 108, info.Up)
	assert.Equal(t, 119, info.Prev)
}

func TestRecalibrateOriginShiftsAllWells(t *testing.T) {
	l := DefaultLayout()
	shifted := l.RecalibrateOrigin(geometry.NewPoint2D(760, 400))

	// The original layout is untouched.
	assert.Equal(t, geometry.NewPoint2D(750, 392), l.FirstWell)

	for _, well := range []int{1, 12, 57, 120} {
		orig, err := l.WellCenter(well)
		require.NoError(t, err)
		moved, err := shifted.WellCenter(well)
		require.NoError(t, err)
		assert.InDelta(t, orig.X+10, moved.X, 1e-9)
		assert.InDelta(t, orig.Y+8, moved.Y, 1e-9)
	}
}
