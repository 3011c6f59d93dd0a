package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-annotator/internal/annotation"
	"plate-annotator/internal/plate"
	"plate-annotator/internal/taxonomy"
)

func TestRelativeMovesRequireCursor(t *testing.T) {
	s, _, _ := newState(t)
	assert.ErrorIs(t, s.Next(), errNoCursor)
	assert.ErrorIs(t, s.Up(), errNoCursor)
	assert.ErrorIs(t, s.First(), errNoCursor)
	assert.ErrorIs(t, s.NextUnannotated(), errNoCursor)
}

func TestGridMoves(t *testing.T) {
	s, _, _ := newState(t)
	require.NoError(t, s.NavigateTo("plate-07", 50))

	steps := []struct {
		move func() error
		want int
	}{
		{s.Right, 51},
		{s.Down, 63},
		{s.Left, 62},
		{s.Up, 50},
		{s.Next, 51},
		{s.Prev, 50},
	}
	for _, step := range steps {
		require.NoError(t, step.move())
		_, well := s.Current()
		assert.Equal(t, step.want, well)
	}
}

func TestMovesStopAtGridEdges(t *testing.T) {
	s, _, _ := newState(t)

	require.NoError(t, s.NavigateTo("plate-07", 1))
	require.NoError(t, s.Up())
	require.NoError(t, s.Left())
	require.NoError(t, s.Prev())
	_, well := s.Current()
	assert.Equal(t, 1, well)

	require.NoError(t, s.NavigateTo("plate-07", 120))
	require.NoError(t, s.Down())
	require.NoError(t, s.Right())
	require.NoError(t, s.Next())
	_, well = s.Current()
	assert.Equal(t, 120, well)
}

func TestFirstUsesVariantStartWell(t *testing.T) {
	layout := plate.DefaultLayout()
	layout.Variant = plate.VariantOffset
	provider := newFakeProvider()
	s := New(layout, provider, &fakeLoader{})

	require.NoError(t, s.NavigateTo("plate-07", 60))
	require.NoError(t, s.First())
	_, well := s.Current()
	assert.Equal(t, 5, well)
}

func TestNextUnannotatedSkipsAnnotatedWells(t *testing.T) {
	s, provider, _ := newState(t)
	require.NoError(t, s.NavigateTo("plate-07", 1))

	store, err := provider.Dataset("plate-07")
	require.NoError(t, err)
	for _, well := range []int{2, 3} {
		rec, err := annotation.New("plate-07", well, taxonomy.MicrobeBacteria,
			taxonomy.GrowthPositive, taxonomy.PatternFocal, nil, 0.9, annotation.SourceManual)
		require.NoError(t, err)
		require.NoError(t, store.Upsert(rec))
	}
	// A cleared well holds defaults and still counts as unannotated.
	rec, err := annotation.New("plate-07", 4, taxonomy.MicrobeBacteria,
		taxonomy.GrowthPositive, taxonomy.PatternFocal, nil, 0.9, annotation.SourceManual)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(rec))
	store.Clear(4)

	require.NoError(t, s.NextUnannotated())
	_, well := s.Current()
	assert.Equal(t, 4, well)
}

func TestNextUnannotatedNoOpWhenAllAnnotated(t *testing.T) {
	s, provider, _ := newState(t)
	require.NoError(t, s.NavigateTo("plate-07", 118))

	store, err := provider.Dataset("plate-07")
	require.NoError(t, err)
	for well := 119; well <= 120; well++ {
		rec, err := annotation.New("plate-07", well, taxonomy.MicrobeBacteria,
			taxonomy.GrowthPositive, taxonomy.PatternFocal, nil, 0.9, annotation.SourceManual)
		require.NoError(t, err)
		require.NoError(t, store.Upsert(rec))
	}

	require.NoError(t, s.NextUnannotated())
	_, well := s.Current()
	assert.Equal(t, 118, well)
}
