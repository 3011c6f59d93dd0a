package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-annotator/internal/annotation"
	"plate-annotator/internal/taxonomy"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plate-07.json")

	store := New("plate-07")
	rec := mustRecord(t, "plate-07", 5, taxonomy.GrowthPositive, taxonomy.PatternFocal, 0.9, annotation.SourceManual)
	rec.CreatedAt = "2023-04-11T08:30:00Z"
	require.NoError(t, store.Upsert(rec))
	require.NoError(t, store.Save(path))

	loaded, report, err := Load(path)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, "plate-07", loaded.PlateID())

	got, ok := loaded.Get(5)
	require.True(t, ok)
	assert.True(t, rec.Equal(got))
	// Reload must not regenerate the creation timestamp.
	assert.Equal(t, "2023-04-11T08:30:00Z", got.CreatedAt)
}

func TestSaveWritesVersionedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	store := New("p")
	require.NoError(t, store.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var file File
	require.NoError(t, json.Unmarshal(data, &file))
	assert.Equal(t, FormatVersion, file.FormatVersion)
	assert.Equal(t, "p", file.PlateID)
}

func TestLoadSkipsBadRecordsKeepsGoodOnes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	doc := map[string]any{
		"format_version": 2,
		"plate_id":       "plate-07",
		"records": []map[string]any{
			{"well_number": 1, "growth_level": "negative", "created_at": "2023-01-01T00:00:00Z"},
			{"well_number": 2, "growth_level": "positive", "created_at": "2023-01-01T00:00:00Z"},
			// Out-of-range well: skipped, not fatal.
			{"well_number": 200, "growth_level": "positive", "created_at": "2023-01-01T00:00:00Z"},
			{"well_number": 3, "growth_level": "weak_growth", "created_at": "2023-01-01T00:00:00Z"},
			{"well_number": 4, "growth_level": "negative", "created_at": "2023-01-01T00:00:00Z"},
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	store, report, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Loaded)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 200, report.Skipped[0].WellNumber)
	assert.False(t, report.Clean())
	assert.Equal(t, 4, store.Len())

	// The legacy level migrated on the way in.
	got, ok := store.Get(3)
	require.True(t, ok)
	assert.Equal(t, taxonomy.GrowthPositive, got.Level)
}

func TestLoadCorruptDocument(t *testing.T) {
	dir := t.TempDir()

	malformed := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(malformed, []byte("{not json"), 0644))
	_, _, err := Load(malformed)
	assert.ErrorIs(t, err, ErrCorruptDocument)

	missingKeys := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(missingKeys, []byte(`{"format_version": 2}`), 0644))
	_, _, err = Load(missingKeys)
	assert.ErrorIs(t, err, ErrCorruptDocument)

	_, _, err = Load(filepath.Join(dir, "nonexistent.json"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCorruptDocument)
}

func TestConcurrentSaveRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	store := New("p")

	var reentrant error
	store.beforeWrite = func() {
		// A second save while the first holds the in-flight guard.
		reentrant = store.Save(path)
	}

	require.NoError(t, store.Save(path))
	assert.ErrorIs(t, reentrant, ErrConcurrentSave)

	// The guard clears once the save completes.
	store.beforeWrite = nil
	assert.NoError(t, store.Save(path))
}

func TestSaveReplacesExistingFileAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	store := New("p")
	require.NoError(t, store.Upsert(mustRecord(t, "p", 1,
		taxonomy.GrowthPositive, taxonomy.PatternFocal, 0.9, annotation.SourceManual)))
	require.NoError(t, store.Save(path))

	require.NoError(t, store.Upsert(mustRecord(t, "p", 2,
		taxonomy.GrowthNegative, taxonomy.PatternWeakScattered, 1.0, annotation.SourceManual)))
	require.NoError(t, store.Save(path))

	loaded, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
