package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"plate-annotator/internal/annotation"
)

// FormatVersion is the current dataset document version. Version 1 files
// carry the retired three-level taxonomy; the migrator keys off the
// literal value strings, not this field, since the oldest files predate
// it entirely.
const FormatVersion = 2

// ErrCorruptDocument is returned when a dataset file is structurally
// unusable: malformed JSON or missing required top-level keys. Unlike
// per-record failures it aborts the whole load.
var ErrCorruptDocument = errors.New("corrupt dataset document")

// ErrConcurrentSave is returned when a save is requested while another
// save on the same store is still in flight.
var ErrConcurrentSave = errors.New("save already in flight")

// File is the on-disk dataset document.
type File struct {
	FormatVersion int                   `json:"format_version"`
	PlateID       string                `json:"plate_id"`
	Records       []annotation.Document `json:"records"`
}

// SkippedRecord names one record dropped during load and why.
type SkippedRecord struct {
	WellNumber int
	Reason     string
}

// LoadReport aggregates the per-record outcomes of a load. Skipped
// records are surfaced here rather than silently dropped; the document
// itself loading is the only hard requirement.
type LoadReport struct {
	Loaded  int
	Skipped []SkippedRecord
}

// Clean reports whether every record loaded.
func (r LoadReport) Clean() bool {
	return len(r.Skipped) == 0
}

// Load reads a dataset document, migrating each record to the current
// taxonomy. Structural problems fail the whole load with
// ErrCorruptDocument; individual records that fail migration or
// validation are skipped and recorded in the report.
func Load(path string) (*Store, LoadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("read dataset: %w", err)
	}

	// Pointer fields distinguish a missing key from a zero value.
	var raw struct {
		FormatVersion *int                   `json:"format_version"`
		PlateID       *string                `json:"plate_id"`
		Records       *[]annotation.Document `json:"records"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, LoadReport{}, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, path, err)
	}
	if raw.PlateID == nil || raw.Records == nil {
		return nil, LoadReport{}, fmt.Errorf("%w: %s: missing plate_id or records", ErrCorruptDocument, path)
	}

	store := New(*raw.PlateID)
	var report LoadReport
	for _, doc := range *raw.Records {
		rec, err := annotation.FromDocument(store.plateID, doc)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedRecord{
				WellNumber: doc.WellNumber,
				Reason:     err.Error(),
			})
			slog.Warn("skipping dataset record",
				"path", path, "well", doc.WellNumber, "reason", err)
			continue
		}
		store.records[rec.WellNumber] = rec
		report.Loaded++
	}
	return store, report, nil
}

// Save writes the dataset document atomically: the bytes go to a
// temporary file in the target directory which is then renamed over the
// destination, so a crash mid-write never corrupts the previous good
// file. A second Save while one is in flight fails with
// ErrConcurrentSave; writes are never interleaved.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrConcurrentSave, path)
	}
	s.saving = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	if s.beforeWrite != nil {
		s.beforeWrite()
	}

	docs := make([]annotation.Document, 0, len(s.records))
	for _, rec := range s.Records() {
		docs = append(docs, rec.Document())
	}
	file := File{
		FormatVersion: FormatVersion,
		PlateID:       s.plateID,
		Records:       docs,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp dataset: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp dataset: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace dataset: %w", err)
	}
	return nil
}
