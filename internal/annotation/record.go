// Package annotation defines the validated per-well annotation record
// and its serialized document form.
package annotation

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"plate-annotator/internal/plate"
	"plate-annotator/internal/taxonomy"
)

// ErrValidation is returned when a record's fields are inconsistent with
// the vocabulary or the plate layout.
var ErrValidation = errors.New("invalid annotation")

// Source identifies how an annotation record came to exist.
type Source string

const (
	SourceManual          Source = "manual"
	SourceEnhancedManual  Source = "enhanced_manual"
	SourceConfigImport    Source = "config_import"
	SourceModelSuggestion Source = "model_suggestion"
)

// Valid reports whether the source is part of the vocabulary.
func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceEnhancedManual, SourceConfigImport, SourceModelSuggestion:
		return true
	}
	return false
}

func (s Source) String() string {
	return string(s)
}

// ConfigImportConfidence is the default confidence assigned to records
// synthesized from an imported legacy config.
const ConfigImportConfidence = 0.8

// Key uniquely identifies a record within a store.
type Key struct {
	PlateID    string
	WellNumber int
}

// Record is one well's annotation. CreatedAt is the ISO-8601 creation
// timestamp as first written; it is carried verbatim through every
// save/load cycle and never regenerated on reload.
type Record struct {
	PlateID    string
	WellNumber int

	Microbe      taxonomy.MicrobeType
	Level        taxonomy.GrowthLevel
	Pattern      taxonomy.GrowthPattern
	Interference []taxonomy.Interference
	Confidence   float64

	Source    Source
	Confirmed bool
	CreatedAt string
}

// New creates a validated record with a fresh creation timestamp.
func New(plateID string, well int, microbe taxonomy.MicrobeType, level taxonomy.GrowthLevel,
	pattern taxonomy.GrowthPattern, interference []taxonomy.Interference,
	confidence float64, source Source) (Record, error) {

	rec := Record{
		PlateID:      plateID,
		WellNumber:   well,
		Microbe:      microbe,
		Level:        level,
		Pattern:      pattern,
		Interference: normalizeInterference(interference),
		Confidence:   confidence,
		Source:       source,
		CreatedAt:    time.Now().Format(time.RFC3339),
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Default returns the record a well resolves to when nothing has been
// annotated: negative, clean, no interference, full confidence, manual,
// unconfirmed.
func Default(plateID string, well int) Record {
	return Record{
		PlateID:    plateID,
		WellNumber: well,
		Microbe:    taxonomy.MicrobeBacteria,
		Level:      taxonomy.GrowthNegative,
		Pattern:    taxonomy.PatternClean,
		Confidence: 1.0,
		Source:     SourceManual,
		CreatedAt:  time.Now().Format(time.RFC3339),
	}
}

// Key returns the record's store key.
func (r Record) Key() Key {
	return Key{PlateID: r.PlateID, WellNumber: r.WellNumber}
}

// Validate checks the record against the vocabulary and the grid.
func (r Record) Validate() error {
	if r.WellNumber < 1 || r.WellNumber > plate.WellCount {
		return fmt.Errorf("%w: well number %d not in [1, %d]", ErrValidation, r.WellNumber, plate.WellCount)
	}
	if !r.Microbe.Valid() {
		return fmt.Errorf("%w: microbe type %q", ErrValidation, r.Microbe)
	}
	if !r.Level.Valid() {
		return fmt.Errorf("%w: growth level %q", ErrValidation, r.Level)
	}
	if !taxonomy.ValidPattern(r.Pattern, r.Level, r.Microbe) {
		return fmt.Errorf("%w: growth pattern %q not valid for %s/%s", ErrValidation, r.Pattern, r.Level, r.Microbe)
	}
	for _, f := range r.Interference {
		if !f.Valid() {
			return fmt.Errorf("%w: interference factor %q", ErrValidation, f)
		}
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.3f not in [0, 1]", ErrValidation, r.Confidence)
	}
	if !r.Source.Valid() {
		return fmt.Errorf("%w: annotation source %q", ErrValidation, r.Source)
	}
	return nil
}

// Label returns the canonical statistics-grouping label: growth level
// and pattern joined by an underscore, followed by the sorted
// interference factors each prefixed with '+'. Deterministic regardless
// of the insertion order of the interference set.
func (r Record) Label() string {
	var b strings.Builder
	b.WriteString(string(r.Level))
	b.WriteByte('_')
	b.WriteString(string(r.Pattern))
	for _, f := range normalizeInterference(r.Interference) {
		b.WriteByte('+')
		b.WriteString(string(f))
	}
	return b.String()
}

// IsDefault reports whether every classification field still holds its
// default value, i.e. the well counts as unannotated.
func (r Record) IsDefault() bool {
	return r.Microbe == taxonomy.MicrobeBacteria &&
		r.Level == taxonomy.GrowthNegative &&
		r.Pattern == taxonomy.PatternClean &&
		len(r.Interference) == 0 &&
		r.Confidence == 1.0 &&
		r.Source == SourceManual &&
		!r.Confirmed
}

// CreatedTime parses the creation timestamp. Documents written by this
// tool use RFC 3339; older files may carry bare ISO-8601 without a zone.
func (r Record) CreatedTime() (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, r.CreatedAt); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable created_at %q", r.CreatedAt)
}

// Equal reports field-wise equality, including CreatedAt.
func (r Record) Equal(other Record) bool {
	return r.PlateID == other.PlateID &&
		r.WellNumber == other.WellNumber &&
		r.Microbe == other.Microbe &&
		r.Level == other.Level &&
		r.Pattern == other.Pattern &&
		slices.Equal(normalizeInterference(r.Interference), normalizeInterference(other.Interference)) &&
		r.Confidence == other.Confidence &&
		r.Source == other.Source &&
		r.Confirmed == other.Confirmed &&
		r.CreatedAt == other.CreatedAt
}

// normalizeInterference sorts and deduplicates an interference set.
func normalizeInterference(in []taxonomy.Interference) []taxonomy.Interference {
	if len(in) == 0 {
		return nil
	}
	out := append([]taxonomy.Interference(nil), in...)
	slices.Sort(out)
	return slices.Compact(out)
}
