package annotation

import (
	"fmt"
	"time"

	"plate-annotator/internal/taxonomy"
)

// Document is the JSON wire form of a record inside a dataset document.
// Confidence is a pointer so legacy files that predate the field default
// to full confidence instead of zero.
type Document struct {
	WellNumber          int      `json:"well_number"`
	MicrobeType         string   `json:"microbe_type"`
	GrowthLevel         string   `json:"growth_level"`
	GrowthPattern       string   `json:"growth_pattern,omitempty"`
	InterferenceFactors []string `json:"interference_factors"`
	Confidence          *float64 `json:"confidence"`
	AnnotationSource    string   `json:"annotation_source"`
	IsConfirmed         bool     `json:"is_confirmed"`
	CreatedAt           string   `json:"created_at"`
}

// Document converts the record to its wire form. It always writes the
// current taxonomy and the original, unmodified creation timestamp.
func (r Record) Document() Document {
	factors := make([]string, 0, len(r.Interference))
	for _, f := range normalizeInterference(r.Interference) {
		factors = append(factors, string(f))
	}
	conf := r.Confidence
	return Document{
		WellNumber:          r.WellNumber,
		MicrobeType:         string(r.Microbe),
		GrowthLevel:         string(r.Level),
		GrowthPattern:       string(r.Pattern),
		InterferenceFactors: factors,
		Confidence:          &conf,
		AnnotationSource:    string(r.Source),
		IsConfirmed:         r.Confirmed,
		CreatedAt:           r.CreatedAt,
	}
}

// FromDocument builds a record from its wire form. Taxonomy migration
// runs before validation so documents written under retired vocabularies
// load successfully; the on-disk document is never rewritten. CreatedAt
// is carried verbatim; only a missing timestamp is stamped with the load
// time.
func FromDocument(plateID string, doc Document) (Record, error) {
	microbe, err := taxonomy.ParseMicrobeType(doc.MicrobeType)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	level, err := taxonomy.MigrateGrowthLevel(doc.GrowthLevel)
	if err != nil {
		return Record{}, err
	}
	pattern, err := taxonomy.MigrateGrowthPattern(doc.GrowthPattern, level, microbe)
	if err != nil {
		return Record{}, err
	}

	var factors []taxonomy.Interference
	for _, raw := range doc.InterferenceFactors {
		f, err := taxonomy.MigrateInterference(raw)
		if err != nil {
			return Record{}, err
		}
		factors = append(factors, f)
	}

	confidence := 1.0
	if doc.Confidence != nil {
		confidence = *doc.Confidence
	}

	source := Source(doc.AnnotationSource)
	if doc.AnnotationSource == "" {
		source = SourceManual
	}

	createdAt := doc.CreatedAt
	if createdAt == "" {
		createdAt = time.Now().Format(time.RFC3339)
	}

	rec := Record{
		PlateID:      plateID,
		WellNumber:   doc.WellNumber,
		Microbe:      microbe,
		Level:        level,
		Pattern:      pattern,
		Interference: normalizeInterference(factors),
		Confidence:   confidence,
		Source:       source,
		Confirmed:    doc.IsConfirmed,
		CreatedAt:    createdAt,
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}
