// Package dataset owns the collection of annotation records for one
// plate: CRUD, JSON persistence with partial-failure reporting, atomic
// saves, and on-demand statistics.
package dataset

import (
	"fmt"
	"sort"
	"sync"

	"plate-annotator/internal/annotation"
)

// Store holds the annotation records of a single plate. At most one
// record exists per well. All operations are synchronous; the only
// internal locking protects the save-in-flight guard.
type Store struct {
	plateID string
	records map[int]annotation.Record

	mu     sync.Mutex
	saving bool

	// test seam: invoked after the in-flight guard is taken, before
	// bytes hit the disk
	beforeWrite func()
}

// New creates an empty store bound to a plate.
func New(plateID string) *Store {
	return &Store{
		plateID: plateID,
		records: make(map[int]annotation.Record),
	}
}

// PlateID returns the plate this store is bound to.
func (s *Store) PlateID() string {
	return s.plateID
}

// Len returns the number of records held.
func (s *Store) Len() int {
	return len(s.records)
}

// Upsert inserts or replaces the record for its well. The record must be
// valid and belong to this store's plate.
func (s *Store) Upsert(rec annotation.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.PlateID != s.plateID {
		return fmt.Errorf("%w: record for plate %q in store for plate %q",
			annotation.ErrValidation, rec.PlateID, s.plateID)
	}
	s.records[rec.WellNumber] = rec
	return nil
}

// Get returns the record for a well, if one exists.
func (s *Store) Get(well int) (annotation.Record, bool) {
	rec, ok := s.records[well]
	return rec, ok
}

// Clear resets a well's annotation to the default classification while
// preserving the original creation timestamp. Wells without a record are
// left untouched. The default-valued record keeps the well counted as
// unannotated in statistics.
func (s *Store) Clear(well int) {
	old, ok := s.records[well]
	if !ok {
		return
	}
	rec := annotation.Default(s.plateID, well)
	rec.CreatedAt = old.CreatedAt
	s.records[well] = rec
}

// Records returns all records ordered by well number.
func (s *Store) Records() []annotation.Record {
	out := make([]annotation.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WellNumber < out[j].WellNumber })
	return out
}
