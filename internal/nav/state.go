// Package nav tracks the current plate/well cursor and drives the
// save-before-move / reload-only-when-needed lifecycle around the
// annotation store.
package nav

import (
	"errors"
	"fmt"

	"plate-annotator/internal/annotation"
	"plate-annotator/internal/dataset"
	"plate-annotator/internal/plate"
	"plate-annotator/internal/taxonomy"
	"plate-annotator/pkg/geometry"
)

// Phase is the lifecycle state of the navigation cursor.
type Phase int

const (
	// PhaseIdle means the current well's annotation matches the store.
	PhaseIdle Phase = iota
	// PhaseDirty means the current well has unsaved edits.
	PhaseDirty
	// PhaseSaving means a navigate-away save is running.
	PhaseSaving
	// PhaseLoading means the navigation target is being resolved.
	PhaseLoading
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDirty:
		return "dirty"
	case PhaseSaving:
		return "saving"
	case PhaseLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// PlateLoader loads the panoramic image of a plate. The navigation
// contract is strict: moving within one plate never calls it, moving to
// a different plate calls it exactly once.
type PlateLoader interface {
	LoadPlate(plateID string) error
}

// DatasetProvider hands out the per-plate annotation store (cached by
// the implementation, so repeated requests for the same plate are cheap)
// and persists it on demand.
type DatasetProvider interface {
	Dataset(plateID string) (*dataset.Store, error)
	Save(plateID string) error
}

// ConfigSource supplies imported legacy-config classifications, used as
// the second resolution priority for wells without a stored record.
type ConfigSource interface {
	Classification(plateID string, well int) (string, bool)
}

// Scheduler defers a callback onto the host UI event loop. Deferred
// callbacks carry no ordering guarantee against newer user input.
type Scheduler interface {
	Schedule(fn func())
}

// WellState is the render-facing view of one well.
type WellState struct {
	WellNumber int
	Center     geometry.Point2D
	Record     annotation.Record
	IsCurrent  bool
}

// State is the navigation cursor and its transition machinery. It is
// single-threaded: every method must be called from the host event loop.
type State struct {
	layout   plate.Layout
	provider DatasetProvider
	loader   PlateLoader
	config   ConfigSource
	sched    Scheduler

	onRefresh func(plateID string, well int)

	phase   Phase
	plateID string
	well    int

	// gen stamps deferred refresh callbacks; a navigation bumps it so
	// stale callbacks drop themselves instead of redrawing an old well
	gen            uint64
	refreshPending bool
}

// Option configures optional collaborators.
type Option func(*State)

// WithConfigSource wires imported legacy-config classifications into
// well-state resolution.
func WithConfigSource(cs ConfigSource) Option {
	return func(s *State) { s.config = cs }
}

// WithScheduler defers highlight refreshes onto the host event loop
// instead of running them inline.
func WithScheduler(sched Scheduler) Option {
	return func(s *State) { s.sched = sched }
}

// WithRefresh registers the highlight-redraw callback.
func WithRefresh(fn func(plateID string, well int)) Option {
	return func(s *State) { s.onRefresh = fn }
}

// New creates a navigation state with no current plate; the first
// NavigateTo loads one.
func New(layout plate.Layout, provider DatasetProvider, loader PlateLoader, opts ...Option) *State {
	s := &State{
		layout:   layout,
		provider: provider,
		loader:   loader,
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current lifecycle phase.
func (s *State) Phase() Phase {
	return s.phase
}

// Current returns the plate and well under the cursor. The plate is
// empty before the first navigation.
func (s *State) Current() (plateID string, well int) {
	return s.plateID, s.well
}

// SetAnnotation records an edit to the current well: the record is
// upserted and the state becomes Dirty until the next navigate-away
// save.
func (s *State) SetAnnotation(rec annotation.Record) error {
	if s.plateID == "" {
		return errors.New("no current plate")
	}
	if rec.PlateID != s.plateID || rec.WellNumber != s.well {
		return fmt.Errorf("record targets %s/%d, cursor is at %s/%d",
			rec.PlateID, rec.WellNumber, s.plateID, s.well)
	}
	store, err := s.provider.Dataset(s.plateID)
	if err != nil {
		return err
	}
	if err := store.Upsert(rec); err != nil {
		return err
	}
	s.phase = PhaseDirty
	return nil
}

// ClearCurrent resets the current well's annotation to defaults and
// marks the state Dirty.
func (s *State) ClearCurrent() error {
	if s.plateID == "" {
		return errors.New("no current plate")
	}
	store, err := s.provider.Dataset(s.plateID)
	if err != nil {
		return err
	}
	store.Clear(s.well)
	s.phase = PhaseDirty
	return nil
}

// NavigateTo moves the cursor. Unsaved edits are saved first (a save
// failure keeps the cursor and the Dirty state). Moving within the same
// plate only refreshes the highlight; moving to a different plate
// reloads the plate image exactly once. On arrival the well state is
// resolved: stored record, then imported config classification, then
// defaults.
func (s *State) NavigateTo(plateID string, well int) error {
	if _, _, err := s.layout.RowCol(well); err != nil {
		return err
	}
	if plateID == s.plateID && well == s.well {
		return nil
	}

	// Supersede any pending deferred refresh.
	s.gen++
	s.refreshPending = false

	if s.phase == PhaseDirty {
		s.phase = PhaseSaving
		if err := s.provider.Save(s.plateID); err != nil {
			s.phase = PhaseDirty
			return fmt.Errorf("save before navigation: %w", err)
		}
	}

	s.phase = PhaseLoading
	crossPlate := plateID != s.plateID
	if crossPlate {
		if err := s.loader.LoadPlate(plateID); err != nil {
			s.phase = PhaseIdle
			return fmt.Errorf("load plate %s: %w", plateID, err)
		}
	}

	store, err := s.provider.Dataset(plateID)
	if err != nil {
		s.phase = PhaseIdle
		return err
	}
	if _, err := s.resolve(store, plateID, well, true); err != nil {
		s.phase = PhaseIdle
		return err
	}

	s.plateID = plateID
	s.well = well
	s.phase = PhaseIdle
	s.requestRefresh()
	return nil
}

// resolve applies the arrival priority. With materialize set, a
// config-sourced classification is upserted into the store so later
// visits restore it verbatim.
func (s *State) resolve(store *dataset.Store, plateID string, well int, materialize bool) (annotation.Record, error) {
	if rec, ok := store.Get(well); ok {
		return rec, nil
	}

	if s.config != nil {
		if raw, ok := s.config.Classification(plateID, well); ok {
			level, pattern, err := taxonomy.MigrateLabel(raw, taxonomy.MicrobeBacteria)
			if err == nil {
				rec, err := annotation.New(plateID, well, taxonomy.MicrobeBacteria,
					level, pattern, nil, annotation.ConfigImportConfidence, annotation.SourceConfigImport)
				if err != nil {
					return annotation.Record{}, err
				}
				if materialize {
					if err := store.Upsert(rec); err != nil {
						return annotation.Record{}, err
					}
				}
				return rec, nil
			}
			// An unmappable config entry falls through to defaults.
		}
	}

	return annotation.Default(plateID, well), nil
}

// WellState returns the render-facing view of a well on the current
// plate: pixel center, its annotation (or the default resolution), and
// whether it is the selected well.
func (s *State) WellState(well int) (WellState, error) {
	center, err := s.layout.WellCenter(well)
	if err != nil {
		return WellState{}, err
	}
	if s.plateID == "" {
		return WellState{}, errors.New("no current plate")
	}
	store, err := s.provider.Dataset(s.plateID)
	if err != nil {
		return WellState{}, err
	}
	rec, err := s.resolve(store, s.plateID, well, false)
	if err != nil {
		return WellState{}, err
	}
	return WellState{
		WellNumber: well,
		Center:     center,
		Record:     rec,
		IsCurrent:  well == s.well,
	}, nil
}

// Statistics returns the current plate's dataset statistics snapshot.
func (s *State) Statistics() (dataset.Statistics, error) {
	if s.plateID == "" {
		return dataset.Statistics{}, errors.New("no current plate")
	}
	store, err := s.provider.Dataset(s.plateID)
	if err != nil {
		return dataset.Statistics{}, err
	}
	return store.Statistics(), nil
}

// requestRefresh schedules a single debounced highlight redraw. The
// generation stamp drops the callback if a newer navigation supersedes
// it before the event loop runs it.
func (s *State) requestRefresh() {
	if s.onRefresh == nil {
		return
	}
	if s.sched == nil {
		s.onRefresh(s.plateID, s.well)
		return
	}
	if s.refreshPending {
		return
	}
	s.refreshPending = true
	gen := s.gen
	plateID, well := s.plateID, s.well
	s.sched.Schedule(func() {
		if gen != s.gen {
			return // superseded; a newer navigation owns the flag
		}
		s.refreshPending = false
		s.onRefresh(plateID, well)
	})
}
