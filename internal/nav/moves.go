package nav

import (
	"errors"
)

// errNoCursor is returned by relative moves before the first NavigateTo.
var errNoCursor = errors.New("no current well")

// Next moves to the next well on the same plate; a no-op at well 120.
func (s *State) Next() error {
	return s.moveTo(func(info navTargets) int { return info.Next })
}

// Prev moves to the previous well on the same plate; a no-op at well 1.
func (s *State) Prev() error {
	return s.moveTo(func(info navTargets) int { return info.Prev })
}

// Up moves one grid row up on the same plate.
func (s *State) Up() error {
	return s.moveTo(func(info navTargets) int { return info.Up })
}

// Down moves one grid row down on the same plate.
func (s *State) Down() error {
	return s.moveTo(func(info navTargets) int { return info.Down })
}

// Left moves one grid column left on the same plate.
func (s *State) Left() error {
	return s.moveTo(func(info navTargets) int { return info.Left })
}

// Right moves one grid column right on the same plate.
func (s *State) Right() error {
	return s.moveTo(func(info navTargets) int { return info.Right })
}

// First moves to the plate variant's start well.
func (s *State) First() error {
	if s.plateID == "" {
		return errNoCursor
	}
	return s.NavigateTo(s.plateID, s.layout.StartWell())
}

// NextUnannotated moves forward to the first well after the cursor with
// no effective annotation; a no-op when every remaining well is
// annotated.
func (s *State) NextUnannotated() error {
	if s.plateID == "" {
		return errNoCursor
	}
	store, err := s.provider.Dataset(s.plateID)
	if err != nil {
		return err
	}
	for well := s.well + 1; well <= s.layout.WellCount(); well++ {
		if rec, ok := store.Get(well); !ok || rec.IsDefault() {
			return s.NavigateTo(s.plateID, well)
		}
	}
	return nil
}

type navTargets struct {
	Up, Down, Left, Right, Prev, Next int
}

func (s *State) moveTo(pick func(navTargets) int) error {
	if s.plateID == "" {
		return errNoCursor
	}
	info, err := s.layout.NavigationInfo(s.well)
	if err != nil {
		return err
	}
	target := pick(navTargets{
		Up: info.Up, Down: info.Down,
		Left: info.Left, Right: info.Right,
		Prev: info.Prev, Next: info.Next,
	})
	if target == 0 {
		return nil // edge of the grid
	}
	return s.NavigateTo(s.plateID, target)
}
