// Package plate provides the well-grid coordinate engine: the fixed
// physical layout of a 120-well plate, conversions between well numbers
// and pixel positions, viewport scaling, hit-testing, and calibration.
package plate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"plate-annotator/pkg/geometry"
)

const (
	// GridRows and GridCols define the fixed 12x10 well grid.
	GridRows = 10
	GridCols = 12

	// WellCount is the number of wells on a plate.
	WellCount = GridRows * GridCols
)

// ErrInvalidWellNumber is returned for well numbers outside [1, WellCount].
var ErrInvalidWellNumber = errors.New("well number out of range")

// Variant identifies the physical plate variant.
type Variant string

const (
	// VariantStandard numbers wells from 1.
	VariantStandard Variant = "standard"
	// VariantOffset is the offset sub-plate whose usable numbering
	// starts at well 5; imported legacy configs for this variant map
	// their first entry to well 5.
	VariantOffset Variant = "offset"
)

// StartWell returns the first usable well number for the variant.
func (v Variant) StartWell() int {
	if v == VariantOffset {
		return 5
	}
	return 1
}

func (v Variant) String() string {
	return string(v)
}

// ParseVariant parses a variant name.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantStandard, "":
		return VariantStandard, nil
	case VariantOffset:
		return VariantOffset, nil
	}
	return "", fmt.Errorf("unknown plate variant %q", s)
}

// Layout defines the physical well layout of a plate in original-image
// pixel space. FirstWell is the pixel center of well 1; it is the single
// calibration reference point and is never stored pre-multiplied by a
// viewport scale.
type Layout struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`

	FirstWell    geometry.Point2D `json:"first_well"`
	PitchX       float64          `json:"pitch_x"`
	PitchY       float64          `json:"pitch_y"`
	WellDiameter float64          `json:"well_diameter"`

	Variant Variant `json:"variant"`
}

// DefaultLayout returns the layout tuned for the standard 3088x2064
// panoramic plate image.
func DefaultLayout() Layout {
	return Layout{
		Rows:         GridRows,
		Cols:         GridCols,
		FirstWell:    geometry.NewPoint2D(750, 392),
		PitchX:       145,
		PitchY:       145,
		WellDiameter: 90,
		Variant:      VariantStandard,
	}
}

// Validate checks the layout parameters.
func (l Layout) Validate() error {
	if l.Rows != GridRows || l.Cols != GridCols {
		return fmt.Errorf("layout must be %dx%d, got %dx%d", GridRows, GridCols, l.Rows, l.Cols)
	}
	if l.PitchX <= 0 || l.PitchY <= 0 {
		return fmt.Errorf("well pitch must be positive")
	}
	if l.WellDiameter <= 0 {
		return fmt.Errorf("well diameter must be positive")
	}
	if l.WellDiameter > l.PitchX || l.WellDiameter > l.PitchY {
		return fmt.Errorf("well diameter %.1f exceeds pitch (%.1f, %.1f)", l.WellDiameter, l.PitchX, l.PitchY)
	}
	switch l.Variant {
	case VariantStandard, VariantOffset:
	default:
		return fmt.Errorf("unknown plate variant %q", l.Variant)
	}
	return nil
}

// WellCount returns the number of wells on the plate.
func (l Layout) WellCount() int {
	return l.Rows * l.Cols
}

// StartWell returns the first usable well for the layout's variant.
func (l Layout) StartWell() int {
	return l.Variant.StartWell()
}

// RowCol converts a well number to zero-based (row, col) coordinates.
// Numbering is row-major starting at 1.
func (l Layout) RowCol(well int) (row, col int, err error) {
	if well < 1 || well > l.WellCount() {
		return 0, 0, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidWellNumber, well, l.WellCount())
	}
	idx := well - 1
	return idx / l.Cols, idx % l.Cols, nil
}

// WellAt converts zero-based (row, col) coordinates to a well number.
func (l Layout) WellAt(row, col int) (int, error) {
	if row < 0 || row >= l.Rows || col < 0 || col >= l.Cols {
		return 0, fmt.Errorf("%w: position (%d, %d)", ErrInvalidWellNumber, row, col)
	}
	return row*l.Cols + col + 1, nil
}

// WellCenter returns the pixel center of a well in original-image space.
func (l Layout) WellCenter(well int) (geometry.Point2D, error) {
	row, col, err := l.RowCol(well)
	if err != nil {
		return geometry.Point2D{}, err
	}
	return geometry.Point2D{
		X: l.FirstWell.X + float64(col)*l.PitchX,
		Y: l.FirstWell.Y + float64(row)*l.PitchY,
	}, nil
}

// WellBounds returns the bounding square of a well in original-image space.
func (l Layout) WellBounds(well int) (geometry.Rect, error) {
	center, err := l.WellCenter(well)
	if err != nil {
		return geometry.Rect{}, err
	}
	r := l.WellDiameter / 2
	return geometry.NewRect(center.X-r, center.Y-r, l.WellDiameter, l.WellDiameter), nil
}

// Label returns the row-letter/column-number label of a well (A1..J12).
func (l Layout) Label(well int) (string, error) {
	row, col, err := l.RowCol(well)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%c%d", 'A'+row, col+1), nil
}

// ParseLabel converts a label such as "B7" back to a well number.
func (l Layout) ParseLabel(label string) (int, error) {
	label = strings.TrimSpace(label)
	if len(label) < 2 {
		return 0, fmt.Errorf("invalid well label %q", label)
	}
	rowChar := strings.ToUpper(label)[0]
	if rowChar < 'A' || rowChar > 'A'+GridRows-1 {
		return 0, fmt.Errorf("invalid well label %q: row must be A-%c", label, 'A'+GridRows-1)
	}
	col, err := strconv.Atoi(label[1:])
	if err != nil || col < 1 || col > l.Cols {
		return 0, fmt.Errorf("invalid well label %q: column must be 1-%d", label, l.Cols)
	}
	return l.WellAt(int(rowChar-'A'), col-1)
}

// RecalibrateOrigin returns a copy of the layout with the first-well
// reference point replaced. The new origin is an original-image-space
// coordinate: recalibration must never be derived from canvas
// coordinates that carry a transient viewport scale, otherwise the next
// viewport recomputation silently reverts the correction.
func (l Layout) RecalibrateOrigin(firstWell geometry.Point2D) Layout {
	l.FirstWell = firstWell
	return l
}
