package plate

// NavigationInfo describes the wells reachable from a given well by
// single-step grid moves. A zero target means the move is unavailable.
type NavigationInfo struct {
	Current int
	Row     int
	Col     int

	Up    int
	Down  int
	Left  int
	Right int
	Prev  int
	Next  int
}

// NavigationInfo returns the grid neighbours of a well. Moves off the
// grid edge are reported as zero.
func (l Layout) NavigationInfo(well int) (NavigationInfo, error) {
	row, col, err := l.RowCol(well)
	if err != nil {
		return NavigationInfo{}, err
	}

	info := NavigationInfo{Current: well, Row: row, Col: col}
	if row > 0 {
		info.Up, _ = l.WellAt(row-1, col)
	}
	if row < l.Rows-1 {
		info.Down, _ = l.WellAt(row+1, col)
	}
	if col > 0 {
		info.Left, _ = l.WellAt(row, col-1)
	}
	if col < l.Cols-1 {
		info.Right, _ = l.WellAt(row, col+1)
	}
	if well > 1 {
		info.Prev = well - 1
	}
	if well < l.WellCount() {
		info.Next = well + 1
	}
	return info, nil
}

// Neighbors returns the wells directly above, below, left and right of
// the given well, in no particular order.
func (l Layout) Neighbors(well int) ([]int, error) {
	info, err := l.NavigationInfo(well)
	if err != nil {
		return nil, err
	}
	var out []int
	for _, n := range []int{info.Up, info.Down, info.Left, info.Right} {
		if n != 0 {
			out = append(out, n)
		}
	}
	return out, nil
}
