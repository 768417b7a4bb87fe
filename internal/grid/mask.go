package grid

// Mask is a boolean grid aligned with a Field. True marks a cell excluded
// from target selection. Masks combine with Or, which is how claim exclusion
// zones and reachability limits stack.
type Mask struct {
	width  int
	height int
	cells  []bool
}

// NewMask allocates an all-false mask of the given shape. Returns nil for
// non-positive dimensions.
func NewMask(width, height int) *Mask {
	if width <= 0 || height <= 0 {
		return nil
	}
	return &Mask{width: width, height: height, cells: make([]bool, width*height)}
}

// Width returns the number of cells per row.
func (m *Mask) Width() int {
	if m == nil {
		return 0
	}
	return m.width
}

// Height returns the number of rows.
func (m *Mask) Height() int {
	if m == nil {
		return 0
	}
	return m.height
}

// Matches reports whether the mask shape agrees with the field shape. A nil
// mask matches everything: no mask and an all-false mask are equivalent.
func (m *Mask) Matches(f *Field) bool {
	if m == nil {
		return true
	}
	return f != nil && m.width == f.Width() && m.height == f.Height()
}

// At reports whether cell (x, y) is excluded. Out-of-range cells read as not
// excluded, and a nil mask excludes nothing.
func (m *Mask) At(x, y int) bool {
	if m == nil || x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.cells[y*m.width+x]
}

// Set marks cell (x, y) as excluded (or not). Out-of-range writes are dropped.
func (m *Mask) Set(x, y int, excluded bool) {
	if m == nil || x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.cells[y*m.width+x] = excluded
}

// ExcludesPoint reports whether the cell containing the world position p is
// excluded, clamping p onto the mask the way field reads clamp.
func (m *Mask) ExcludesPoint(p Point) bool {
	if m == nil {
		return false
	}
	x := clampIndex(int(p.X), m.width)
	y := clampIndex(int(p.Y), m.height)
	return m.cells[y*m.width+x]
}

// Or folds other into m cell-by-cell. Shapes must agree; a mismatched or nil
// operand leaves m unchanged.
func (m *Mask) Or(other *Mask) {
	if m == nil || other == nil || m.width != other.width || m.height != other.height {
		return
	}
	for i, v := range other.cells {
		if v {
			m.cells[i] = true
		}
	}
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	if m == nil {
		return nil
	}
	cells := make([]bool, len(m.cells))
	copy(cells, m.cells)
	return &Mask{width: m.width, height: m.height, cells: cells}
}

// StampDisc marks every cell within radius of center as excluded.
func (m *Mask) StampDisc(center Point, radius float64) {
	if m == nil || radius < 0 {
		return
	}
	forEachDiscCell(m.width, m.height, center, radius, func(x, y int) {
		m.cells[y*m.width+x] = true
	})
}

// Any reports whether at least one cell is excluded.
func (m *Mask) Any() bool {
	if m == nil {
		return false
	}
	for _, v := range m.cells {
		if v {
			return true
		}
	}
	return false
}

// CountExcluded returns the number of excluded cells.
func (m *Mask) CountExcluded() int {
	if m == nil {
		return 0
	}
	count := 0
	for _, v := range m.cells {
		if v {
			count++
		}
	}
	return count
}

// ReachMask builds a mask over a width x height grid excluding every cell
// farther than reach from origin. This is the travel-limit mask projectiles
// apply while retargeting: only cells they can still arrive at stay open.
func ReachMask(width, height int, origin Point, reach float64) *Mask {
	m := NewMask(width, height)
	if m == nil {
		return nil
	}
	if reach < 0 {
		reach = 0
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - origin.X
			dy := float64(y) - origin.Y
			if dx*dx+dy*dy > reach*reach {
				m.cells[y*m.width+x] = true
			}
		}
	}
	return m
}
