package grid

import "math"

const (
	// NeutralValue is the baseline a value field reports for contested-free
	// ground. Cells above it carry hostile presence, cells below it carry
	// friendly presence or risk.
	NeutralValue = 200.0

	// InfinityCeiling replaces +Inf cells on ingestion so downstream
	// arithmetic stays finite. Mirrored negative for -Inf.
	InfinityCeiling = 500.0
)

// Point is a 2D battlefield position in world units. World units map 1:1 onto
// field cells; CellX/CellY clamp into a given shape.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the straight-line distance to other.
func (p Point) DistanceTo(other Point) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}

// Towards returns the point reached by advancing up to step units from p in
// the direction of target. If target is closer than step, target is returned.
func (p Point) Towards(target Point, step float64) Point {
	dx := target.X - p.X
	dy := target.Y - p.Y
	dist := math.Hypot(dx, dy)
	if dist <= step || dist == 0 {
		return target
	}
	scale := step / dist
	return Point{X: p.X + dx*scale, Y: p.Y + dy*scale}
}

// Field is one tick's snapshot of the spatial value grid. It is always a
// defensive copy: constructors duplicate the source data, so masking and
// boosting never leak back into the collaborator that produced it.
type Field struct {
	width  int
	height int
	cells  []float64
}

// NewField allocates a field of the given shape with every cell at the
// neutral baseline. Returns nil for non-positive dimensions.
func NewField(width, height int) *Field {
	if width <= 0 || height <= 0 {
		return nil
	}
	f := &Field{width: width, height: height, cells: make([]float64, width*height)}
	for i := range f.cells {
		f.cells[i] = NeutralValue
	}
	return f
}

// SnapshotField copies raw collaborator rows (indexed [y][x]) into a Field,
// sanitizing non-finite values on the way in: +Inf becomes InfinityCeiling,
// -Inf becomes -InfinityCeiling, NaN becomes 0. Rows must be non-empty and
// rectangular; otherwise nil is returned and the caller degrades to
// position-sampling targeting.
func SnapshotField(rows [][]float64) *Field {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	height := len(rows)
	width := len(rows[0])
	cells := make([]float64, 0, width*height)
	for _, row := range rows {
		if len(row) != width {
			return nil
		}
		for _, v := range row {
			cells = append(cells, sanitizeValue(v))
		}
	}
	return &Field{width: width, height: height, cells: cells}
}

func sanitizeValue(v float64) float64 {
	switch {
	case math.IsInf(v, 1):
		return InfinityCeiling
	case math.IsInf(v, -1):
		return -InfinityCeiling
	case math.IsNaN(v):
		return 0
	default:
		return v
	}
}

// Clone returns an independent copy of the field.
func (f *Field) Clone() *Field {
	if f == nil {
		return nil
	}
	cells := make([]float64, len(f.cells))
	copy(cells, f.cells)
	return &Field{width: f.width, height: f.height, cells: cells}
}

// Width returns the number of cells per row.
func (f *Field) Width() int {
	if f == nil {
		return 0
	}
	return f.width
}

// Height returns the number of rows.
func (f *Field) Height() int {
	if f == nil {
		return 0
	}
	return f.height
}

// At returns the value at cell (x, y). Out-of-range reads return the neutral
// baseline so callers never index past the snapshot.
func (f *Field) At(x, y int) float64 {
	if f == nil || x < 0 || x >= f.width || y < 0 || y >= f.height {
		return NeutralValue
	}
	return f.cells[y*f.width+x]
}

// Set writes the value at cell (x, y). Out-of-range writes are dropped.
func (f *Field) Set(x, y int, v float64) {
	if f == nil || x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	f.cells[y*f.width+x] = v
}

// Add accumulates delta onto cell (x, y).
func (f *Field) Add(x, y int, delta float64) {
	if f == nil || x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	f.cells[y*f.width+x] += delta
}

// CellX clamps a world coordinate onto a valid column index.
func (f *Field) CellX(x float64) int {
	if f == nil {
		return 0
	}
	return clampIndex(int(x), f.width)
}

// CellY clamps a world coordinate onto a valid row index.
func (f *Field) CellY(y float64) int {
	if f == nil {
		return 0
	}
	return clampIndex(int(y), f.height)
}

func clampIndex(i, limit int) int {
	if i < 0 {
		return 0
	}
	if i >= limit {
		return limit - 1
	}
	return i
}

// ValueAt reads the field at the cell containing the world position p,
// clamping at the borders the way the collaborator grid does.
func (f *Field) ValueAt(p Point) float64 {
	if f == nil {
		return NeutralValue
	}
	return f.cells[f.CellY(p.Y)*f.width+f.CellX(p.X)]
}

// AddDisc accumulates delta onto every cell whose center lies within radius
// of the world position center. Accumulation is commutative, so stamping
// multiple discs in any order yields the same field.
func (f *Field) AddDisc(center Point, radius, delta float64) {
	if f == nil || radius < 0 {
		return
	}
	forEachDiscCell(f.width, f.height, center, radius, func(x, y int) {
		f.cells[y*f.width+x] += delta
	})
}

// AddWhere accumulates delta onto every cell the mask marks. Combined with a
// disc-union mask this adds delta at most once per cell no matter how many
// overlapping discs produced the mask.
func (f *Field) AddWhere(m *Mask, delta float64) {
	if f == nil || m == nil || m.width != f.width || m.height != f.height {
		return
	}
	for i, marked := range m.cells {
		if marked {
			f.cells[i] += delta
		}
	}
}

// MaskOut overwrites every cell the mask marks excluded with value.
func (f *Field) MaskOut(m *Mask, value float64) {
	if f == nil || m == nil || m.width != f.width || m.height != f.height {
		return
	}
	for i, excluded := range m.cells {
		if excluded {
			f.cells[i] = value
		}
	}
}

// MaskBorder overwrites every cell within margin cells of any edge with
// value. Used to keep argmax away from boundary artifacts.
func (f *Field) MaskBorder(margin int, value float64) {
	if f == nil || margin <= 0 {
		return
	}
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			if x < margin || y < margin || x >= f.width-margin || y >= f.height-margin {
				f.cells[y*f.width+x] = value
			}
		}
	}
}

// Max returns the cell with the highest value and that value. When several
// cells tie, the lowest (y, x) wins, matching row-major argmax. ok is false
// for an empty field.
func (f *Field) Max() (x, y int, value float64, ok bool) {
	if f == nil || len(f.cells) == 0 {
		return 0, 0, 0, false
	}
	best := 0
	for i, v := range f.cells {
		if v > f.cells[best] {
			best = i
		}
	}
	return best % f.width, best / f.width, f.cells[best], true
}

// forEachDiscCell visits every in-bounds cell within radius of center.
// The bounding box keeps the scan proportional to the disc, not the field.
func forEachDiscCell(width, height int, center Point, radius float64, visit func(x, y int)) {
	minX := clampIndex(int(math.Floor(center.X-radius)), width)
	maxX := clampIndex(int(math.Ceil(center.X+radius)), width)
	minY := clampIndex(int(math.Floor(center.Y-radius)), height)
	maxY := clampIndex(int(math.Ceil(center.Y+radius)), height)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - center.X
			dy := float64(y) - center.Y
			if math.Hypot(dx, dy) <= radius {
				visit(x, y)
			}
		}
	}
}
