package scratch

import (
	"fmt"
	"math"
)

// Point is a position on a card's scratch surface, in surface units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Surface describes the scratchable overlay of a card and the fixed grid
// resolution used to measure how much of it has been cleared. Every card of a
// session shares the same Surface, so the reveal threshold does not depend on
// the device resolution the input came from.
type Surface struct {
	Width  float64
	Height float64
	Cols   int
	Rows   int
}

// DefaultSurface is a 200x140 card measured on a 100x70 grid.
func DefaultSurface() Surface {
	return Surface{Width: 200, Height: 140, Cols: 100, Rows: 70}
}

func (s Surface) validate() error {
	if !(s.Width > 0) || !(s.Height > 0) || math.IsInf(s.Width, 0) || math.IsInf(s.Height, 0) {
		return fmt.Errorf("%w: surface size %vx%v", ErrInvalidArgument, s.Width, s.Height)
	}
	if s.Cols < 1 || s.Rows < 1 {
		return fmt.Errorf("%w: surface grid %dx%d", ErrInvalidArgument, s.Cols, s.Rows)
	}
	return nil
}

// occupancy tracks which grid cells of one surface have been cleared.
// A cell is cleared when its centre falls inside a reveal disk; cells are
// never restored.
type occupancy struct {
	surface Surface
	cellW   float64
	cellH   float64
	cells   []bool
	cleared int
}

func newOccupancy(s Surface) *occupancy {
	return &occupancy{
		surface: s,
		cellW:   s.Width / float64(s.Cols),
		cellH:   s.Height / float64(s.Rows),
		cells:   make([]bool, s.Cols*s.Rows),
	}
}

// clear marks every cell whose centre lies within radius of p and returns how
// many cells changed from covered to cleared.
func (o *occupancy) clear(p Point, radius float64) int {
	colLo, colHi := cellSpan(p.X-radius, p.X+radius, o.cellW, o.surface.Cols)
	rowLo, rowHi := cellSpan(p.Y-radius, p.Y+radius, o.cellH, o.surface.Rows)
	r2 := radius * radius

	changed := 0
	for row := rowLo; row <= rowHi; row++ {
		dy := (float64(row)+0.5)*o.cellH - p.Y
		for col := colLo; col <= colHi; col++ {
			idx := row*o.surface.Cols + col
			if o.cells[idx] {
				continue
			}
			dx := (float64(col)+0.5)*o.cellW - p.X
			if dx*dx+dy*dy <= r2 {
				o.cells[idx] = true
				changed++
			}
		}
	}
	o.cleared += changed
	return changed
}

func (o *occupancy) fraction() float64 {
	return float64(o.cleared) / float64(len(o.cells))
}

// cellSpan returns the inclusive range of cell indexes that [lo, hi] may touch,
// clamped to [0, n-1]. The range is empty (first > second) when the interval
// misses the surface entirely.
func cellSpan(lo, hi, size float64, n int) (int, int) {
	first := math.Floor(lo / size)
	last := math.Floor(hi / size)
	if first < 0 {
		first = 0
	}
	if last > float64(n-1) {
		last = float64(n - 1)
	}
	if first > last {
		return 1, 0
	}
	return int(first), int(last)
}
