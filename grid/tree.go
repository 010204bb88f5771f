package grid

import (
	"math"
	"sort"
)

// Index addresses a cell in the quadtree: at Level there are 1<<Level cells
// per side, with I the axial and J the radial index.
type Index struct {
	Level, I, J int
}

// Cell is one square control volume. Leaf cells carry the live solution;
// interior cells hold the restriction (average) of their children, refreshed
// by Tree.Restrict.
type Cell struct {
	Level, I, J int
	Leaf        bool
	Val         []float64
}

// Tree is a square quadtree grid over the domain [X0,X0+L0] x [Y0,Y0+L0].
// All ancestors down to level 0 are kept in the map so coarse-level values
// are always addressable for the wavelet estimator and for prolongation.
type Tree struct {
	NFields   int
	BaseLevel int
	L0        float64
	X0, Y0    float64
	// AxisOdd marks fields that reflect with a sign flip across the bottom
	// (y = Y0) boundary, i.e. the radial velocity at the axis of symmetry.
	// All other boundaries are zero-gradient.
	AxisOdd []bool
	Cells   map[Index]*Cell

	leaves []*Cell
	dirty  bool
}

// NewTree builds a uniform grid of leaves at baseLevel together with the full
// pyramid of coarser ancestors.
func NewTree(nFields, baseLevel int, L0, X0, Y0 float64) (t *Tree) {
	t = &Tree{
		NFields:   nFields,
		BaseLevel: baseLevel,
		L0:        L0,
		X0:        X0,
		Y0:        Y0,
		AxisOdd:   make([]bool, nFields),
		Cells:     make(map[Index]*Cell),
		dirty:     true,
	}
	for level := 0; level <= baseLevel; level++ {
		n := 1 << level
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				t.Cells[Index{level, i, j}] = &Cell{
					Level: level, I: i, J: j,
					Leaf: level == baseLevel,
					Val:  make([]float64, nFields),
				}
			}
		}
	}
	return
}

// Delta is the cell size at a level.
func (t *Tree) Delta(level int) float64 {
	return t.L0 / float64(int(1)<<level)
}

// CellCenter returns the cell center coordinates (x axial, y radial).
func (t *Tree) CellCenter(c *Cell) (x, y float64) {
	delta := t.Delta(c.Level)
	x = t.X0 + (float64(c.I)+0.5)*delta
	y = t.Y0 + (float64(c.J)+0.5)*delta
	return
}

// Leaves returns the leaf cells in a fixed traversal order (level, then I,
// then J). The slice is cached and rebuilt after topology changes.
func (t *Tree) Leaves() []*Cell {
	if !t.dirty {
		return t.leaves
	}
	t.leaves = t.leaves[:0]
	for _, c := range t.Cells {
		if c.Leaf {
			t.leaves = append(t.leaves, c)
		}
	}
	sort.Slice(t.leaves, func(a, b int) bool {
		ca, cb := t.leaves[a], t.leaves[b]
		if ca.Level != cb.Level {
			return ca.Level < cb.Level
		}
		if ca.I != cb.I {
			return ca.I < cb.I
		}
		return ca.J < cb.J
	})
	t.dirty = false
	return t.leaves
}

// MaxLeafLevel reports the deepest current refinement level.
func (t *Tree) MaxLeafLevel() (maxLevel int) {
	for _, c := range t.Leaves() {
		if c.Level > maxLevel {
			maxLevel = c.Level
		}
	}
	return
}

// Value samples field f at cell (level,i,j), applying the boundary rules for
// out-of-range indices and falling back to the nearest ancestor when the cell
// is not present at the requested level. Interior cells must have been
// refreshed by Restrict since the last leaf update.
func (t *Tree) Value(f, level, i, j int) float64 {
	sign := 1.0
	n := 1 << level
	if j < 0 {
		j = -1 - j
		if t.AxisOdd[f] {
			sign = -sign
		}
	}
	if j >= n {
		j = n - 1
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	for l := level; l >= 0; l-- {
		if c, ok := t.Cells[Index{l, i, j}]; ok {
			return sign * c.Val[f]
		}
		i >>= 1
		j >>= 1
	}
	return 0
}

// Gradient returns centered per-length differences of field f at cell c,
// sampled at the cell's own level.
func (t *Tree) Gradient(f int, c *Cell) (gx, gy float64) {
	delta := t.Delta(c.Level)
	gx = (t.Value(f, c.Level, c.I+1, c.J) - t.Value(f, c.Level, c.I-1, c.J)) / (2 * delta)
	gy = (t.Value(f, c.Level, c.I, c.J+1) - t.Value(f, c.Level, c.I, c.J-1)) / (2 * delta)
	return
}

// Refine splits a leaf into four children. Child values are linearly
// prolongated from the parent using parent-level slopes, which preserves the
// parent mean and makes the detail coefficient of the new children vanish
// for locally linear fields.
func (t *Tree) Refine(c *Cell) {
	if !c.Leaf {
		return
	}
	c.Leaf = false
	t.dirty = true
	gx := make([]float64, t.NFields)
	gy := make([]float64, t.NFields)
	for f := 0; f < t.NFields; f++ {
		gx[f] = 0.5 * (t.Value(f, c.Level, c.I+1, c.J) - t.Value(f, c.Level, c.I-1, c.J))
		gy[f] = 0.5 * (t.Value(f, c.Level, c.I, c.J+1) - t.Value(f, c.Level, c.I, c.J-1))
	}
	for di := 0; di < 2; di++ {
		for dj := 0; dj < 2; dj++ {
			child := &Cell{
				Level: c.Level + 1,
				I:     2*c.I + di,
				J:     2*c.J + dj,
				Leaf:  true,
				Val:   make([]float64, t.NFields),
			}
			sx := 0.25 * float64(2*di-1)
			sy := 0.25 * float64(2*dj-1)
			for f := 0; f < t.NFields; f++ {
				child.Val[f] = c.Val[f] + sx*gx[f] + sy*gy[f]
			}
			t.Cells[Index{child.Level, child.I, child.J}] = child
		}
	}
}

// Coarsen merges the four children of an interior cell back into it,
// restricting their average onto the parent. It is a no-op unless all four
// children exist and are leaves.
func (t *Tree) Coarsen(parent *Cell) bool {
	if parent.Leaf {
		return false
	}
	children := [4]*Cell{}
	for k := 0; k < 4; k++ {
		ci := Index{parent.Level + 1, 2*parent.I + k%2, 2*parent.J + k/2}
		c, ok := t.Cells[ci]
		if !ok || !c.Leaf {
			return false
		}
		children[k] = c
	}
	for f := 0; f < t.NFields; f++ {
		var sum float64
		for _, c := range children {
			sum += c.Val[f]
		}
		parent.Val[f] = 0.25 * sum
	}
	for _, c := range children {
		delete(t.Cells, Index{c.Level, c.I, c.J})
	}
	parent.Leaf = true
	t.dirty = true
	return true
}

// Restrict refreshes every interior cell with the average of its children,
// sweeping from the deepest level upward so multi-level restrictions compose.
// Call after mutating leaf values and before sampling coarse levels.
func (t *Tree) Restrict() {
	byLevel := make(map[int][]*Cell)
	deepest := 0
	for _, c := range t.Cells {
		if !c.Leaf {
			byLevel[c.Level] = append(byLevel[c.Level], c)
		} else if c.Level > deepest {
			deepest = c.Level
		}
	}
	for level := deepest - 1; level >= 0; level-- {
		for _, c := range byLevel[level] {
			for f := 0; f < t.NFields; f++ {
				var sum float64
				for k := 0; k < 4; k++ {
					sum += t.Value(f, level+1, 2*c.I+k%2, 2*c.J+k/2)
				}
				c.Val[f] = 0.25 * sum
			}
		}
	}
}

// Detail is the wavelet error indicator for field f at leaf c: the absolute
// difference between the leaf value and its reconstruction from the coarser
// level by linear prolongation. Requires Restrict to be current.
func (t *Tree) Detail(f int, c *Cell) float64 {
	if c.Level == 0 {
		return 0
	}
	pl, pi, pj := c.Level-1, c.I>>1, c.J>>1
	pv := t.Value(f, pl, pi, pj)
	gx := 0.5 * (t.Value(f, pl, pi+1, pj) - t.Value(f, pl, pi-1, pj))
	gy := 0.5 * (t.Value(f, pl, pi, pj+1) - t.Value(f, pl, pi, pj-1))
	sx := 0.25 * float64(2*(c.I&1)-1)
	sy := 0.25 * float64(2*(c.J&1)-1)
	return math.Abs(c.Val[f] - (pv + sx*gx + sy*gy))
}

// Sample interpolates field f at physical point (x, y) from the leaf cell
// containing it, with a linear slope correction from the cell's level.
func (t *Tree) Sample(f int, x, y float64) float64 {
	c := t.Locate(x, y)
	if c == nil {
		return 0
	}
	cx, cy := t.CellCenter(c)
	gx, gy := t.Gradient(f, c)
	return c.Val[f] + gx*(x-cx) + gy*(y-cy)
}

// Locate walks down the tree to the leaf containing point (x, y), or nil if
// the point is outside the domain.
func (t *Tree) Locate(x, y float64) *Cell {
	if x < t.X0 || x >= t.X0+t.L0 || y < t.Y0 || y >= t.Y0+t.L0 {
		return nil
	}
	for level := t.MaxLeafLevel(); level >= 0; level-- {
		delta := t.Delta(level)
		i := int((x - t.X0) / delta)
		j := int((y - t.Y0) / delta)
		if c, ok := t.Cells[Index{level, i, j}]; ok && c.Leaf {
			return c
		}
	}
	return nil
}
