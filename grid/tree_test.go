package grid

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTree(t *testing.T) {
	tr := NewTree(3, 4, 8, -4, 0)
	// Leaves form the uniform base grid, ancestors complete the pyramid
	assert.Equal(t, 16*16, len(tr.Leaves()))
	total := 0
	for level := 0; level <= 4; level++ {
		total += (1 << level) * (1 << level)
	}
	assert.Equal(t, total, len(tr.Cells))
	assert.Equal(t, 0.5, tr.Delta(4))

	c := tr.Cells[Index{4, 0, 0}]
	x, y := tr.CellCenter(c)
	assert.InEpsilon(t, -3.75, x, 1e-12)
	assert.InEpsilon(t, 0.25, y, 1e-12)
}

func TestValueBoundaries(t *testing.T) {
	tr := NewTree(2, 2, 4, 0, 0)
	tr.AxisOdd[1] = true
	for _, c := range tr.Leaves() {
		c.Val[0] = 1.5
		c.Val[1] = 2.0
	}
	tr.Restrict()
	// Zero-gradient at the outer boundaries
	assert.Equal(t, 1.5, tr.Value(0, 2, -1, 1))
	assert.Equal(t, 1.5, tr.Value(0, 2, 4, 1))
	assert.Equal(t, 1.5, tr.Value(0, 2, 1, 4))
	// Reflection with sign flip across the axis for odd fields
	assert.Equal(t, -2.0, tr.Value(1, 2, 1, -1))
	assert.Equal(t, 1.5, tr.Value(0, 2, 1, -1))
}

func TestRefineCoarsenRoundTrip(t *testing.T) {
	tr := NewTree(1, 3, 8, 0, 0)
	// Seed a linear field, which prolongation must reproduce exactly
	for _, c := range tr.Leaves() {
		x, y := tr.CellCenter(c)
		c.Val[0] = 2*x - 3*y + 1
	}
	tr.Restrict()

	c := tr.Cells[Index{3, 3, 3}]
	mean := c.Val[0]
	tr.Refine(c)
	require.False(t, c.Leaf)
	assert.Equal(t, 64+3, len(tr.Leaves()))

	// Children of a linear field carry zero detail and preserve the mean
	var sum float64
	for k := 0; k < 4; k++ {
		child := tr.Cells[Index{4, 6 + k%2, 6 + k/2}]
		require.NotNil(t, child)
		x, y := tr.CellCenter(child)
		assert.InDelta(t, 2*x-3*y+1, child.Val[0], 1e-12)
		assert.InDelta(t, 0, tr.Detail(0, child), 1e-12)
		sum += child.Val[0]
	}
	assert.InDelta(t, mean, sum/4, 1e-12)

	// Coarsening restores the original leaf exactly
	require.True(t, tr.Coarsen(c))
	assert.True(t, c.Leaf)
	assert.InDelta(t, mean, c.Val[0], 1e-12)
	assert.Equal(t, 64, len(tr.Leaves()))
}

func TestDetailFlagsSharpFeatures(t *testing.T) {
	tr := NewTree(1, 4, 8, 0, 0)
	for _, c := range tr.Leaves() {
		c.Val[0] = 0
	}
	spike := tr.Cells[Index{4, 7, 7}]
	spike.Val[0] = 1
	tr.Restrict()
	// The spiked cell carries a large detail, far-field cells almost none
	assert.Greater(t, tr.Detail(0, spike), 0.5)
	far := tr.Cells[Index{4, 1, 13}]
	assert.Less(t, tr.Detail(0, far), 1e-12)
}

func TestLocateAndSample(t *testing.T) {
	tr := NewTree(1, 3, 8, -4, 0)
	for _, c := range tr.Leaves() {
		x, y := tr.CellCenter(c)
		c.Val[0] = x + y
	}
	tr.Restrict()
	c := tr.Locate(1.3, 2.2)
	require.NotNil(t, c)
	assert.Equal(t, 3, c.Level)
	assert.InDelta(t, 3.5, tr.Sample(0, 1.3, 2.2), 1e-12)
	assert.Nil(t, tr.Locate(9, 1))

	// Locate descends to refined leaves
	tr.Refine(c)
	cc := tr.Locate(1.3, 2.2)
	require.NotNil(t, cc)
	assert.Equal(t, 4, cc.Level)
}

func TestDumpRestoreRoundTrip(t *testing.T) {
	tr := NewTree(2, 3, 8, -4, 0)
	tr.AxisOdd[1] = true
	for _, c := range tr.Leaves() {
		x, y := tr.CellCenter(c)
		c.Val[0] = math.Sin(x) * y
		c.Val[1] = x * x
	}
	tr.Restrict()
	tr.Refine(tr.Cells[Index{3, 2, 2}])

	filename := filepath.Join(t.TempDir(), "restart")
	require.NoError(t, tr.Dump(filename, 1.25, 42))

	tr2, time, iter, err := Restore(filename)
	require.NoError(t, err)
	assert.Equal(t, 1.25, time)
	assert.Equal(t, 42, iter)
	require.Equal(t, len(tr.Cells), len(tr2.Cells))
	assert.Equal(t, tr.AxisOdd, tr2.AxisOdd)
	for idx, c := range tr.Cells {
		c2, ok := tr2.Cells[idx]
		require.True(t, ok, "missing cell %v", idx)
		assert.Equal(t, c.Leaf, c2.Leaf)
		assert.Equal(t, c.Val, c2.Val)
	}

	_, _, _, err = Restore(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
