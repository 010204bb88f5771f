package adapt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/grid"
)

func newUniformTree(baseLevel int, val float64) *grid.Tree {
	t := grid.NewTree(1, baseLevel, 8, 0, 0)
	for _, c := range t.Leaves() {
		c.Val[0] = val
	}
	t.Restrict()
	return t
}

func TestRefineOnSharpFeature(t *testing.T) {
	tr := newUniformTree(4, 0)
	spike := tr.Cells[grid.Index{Level: 4, I: 7, J: 7}]
	spike.Val[0] = 1

	p := NewPolicy([]Criterion{{Name: "f", Field: 0, Tolerance: 1e-3}}, 6)
	p.MinLevel = 4
	nRefined, _ := p.Apply(tr)
	assert.Greater(t, nRefined, 0)
	// The spiked cell must have been split, never silently skipped
	assert.False(t, spike.Leaf)
}

func TestMaxLevelNeverExceeded(t *testing.T) {
	tr := newUniformTree(4, 0)
	p := NewPolicy([]Criterion{{Name: "f", Field: 0, Tolerance: 1e-6}}, 6)
	p.MinLevel = 4
	// Drive repeated adaptation with a feature that always wants refinement
	for pass := 0; pass < 10; pass++ {
		for _, c := range tr.Leaves() {
			x, _ := tr.CellCenter(c)
			if x < 4 {
				c.Val[0] = 1
			} else {
				c.Val[0] = 0
			}
		}
		tr.Restrict()
		p.Apply(tr)
	}
	for _, c := range tr.Leaves() {
		assert.LessOrEqual(t, c.Level, 6)
	}
	assert.Equal(t, 6, tr.MaxLeafLevel())
}

func TestCoarsenBoundedByMinLevel(t *testing.T) {
	// A perfectly smooth field coarsens, but never below MinLevel
	tr := newUniformTree(5, 2.5)
	p := NewPolicy([]Criterion{{Name: "f", Field: 0, Tolerance: 1e-3}}, 9)
	require.Equal(t, 3, p.MinLevel)
	for pass := 0; pass < 10; pass++ {
		if _, nc := p.Apply(tr); nc == 0 {
			break
		}
	}
	for _, c := range tr.Leaves() {
		assert.Equal(t, 3, c.Level)
	}
}

func TestRefinementDominatesCoarsening(t *testing.T) {
	tr := newUniformTree(4, 0)
	parent := tr.Cells[grid.Index{Level: 4, I: 8, J: 8}]
	tr.Refine(parent)
	tr.Restrict()

	// Three siblings vote to coarsen; the fourth carries a feature above
	// tolerance. The refine vote must block the sibling group merge.
	hot := tr.Cells[grid.Index{Level: 5, I: 16, J: 16}]
	require.NotNil(t, hot)
	hot.Val[0] = 1
	tr.Restrict()

	p := NewPolicy([]Criterion{{Name: "f", Field: 0, Tolerance: 0.5}}, 6)
	p.MinLevel = 4
	p.Apply(tr)
	assert.False(t, parent.Leaf, "sibling group with a refining member must not merge")
	assert.False(t, hot.Leaf, "cell above tolerance below MaxLevel must refine")
}

func TestDecisionPerCell(t *testing.T) {
	tr := newUniformTree(4, 1)
	p := NewPolicy([]Criterion{{Name: "f", Field: 0, Tolerance: 1e-3}}, 10)
	require.Equal(t, 4, p.MinLevel)
	tr.Restrict()
	for _, c := range tr.Leaves() {
		// Uniform field, cells already at MinLevel: nothing to do
		assert.Equal(t, Keep, p.Decide(tr, c))
	}
}
