package adapt

import (
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/grid"
)

// Criterion pairs a monitored field with its absolute error tolerance. The
// tolerances are deliberately uneven: the interface and curvature fields need
// tight control for surface-tension accuracy, while the bulk velocity and
// constitutive fields tolerate coarser resolution away from the interface.
type Criterion struct {
	Name      string
	Field     int
	Tolerance float64
}

type Decision int8

const (
	Keep Decision = iota
	Refine
	Coarsen
)

// Coarsening only below tolerance/1.5 keeps cells from oscillating between
// levels on consecutive steps.
const coarsenHysteresis = 1.5

// Policy is the per-run refinement configuration: an ordered list of
// monitored criteria plus the level bounds. MinLevel is normally
// MaxLevel - 6, bounding the dynamic range of the mesh.
type Policy struct {
	Criteria []Criterion
	MaxLevel int
	MinLevel int
}

func NewPolicy(criteria []Criterion, maxLevel int) *Policy {
	minLevel := maxLevel - 6
	if minLevel < 0 {
		minLevel = 0
	}
	return &Policy{
		Criteria: criteria,
		MaxLevel: maxLevel,
		MinLevel: minLevel,
	}
}

// Decide classifies a single leaf from its wavelet details alone. A cell at
// MaxLevel is never refined and a cell at or below MinLevel is never
// coarsened, whatever the indicators say.
func (p *Policy) Decide(t *grid.Tree, c *grid.Cell) Decision {
	anyAbove := false
	allBelow := true
	for _, cr := range p.Criteria {
		d := t.Detail(cr.Field, c)
		if d > cr.Tolerance {
			anyAbove = true
		}
		if d > cr.Tolerance/coarsenHysteresis {
			allBelow = false
		}
	}
	switch {
	case anyAbove && c.Level < p.MaxLevel:
		return Refine
	case allBelow && c.Level > p.MinLevel:
		return Coarsen
	}
	return Keep
}

// Apply runs one adaptation pass over the tree: decide every leaf, then
// refine, then coarsen sibling groups whose four leaves all asked to coarsen.
// A single Refine or Keep among siblings blocks the merge, so refinement
// always dominates. Returns the number of cells split and merged.
func (p *Policy) Apply(t *grid.Tree) (nRefined, nCoarsened int) {
	t.Restrict()
	leaves := t.Leaves()
	decisions := make(map[grid.Index]Decision, len(leaves))
	for _, c := range leaves {
		decisions[grid.Index{Level: c.Level, I: c.I, J: c.J}] = p.Decide(t, c)
	}
	for _, c := range leaves {
		if decisions[grid.Index{Level: c.Level, I: c.I, J: c.J}] == Refine {
			t.Refine(c)
			nRefined++
		}
	}
	// Candidate parents whose entire sibling group voted to coarsen.
	parents := make(map[grid.Index]int)
	for idx, d := range decisions {
		if d != Coarsen || idx.Level == 0 {
			continue
		}
		parents[grid.Index{Level: idx.Level - 1, I: idx.I >> 1, J: idx.J >> 1}]++
	}
	for pi, votes := range parents {
		if votes != 4 {
			continue
		}
		if parent, ok := t.Cells[pi]; ok && t.Coarsen(parent) {
			nCoarsened++
		}
	}
	return
}
