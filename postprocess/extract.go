package postprocess

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/grid"
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/sim"
)

// Extract restores a simulation snapshot and samples derived fields onto a
// regular grid over the window [xmin,xmax] x [ymin,ymax]:
//
//	D2c = log10(f * |D|)  (floored at -10 where the invariant vanishes)
//	vel = f * |u|
//
// ny sets the radial resolution; the axial count follows from the aspect
// ratio. Output is one space-separated row per sample point: x y D2c vel.
func Extract(filename string, xmin, ymin, xmax, ymax float64, ny int, w io.Writer) error {
	t, _, _, err := grid.Restore(filename)
	if err != nil {
		return fmt.Errorf("unable to restore snapshot %s: %w", filename, err)
	}
	t.Restrict()

	leaves := t.Leaves()
	d2c := mat.NewVecDense(len(leaves), nil)
	vel := mat.NewVecDense(len(leaves), nil)
	for k, c := range leaves {
		f := c.Val[sim.F]
		d2 := f * sim.StrainInvariant(t, c)
		if d2 > 0 {
			d2c.SetVec(k, math.Log10(d2))
		} else {
			d2c.SetVec(k, -10)
		}
		vel.SetVec(k, f*math.Hypot(c.Val[sim.Ux], c.Val[sim.Uy]))
	}

	deltaY := (ymax - ymin) / float64(ny)
	nx := int((xmax - xmin) / deltaY)
	if nx < 1 || ny < 1 {
		return fmt.Errorf("empty sampling window [%g,%g]x[%g,%g] with ny = %d",
			xmin, xmax, ymin, ymax, ny)
	}

	// Sampling is a sparse linear operator from leaf values to grid points,
	// one containing-leaf weight per sample row. Building it once and
	// applying it per field keeps repeated extractions cheap.
	op := samplingOperator(t, leaves, xmin, ymin, deltaY, nx, ny)
	var d2g, velg mat.VecDense
	d2g.MulVec(op, d2c)
	velg.MulVec(op, vel)

	bw := bufio.NewWriter(w)
	for i := 0; i < nx; i++ {
		x := xmin + (float64(i)+0.5)*deltaY
		for j := 0; j < ny; j++ {
			y := ymin + (float64(j)+0.5)*deltaY
			row := i*ny + j
			fmt.Fprintf(bw, "%g %g %g %g\n", x, y, d2g.AtVec(row), velg.AtVec(row))
		}
	}
	return bw.Flush()
}

func samplingOperator(t *grid.Tree, leaves []*grid.Cell, xmin, ymin, delta float64, nx, ny int) *sparse.CSR {
	rows := make(map[grid.Index]int, len(leaves))
	for k, c := range leaves {
		rows[grid.Index{Level: c.Level, I: c.I, J: c.J}] = k
	}
	dok := sparse.NewDOK(nx*ny, len(leaves))
	for i := 0; i < nx; i++ {
		x := xmin + (float64(i)+0.5)*delta
		for j := 0; j < ny; j++ {
			y := ymin + (float64(j)+0.5)*delta
			c := t.Locate(x, y)
			if c == nil {
				continue
			}
			dok.Set(i*ny+j, rows[grid.Index{Level: c.Level, I: c.I, J: c.J}], 1.0)
		}
	}
	return dok.ToCSR()
}
