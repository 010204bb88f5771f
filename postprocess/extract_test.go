package postprocess

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/grid"
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/sim"
)

// dumpTestSnapshot writes a snapshot with a known velocity field: the liquid
// (f = 1, lower half y < 4) moves axially with ux = 3, the gas above is at
// rest with f = 0.
func dumpTestSnapshot(t *testing.T) string {
	tree := grid.NewTree(sim.NumFields, 4, 8, -4, 0)
	tree.AxisOdd[sim.Uy] = true
	for _, c := range tree.Leaves() {
		_, y := tree.CellCenter(c)
		if y < 4 {
			c.Val[sim.F] = 1
			c.Val[sim.Ux] = 3
		}
	}
	tree.Restrict()
	name := filepath.Join(t.TempDir(), "snapshot-0.5000")
	require.NoError(t, tree.Dump(name, 0.5, 50))
	return name
}

func TestExtract(t *testing.T) {
	name := dumpTestSnapshot(t)
	var buf bytes.Buffer
	require.NoError(t, Extract(name, -4, 0, 4, 4, 8, &buf))

	// Square window, square sample cells: nx follows from the aspect ratio
	scanner := bufio.NewScanner(&buf)
	var rows int
	for scanner.Scan() {
		var x, y, d2c, vel float64
		_, err := fmt.Sscanf(scanner.Text(), "%g %g %g %g", &x, &y, &d2c, &vel)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, x, -4.)
		assert.LessOrEqual(t, x, 4.)
		assert.GreaterOrEqual(t, y, 0.)
		assert.LessOrEqual(t, y, 4.)
		// The window sits entirely in the uniform liquid, away from the
		// f jump at y = 4
		if y < 3 {
			assert.InDelta(t, 3.0, vel, 1e-12, "at (%g, %g)", x, y)
		}
		rows++
	}
	assert.Equal(t, 16*8, rows)
}

func TestExtractGasIsQuiescent(t *testing.T) {
	name := dumpTestSnapshot(t)
	var buf bytes.Buffer
	require.NoError(t, Extract(name, -4, 5, 4, 8, 6, &buf))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var x, y, d2c, vel float64
		_, err := fmt.Sscanf(line, "%g %g %g %g", &x, &y, &d2c, &vel)
		require.NoError(t, err)
		// f = 0 masks both derived fields; the log floor marks no flow
		assert.Equal(t, 0.0, vel)
		assert.Equal(t, -10.0, d2c)
	}
}

func TestExtractStrainColumn(t *testing.T) {
	// Linear shear ux = 2y in the liquid gives |D| = 1, so
	// D2c = log10(f * |D|) = 0 in the bulk
	tree := grid.NewTree(sim.NumFields, 5, 8, -4, 0)
	tree.AxisOdd[sim.Uy] = true
	for _, c := range tree.Leaves() {
		_, y := tree.CellCenter(c)
		c.Val[sim.F] = 1
		c.Val[sim.Ux] = 2 * y
	}
	tree.Restrict()
	name := filepath.Join(t.TempDir(), "snapshot-0.0100")
	require.NoError(t, tree.Dump(name, 0.01, 1))

	var buf bytes.Buffer
	require.NoError(t, Extract(name, -2, 2, 2, 4, 8, &buf))
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var x, y, d2c, vel float64
		_, err := fmt.Sscanf(scanner.Text(), "%g %g %g %g", &x, &y, &d2c, &vel)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, d2c, 1e-10, "at (%g, %g)", x, y)
		assert.InDelta(t, 2*y, vel, math.Abs(vel)*0.15, "at (%g, %g)", x, y)
	}
}

func TestExtractErrors(t *testing.T) {
	name := dumpTestSnapshot(t)
	var buf bytes.Buffer
	err := Extract(name, -4, 0, -3.9, 4, 4, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty sampling window")

	err = Extract(filepath.Join(t.TempDir(), "missing"), -4, 0, 4, 4, 8, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to restore snapshot")
}
