package grid

import (
	"encoding/gob"
	"fmt"
	"os"
)

// snapshot is the on-disk layout of a checkpoint. The cell map is flattened
// to a slice because gob handles slices of structs far more compactly than a
// map keyed by struct.
type snapshot struct {
	NFields   int
	BaseLevel int
	L0        float64
	X0, Y0    float64
	AxisOdd   []bool
	Time      float64
	Iteration int
	Cells     []Cell
}

// Dump writes the full tree plus the run clock to a checkpoint file. The
// write goes to a temporary file first so an interrupted dump never corrupts
// an existing restart file.
func (t *Tree) Dump(filename string, time float64, iteration int) error {
	s := snapshot{
		NFields:   t.NFields,
		BaseLevel: t.BaseLevel,
		L0:        t.L0,
		X0:        t.X0,
		Y0:        t.Y0,
		AxisOdd:   t.AxisOdd,
		Time:      time,
		Iteration: iteration,
		Cells:     make([]Cell, 0, len(t.Cells)),
	}
	for _, c := range t.Cells {
		s.Cells = append(s.Cells, *c)
	}
	tmp := filename + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("unable to create dump file %s: %w", tmp, err)
	}
	if err = gob.NewEncoder(file).Encode(s); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("unable to encode dump file %s: %w", tmp, err)
	}
	if err = file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filename)
}

// Restore reads a checkpoint written by Dump and rebuilds the tree exactly,
// returning the stored run clock alongside it.
func Restore(filename string) (t *Tree, time float64, iteration int, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, 0, 0, err
	}
	defer file.Close()
	var s snapshot
	if err = gob.NewDecoder(file).Decode(&s); err != nil {
		return nil, 0, 0, fmt.Errorf("unable to decode dump file %s: %w", filename, err)
	}
	t = &Tree{
		NFields:   s.NFields,
		BaseLevel: s.BaseLevel,
		L0:        s.L0,
		X0:        s.X0,
		Y0:        s.Y0,
		AxisOdd:   s.AxisOdd,
		Cells:     make(map[Index]*Cell, len(s.Cells)),
		dirty:     true,
	}
	for k := range s.Cells {
		c := s.Cells[k]
		t.Cells[Index{c.Level, c.I, c.J}] = &c
	}
	return t, s.Time, s.Iteration, nil
}
