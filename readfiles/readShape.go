package readfiles

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/geometry"
)

// ReadShape loads an initial interface shape file: a binary list of
// little-endian float64 (x, y) coordinate pairs describing the bubble-cavity
// boundary, read until EOF. Non-finite coordinates mark the end of a chain
// and are skipped, matching the sentinel convention of the producing tools.
func ReadShape(filename string, verbose bool) (pl *geometry.Polyline, err error) {
	var file *os.File
	if verbose {
		fmt.Printf("Reading initial shape file named: %s\n", filename)
	}
	if file, err = os.Open(filename); err != nil {
		return nil, err
	}
	defer file.Close()
	reader := bufio.NewReader(file)

	pl = &geometry.Polyline{}
	var buf [16]byte
	for {
		_, err = io.ReadFull(reader, buf[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("truncated coordinate pair in %s", filename)
			}
			return nil, err
		}
		x := math.Float64frombits(binary.LittleEndian.Uint64(buf[:8]))
		y := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:]))
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pl.Points = append(pl.Points, geometry.Point{X: x, Y: y})
	}
	if len(pl.Points) < 2 {
		return nil, fmt.Errorf("shape file %s contains %d points, need at least 2",
			filename, len(pl.Points))
	}
	if verbose {
		fmt.Printf("Read %d shape points\n", len(pl.Points))
	}
	return pl, nil
}

// WriteShape is the inverse of ReadShape, used by tests and by tools that
// produce initial conditions.
func WriteShape(filename string, pl *geometry.Polyline) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return
	}
	defer file.Close()
	writer := bufio.NewWriter(file)
	var buf [16]byte
	for _, p := range pl.Points {
		binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Y))
		if _, err = writer.Write(buf[:]); err != nil {
			return
		}
	}
	return writer.Flush()
}
