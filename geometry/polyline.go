package geometry

import "math"

// Point is a 2D coordinate, X axial and Y radial.
type Point struct {
	X, Y float64
}

// Polyline is an ordered open or closed chain of points describing an
// interface, here the initial bubble-cavity boundary read from the shape
// file. A closed chain (first point equals last) supports inside/outside
// classification.
type Polyline struct {
	Points []Point
}

type BoundingBox struct {
	XMin, XMax, YMin, YMax float64
}

func (pl *Polyline) Bounds() (box BoundingBox) {
	if len(pl.Points) == 0 {
		return
	}
	box = BoundingBox{pl.Points[0].X, pl.Points[0].X, pl.Points[0].Y, pl.Points[0].Y}
	for _, p := range pl.Points {
		box.XMin = math.Min(box.XMin, p.X)
		box.XMax = math.Max(box.XMax, p.X)
		box.YMin = math.Min(box.YMin, p.Y)
		box.YMax = math.Max(box.YMax, p.Y)
	}
	return
}

// Distance returns the unsigned distance from point (x, y) to the chain.
func (pl *Polyline) Distance(x, y float64) (dmin float64) {
	dmin = math.Inf(1)
	for k := 0; k < len(pl.Points)-1; k++ {
		d := segmentDistance(x, y, pl.Points[k], pl.Points[k+1])
		if d < dmin {
			dmin = d
		}
	}
	return
}

// SignedDistance is negative inside the region enclosed by the chain and
// positive outside. The chain is treated as closed for the containment test.
func (pl *Polyline) SignedDistance(x, y float64) float64 {
	d := pl.Distance(x, y)
	if pl.Contains(x, y) {
		return -d
	}
	return d
}

// Contains classifies (x, y) against the closed chain by even-odd ray
// crossing along +x.
func (pl *Polyline) Contains(x, y float64) bool {
	inside := false
	n := len(pl.Points)
	for k := 0; k < n; k++ {
		a, b := pl.Points[k], pl.Points[(k+1)%n]
		if (a.Y > y) != (b.Y > y) {
			xCross := a.X + (y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if x < xCross {
				inside = !inside
			}
		}
	}
	return inside
}

func segmentDistance(x, y float64, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(x-a.X, y-a.Y)
	}
	s := ((x-a.X)*dx + (y-a.Y)*dy) / l2
	if s < 0 {
		s = 0
	} else if s > 1 {
		s = 1
	}
	return math.Hypot(x-(a.X+s*dx), y-(a.Y+s*dy))
}
