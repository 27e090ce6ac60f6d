package transform

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Corners returns the four corners of r mapped through m, in the order
// lower-left, lower-right, upper-left, upper-right. ok is false if any
// corner maps to infinity.
func Corners(m Matrix, r rect.Rect) (c [4]vec.Vec2, ok bool) {
	pts := [4]vec.Vec2{
		{X: r.LLx, Y: r.LLy},
		{X: r.URx, Y: r.LLy},
		{X: r.LLx, Y: r.URy},
		{X: r.URx, Y: r.URy},
	}
	for i, p := range pts {
		x, y, fine := m.Project(p.X, p.Y)
		if !fine {
			return c, false
		}
		c[i] = vec.Vec2{X: x, Y: y}
	}
	return c, true
}

// BoundingBox returns the integer-aligned axis-aligned bounding box of r
// mapped through m. Coordinates within 1e-6 of an integer are snapped to
// it before rounding outwards, so exact rotations by multiples of 90
// degrees do not grow by a pixel. ok is false if a corner maps to
// infinity.
func BoundingBox(m Matrix, r rect.Rect) (box rect.Rect, ok bool) {
	c, ok := Corners(m, r)
	if !ok {
		return rect.Rect{}, false
	}
	box = rect.Rect{LLx: c[0].X, LLy: c[0].Y, URx: c[0].X, URy: c[0].Y}
	for _, p := range c[1:] {
		box.LLx = math.Min(box.LLx, p.X)
		box.LLy = math.Min(box.LLy, p.Y)
		box.URx = math.Max(box.URx, p.X)
		box.URy = math.Max(box.URy, p.Y)
	}
	box.LLx = math.Floor(snap(box.LLx))
	box.LLy = math.Floor(snap(box.LLy))
	box.URx = math.Ceil(snap(box.URx))
	box.URy = math.Ceil(snap(box.URy))
	return box, true
}

func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < simpleEpsilon {
		return r
	}
	return v
}
