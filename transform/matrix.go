package transform

import (
	"math"

	"golang.org/x/image/math/f64"
	"seehuhn.de/go/geom/matrix"
)

// Matrix is a 3x3 homogeneous transformation matrix in row-major order:
//
//	| m[0] m[1] m[2] |
//	| m[3] m[4] m[5] |
//	| m[6] m[7] m[8] |
//
// A point (x, y) maps to (m[0]x + m[1]y + m[2], m[3]x + m[4]y + m[5])
// divided by the homogeneous coordinate m[6]x + m[7]y + m[8].
type Matrix f64.Mat3

// simpleEpsilon is the tolerance used by IsSimple and bounding box snapping.
const simpleEpsilon = 1e-6

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		1, 0, x,
		0, 1, y,
		0, 0, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		x, 0, 0,
		0, y, 0,
		0, 0, 1,
	}
}

// Rotate creates a rotation matrix (angle in radians). With the y axis
// pointing down, positive angles turn clockwise on screen.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{
		cos, -sin, 0,
		sin, cos, 0,
		0, 0, 1,
	}
}

// RotateAbout rotates by angle around the point (cx, cy).
func RotateAbout(angle, cx, cy float64) Matrix {
	return Translate(cx, cy).Multiply(Rotate(angle)).Multiply(Translate(-cx, -cy))
}

// Shear creates a shear matrix.
func Shear(x, y float64) Matrix {
	return Matrix{
		1, x, 0,
		y, 1, 0,
		0, 0, 1,
	}
}

// Perspective returns the matrix mapping the rectangle (x, y, w, h) onto
// the quadrilateral with corners (x1, y1) .. (x4, y4), listed top-left,
// top-right, bottom-left, bottom-right.
func Perspective(x, y, w, h float64, x1, y1, x2, y2, x3, y3, x4, y4 float64) Matrix {
	scalex, scaley := 1.0, 1.0
	if w > 0 {
		scalex = 1 / w
	}
	if h > 0 {
		scaley = 1 / h
	}

	var m Matrix
	dx1 := x2 - x4
	dx2 := x3 - x4
	dx3 := x1 - x2 + x4 - x3
	dy1 := y2 - y4
	dy2 := y3 - y4
	dy3 := y1 - y2 + y4 - y3

	if dx3 == 0 && dy3 == 0 {
		// Parallelogram: the mapping is affine.
		m = Matrix{
			x2 - x1, x4 - x2, x1,
			y2 - y1, y4 - y2, y1,
			0, 0, 1,
		}
	} else {
		det1 := dx3*dy2 - dy3*dx2
		det2 := dx1*dy2 - dy1*dx2
		g, hh := 1.0, 1.0
		if det2 != 0 {
			g = det1 / det2
			hh = (dx1*dy3 - dy1*dx3) / det2
		}
		m = Matrix{
			x2 - x1 + g*x2, x3 - x1 + hh*x3, x1,
			y2 - y1 + g*y2, y3 - y1 + hh*y3, y1,
			g, hh, 1,
		}
	}

	// Map the unit square produced above back onto (x, y, w, h).
	return m.Multiply(Scale(scalex, scaley)).Multiply(Translate(-x, -y))
}

// Multiply returns m * other, so other is applied first.
func (m Matrix) Multiply(other Matrix) Matrix {
	var r Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i*3+j] = m[i*3]*other[j] + m[i*3+1]*other[3+j] + m[i*3+2]*other[6+j]
		}
	}
	return r
}

// Determinant returns the determinant of the matrix.
func (m Matrix) Determinant() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Invert returns the inverse matrix. The second result is false when the
// matrix is singular.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.Determinant()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Matrix{}, false
	}
	inv := 1 / det
	return Matrix{
		(m[4]*m[8] - m[5]*m[7]) * inv,
		(m[2]*m[7] - m[1]*m[8]) * inv,
		(m[1]*m[5] - m[2]*m[4]) * inv,
		(m[5]*m[6] - m[3]*m[8]) * inv,
		(m[0]*m[8] - m[2]*m[6]) * inv,
		(m[2]*m[3] - m[0]*m[5]) * inv,
		(m[3]*m[7] - m[4]*m[6]) * inv,
		(m[1]*m[6] - m[0]*m[7]) * inv,
		(m[0]*m[4] - m[1]*m[3]) * inv,
	}, true
}

// TransformPoint applies the matrix to (x, y, 1) and returns the
// homogeneous result without normalising it.
func (m Matrix) TransformPoint(x, y float64) (tx, ty, tw float64) {
	tx = m[0]*x + m[1]*y + m[2]
	ty = m[3]*x + m[4]*y + m[5]
	tw = m[6]*x + m[7]*y + m[8]
	return tx, ty, tw
}

// Project maps (x, y) through the matrix and divides by the homogeneous
// coordinate. ok is false when that coordinate is zero.
func (m Matrix) Project(x, y float64) (px, py float64, ok bool) {
	tx, ty, tw := m.TransformPoint(x, y)
	if tw == 0 {
		return 0, 0, false
	}
	return tx / tw, ty / tw, true
}

// IsIdentity returns true if the matrix is exactly the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// IsAffine returns true if the last row is (0, 0, 1).
func (m Matrix) IsAffine() bool {
	return m[6] == 0 && m[7] == 0 && m[8] == 1
}

// IsSimple reports whether the matrix only flips, swaps axes and
// translates: each coefficient of the upper-left 2×2 block is within 1e-6
// of -1, 0 or 1 and the perspective row is (0, 0, ±1). Identity, flips, 90
// degree rotations and translations are simple; resampling them never
// needs interpolation.
func (m Matrix) IsSimple() bool {
	for _, v := range [4]float64{m[0], m[1], m[3], m[4]} {
		v = math.Abs(v)
		if v > simpleEpsilon && math.Abs(v-1) > simpleEpsilon {
			return false
		}
	}
	return math.Abs(m[6]) <= simpleEpsilon && math.Abs(m[7]) <= simpleEpsilon &&
		math.Abs(math.Abs(m[8])-1) <= simpleEpsilon
}

// Aff3 returns the affine part of the matrix in the layout used by
// golang.org/x/image/draw.
func (m Matrix) Aff3() f64.Aff3 {
	return f64.Aff3{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// FromGeom converts an affine matrix in the PDF convention, where (x, y)
// maps to (a x + c y + e, b x + d y + f), to a Matrix.
func FromGeom(g matrix.Matrix) Matrix {
	return Matrix{
		g[0], g[2], g[4],
		g[1], g[3], g[5],
		0, 0, 1,
	}
}
