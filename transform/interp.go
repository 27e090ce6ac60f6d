package transform

import "math"

// InterpolationMode selects the resampling kernel.
type InterpolationMode uint8

const (
	// InterpNearest copies the source pixel containing the sample point.
	InterpNearest InterpolationMode = iota

	// InterpBilinear blends the 2x2 neighbourhood of the sample point.
	InterpBilinear

	// InterpBicubic applies a Catmull-Rom kernel to the 4x4 neighbourhood.
	InterpBicubic
)

// String returns a string representation of the interpolation mode.
func (m InterpolationMode) String() string {
	switch m {
	case InterpNearest:
		return "Nearest"
	case InterpBilinear:
		return "Bilinear"
	case InterpBicubic:
		return "Bicubic"
	default:
		return "Unknown"
	}
}

// Direction tells the engine which way round the supplied matrix points.
type Direction uint8

const (
	// Forward matrices map source to destination; the engine inverts them
	// for sampling.
	Forward Direction = iota

	// Corrective matrices map destination to source and are used for
	// sampling as given; the inverse is only needed for the bounding box.
	Corrective
)

// String returns a string representation of the direction.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "Forward"
	case Corrective:
		return "Corrective"
	default:
		return "Unknown"
	}
}

// ClipPolicy chooses the extent of the transform result.
type ClipPolicy uint8

const (
	// Grow sizes the result to the bounding box of the transformed source.
	Grow ClipPolicy = iota

	// Clip keeps the source rectangle.
	Clip
)

// String returns a string representation of the clip policy.
func (c ClipPolicy) String() string {
	switch c {
	case Grow:
		return "Grow"
	case Clip:
		return "Clip"
	default:
		return "Unknown"
	}
}

// bilinear blends the four corner values a (top-left), b (top-right),
// c (bottom-left), d (bottom-right).
func bilinear(dx, dy, a, b, c, d float64) float64 {
	return (1-dy)*(a+dx*(b-a)) + dy*(c+dx*(d-c))
}

// cubic evaluates the Catmull-Rom spline through four samples at
// fractional offset dx between jp and jp1.
func cubic(dx, jm1, j, jp1, jp2 float64) float64 {
	return (((-jm1+3*j-3*jp1+jp2)*dx+(2*jm1-5*j+4*jp1-jp2))*dx+(-jm1+jp1))*dx/2 + j
}

// rint rounds half to even.
func rint(v float64) float64 {
	return math.RoundToEven(v)
}

// clampByte rounds v and clamps it to [0, 255].
func clampByte(v float64) byte {
	v = rint(v)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return byte(v)
	}
}
