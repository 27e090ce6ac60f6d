// Package transform resamples tiled rasters through 3x3 homogeneous
// matrices.
//
// Transform allocates a new tile.Manager sized to the transformed bounding
// box (or to the source rectangle when clipping) and fills it by mapping
// every destination pixel centre back into the source. Nearest, bilinear
// and bicubic (Catmull-Rom) kernels are available; interpolated modes
// blend colour premultiplied by alpha so transparent neighbours do not
// bleed into the result.
//
// Surround is the neighbourhood accessor the kernels read through. It
// returns a slice of a single tile when it can and assembles a scratch
// copy, padded with the background colour, when it cannot.
//
// Basic usage:
//
//	opts := transform.DefaultOptions()
//	opts.Interpolation = transform.InterpBilinear
//	dst, err := transform.Transform(src, tile.RGBA, transform.Rotate(0.5), opts)
package transform
