package transform

import (
	"errors"
	"image"
	"math"

	"seehuhn.de/go/geom/rect"

	"github.com/Freedooom/gimp-sub000/tile"
)

// Errors returned by Transform.
var (
	// ErrNilSource is returned when no source manager is given.
	ErrNilSource = errors.New("transform: nil source")

	// ErrLayoutMismatch is returned when the layout's depth differs from
	// the source manager's.
	ErrLayoutMismatch = errors.New("transform: layout does not match source depth")

	// ErrSingularMatrix is returned when the matrix cannot be inverted.
	ErrSingularMatrix = errors.New("transform: singular matrix")

	// ErrUnbounded is returned when a source corner maps to infinity.
	ErrUnbounded = errors.New("transform: result is unbounded")

	// ErrEmptyResult is returned when the result has zero area.
	ErrEmptyResult = errors.New("transform: empty result")
)

const (
	// progressInterval is the number of rows between progress callbacks.
	progressInterval = 16

	// maxCoord bounds source coordinates before integer conversion.
	maxCoord = 1 << 30
)

// Options configures a transform pass.
type Options struct {
	// Direction says whether the matrix maps source to destination
	// (Forward) or destination to source (Corrective).
	Direction Direction

	// Interpolation selects the resampling kernel.
	Interpolation InterpolationMode

	// InterpolationEnabled is the global interpolation switch. When false
	// every pass uses nearest neighbour.
	InterpolationEnabled bool

	// Clip selects the result extent.
	Clip ClipPolicy

	// Extent, when not empty, is the exact image-space rectangle of the
	// result and overrides Clip.
	Extent image.Rectangle

	// Background fills destination pixels with no source coverage.
	// Missing bytes are zero.
	Background []byte

	// Progress, if set, is called with the first and last destination
	// rows and the current row, at most once every 16 rows. It must not
	// modify the source.
	Progress func(start, end, current int)
}

// DefaultOptions returns forward, bicubic, growing options with a
// transparent background.
func DefaultOptions() Options {
	return Options{
		Direction:            Forward,
		Interpolation:        InterpBicubic,
		InterpolationEnabled: true,
		Clip:                 Grow,
	}
}

// Transform resamples src through m into a new manager. The source is
// left untouched. The result is placed in image space by its offsets,
// which are the origin of the destination bounding box.
//
// Coordinates are image-space pixel centres: destination pixel (x, y) is
// sampled at the source point the matrix assigns to (x+0.5, y+0.5).
func Transform(src *tile.Manager, layout tile.Layout, m Matrix, opts Options) (*tile.Manager, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if layout.BytesPerPixel() != src.BPP() {
		return nil, ErrLayoutMismatch
	}

	var fwd, inv Matrix
	var ok bool
	if opts.Direction == Corrective {
		inv = m
		fwd, ok = m.Invert()
	} else {
		fwd = m
		inv, ok = m.Invert()
	}
	if !ok {
		return nil, ErrSingularMatrix
	}

	mode := opts.Interpolation
	if !opts.InterpolationEnabled || layout.IsIndexed() || fwd.IsSimple() {
		mode = InterpNearest
	}

	x1, y1, x2, y2, err := extent(src, layout, fwd, opts)
	if err != nil {
		return nil, err
	}
	if x2 <= x1 || y2 <= y1 {
		return nil, ErrEmptyResult
	}

	dst, err := tile.NewManager(x2-x1, y2-y1, src.BPP())
	if err != nil {
		return nil, err
	}
	dst.SetOffsets(x1, y1)

	p := newPass(src, layout, inv, mode, opts.Background)
	defer p.surround.Clear()

	slogger().Debug("transform: pass",
		"mode", mode, "direction", opts.Direction, "clip", opts.Clip,
		"src", src.Bounds(), "dst", dst.Bounds())

	width := x2 - x1
	row := make([]byte, width*p.bpp)
	for x := 0; x < width; x++ {
		copy(row[x*p.bpp:], p.bg)
	}

	for y := y1; y < y2; y++ {
		if opts.Progress != nil && (y-y1)%progressInterval == 0 {
			opts.Progress(y1, y2, y)
		}
		for x := x1; x < x2; x++ {
			p.sample(float64(x)+0.5, float64(y)+0.5, row[(x-x1)*p.bpp:(x-x1+1)*p.bpp])
		}
		if err := dst.WriteRow(0, y-y1, width, row); err != nil {
			return nil, err
		}
	}

	if p.degenerate > 0 {
		slogger().Warn("transform: degenerate homogeneous coordinate",
			"pixels", p.degenerate)
	}
	return dst, nil
}

// extent returns the destination rectangle of a pass.
func extent(src *tile.Manager, layout tile.Layout, fwd Matrix, opts Options) (x1, y1, x2, y2 int, err error) {
	if !opts.Extent.Empty() {
		r := opts.Extent
		return r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, nil
	}
	sx, sy := src.Offsets()
	sw, sh := src.Width(), src.Height()
	box := rect.Rect{LLx: float64(sx), LLy: float64(sy), URx: float64(sx + sw), URy: float64(sy + sh)}
	if opts.Clip == Grow && layout.HasAlpha() {
		var ok bool
		if box, ok = BoundingBox(fwd, box); !ok {
			return 0, 0, 0, 0, ErrUnbounded
		}
	}
	return int(box.LLx), int(box.LLy), int(box.URx), int(box.URy), nil
}

// pass holds the per-transform state shared by the samplers.
type pass struct {
	src      *tile.Manager
	inv      Matrix
	mode     InterpolationMode
	bpp      int
	alpha    int
	bg       []byte
	ox, oy   float64
	w, h     int
	surround *Surround

	// degenerate counts destination pixels whose homogeneous coordinate
	// was zero.
	degenerate int
}

func newPass(src *tile.Manager, layout tile.Layout, inv Matrix, mode InterpolationMode, bg []byte) *pass {
	bpp := src.BPP()
	bgc := make([]byte, bpp)
	copy(bgc, bg)
	ox, oy := src.Offsets()

	n := 1
	switch mode {
	case InterpBilinear:
		n = 2
	case InterpBicubic:
		n = 4
	}
	return &pass{
		src:      src,
		inv:      inv,
		mode:     mode,
		bpp:      bpp,
		alpha:    layout.AlphaIndex(),
		bg:       bgc,
		ox:       float64(ox),
		oy:       float64(oy),
		w:        src.Width(),
		h:        src.Height(),
		surround: NewSurround(src, n, n, bgc),
	}
}

// sample computes the destination pixel whose centre is (xc, yc) into out.
// A degenerate mapping leaves out unchanged.
func (p *pass) sample(xc, yc float64, out []byte) {
	tx, ty, tw := p.inv.TransformPoint(xc, yc)
	if tw == 0 {
		p.degenerate++
		return
	}
	// Source-local continuous coordinates.
	u := tx/tw - p.ox
	v := ty/tw - p.oy
	if math.IsNaN(u) || math.IsNaN(v) || math.Abs(u) > maxCoord || math.Abs(v) > maxCoord {
		copy(out, p.bg)
		return
	}

	switch p.mode {
	case InterpBilinear:
		p.sampleBilinear(u-0.5, v-0.5, out)
	case InterpBicubic:
		p.sampleBicubic(u-0.5, v-0.5, out)
	default:
		p.sampleNearest(u, v, out)
	}
}

func (p *pass) sampleNearest(u, v float64, out []byte) {
	ix := int(math.Floor(u))
	iy := int(math.Floor(v))
	if ix < 0 || iy < 0 || ix >= p.w || iy >= p.h {
		copy(out, p.bg)
		return
	}
	p.src.ReadPixel(ix, iy, out)
}

// sampleBilinear blends the 2x2 block whose top-left pixel centre is at
// or before (fu, fv) on the pixel-centre lattice.
func (p *pass) sampleBilinear(fu, fv float64, out []byte) {
	fx, fy := math.Floor(fu), math.Floor(fv)
	itx, ity := int(fx), int(fy)
	if itx+1 < 0 || itx >= p.w || ity+1 < 0 || ity >= p.h {
		copy(out, p.bg)
		return
	}
	dx, dy := fu-fx, fv-fy

	data, stride := p.surround.Lock(itx, ity)
	defer p.surround.Release()

	bpp := p.bpp
	a := data[0:]
	b := data[bpp:]
	c := data[stride:]
	d := data[stride+bpp:]

	ai := p.alpha
	if ai < 0 {
		for k := 0; k < bpp; k++ {
			out[k] = clampByte(bilinear(dx, dy,
				float64(a[k]), float64(b[k]), float64(c[k]), float64(d[k])))
		}
		return
	}

	aa, ab, ac, ad := float64(a[ai]), float64(b[ai]), float64(c[ai]), float64(d[ai])
	aval := bilinear(dx, dy, aa, ab, ac, ad)
	recip := p.writeAlpha(aval, out)

	for k := 0; k < ai; k++ {
		v := bilinear(dx, dy,
			float64(a[k])*aa, float64(b[k])*ab, float64(c[k])*ac, float64(d[k])*ad)
		out[k] = clampByte(v * recip)
	}
}

// sampleBicubic applies Catmull-Rom to the 4x4 block around (fu, fv).
// Intermediate row results are not clamped; only the final byte is.
func (p *pass) sampleBicubic(fu, fv float64, out []byte) {
	fx, fy := math.Floor(fu), math.Floor(fv)
	itx, ity := int(fx), int(fy)
	if itx+2 < 0 || itx-1 >= p.w || ity+2 < 0 || ity-1 >= p.h {
		copy(out, p.bg)
		return
	}
	dx, dy := fu-fx, fv-fy

	data, stride := p.surround.Lock(itx-1, ity-1)
	defer p.surround.Release()

	bpp := p.bpp
	at := func(i, j, k int) float64 {
		return float64(data[j*stride+i*bpp+k])
	}

	ai := p.alpha
	if ai < 0 {
		for k := 0; k < bpp; k++ {
			var col [4]float64
			for j := 0; j < 4; j++ {
				col[j] = cubic(dx, at(0, j, k), at(1, j, k), at(2, j, k), at(3, j, k))
			}
			out[k] = clampByte(cubic(dy, col[0], col[1], col[2], col[3]))
		}
		return
	}

	var col [4]float64
	for j := 0; j < 4; j++ {
		col[j] = cubic(dx, at(0, j, ai), at(1, j, ai), at(2, j, ai), at(3, j, ai))
	}
	aval := cubic(dy, col[0], col[1], col[2], col[3])
	recip := p.writeAlpha(aval, out)

	for k := 0; k < ai; k++ {
		for j := 0; j < 4; j++ {
			col[j] = cubic(dx,
				at(0, j, k)*at(0, j, ai), at(1, j, k)*at(1, j, ai),
				at(2, j, k)*at(2, j, ai), at(3, j, k)*at(3, j, ai))
		}
		out[k] = clampByte(cubic(dy, col[0], col[1], col[2], col[3]) * recip)
	}
}

// writeAlpha stores the interpolated alpha and returns the reciprocal used
// to un-premultiply the colour channels. Zero coverage forces colour to 0.
func (p *pass) writeAlpha(aval float64, out []byte) float64 {
	switch {
	case aval <= 0:
		out[p.alpha] = 0
		return 0
	case aval >= 255:
		out[p.alpha] = 255
	default:
		out[p.alpha] = byte(rint(aval))
	}
	return 1 / aval
}
