package gimp

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/vec"

	"github.com/Freedooom/gimp-sub000/tile"
	"github.com/Freedooom/gimp-sub000/undo"
)

// PaintTool paints square brush dabs along line segments.
type PaintTool struct {
	// Last is the end of the previous stroke, valid when HasLast is set.
	Last    vec.Vec2
	HasLast bool

	// Size is the brush width in pixels.
	Size float64

	// Color is the paint colour.
	Color color.NRGBA

	// Opacity scales the paint, 0 to 1.
	Opacity float64

	// Spacing is the dab distance as a fraction of Size.
	Spacing float64
}

// NewPaintTool returns a brush of the given size painting c at full
// opacity.
func NewPaintTool(size float64, c color.Color) *PaintTool {
	return &PaintTool{
		Size:    size,
		Color:   color.NRGBAModel.Convert(c).(color.NRGBA),
		Opacity: 1,
		Spacing: 0.25,
	}
}

// Stroke paints from one image point to another.
func (t *PaintTool) Stroke(im *Image, id ItemID, from, to vec.Vec2) error {
	return t.paint(im, id, from, to)
}

// StrokeTo continues from the end of the previous stroke, or paints a
// single dab when there is none.
func (t *PaintTool) StrokeTo(im *Image, id ItemID, to vec.Vec2) error {
	from := to
	if t.HasLast {
		from = t.Last
	}
	return t.paint(im, id, from, to)
}

func (t *PaintTool) paint(im *Image, id ItemID, from, to vec.Vec2) error {
	d, err := im.Drawable(id)
	if err != nil {
		return err
	}
	size := max(t.Size, 1)

	im.log.PushGroupStart(undo.GroupPaintCore)
	defer im.log.PushGroupEnd()

	im.log.Push(&paintToolRecord{
		Header:  undo.NewHeader(undo.KindPaintTool, smallRecord, false),
		tool:    t,
		last:    t.Last,
		hasLast: t.HasLast,
	})
	t.Last, t.HasLast = to, true

	half := size / 2
	box := image.Rect(
		int(math.Floor(min(from.X, to.X)-half)),
		int(math.Floor(min(from.Y, to.Y)-half)),
		int(math.Ceil(max(from.X, to.X)+half)),
		int(math.Ceil(max(from.Y, to.Y)+half)),
	)
	r, ok := overlap(box, d)
	if !ok {
		return nil
	}
	dx, dy := d.Offsets()
	im.pushImageMod(id, d, r.Min.X-dx, r.Min.Y-dy, r.Dx(), r.Dy())

	cov := t.dabs(from, to, size, r)
	var sel []byte
	if !im.SelectionIsEmpty() {
		sel = im.selectionMask(r)
	}
	src := pixelBytes(tile.RGBA, t.Color, nil)
	w, bpp := r.Dx(), d.tiles.BPP()
	row := make([]byte, w*bpp)
	for y := 0; y < r.Dy(); y++ {
		if err := d.tiles.ReadRow(r.Min.X-dx, r.Min.Y+y-dy, w, row); err != nil {
			return err
		}
		for x := 0; x < w; x++ {
			a := float64(cov.Pix[y*cov.Stride+x]) / 255
			if sel != nil {
				a *= float64(sel[y*w+x]) / 255
			}
			if a == 0 {
				continue
			}
			blendOver(row[x*bpp:(x+1)*bpp], d.layout, src, tile.RGBA, a*t.Opacity, im.cmap)
		}
		_ = d.tiles.WriteRow(r.Min.X-dx, r.Min.Y+y-dy, w, row)
	}
	return nil
}

// dabs rasterizes square dabs spaced along from-to into a coverage mask
// covering r.
func (t *PaintTool) dabs(from, to vec.Vec2, size float64, r image.Rectangle) *image.Alpha {
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	step := max(size*t.Spacing, 1)
	dist := to.Sub(from).Length()
	n := int(dist / step)
	half := size / 2
	for i := 0; i <= n; i++ {
		p := from
		if n > 0 {
			p = from.Add(to.Sub(from).Mul(float64(i) / float64(n)))
		}
		x0 := float32(p.X - half - float64(r.Min.X))
		y0 := float32(p.Y - half - float64(r.Min.Y))
		x1, y1 := x0+float32(size), y0+float32(size)
		z.MoveTo(x0, y0)
		z.LineTo(x1, y0)
		z.LineTo(x1, y1)
		z.LineTo(x0, y1)
		z.ClosePath()
	}
	dst := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst
}

// paintToolRecord keeps the stroke position from before a paint step.
type paintToolRecord struct {
	undo.Header
	tool    *PaintTool
	last    vec.Vec2
	hasLast bool
}

func (r *paintToolRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	t := r.tool
	t.Last, r.last = r.last, t.Last
	t.HasLast, r.hasLast = r.hasLast, t.HasLast
	return true
}

func (r *paintToolRecord) Dispose(undo.Side) {}
