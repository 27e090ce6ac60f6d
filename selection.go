package gimp

import (
	"image"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/path"
)

// selectionChannel returns the selection mask.
func (im *Image) selectionChannel() *Channel {
	return im.items.get(im.selection).(*Channel)
}

// SelectionValue returns the selection coverage at an image pixel.
func (im *Image) SelectionValue(x, y int) byte {
	var p [1]byte
	im.selectionChannel().tiles.ReadPixel(x, y, p[:])
	return p[0]
}

// SelectionBounds returns the smallest rectangle holding every selected
// pixel. ok is false when nothing is selected.
func (im *Image) SelectionBounds() (r image.Rectangle, ok bool) {
	m := im.selectionChannel().tiles
	row := make([]byte, m.Width())
	x1, y1, x2, y2 := m.Width(), m.Height(), 0, 0
	for y := 0; y < m.Height(); y++ {
		if m.ReadRow(0, y, m.Width(), row) != nil {
			break
		}
		for x, v := range row {
			if v == 0 {
				continue
			}
			x1, x2 = min(x1, x), max(x2, x+1)
			y1, y2 = min(y1, y), max(y2, y+1)
		}
	}
	if x2 <= x1 || y2 <= y1 {
		return image.Rectangle{}, false
	}
	return image.Rect(x1, y1, x2, y2), true
}

// SelectionIsEmpty reports whether nothing is selected.
func (im *Image) SelectionIsEmpty() bool {
	_, ok := im.SelectionBounds()
	return !ok
}

// SelectRect replaces the selection with a rectangle clipped to the
// canvas.
func (im *Image) SelectRect(r image.Rectangle) {
	im.pushMask()
	m := im.selectionChannel().tiles
	m.Fill([]byte{0})
	r = r.Intersect(im.Bounds())
	m.FillRect(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), []byte{0xff})
}

// SelectAll selects the whole canvas.
func (im *Image) SelectAll() {
	im.pushMask()
	im.selectionChannel().tiles.Fill([]byte{0xff})
}

// SelectNone clears the selection.
func (im *Image) SelectNone() {
	im.pushMask()
	im.selectionChannel().tiles.Fill([]byte{0})
}

// InvertSelection inverts every selection value.
func (im *Image) InvertSelection() {
	im.pushMask()
	sel := im.selectionChannel()
	m := sel.tiles
	row := make([]byte, m.Width())
	for y := 0; y < m.Height(); y++ {
		if m.ReadRow(0, y, m.Width(), row) != nil {
			break
		}
		for x := range row {
			row[x] = 0xff - row[x]
		}
		_ = m.WriteRow(0, y, m.Width(), row)
	}
}

// SelectVectors replaces the selection with the filled interior of a
// path, antialiased.
func (im *Image) SelectVectors(id ItemID) error {
	v, err := im.Vectors(id)
	if err != nil {
		return err
	}
	cov := rasterizePath(v.strokes, im.width, im.height)

	im.pushMask()
	sel := im.selectionChannel()
	row := make([]byte, im.width)
	for y := 0; y < im.height; y++ {
		copy(row, cov.Pix[y*cov.Stride:y*cov.Stride+im.width])
		_ = sel.tiles.WriteRow(0, y, im.width, row)
	}
	return nil
}

// rasterizePath fills p with the non-zero rule into a w x h coverage
// mask. Open subpaths are closed implicitly.
func rasterizePath(p *path.Data, w, h int) *image.Alpha {
	z := vector.NewRasterizer(w, h)
	k := 0
	open := false
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			if open {
				z.ClosePath()
			}
			pt := p.Coords[k]
			z.MoveTo(float32(pt.X), float32(pt.Y))
			k++
			open = true
		case path.CmdLineTo:
			pt := p.Coords[k]
			z.LineTo(float32(pt.X), float32(pt.Y))
			k++
		case path.CmdQuadTo:
			a, b := p.Coords[k], p.Coords[k+1]
			z.QuadTo(float32(a.X), float32(a.Y), float32(b.X), float32(b.Y))
			k += 2
		case path.CmdCubeTo:
			a, b, c := p.Coords[k], p.Coords[k+1], p.Coords[k+2]
			z.CubeTo(float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(c.X), float32(c.Y))
			k += 3
		case path.CmdClose:
			z.ClosePath()
			open = false
		}
	}
	if open {
		z.ClosePath()
	}
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst
}

// selectionMask reads the selection over an image-space rectangle.
func (im *Image) selectionMask(r image.Rectangle) []byte {
	out := make([]byte, r.Dx()*r.Dy())
	m := im.selectionChannel().tiles
	in := r.Intersect(im.Bounds())
	for y := in.Min.Y; y < in.Max.Y; y++ {
		off := (y-r.Min.Y)*r.Dx() + in.Min.X - r.Min.X
		_ = m.ReadRow(in.Min.X, y, in.Dx(), out[off:off+in.Dx()])
	}
	return out
}
