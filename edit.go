package gimp

import (
	"image"

	"github.com/Freedooom/gimp-sub000/tile"
	"github.com/Freedooom/gimp-sub000/undo"
)

// Buffer is a block of pixels lifted from a drawable. Its tiles' offsets
// place it in image space.
type Buffer struct {
	Tiles  *tile.Manager
	Layout tile.Layout
}

// Bounds returns the image-space rectangle of the buffer.
func (b *Buffer) Bounds() image.Rectangle { return b.Tiles.Bounds() }

// Free releases the pixels.
func (b *Buffer) Free() {
	if b.Tiles != nil {
		b.Tiles.Free()
		b.Tiles = nil
	}
}

// Cut extracts the working region of a drawable for a tool.
//
// With a selection, the selected pixels inside the drawable are lifted
// out, weighted by the selection, and cleared from the source; isNewLayer
// is true and the result should be pasted as a floating selection. The
// source change is recorded in an edit-cut group. Without a selection the
// whole drawable is copied, the source is left alone and isNewLayer is
// false.
//
// Layers are lifted with an alpha channel; channels stay masks.
func (im *Image) Cut(id ItemID) (buf *Buffer, isNewLayer bool, err error) {
	buf, isNewLayer, err = im.Copy(id)
	if err != nil || !isNewLayer {
		return buf, isNewLayer, err
	}
	if err := im.clearSelected(id, buf.Bounds()); err != nil {
		buf.Free()
		return nil, false, err
	}
	return buf, true, nil
}

// Copy extracts the same region as Cut without touching the source.
func (im *Image) Copy(id ItemID) (buf *Buffer, isNewLayer bool, err error) {
	d, err := im.Drawable(id)
	if err != nil {
		return nil, false, err
	}
	layout := d.layout.WithAlpha()

	sel, ok := im.SelectionBounds()
	if !ok {
		var m *tile.Manager
		if layout == d.layout {
			m = d.tiles.Duplicate()
		} else if m, err = convertTiles(d.tiles, d.layout, layout, im.cmap); err != nil {
			return nil, false, err
		}
		return &Buffer{Tiles: m, Layout: layout}, false, nil
	}

	r, ok := overlap(sel, d)
	if !ok {
		return nil, false, ErrEmptyRegion
	}
	out, err := tile.NewManager(r.Dx(), r.Dy(), layout.BytesPerPixel())
	if err != nil {
		return nil, false, err
	}
	out.SetOffsets(r.Min.X, r.Min.Y)

	dx, dy := d.Offsets()
	mask := im.selectionMask(r)
	w, db, ob := r.Dx(), d.tiles.BPP(), out.BPP()
	src := make([]byte, w*db)
	dst := make([]byte, w*ob)
	for y := 0; y < r.Dy(); y++ {
		if err := d.tiles.ReadRow(r.Min.X-dx, r.Min.Y+y-dy, w, src); err != nil {
			out.Free()
			return nil, false, err
		}
		for x := 0; x < w; x++ {
			c := toNRGBA(d.layout, src[x*db:(x+1)*db], im.cmap)
			c.A = scaleByte(c.A, mask[y*w+x])
			fromNRGBA(layout, c, im.cmap, dst[x*ob:(x+1)*ob])
		}
		_ = out.WriteRow(0, y, w, dst)
	}
	return &Buffer{Tiles: out, Layout: layout}, true, nil
}

// clearSelected removes the selected pixels of drawable id inside the
// image-space rectangle r. Layers with alpha and channels lose coverage,
// layers without alpha fade to the background colour.
func (im *Image) clearSelected(id ItemID, r image.Rectangle) error {
	d, err := im.Drawable(id)
	if err != nil {
		return err
	}

	im.log.PushGroupStart(undo.GroupEditCut)
	defer im.log.PushGroupEnd()

	dx, dy := d.Offsets()
	im.pushImageMod(id, d, r.Min.X-dx, r.Min.Y-dy, r.Dx(), r.Dy())

	mask := im.selectionMask(r)
	bg := pixelBytes(d.layout, im.bg, im.cmap)
	w, db := r.Dx(), d.tiles.BPP()
	src := make([]byte, w*db)
	for y := 0; y < r.Dy(); y++ {
		if err := d.tiles.ReadRow(r.Min.X-dx, r.Min.Y+y-dy, w, src); err != nil {
			return err
		}
		for x := 0; x < w; x++ {
			s := mask[y*w+x]
			if s == 0 {
				continue
			}
			sp := src[x*db : (x+1)*db]
			if d.layout.HasAlpha() || d.layout == tile.Mask {
				c := toNRGBA(d.layout, sp, im.cmap)
				c.A = scaleByte(c.A, 0xff-s)
				fromNRGBA(d.layout, c, im.cmap, sp)
			} else {
				blendOver(sp, d.layout, bg, d.layout, float64(s)/255, im.cmap)
			}
		}
		_ = d.tiles.WriteRow(r.Min.X-dx, r.Min.Y+y-dy, w, src)
	}
	return nil
}

// Paste commits a buffer produced by a tool. A new-layer buffer becomes a
// floating selection over id; otherwise it replaces id's pixels, picking
// up the buffer's size and position. buf is copied, not consumed.
func (im *Image) Paste(id ItemID, buf *Buffer, isNewLayer bool) bool {
	if isNewLayer {
		if _, err := im.AttachFloating(buf, id); err != nil {
			Logger().Warn("gimp: paste failed", "item", id, "err", err)
			return false
		}
		return true
	}
	if buf == nil || buf.Tiles == nil {
		return false
	}
	d, err := im.Drawable(id)
	if err != nil {
		Logger().Warn("gimp: paste failed", "item", id, "err", err)
		return false
	}
	layout := d.layout.WithAlpha()
	var m *tile.Manager
	if buf.Layout == layout {
		m = buf.Tiles.Duplicate()
	} else if m, err = convertTiles(buf.Tiles, buf.Layout, layout, im.cmap); err != nil {
		Logger().Warn("gimp: paste conversion failed", "from", buf.Layout, "to", layout, "err", err)
		return false
	}

	im.log.PushGroupStart(undo.GroupEditPaste)
	defer im.log.PushGroupEnd()

	l, _ := im.items.get(id).(*Layer)
	floating := l != nil && l.float != nil
	if floating {
		im.relax(l)
		im.pushFloatRigor(id, false)
	}
	im.replaceTiles(id, d, m, layout)
	if floating {
		im.rigor(l)
		im.pushFloatRigor(id, true)
	}
	return true
}

// scaleByte returns a*s/255, rounded.
func scaleByte(a, s byte) byte {
	return byte((int(a)*int(s) + 127) / 255)
}
