package gimp

import (
	"fmt"
	"image"

	"github.com/Freedooom/gimp-sub000/tile"
	"github.com/Freedooom/gimp-sub000/undo"
)

// floatState is attached to a layer while it is a floating selection.
//
// A rigid floating selection is composited onto its target, and backing
// holds the target pixels it covers. A relaxed one leaves the target
// untouched.
type floatState struct {
	target  ItemID
	backing *tile.Manager
	rigid   bool
}

// FloatTarget returns the drawable a floating selection belongs to.
func (l *Layer) FloatTarget() ItemID {
	if l.float == nil {
		return NoItem
	}
	return l.float.target
}

// AttachFloating makes a new floating selection from buf above target and
// composites it. Only one floating selection can exist.
func (im *Image) AttachFloating(buf *Buffer, target ItemID) (ItemID, error) {
	if buf == nil || buf.Tiles == nil {
		return NoItem, ErrNilBuffer
	}
	if im.floating.IsValid() {
		return NoItem, ErrFloatingSelection
	}
	d, err := im.Drawable(target)
	if err != nil {
		return NoItem, err
	}
	if !d.attached {
		return NoItem, fmt.Errorf("%w: %v", ErrItemDetached, target)
	}

	layout := im.base.Layout(true)
	if _, ok := im.items.get(target).(*Channel); ok {
		layout = tile.Mask
	}
	m := buf.Tiles.Duplicate()
	if buf.Layout != layout {
		conv, err := convertTiles(buf.Tiles, buf.Layout, layout, im.cmap)
		m.Free()
		if err != nil {
			return NoItem, err
		}
		m = conv
	}

	l := newLayer("Floating Selection", m, layout)
	l.float = &floatState{target: target}
	id := im.items.add(l)

	im.log.PushGroupStart(undo.GroupEditPaste)
	defer im.log.PushGroupEnd()

	im.attach(l, 0)
	im.floating = id
	im.pushFloatAttach(l, 0, true)

	im.rigor(l)
	im.pushFloatRigor(id, true)
	return id, nil
}

// AnchorFloating merges the floating selection into its target and
// removes it.
func (im *Image) AnchorFloating() error {
	l, err := im.Layer(im.floating)
	if err != nil {
		return ErrNoFloatingSelection
	}
	t := im.resolve(undo.KindFloatingSelDetach, l.float.target)
	if t == nil {
		return fmt.Errorf("%w: floating selection target", ErrItemNotFound)
	}

	im.log.PushGroupStart(undo.GroupFloatingSelAnchor)
	defer im.log.PushGroupEnd()

	im.relax(l)
	im.pushFloatRigor(l.ID(), false)

	if r, ok := overlap(l.Bounds(), t); ok {
		tx, ty := t.Offsets()
		im.pushImageMod(l.float.target, t, r.Min.X-tx, r.Min.Y-ty, r.Dx(), r.Dy())
		im.composite(l, t, r)
	}

	pos := im.detach(l)
	im.floating = NoItem
	im.pushFloatAttach(l, pos, false)
	return nil
}

// overlap returns the image-space intersection of r and d.
func overlap(r image.Rectangle, d *Drawable) (image.Rectangle, bool) {
	r = r.Intersect(d.Bounds())
	return r, !r.Empty()
}

// rigor composites l onto its target, saving the covered target pixels.
func (im *Image) rigor(l *Layer) bool {
	fs := l.float
	if fs.rigid {
		return true
	}
	t := im.resolve(undo.KindFloatingSelRigor, fs.target)
	if t == nil {
		return false
	}
	if r, ok := overlap(l.Bounds(), t); ok {
		tx, ty := t.Offsets()
		backing, err := t.tiles.Crop(r.Min.X-tx, r.Min.Y-ty, r.Dx(), r.Dy())
		if err != nil {
			Logger().Warn("gimp: floating selection store failed", "err", err)
			return false
		}
		fs.backing = backing
		im.composite(l, t, r)
	}
	fs.rigid = true
	return true
}

// relax restores the target pixels under l.
func (im *Image) relax(l *Layer) bool {
	fs := l.float
	if !fs.rigid {
		return true
	}
	t := im.resolve(undo.KindFloatingSelRelax, fs.target)
	if t == nil {
		return false
	}
	if b := fs.backing; b != nil {
		bx, by := b.Offsets()
		tx, ty := t.Offsets()
		if err := tile.CopyRegion(b, 0, 0, t.tiles, bx-tx, by-ty, b.Width(), b.Height()); err != nil {
			Logger().Warn("gimp: floating selection restore failed", "err", err)
			return false
		}
		b.Free()
		fs.backing = nil
	}
	fs.rigid = false
	return true
}

// composite blends l over t inside the image-space rectangle r.
func (im *Image) composite(l *Layer, t *Drawable, r image.Rectangle) {
	lx, ly := l.Offsets()
	tx, ty := t.Offsets()
	lb, tb := l.tiles.BPP(), t.tiles.BPP()
	w := r.Dx()
	src := make([]byte, w*lb)
	dst := make([]byte, w*tb)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		if l.tiles.ReadRow(r.Min.X-lx, y-ly, w, src) != nil ||
			t.tiles.ReadRow(r.Min.X-tx, y-ty, w, dst) != nil {
			continue
		}
		for x := 0; x < w; x++ {
			blendOver(dst[x*tb:(x+1)*tb], t.layout, src[x*lb:(x+1)*lb], l.layout, l.Opacity, im.cmap)
		}
		_ = t.tiles.WriteRow(r.Min.X-tx, y-ty, w, dst)
	}
}
