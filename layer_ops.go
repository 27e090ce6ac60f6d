package gimp

import (
	"fmt"
	"image"
	"image/color"

	"github.com/Freedooom/gimp-sub000/tile"
	"github.com/Freedooom/gimp-sub000/undo"
)

// MaskFill selects the initial contents of a new layer mask.
type MaskFill uint8

const (
	// MaskWhite makes the whole layer visible.
	MaskWhite MaskFill = iota

	// MaskBlack hides the whole layer.
	MaskBlack

	// MaskAlpha copies the layer's alpha channel.
	MaskAlpha

	// MaskSelection copies the selection under the layer.
	MaskSelection
)

// String returns a string representation of the mask fill.
func (f MaskFill) String() string {
	switch f {
	case MaskWhite:
		return "White"
	case MaskBlack:
		return "Black"
	case MaskAlpha:
		return "Alpha"
	case MaskSelection:
		return "Selection"
	default:
		return "Unknown"
	}
}

// addItem attaches a detached item of type t at pos and records it.
func (im *Image) addItem(id ItemID, t ItemType, pos int) error {
	it := im.items.get(id)
	switch {
	case it == nil:
		return fmt.Errorf("%w: %v", ErrItemNotFound, id)
	case it.Type() != t:
		return fmt.Errorf("%w: %v is a %v", ErrWrongItemType, id, it.Type())
	case it.base().attached:
		return fmt.Errorf("%w: %v", ErrItemAttached, id)
	}
	prev := *im.active(t)
	im.attach(it, pos)
	im.pushStack(it, im.position(it), true, prev)
	return nil
}

// removeItem detaches an item of type t from its stack and records it.
// The record owns the item from then on.
func (im *Image) removeItem(id ItemID, t ItemType) error {
	it := im.items.get(id)
	switch {
	case it == nil:
		return fmt.Errorf("%w: %v", ErrItemNotFound, id)
	case it.Type() != t:
		return fmt.Errorf("%w: %v is a %v", ErrWrongItemType, id, it.Type())
	case im.position(it) < 0:
		return fmt.Errorf("%w: %v", ErrItemDetached, id)
	}
	prev := *im.active(t)
	pos := im.detach(it)
	im.pushStack(it, pos, false, prev)
	return nil
}

// repositionItem moves an attached item to pos and records the old index.
func (im *Image) repositionItem(id ItemID, t ItemType, pos int) error {
	it := im.items.get(id)
	switch {
	case it == nil:
		return fmt.Errorf("%w: %v", ErrItemNotFound, id)
	case it.Type() != t:
		return fmt.Errorf("%w: %v is a %v", ErrWrongItemType, id, it.Type())
	}
	old := im.move(it, pos)
	if old < 0 {
		return fmt.Errorf("%w: %v", ErrItemDetached, id)
	}
	if im.position(it) != old {
		im.pushReposition(it, old)
	}
	return nil
}

// NewLayer creates a detached layer of the image's base type. Layers with
// alpha start transparent, others start filled with the background
// colour.
func (im *Image) NewLayer(name string, width, height int, alpha bool) (ItemID, error) {
	if width <= 0 || height <= 0 {
		return NoItem, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	layout := im.base.Layout(alpha)
	m, err := tile.NewManager(width, height, layout.BytesPerPixel())
	if err != nil {
		return NoItem, err
	}
	if !alpha {
		m.Fill(pixelBytes(layout, im.bg, im.cmap))
	}
	return im.items.add(newLayer(name, m, layout)), nil
}

// NewLayerFromImage creates a detached layer holding a copy of img, placed
// at img's bounds origin.
func (im *Image) NewLayerFromImage(name string, img image.Image) (ItemID, error) {
	layout := im.base.Layout(true)
	m, err := tile.FromImage(img, layout)
	if err != nil {
		return NoItem, err
	}
	return im.items.add(newLayer(name, m, layout)), nil
}

// AddLayer inserts a detached layer into the stack at pos (0 is the top).
// A floating selection stays on top.
func (im *Image) AddLayer(id ItemID, pos int) error {
	l, err := im.Layer(id)
	if err != nil {
		return err
	}
	if l.layout.WithoutAlpha() != im.base.Layout(false) {
		return fmt.Errorf("%w: %v layer in %v image", ErrUnsupportedConversion, l.layout, im.base)
	}
	if im.floating.IsValid() {
		pos = max(pos, 1)
	}
	return im.addItem(id, ItemLayer, pos)
}

// RemoveLayer takes a layer out of the stack. Removing the floating
// selection relaxes it first, restoring its target.
func (im *Image) RemoveLayer(id ItemID) error {
	l, err := im.Layer(id)
	if err != nil {
		return err
	}
	if l.float != nil {
		if im.floating != id {
			return fmt.Errorf("%w: %v", ErrItemDetached, id)
		}
		im.log.PushGroupStart(undo.GroupMisc)
		defer im.log.PushGroupEnd()

		im.relax(l)
		im.pushFloatRigor(id, false)
		pos := im.detach(l)
		im.floating = NoItem
		im.pushFloatAttach(l, pos, false)
		return nil
	}
	if fl, err := im.Layer(im.floating); err == nil && fl.float.target == id {
		return ErrFloatingSelection
	}
	return im.removeItem(id, ItemLayer)
}

// RepositionLayer moves a layer to pos in the stack.
func (im *Image) RepositionLayer(id ItemID, pos int) error {
	if im.floating.IsValid() && id != im.floating {
		pos = max(pos, 1)
	}
	return im.repositionItem(id, ItemLayer, pos)
}

// RaiseLayer moves a layer one step up.
func (im *Image) RaiseLayer(id ItemID) error {
	l, err := im.Layer(id)
	if err != nil {
		return err
	}
	pos := im.position(l)
	if pos <= 0 {
		return nil
	}
	return im.RepositionLayer(id, pos-1)
}

// LowerLayer moves a layer one step down.
func (im *Image) LowerLayer(id ItemID) error {
	l, err := im.Layer(id)
	if err != nil {
		return err
	}
	pos := im.position(l)
	if pos < 0 || pos == len(im.layers)-1 {
		return nil
	}
	return im.RepositionLayer(id, pos+1)
}

// TranslateLayer moves a layer and its mask by (dx, dy). A floating
// selection is lifted off its target while it moves.
func (im *Image) TranslateLayer(id ItemID, dx, dy int) error {
	l, err := im.Layer(id)
	if err != nil {
		return err
	}
	if dx == 0 && dy == 0 {
		return nil
	}
	x, y := l.Offsets()
	if l.float == nil {
		im.pushDisplace(id, l)
		im.setLayerOffsets(l, x+dx, y+dy)
		return nil
	}

	im.log.PushGroupStart(undo.GroupMisc)
	defer im.log.PushGroupEnd()

	im.relax(l)
	im.pushFloatRigor(id, false)
	im.pushDisplace(id, l)
	im.setLayerOffsets(l, x+dx, y+dy)
	im.rigor(l)
	im.pushFloatRigor(id, true)
	return nil
}

// setLayerOffsets places a layer and its mask.
func (im *Image) setLayerOffsets(l *Layer, x, y int) {
	l.tiles.SetOffsets(x, y)
	l.touch()
	if m, err := im.Channel(l.mask); err == nil {
		m.tiles.SetOffsets(x, y)
		m.touch()
	}
}

// AddLayerMask creates a mask for a layer and returns its ID.
func (im *Image) AddLayerMask(id ItemID, fill MaskFill) (ItemID, error) {
	l, err := im.Layer(id)
	if err != nil {
		return NoItem, err
	}
	if l.mask.IsValid() {
		return NoItem, fmt.Errorf("%w: %v", ErrLayerHasMask, id)
	}
	if l.float != nil {
		return NoItem, ErrFloatingSelection
	}
	m, err := im.maskContents(l, fill)
	if err != nil {
		return NoItem, err
	}
	ch := newChannel(l.name+" mask", m, color.NRGBA{A: 0xff})
	mid := im.items.add(ch)
	l.mask = mid
	ch.attached = l.attached
	l.touch()
	im.pushMaskAttach(id, mid, true)
	return mid, nil
}

// maskContents builds the pixels of a new layer mask.
func (im *Image) maskContents(l *Layer, fill MaskFill) (*tile.Manager, error) {
	w, h := l.Width(), l.Height()
	m, err := tile.NewManager(w, h, 1)
	if err != nil {
		return nil, err
	}
	m.SetOffsets(l.Offsets())
	switch fill {
	case MaskWhite:
		m.Fill([]byte{0xff})
	case MaskBlack:
	case MaskAlpha:
		if !l.HasAlpha() {
			m.Fill([]byte{0xff})
			break
		}
		bpp, ai := l.tiles.BPP(), l.layout.AlphaIndex()
		src := make([]byte, w*bpp)
		row := make([]byte, w)
		for y := 0; y < h; y++ {
			if err := l.tiles.ReadRow(0, y, w, src); err != nil {
				m.Free()
				return nil, err
			}
			for x := range row {
				row[x] = src[x*bpp+ai]
			}
			_ = m.WriteRow(0, y, w, row)
		}
	case MaskSelection:
		sel := im.selectionMask(l.Bounds())
		if err := m.WriteRect(0, 0, w, h, sel); err != nil {
			m.Free()
			return nil, err
		}
	}
	return m, nil
}

// ApplyLayerMask removes a layer's mask. With apply set, the mask is
// multiplied into the layer's alpha first, adding alpha if needed.
func (im *Image) ApplyLayerMask(id ItemID, apply bool) error {
	l, err := im.Layer(id)
	if err != nil {
		return err
	}
	mask, err := im.Channel(l.mask)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoLayerMask, id)
	}

	im.log.PushGroupStart(undo.GroupLayerApplyMask)
	defer im.log.PushGroupEnd()

	if apply {
		layout := l.layout.WithAlpha()
		m, err := convertTiles(l.tiles, l.layout, layout, im.cmap)
		if err != nil {
			return err
		}
		w, bpp, ai := m.Width(), m.BPP(), layout.AlphaIndex()
		px := make([]byte, w*bpp)
		mv := make([]byte, w)
		for y := 0; y < m.Height(); y++ {
			if m.ReadRow(0, y, w, px) != nil || mask.tiles.ReadRow(0, y, w, mv) != nil {
				continue
			}
			for x := 0; x < w; x++ {
				px[x*bpp+ai] = scaleByte(px[x*bpp+ai], mv[x])
			}
			_ = m.WriteRow(0, y, w, px)
		}
		im.replaceTiles(id, &l.Drawable, m, layout)
	}

	l.mask = NoItem
	mask.attached = false
	l.touch()
	im.pushMaskAttach(id, mask.ID(), false)
	return nil
}

// AddAlpha gives a layer an alpha channel. Existing pixels stay opaque.
func (im *Image) AddAlpha(id ItemID) error {
	l, err := im.Layer(id)
	if err != nil {
		return err
	}
	if l.HasAlpha() {
		return nil
	}
	layout := l.layout.WithAlpha()
	m, err := convertTiles(l.tiles, l.layout, layout, im.cmap)
	if err != nil {
		return err
	}

	im.log.PushGroupStart(undo.GroupLayerAddAlpha)
	defer im.log.PushGroupEnd()
	im.replaceTiles(id, &l.Drawable, m, layout)
	return nil
}

// SetItemName renames a layer, channel or path.
func (im *Image) SetItemName(id ItemID, name string) error {
	it := im.items.get(id)
	if it == nil {
		return fmt.Errorf("%w: %v", ErrItemNotFound, id)
	}
	im.log.Push(&renameRecord{
		Header: undo.NewHeader(undo.KindItemRename, smallRecord+int64(len(name)), true),
		im:     im,
		id:     id,
		name:   it.Name(),
	})
	it.base().name = name
	return nil
}
