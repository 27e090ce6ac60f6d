package gimp

import (
	"image/color"

	"seehuhn.de/go/geom/path"

	"github.com/Freedooom/gimp-sub000/tile"
	"github.com/Freedooom/gimp-sub000/undo"
)

// smallRecord is the accounted size of records that hold no pixel data.
const smallRecord = 32

// imageModRecord keeps a snapshot of one drawable region. Restoring swaps
// the snapshot with the live pixels, so the same record serves both
// directions.
type imageModRecord struct {
	undo.Header
	im    *Image
	id    ItemID
	x, y  int
	tiles *tile.Manager
}

// pushImageMod snapshots the given drawable-local region before the
// caller modifies it.
func (im *Image) pushImageMod(id ItemID, d *Drawable, x, y, w, h int) bool {
	saved, err := d.tiles.Crop(x, y, w, h)
	if err != nil {
		Logger().Warn("gimp: image mod snapshot failed", "item", id, "err", err)
		return false
	}
	return im.log.Push(&imageModRecord{
		Header: undo.NewHeader(undo.KindImageMod, int64(w*h*d.tiles.BPP()), true),
		im:     im,
		id:     id,
		x:      x,
		y:      y,
		tiles:  saved,
	})
}

func (r *imageModRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	d := r.im.resolve(r.Kind(), r.id)
	if d == nil {
		return true
	}
	err := tile.SwapRegion(r.tiles, 0, 0, d.tiles, r.x, r.y, r.tiles.Width(), r.tiles.Height())
	if err != nil {
		Logger().Warn("gimp: image mod restore failed", "item", r.id, "err", err)
		return false
	}
	if r.id == r.im.selection {
		changes.Set(undo.MaskChanged)
	}
	return true
}

func (r *imageModRecord) Dispose(undo.Side) { r.tiles.Free() }

// imageSizeRecord keeps the canvas size.
type imageSizeRecord struct {
	undo.Header
	im            *Image
	width, height int
}

func (im *Image) pushImageSize() bool {
	return im.log.Push(&imageSizeRecord{
		Header: undo.NewHeader(undo.KindImageSize, smallRecord, true),
		im:     im,
		width:  im.width,
		height: im.height,
	})
}

func (r *imageSizeRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	r.im.width, r.width = r.width, r.im.width
	r.im.height, r.height = r.height, r.im.height
	changes.Set(undo.SizeChanged)
	return true
}

func (r *imageSizeRecord) Dispose(undo.Side) {}

// imageTypeRecord keeps the base type and colormap.
type imageTypeRecord struct {
	undo.Header
	im   *Image
	base BaseType
	cmap color.Palette
}

func (im *Image) pushImageType() bool {
	return im.log.Push(&imageTypeRecord{
		Header: undo.NewHeader(undo.KindImageType, smallRecord+int64(len(im.cmap))*4, true),
		im:     im,
		base:   im.base,
		cmap:   im.cmap,
	})
}

func (r *imageTypeRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	r.im.base, r.base = r.base, r.im.base
	r.im.cmap, r.cmap = r.cmap, r.im.cmap
	changes.Set(undo.ModeChanged)
	return true
}

func (r *imageTypeRecord) Dispose(undo.Side) {}

// imageResolutionRecord keeps the resolution and unit.
type imageResolutionRecord struct {
	undo.Header
	im         *Image
	xres, yres float64
	unit       Unit
}

func (im *Image) pushImageResolution() bool {
	return im.log.Push(&imageResolutionRecord{
		Header: undo.NewHeader(undo.KindImageResolution, smallRecord, true),
		im:     im,
		xres:   im.xres,
		yres:   im.yres,
		unit:   im.unit,
	})
}

func (r *imageResolutionRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	if r.xres != r.im.xres || r.yres != r.im.yres {
		changes.Set(undo.ResolutionChanged)
	}
	if r.unit != r.im.unit {
		changes.Set(undo.UnitChanged)
	}
	r.im.xres, r.xres = r.xres, r.im.xres
	r.im.yres, r.yres = r.yres, r.im.yres
	r.im.unit, r.unit = r.unit, r.im.unit
	return true
}

func (r *imageResolutionRecord) Dispose(undo.Side) {}

// imageQMaskRecord keeps the quick mask flag.
type imageQMaskRecord struct {
	undo.Header
	im *Image
	on bool
}

func (im *Image) pushQMask() bool {
	return im.log.Push(&imageQMaskRecord{
		Header: undo.NewHeader(undo.KindImageQMask, smallRecord, false),
		im:     im,
		on:     im.qmask,
	})
}

func (r *imageQMaskRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	r.im.qmask, r.on = r.on, r.im.qmask
	changes.Set(undo.QMaskChanged)
	return true
}

func (r *imageQMaskRecord) Dispose(undo.Side) {}

// guideRecord keeps one guide. A position of -1 means the guide did not
// exist.
type guideRecord struct {
	undo.Header
	im    *Image
	guide Guide
}

func (im *Image) pushGuide(g Guide) bool {
	return im.log.Push(&guideRecord{
		Header: undo.NewHeader(undo.KindGuide, smallRecord, true),
		im:     im,
		guide:  g,
	})
}

func (r *guideRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	cur := Guide{ID: r.guide.ID, Orientation: r.guide.Orientation, Position: -1}
	if i := r.im.guideIndex(r.guide.ID); i >= 0 {
		cur = r.im.guides[i]
	}
	r.im.setGuide(r.guide)
	r.guide = cur
	return true
}

func (r *guideRecord) Dispose(undo.Side) {}

// maskRecord keeps a whole copy of the selection mask.
type maskRecord struct {
	undo.Header
	im    *Image
	tiles *tile.Manager
}

func (im *Image) pushMask() bool {
	sel := im.selectionChannel()
	return im.log.Push(&maskRecord{
		Header: undo.NewHeader(undo.KindMask, sel.tiles.MemSize(), true),
		im:     im,
		tiles:  sel.tiles.Duplicate(),
	})
}

func (r *maskRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	sel := r.im.selectionChannel()
	r.tiles, _ = sel.swapTiles(r.tiles, tile.Mask)
	changes.Set(undo.MaskChanged)
	return true
}

func (r *maskRecord) Dispose(undo.Side) { r.tiles.Free() }

// renameRecord keeps an item name.
type renameRecord struct {
	undo.Header
	im   *Image
	id   ItemID
	name string
}

func (r *renameRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	it := r.im.items.get(r.id)
	if it == nil {
		Logger().Debug("gimp: stale item skipped", "kind", r.Kind(), "item", r.id)
		return true
	}
	b := it.base()
	b.name, r.name = r.name, b.name
	return true
}

func (r *renameRecord) Dispose(undo.Side) {}

// stackRecord adds an item to or removes it from its stack. It serves the
// LayerAdd, LayerRemove, ChannelAdd, ChannelRemove, VectorsAdd and
// VectorsRemove kinds.
type stackRecord struct {
	undo.Header
	im   *Image
	id   ItemID
	pos  int
	adds bool

	// prevActive is the item that was active before the add.
	prevActive ItemID
}

func stackKind(t ItemType, adds bool) undo.Kind {
	switch {
	case t == ItemLayer && adds:
		return undo.KindLayerAdd
	case t == ItemLayer:
		return undo.KindLayerRemove
	case t == ItemChannel && adds:
		return undo.KindChannelAdd
	case t == ItemChannel:
		return undo.KindChannelRemove
	case adds:
		return undo.KindVectorsAdd
	default:
		return undo.KindVectorsRemove
	}
}

func (im *Image) pushStack(it Item, pos int, adds bool, prevActive ItemID) bool {
	size := int64(smallRecord)
	if d, ok := it.(drawableItem); ok {
		size += d.drawable().tiles.MemSize()
	}
	return im.log.Push(&stackRecord{
		Header:     undo.NewHeader(stackKind(it.Type(), adds), size, true),
		im:         im,
		id:         it.ID(),
		pos:        pos,
		adds:       adds,
		prevActive: prevActive,
	})
}

func (r *stackRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	it := r.im.items.get(r.id)
	if it == nil {
		Logger().Debug("gimp: stale item skipped", "kind", r.Kind(), "item", r.id)
		return true
	}
	if r.adds == (state == undo.Undo) {
		if !it.base().attached {
			Logger().Warn("gimp: removing a detached item", "kind", r.Kind(), "item", r.id)
			return false
		}
		r.pos = r.im.detach(it)
		if prev := r.im.items.get(r.prevActive); prev != nil && r.im.position(prev) >= 0 {
			*r.im.active(it.Type()) = r.prevActive
		}
	} else {
		if it.base().attached {
			Logger().Warn("gimp: adding an attached item", "kind", r.Kind(), "item", r.id)
			return false
		}
		r.im.attach(it, r.pos)
	}
	if it.Type() == ItemLayer && len(r.im.layers) <= 1 {
		changes.Set(undo.AlphaChanged)
	}
	return true
}

// Dispose frees the item when the record is its last owner: an added item
// sitting on the redo side, or a removed one on the undo side.
func (r *stackRecord) Dispose(side undo.Side) {
	if r.adds == (side == undo.RedoSide) {
		if it := r.im.items.get(r.id); it != nil && !it.base().attached {
			r.im.items.release(r.id)
		}
	}
}

// tilesRecord keeps the whole pixel store of a drawable (LayerMod and
// ChannelMod).
type tilesRecord struct {
	undo.Header
	im     *Image
	id     ItemID
	tiles  *tile.Manager
	layout tile.Layout
}

// pushTiles records d's current pixel store. The caller must install a
// new store afterwards instead of writing into the old one.
func (im *Image) pushTiles(id ItemID, d *Drawable) bool {
	kind := undo.KindLayerMod
	if _, ok := im.items.get(id).(*Channel); ok {
		kind = undo.KindChannelMod
	}
	return im.log.Push(&tilesRecord{
		Header: undo.NewHeader(kind, d.tiles.MemSize(), true),
		im:     im,
		id:     id,
		tiles:  d.tiles.Duplicate(),
		layout: d.layout,
	})
}

// replaceTiles records d's pixel store and installs m in its place.
func (im *Image) replaceTiles(id ItemID, d *Drawable, m *tile.Manager, layout tile.Layout) {
	im.pushTiles(id, d)
	old, _ := d.swapTiles(m, layout)
	old.Free()
}

func (r *tilesRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	d := r.im.resolve(r.Kind(), r.id)
	if d == nil {
		return true
	}
	hadAlpha := d.HasAlpha()
	old, oldLayout := d.swapTiles(r.tiles, r.layout)
	r.tiles, r.layout = old, oldLayout
	if d.HasAlpha() != hadAlpha {
		changes.Set(undo.AlphaChanged)
	}
	if r.id == r.im.selection {
		changes.Set(undo.MaskChanged)
	}
	return true
}

func (r *tilesRecord) Dispose(undo.Side) { r.tiles.Free() }

// repositionRecord keeps an item's stack index.
type repositionRecord struct {
	undo.Header
	im  *Image
	id  ItemID
	pos int
}

func (im *Image) pushReposition(it Item, pos int) bool {
	kind := undo.KindLayerReposition
	switch it.Type() {
	case ItemChannel:
		kind = undo.KindChannelReposition
	case ItemVectors:
		kind = undo.KindVectorsReposition
	}
	return im.log.Push(&repositionRecord{
		Header: undo.NewHeader(kind, smallRecord, true),
		im:     im,
		id:     it.ID(),
		pos:    pos,
	})
}

func (r *repositionRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	it := r.im.items.get(r.id)
	if it == nil {
		Logger().Debug("gimp: stale item skipped", "kind", r.Kind(), "item", r.id)
		return true
	}
	old := r.im.move(it, r.pos)
	if old < 0 {
		return false
	}
	r.pos = old
	return true
}

func (r *repositionRecord) Dispose(undo.Side) {}

// displaceRecord keeps a layer's offsets. The layer mask moves with it.
type displaceRecord struct {
	undo.Header
	im   *Image
	id   ItemID
	x, y int
}

func (im *Image) pushDisplace(id ItemID, l *Layer) bool {
	x, y := l.Offsets()
	return im.log.Push(&displaceRecord{
		Header: undo.NewHeader(undo.KindLayerDisplace, smallRecord, true),
		im:     im,
		id:     id,
		x:      x,
		y:      y,
	})
}

func (r *displaceRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	l, err := r.im.Layer(r.id)
	if err != nil {
		Logger().Debug("gimp: stale item skipped", "kind", r.Kind(), "item", r.id)
		return true
	}
	x, y := l.Offsets()
	r.im.setLayerOffsets(l, r.x, r.y)
	r.x, r.y = x, y
	return true
}

func (r *displaceRecord) Dispose(undo.Side) {}

// maskAttachRecord attaches a mask to a layer or removes it (LayerMaskAdd
// and LayerMaskRemove).
type maskAttachRecord struct {
	undo.Header
	im    *Image
	layer ItemID
	mask  ItemID
	adds  bool
}

func (im *Image) pushMaskAttach(layer, mask ItemID, adds bool) bool {
	kind := undo.KindLayerMaskRemove
	if adds {
		kind = undo.KindLayerMaskAdd
	}
	return im.log.Push(&maskAttachRecord{
		Header: undo.NewHeader(kind, smallRecord, true),
		im:     im,
		layer:  layer,
		mask:   mask,
		adds:   adds,
	})
}

func (r *maskAttachRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	l, err := r.im.Layer(r.layer)
	m := r.im.items.get(r.mask)
	if err != nil || m == nil {
		Logger().Debug("gimp: stale item skipped", "kind", r.Kind(), "item", r.layer)
		return true
	}
	if r.adds == (state == undo.Undo) {
		l.mask = NoItem
		m.base().attached = false
	} else {
		if l.mask.IsValid() {
			return false
		}
		l.mask = r.mask
		m.base().attached = l.attached
	}
	l.touch()
	return true
}

func (r *maskAttachRecord) Dispose(side undo.Side) {
	if r.adds == (side == undo.RedoSide) {
		if l, err := r.im.Layer(r.layer); err == nil && l.mask == r.mask {
			return
		}
		r.im.items.release(r.mask)
	}
}

// vectorsModRecord keeps the strokes of a path.
type vectorsModRecord struct {
	undo.Header
	im      *Image
	id      ItemID
	strokes *path.Data
}

func (im *Image) pushVectorsMod(id ItemID, v *Vectors) bool {
	return im.log.Push(&vectorsModRecord{
		Header:  undo.NewHeader(undo.KindVectorsMod, smallRecord+int64(len(v.strokes.Coords))*16, true),
		im:      im,
		id:      id,
		strokes: v.strokes,
	})
}

func (r *vectorsModRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	v, err := r.im.Vectors(r.id)
	if err != nil {
		Logger().Debug("gimp: stale item skipped", "kind", r.Kind(), "item", r.id)
		return true
	}
	v.strokes, r.strokes = r.strokes, v.strokes
	return true
}

func (r *vectorsModRecord) Dispose(undo.Side) {}

// floatAttachRecord attaches a floating selection to the image or detaches
// it (FloatingSelAttach and FloatingSelDetach).
type floatAttachRecord struct {
	undo.Header
	im    *Image
	layer ItemID
	pos   int
	adds  bool
}

func (im *Image) pushFloatAttach(l *Layer, pos int, adds bool) bool {
	kind := undo.KindFloatingSelDetach
	if adds {
		kind = undo.KindFloatingSelAttach
	}
	return im.log.Push(&floatAttachRecord{
		Header: undo.NewHeader(kind, smallRecord+l.tiles.MemSize(), true),
		im:     im,
		layer:  l.ID(),
		pos:    pos,
		adds:   adds,
	})
}

func (r *floatAttachRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	l, err := r.im.Layer(r.layer)
	if err != nil || l.float == nil {
		Logger().Debug("gimp: stale item skipped", "kind", r.Kind(), "item", r.layer)
		return true
	}
	if r.adds == (state == undo.Undo) {
		if r.im.floating != r.layer {
			return false
		}
		r.pos = r.im.detach(l)
		r.im.floating = NoItem
	} else {
		if r.im.floating.IsValid() {
			return false
		}
		r.im.attach(l, r.pos)
		r.im.floating = r.layer
	}
	return true
}

func (r *floatAttachRecord) Dispose(side undo.Side) {
	if r.adds == (side == undo.RedoSide) {
		if l, err := r.im.Layer(r.layer); err == nil && !l.attached {
			r.im.items.release(r.layer)
		}
	}
}

// floatRigorRecord composites a floating selection onto its target or
// lifts it off again (FloatingSelRigor and FloatingSelRelax).
type floatRigorRecord struct {
	undo.Header
	im    *Image
	layer ItemID
	rigor bool
}

func (im *Image) pushFloatRigor(id ItemID, rigor bool) bool {
	kind := undo.KindFloatingSelRelax
	if rigor {
		kind = undo.KindFloatingSelRigor
	}
	return im.log.Push(&floatRigorRecord{
		Header: undo.NewHeader(kind, smallRecord, true),
		im:     im,
		layer:  id,
		rigor:  rigor,
	})
}

func (r *floatRigorRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	l, err := r.im.Layer(r.layer)
	if err != nil || l.float == nil {
		Logger().Debug("gimp: stale item skipped", "kind", r.Kind(), "item", r.layer)
		return true
	}
	if r.rigor == (state == undo.Redo) {
		return r.im.rigor(l)
	}
	return r.im.relax(l)
}

func (r *floatRigorRecord) Dispose(undo.Side) {}

// parasiteRecord keeps one named parasite; a nil value means it was not
// attached (ParasiteAttach and ParasiteRemove).
type parasiteRecord struct {
	undo.Header
	im   *Image
	name string
	p    *Parasite
}

func (im *Image) pushParasite(kind undo.Kind, name string, dirties bool) bool {
	var prev *Parasite
	if p, ok := im.parasites[name]; ok {
		prev = &p
	}
	size := int64(smallRecord)
	if prev != nil {
		size += int64(len(prev.Data))
	}
	return im.log.Push(&parasiteRecord{
		Header: undo.NewHeader(kind, size, dirties),
		im:     im,
		name:   name,
		p:      prev,
	})
}

func (r *parasiteRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	var cur *Parasite
	if p, ok := r.im.parasites[r.name]; ok {
		cur = &p
	}
	if r.p == nil {
		delete(r.im.parasites, r.name)
	} else {
		r.im.parasites[r.name] = *r.p
	}
	r.p = cur
	return true
}

func (r *parasiteRecord) Dispose(undo.Side) {}

// cantUndoRecord marks a step that cannot be reverted.
type cantUndoRecord struct {
	undo.Header
	im   *Image
	name string
}

func (r *cantUndoRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	if state == undo.Undo {
		r.im.message("Can't undo %s", r.name)
	}
	return true
}

func (r *cantUndoRecord) Dispose(undo.Side) {}
