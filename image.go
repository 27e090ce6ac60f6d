package gimp

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/Freedooom/gimp-sub000/internal/cache"
	"github.com/Freedooom/gimp-sub000/tile"
	"github.com/Freedooom/gimp-sub000/transform"
	"github.com/Freedooom/gimp-sub000/undo"
)

// Errors returned by Image operations.
var (
	ErrInvalidDimensions     = errors.New("gimp: invalid dimensions")
	ErrItemNotFound          = errors.New("gimp: item not found")
	ErrWrongItemType         = errors.New("gimp: wrong item type")
	ErrItemAttached          = errors.New("gimp: item already attached")
	ErrItemDetached          = errors.New("gimp: item not attached")
	ErrUnsupportedConversion = errors.New("gimp: unsupported conversion")
	ErrFloatingSelection     = errors.New("gimp: floating selection exists")
	ErrNoFloatingSelection   = errors.New("gimp: no floating selection")
	ErrLayerHasMask          = errors.New("gimp: layer already has a mask")
	ErrNoLayerMask           = errors.New("gimp: layer has no mask")
	ErrGuideNotFound         = errors.New("gimp: guide not found")
	ErrInvalidGuide          = errors.New("gimp: guide position out of range")
	ErrParasiteNotFound      = errors.New("gimp: parasite not found")
	ErrInvalidParasite       = errors.New("gimp: parasite has no name")
	ErrEmptyRegion           = errors.New("gimp: empty region")
	ErrNilBuffer             = errors.New("gimp: nil buffer")
)

// BaseType is the colour model of an image.
type BaseType uint8

const (
	BaseRGB BaseType = iota
	BaseGray
	BaseIndexed
)

// String returns a string representation of the base type.
func (b BaseType) String() string {
	switch b {
	case BaseRGB:
		return "RGB"
	case BaseGray:
		return "Gray"
	case BaseIndexed:
		return "Indexed"
	default:
		return "Unknown"
	}
}

// Layout returns the layer layout for this base type.
func (b BaseType) Layout(alpha bool) tile.Layout {
	var l tile.Layout
	switch b {
	case BaseGray:
		l = tile.Gray
	case BaseIndexed:
		l = tile.Indexed
	default:
		l = tile.RGB
	}
	if alpha {
		l = l.WithAlpha()
	}
	return l
}

// Unit is the display unit of an image.
type Unit uint8

const (
	UnitPixel Unit = iota
	UnitInch
	UnitMillimeter
	UnitPoint
	UnitPica
)

// String returns a string representation of the unit.
func (u Unit) String() string {
	switch u {
	case UnitPixel:
		return "px"
	case UnitInch:
		return "in"
	case UnitMillimeter:
		return "mm"
	case UnitPoint:
		return "pt"
	case UnitPica:
		return "pc"
	default:
		return "?"
	}
}

// Image is a document: a stack of layers, channels and paths over a fixed
// canvas, with a selection, guides, parasites and an undo history.
//
// Every mutating method records itself on the undo log. Image is not safe
// for concurrent use.
type Image struct {
	width, height int
	base          BaseType
	cmap          color.Palette
	xres, yres    float64
	unit          Unit

	items    arena
	layers   []ItemID // top first
	channels []ItemID
	vectors  []ItemID

	selection     ItemID
	activeLayer   ItemID
	activeChannel ItemID
	activeVectors ItemID
	floating      ItemID

	guides    []Guide
	nextGuide int
	parasites map[string]Parasite
	qmask     bool

	dirty       int
	lastChanges undo.ChangeSet
	log         *undo.Log
	previews    *cache.Cache[previewKey, *image.RGBA]

	fg, bg    color.NRGBA
	interp    transform.InterpolationMode
	onMessage func(string)
	onEvent   func(undo.Event, string)
	workers   int
}

// NewImage creates an empty image with a clear selection.
func NewImage(width, height int, base BaseType, opts ...Option) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if base > BaseIndexed {
		return nil, fmt.Errorf("%w: base type %d", ErrUnsupportedConversion, base)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	im := &Image{
		width:     width,
		height:    height,
		base:      base,
		xres:      o.xres,
		yres:      o.yres,
		unit:      o.unit,
		parasites: make(map[string]Parasite),
		fg:        o.fg,
		bg:        o.bg,
		interp:    o.interp,
		onMessage: o.onMessage,
		onEvent:   o.onEvent,
		previews:  cache.New[previewKey, *image.RGBA](o.previewSize),
		workers:   o.workers,
	}
	im.log = undo.NewLog(im, o.undo)
	if o.undoDisabled {
		im.log.SetEnabled(false)
	}

	mask, err := tile.NewManager(width, height, 1)
	if err != nil {
		return nil, err
	}
	sel := newChannel("Selection Mask", mask, color.NRGBA{A: 0x80})
	sel.attached = true
	im.selection = im.items.add(sel)

	Logger().Info("gimp: image created", "width", width, "height", height, "base", base)
	return im, nil
}

// Width returns the canvas width.
func (im *Image) Width() int { return im.width }

// Height returns the canvas height.
func (im *Image) Height() int { return im.height }

// Bounds returns the canvas rectangle.
func (im *Image) Bounds() image.Rectangle { return image.Rect(0, 0, im.width, im.height) }

// Base returns the colour model.
func (im *Image) Base() BaseType { return im.base }

// Colormap returns the palette of an indexed image.
func (im *Image) Colormap() color.Palette { return im.cmap }

// SetColormap replaces the palette. It is not recorded for undo.
func (im *Image) SetColormap(p color.Palette) { im.cmap = slices.Clone(p) }

// Resolution returns the resolution in pixels per inch.
func (im *Image) Resolution() (x, y float64) { return im.xres, im.yres }

// Unit returns the display unit.
func (im *Image) Unit() Unit { return im.unit }

// Foreground returns the paint colour.
func (im *Image) Foreground() color.NRGBA { return im.fg }

// SetForeground sets the paint colour.
func (im *Image) SetForeground(c color.Color) { im.fg = color.NRGBAModel.Convert(c).(color.NRGBA) }

// Background returns the background colour.
func (im *Image) Background() color.NRGBA { return im.bg }

// SetBackground sets the background colour.
func (im *Image) SetBackground(c color.Color) { im.bg = color.NRGBAModel.Convert(c).(color.NRGBA) }

// Interpolation returns the default resampling kernel.
func (im *Image) Interpolation() transform.InterpolationMode { return im.interp }

// UndoLog returns the image's undo history.
func (im *Image) UndoLog() *undo.Log { return im.log }

// Undo reverts the most recent step.
func (im *Image) Undo() bool { return im.log.Undo() }

// Redo reapplies the most recently undone step.
func (im *Image) Redo() bool { return im.log.Redo() }

// IsDirty reports whether the image differs from its last saved state.
func (im *Image) IsDirty() bool { return im.dirty != 0 }

// CleanAll marks the current state as saved.
func (im *Image) CleanAll() { im.dirty = 0 }

// LastChanges returns the image-wide changes reported by the most recent
// undo or redo.
func (im *Image) LastChanges() undo.ChangeSet { return im.lastChanges }

// Dirty implements undo.Document.
func (im *Image) Dirty() int {
	im.dirty++
	return im.dirty
}

// Clean implements undo.Document.
func (im *Image) Clean() int {
	im.dirty--
	return im.dirty
}

// DirtyCount implements undo.Document.
func (im *Image) DirtyCount() int { return im.dirty }

// SetDirtyCount implements undo.Document.
func (im *Image) SetDirtyCount(n int) { im.dirty = n }

// ApplyChanges implements undo.Document.
func (im *Image) ApplyChanges(changes undo.ChangeSet) {
	im.lastChanges = changes
	if changes.Has(undo.SizeChanged) || changes.Has(undo.ModeChanged) {
		im.previews.Clear()
	}
	Logger().Debug("gimp: image changed", "changes", changes)
}

// UndoEvent implements undo.Document.
func (im *Image) UndoEvent(ev undo.Event, name string) {
	Logger().Debug("gimp: undo event", "event", ev, "name", name, "dirty", im.dirty)
	if im.onEvent != nil {
		im.onEvent(ev, name)
	}
}

// CantUndo marks the image dirty with a step that cannot be reverted.
// Undoing it only shows a message.
func (im *Image) CantUndo(name string) {
	im.log.Push(&cantUndoRecord{
		Header: undo.NewHeader(undo.KindCantUndo, smallRecord, true),
		im:     im,
		name:   name,
	})
}

// message sends a user-facing message.
func (im *Image) message(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if im.onMessage != nil {
		im.onMessage(msg)
		return
	}
	Logger().Info("gimp: message", "text", msg)
}

// Item returns the item for id, attached or not.
func (im *Image) Item(id ItemID) (Item, bool) {
	it := im.items.get(id)
	return it, it != nil
}

// Layer returns the layer for id.
func (im *Image) Layer(id ItemID) (*Layer, error) {
	it := im.items.get(id)
	if it == nil {
		return nil, fmt.Errorf("%w: %v", ErrItemNotFound, id)
	}
	l, ok := it.(*Layer)
	if !ok {
		return nil, fmt.Errorf("%w: %v is a %v", ErrWrongItemType, id, it.Type())
	}
	return l, nil
}

// Channel returns the channel for id. The selection and layer masks are
// channels too.
func (im *Image) Channel(id ItemID) (*Channel, error) {
	it := im.items.get(id)
	if it == nil {
		return nil, fmt.Errorf("%w: %v", ErrItemNotFound, id)
	}
	c, ok := it.(*Channel)
	if !ok {
		return nil, fmt.Errorf("%w: %v is a %v", ErrWrongItemType, id, it.Type())
	}
	return c, nil
}

// Vectors returns the path for id.
func (im *Image) Vectors(id ItemID) (*Vectors, error) {
	it := im.items.get(id)
	if it == nil {
		return nil, fmt.Errorf("%w: %v", ErrItemNotFound, id)
	}
	v, ok := it.(*Vectors)
	if !ok {
		return nil, fmt.Errorf("%w: %v is a %v", ErrWrongItemType, id, it.Type())
	}
	return v, nil
}

// Drawable returns the pixel part of a layer or channel.
func (im *Image) Drawable(id ItemID) (*Drawable, error) {
	it := im.items.get(id)
	if it == nil {
		return nil, fmt.Errorf("%w: %v", ErrItemNotFound, id)
	}
	d, ok := it.(drawableItem)
	if !ok {
		return nil, fmt.Errorf("%w: %v is a %v", ErrWrongItemType, id, it.Type())
	}
	return d.drawable(), nil
}

// resolve returns the drawable for a record restore, or nil when the item
// no longer exists.
func (im *Image) resolve(kind undo.Kind, id ItemID) *Drawable {
	d, err := im.Drawable(id)
	if err != nil {
		Logger().Debug("gimp: stale item skipped", "kind", kind, "item", id)
		return nil
	}
	return d
}

// Layers returns the layer stack, top first.
func (im *Image) Layers() []ItemID { return slices.Clone(im.layers) }

// Channels returns the channel stack, top first.
func (im *Image) Channels() []ItemID { return slices.Clone(im.channels) }

// AllVectors returns the path stack, top first.
func (im *Image) AllVectors() []ItemID { return slices.Clone(im.vectors) }

// Selection returns the ID of the selection mask channel.
func (im *Image) Selection() ItemID { return im.selection }

// FloatingSelection returns the floating selection layer, or NoItem.
func (im *Image) FloatingSelection() ItemID { return im.floating }

// ActiveLayer returns the active layer, or NoItem.
func (im *Image) ActiveLayer() ItemID { return im.activeLayer }

// SetActiveLayer makes id the active layer.
func (im *Image) SetActiveLayer(id ItemID) error {
	if slices.Index(im.layers, id) < 0 {
		return fmt.Errorf("%w: %v", ErrItemDetached, id)
	}
	im.activeLayer = id
	return nil
}

// ActiveChannel returns the active channel, or NoItem.
func (im *Image) ActiveChannel() ItemID { return im.activeChannel }

// SetActiveChannel makes id the active channel.
func (im *Image) SetActiveChannel(id ItemID) error {
	if slices.Index(im.channels, id) < 0 {
		return fmt.Errorf("%w: %v", ErrItemDetached, id)
	}
	im.activeChannel = id
	return nil
}

// ActiveVectors returns the active path, or NoItem.
func (im *Image) ActiveVectors() ItemID { return im.activeVectors }

// SetActiveVectors makes id the active path.
func (im *Image) SetActiveVectors(id ItemID) error {
	if slices.Index(im.vectors, id) < 0 {
		return fmt.Errorf("%w: %v", ErrItemDetached, id)
	}
	im.activeVectors = id
	return nil
}

// stack returns the list an item type lives in.
func (im *Image) stack(t ItemType) *[]ItemID {
	switch t {
	case ItemLayer:
		return &im.layers
	case ItemChannel:
		return &im.channels
	default:
		return &im.vectors
	}
}

// active returns the active slot for an item type.
func (im *Image) active(t ItemType) *ItemID {
	switch t {
	case ItemLayer:
		return &im.activeLayer
	case ItemChannel:
		return &im.activeChannel
	default:
		return &im.activeVectors
	}
}

// attach inserts a detached item into its stack at pos (clamped).
func (im *Image) attach(it Item, pos int) {
	s := im.stack(it.Type())
	pos = min(max(pos, 0), len(*s))
	*s = slices.Insert(*s, pos, it.ID())
	it.base().attached = true
	if l, ok := it.(*Layer); ok && l.mask.IsValid() {
		if m := im.items.get(l.mask); m != nil {
			m.base().attached = true
		}
	}
	*im.active(it.Type()) = it.ID()
}

// detach removes an item from its stack and returns its former position.
// The active item moves to the neighbour below, or above at the bottom.
func (im *Image) detach(it Item) int {
	s := im.stack(it.Type())
	pos := slices.Index(*s, it.ID())
	if pos < 0 {
		return -1
	}
	*s = slices.Delete(*s, pos, pos+1)
	it.base().attached = false
	if l, ok := it.(*Layer); ok && l.mask.IsValid() {
		if m := im.items.get(l.mask); m != nil {
			m.base().attached = false
		}
	}
	if act := im.active(it.Type()); *act == it.ID() {
		*act = NoItem
		if len(*s) > 0 {
			*act = (*s)[min(pos, len(*s)-1)]
		}
	}
	return pos
}

// position returns the index of id in its stack, or -1.
func (im *Image) position(it Item) int {
	return slices.Index(*im.stack(it.Type()), it.ID())
}

// move places an attached item at pos (clamped) and returns its old index.
func (im *Image) move(it Item, pos int) int {
	s := im.stack(it.Type())
	old := slices.Index(*s, it.ID())
	if old < 0 {
		return -1
	}
	*s = slices.Delete(*s, old, old+1)
	pos = min(max(pos, 0), len(*s))
	*s = slices.Insert(*s, pos, it.ID())
	return old
}

// ItemCount returns the number of live items, including the selection and
// items held only by undo records.
func (im *Image) ItemCount() int { return im.items.len() }
