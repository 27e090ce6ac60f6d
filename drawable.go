package gimp

import (
	"image"
	"image/color"

	"github.com/Freedooom/gimp-sub000/tile"
)

// Drawable is the pixel-carrying part of layers and channels. Its image
// space position is the offset of its tile manager.
type Drawable struct {
	itemBase

	tiles  *tile.Manager
	layout tile.Layout

	// revision counts geometry changes and folded pixel writes.
	revision uint64
}

// Layout returns the pixel layout.
func (d *Drawable) Layout() tile.Layout { return d.layout }

// Tiles returns the pixel store. Writing to it directly bypasses undo.
func (d *Drawable) Tiles() *tile.Manager { return d.tiles }

// Width returns the width in pixels.
func (d *Drawable) Width() int { return d.tiles.Width() }

// Height returns the height in pixels.
func (d *Drawable) Height() int { return d.tiles.Height() }

// Offsets returns the position of the top-left pixel in image space.
func (d *Drawable) Offsets() (x, y int) { return d.tiles.Offsets() }

// Bounds returns the image-space rectangle covered by the drawable.
func (d *Drawable) Bounds() image.Rectangle { return d.tiles.Bounds() }

// HasAlpha reports whether the layout carries alpha.
func (d *Drawable) HasAlpha() bool { return d.layout.HasAlpha() }

// Revision returns a counter that changes with every pixel or geometry
// change. Pixel writes are picked up from the tile manager's dirty map, so
// writes made directly through Tiles count as well.
func (d *Drawable) Revision() uint64 {
	if d.tiles == nil {
		return d.revision
	}
	if dm := d.tiles.Dirty(); dm != nil && !dm.IsEmpty() {
		dm.Clear()
		d.revision++
	}
	return d.revision
}

func (d *Drawable) drawable() *Drawable { return d }

// touch records a change the dirty map cannot see, such as a move or a
// new pixel store.
func (d *Drawable) touch() { d.revision++ }

// swapTiles exchanges the pixel store and layout with the given ones and
// returns the previous pair.
func (d *Drawable) swapTiles(m *tile.Manager, layout tile.Layout) (*tile.Manager, tile.Layout) {
	old, oldLayout := d.tiles, d.layout
	d.tiles, d.layout = m, layout
	d.touch()
	return old, oldLayout
}

func (d *Drawable) free() {
	if d.tiles != nil {
		d.tiles.Free()
		d.tiles = nil
	}
}

// drawableItem is implemented by *Layer and *Channel.
type drawableItem interface {
	Item
	drawable() *Drawable
}

// Layer is a drawable in the layer stack.
type Layer struct {
	Drawable

	// Opacity is the compositing opacity, 0 to 1.
	Opacity float64

	// Visible controls compositing.
	Visible bool

	mask  ItemID
	float *floatState
}

// Mask returns the ID of the layer mask, or NoItem.
func (l *Layer) Mask() ItemID { return l.mask }

// IsFloating reports whether the layer is a floating selection.
func (l *Layer) IsFloating() bool { return l.float != nil }

func (l *Layer) free() {
	if l.float != nil && l.float.backing != nil {
		l.float.backing.Free()
		l.float.backing = nil
	}
	l.Drawable.free()
}

// Channel is a single-byte drawable: an auxiliary channel, a layer mask or
// the selection.
type Channel struct {
	Drawable

	// Color is the display colour of the channel.
	Color color.NRGBA

	// Visible controls display.
	Visible bool
}

func newLayer(name string, m *tile.Manager, layout tile.Layout) *Layer {
	return &Layer{
		Drawable: Drawable{
			itemBase: itemBase{name: name, typ: ItemLayer},
			tiles:    m,
			layout:   layout,
		},
		Opacity: 1,
		Visible: true,
	}
}

func newChannel(name string, m *tile.Manager, c color.NRGBA) *Channel {
	return &Channel{
		Drawable: Drawable{
			itemBase: itemBase{name: name, typ: ItemChannel},
			tiles:    m,
			layout:   tile.Mask,
		},
		Color:   c,
		Visible: true,
	}
}
