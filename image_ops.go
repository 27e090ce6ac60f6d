package gimp

import (
	"fmt"
	"image"
	"math"

	"seehuhn.de/go/geom/vec"

	"github.com/Freedooom/gimp-sub000/tile"
	"github.com/Freedooom/gimp-sub000/transform"
	"github.com/Freedooom/gimp-sub000/undo"
)

// layerMasks returns every layer in the stack with its mask, if any.
func (im *Image) layerMasks() (layers []*Layer, masks []*Channel) {
	for _, id := range im.layers {
		l, err := im.Layer(id)
		if err != nil {
			continue
		}
		var m *Channel
		if l.mask.IsValid() {
			m, _ = im.Channel(l.mask)
		}
		layers = append(layers, l)
		masks = append(masks, m)
	}
	return layers, masks
}

// canvasChannels returns the channel stack followed by the selection.
func (im *Image) canvasChannels() []*Channel {
	var out []*Channel
	for _, id := range im.channels {
		if c, err := im.Channel(id); err == nil {
			out = append(out, c)
		}
	}
	return append(out, im.selectionChannel())
}

// mapAllVectors records every path and maps its points through fn.
func (im *Image) mapAllVectors(fn func(vec.Vec2) vec.Vec2) {
	for _, id := range im.vectors {
		v, err := im.Vectors(id)
		if err != nil {
			continue
		}
		im.pushVectorsMod(id, v)
		v.strokes = mapPath(v.strokes, fn)
	}
}

// Resize changes the canvas size. Layers keep their pixels and move by
// (offX, offY); channels and the selection are cropped or padded.
func (im *Image) Resize(width, height, offX, offY int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if im.floating.IsValid() {
		return ErrFloatingSelection
	}

	im.log.PushGroupStart(undo.GroupImageResize)
	defer im.log.PushGroupEnd()

	im.pushImageSize()
	im.width, im.height = width, height

	layers, _ := im.layerMasks()
	for _, l := range layers {
		x, y := l.Offsets()
		im.pushDisplace(l.ID(), l)
		im.setLayerOffsets(l, x+offX, y+offY)
	}
	for _, c := range im.canvasChannels() {
		m, err := tile.NewManager(width, height, 1)
		if err != nil {
			return err
		}
		r := c.Bounds().Add(image.Pt(offX, offY)).Intersect(image.Rect(0, 0, width, height))
		if !r.Empty() {
			_ = tile.CopyRegion(c.tiles, r.Min.X-offX, r.Min.Y-offY, m, r.Min.X, r.Min.Y, r.Dx(), r.Dy())
		}
		im.replaceTiles(c.ID(), &c.Drawable, m, tile.Mask)
	}
	im.mapAllVectors(func(p vec.Vec2) vec.Vec2 {
		return vec.Vec2{X: p.X + float64(offX), Y: p.Y + float64(offY)}
	})
	im.remapGuides(func(g Guide) Guide {
		if g.Orientation == Vertical {
			g.Position += offX
		} else {
			g.Position += offY
		}
		return g
	})
	im.previews.Clear()
	return nil
}

// Scale resamples every drawable to a new canvas size with the image's
// interpolation mode.
func (im *Image) Scale(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if im.floating.IsValid() {
		return ErrFloatingSelection
	}
	sx := float64(width) / float64(im.width)
	sy := float64(height) / float64(im.height)
	m := transform.Scale(sx, sy)
	opts := transform.DefaultOptions()
	opts.Interpolation = im.interp

	scaled := func(r image.Rectangle) image.Rectangle {
		x1 := int(math.Round(float64(r.Min.X) * sx))
		y1 := int(math.Round(float64(r.Min.Y) * sy))
		x2 := max(int(math.Round(float64(r.Max.X)*sx)), x1+1)
		y2 := max(int(math.Round(float64(r.Max.Y)*sy)), y1+1)
		return image.Rect(x1, y1, x2, y2)
	}
	resample := func(d *Drawable, extent image.Rectangle) error {
		opts.Extent = extent
		out, err := transform.Transform(d.tiles, d.layout, m, opts)
		if err != nil {
			return err
		}
		im.replaceTiles(d.ID(), d, out, d.layout)
		return nil
	}

	im.log.PushGroupStart(undo.GroupImageScale)
	defer im.log.PushGroupEnd()

	im.pushImageSize()
	im.width, im.height = width, height

	layers, masks := im.layerMasks()
	for i, l := range layers {
		extent := scaled(l.Bounds())
		if err := resample(&l.Drawable, extent); err != nil {
			return err
		}
		if masks[i] != nil {
			if err := resample(&masks[i].Drawable, extent); err != nil {
				return err
			}
		}
	}
	for _, c := range im.canvasChannels() {
		if err := resample(&c.Drawable, image.Rect(0, 0, width, height)); err != nil {
			return err
		}
	}
	im.mapAllVectors(func(p vec.Vec2) vec.Vec2 {
		return vec.Vec2{X: p.X * sx, Y: p.Y * sy}
	})
	im.remapGuides(func(g Guide) Guide {
		if g.Orientation == Vertical {
			g.Position = int(math.Round(float64(g.Position) * sx))
		} else {
			g.Position = int(math.Round(float64(g.Position) * sy))
		}
		return g
	})
	im.previews.Clear()
	Logger().Info("gimp: image scaled", "width", width, "height", height, "interpolation", im.interp)
	return nil
}

// Flip mirrors the whole image. Horizontal swaps left and right, Vertical
// swaps top and bottom.
func (im *Image) Flip(o Orientation) error {
	if im.floating.IsValid() {
		return ErrFloatingSelection
	}
	horizontal := o == Horizontal
	W, H := im.width, im.height
	mirror := func(r image.Rectangle) image.Point {
		if horizontal {
			return image.Pt(W-r.Max.X, r.Min.Y)
		}
		return image.Pt(r.Min.X, H-r.Max.Y)
	}
	flip := func(d *Drawable, at image.Point) error {
		out, err := transform.Flip(d.tiles, horizontal)
		if err != nil {
			return err
		}
		out.SetOffsets(at.X, at.Y)
		im.replaceTiles(d.ID(), d, out, d.layout)
		return nil
	}

	im.log.PushGroupStart(undo.GroupImageFlip)
	defer im.log.PushGroupEnd()

	layers, masks := im.layerMasks()
	for i, l := range layers {
		at := mirror(l.Bounds())
		if err := flip(&l.Drawable, at); err != nil {
			return err
		}
		if masks[i] != nil {
			if err := flip(&masks[i].Drawable, at); err != nil {
				return err
			}
		}
	}
	for _, c := range im.canvasChannels() {
		if err := flip(&c.Drawable, image.Point{}); err != nil {
			return err
		}
	}
	im.mapAllVectors(func(p vec.Vec2) vec.Vec2 {
		if horizontal {
			return vec.Vec2{X: float64(W) - p.X, Y: p.Y}
		}
		return vec.Vec2{X: p.X, Y: float64(H) - p.Y}
	})
	im.remapGuides(func(g Guide) Guide {
		switch {
		case horizontal && g.Orientation == Vertical:
			g.Position = W - g.Position
		case !horizontal && g.Orientation == Horizontal:
			g.Position = H - g.Position
		}
		return g
	})
	im.previews.Clear()
	return nil
}

// Rotate turns the whole image by quarter turns clockwise.
func (im *Image) Rotate(quarters int) error {
	q := ((quarters % 4) + 4) % 4
	if q == 0 {
		return nil
	}
	if im.floating.IsValid() {
		return ErrFloatingSelection
	}
	W, H := im.width, im.height
	origin := func(r image.Rectangle) image.Point {
		switch q {
		case 1:
			return image.Pt(H-r.Max.Y, r.Min.X)
		case 2:
			return image.Pt(W-r.Max.X, H-r.Max.Y)
		default:
			return image.Pt(r.Min.Y, W-r.Max.X)
		}
	}
	rotate := func(d *Drawable, at image.Point) error {
		out, err := transform.Rotate90(d.tiles, q)
		if err != nil {
			return err
		}
		out.SetOffsets(at.X, at.Y)
		im.replaceTiles(d.ID(), d, out, d.layout)
		return nil
	}

	im.log.PushGroupStart(undo.GroupImageRotate)
	defer im.log.PushGroupEnd()

	if q != 2 {
		im.pushImageSize()
		im.width, im.height = H, W
	}

	layers, masks := im.layerMasks()
	for i, l := range layers {
		at := origin(l.Bounds())
		if err := rotate(&l.Drawable, at); err != nil {
			return err
		}
		if masks[i] != nil {
			if err := rotate(&masks[i].Drawable, at); err != nil {
				return err
			}
		}
	}
	for _, c := range im.canvasChannels() {
		if err := rotate(&c.Drawable, image.Point{}); err != nil {
			return err
		}
	}
	im.mapAllVectors(func(p vec.Vec2) vec.Vec2 {
		switch q {
		case 1:
			return vec.Vec2{X: float64(H) - p.Y, Y: p.X}
		case 2:
			return vec.Vec2{X: float64(W) - p.X, Y: float64(H) - p.Y}
		default:
			return vec.Vec2{X: p.Y, Y: float64(W) - p.X}
		}
	})
	im.remapGuides(func(g Guide) Guide {
		switch q {
		case 1:
			if g.Orientation == Horizontal {
				g.Orientation, g.Position = Vertical, H-g.Position
			} else {
				g.Orientation = Horizontal
			}
		case 2:
			if g.Orientation == Horizontal {
				g.Position = H - g.Position
			} else {
				g.Position = W - g.Position
			}
		default:
			if g.Orientation == Horizontal {
				g.Orientation = Vertical
			} else {
				g.Orientation, g.Position = Horizontal, W-g.Position
			}
		}
		return g
	})
	im.previews.Clear()
	return nil
}

// Convert changes the colour model between RGB and grayscale, repacking
// every layer.
func (im *Image) Convert(base BaseType) error {
	if base == im.base {
		return nil
	}
	if base == BaseIndexed || im.base == BaseIndexed {
		return fmt.Errorf("%w: %v to %v", ErrUnsupportedConversion, im.base, base)
	}
	if im.floating.IsValid() {
		return ErrFloatingSelection
	}

	im.log.PushGroupStart(undo.GroupImageConvert)
	defer im.log.PushGroupEnd()

	im.pushImageType()
	im.base = base

	layers, _ := im.layerMasks()
	for _, l := range layers {
		layout := base.Layout(l.HasAlpha())
		m, err := convertTiles(l.tiles, l.layout, layout, im.cmap)
		if err != nil {
			return err
		}
		im.replaceTiles(l.ID(), &l.Drawable, m, layout)
	}
	im.previews.Clear()
	return nil
}

// SetResolution sets the resolution in pixels per inch.
func (im *Image) SetResolution(x, y float64) error {
	if x <= 0 || y <= 0 {
		return fmt.Errorf("%w: resolution %gx%g", ErrInvalidDimensions, x, y)
	}
	if x == im.xres && y == im.yres {
		return nil
	}
	im.pushImageResolution()
	im.xres, im.yres = x, y
	return nil
}

// SetUnit sets the display unit.
func (im *Image) SetUnit(u Unit) {
	if u == im.unit {
		return
	}
	im.pushImageResolution()
	im.unit = u
}
