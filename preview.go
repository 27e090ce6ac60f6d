package gimp

import (
	"fmt"
	"image"
	"image/color"
	"slices"

	"golang.org/x/image/draw"

	"github.com/Freedooom/gimp-sub000/internal/parallel"
	"github.com/Freedooom/gimp-sub000/tile"
)

// previewKey identifies one cached thumbnail.
type previewKey struct {
	id   ItemID
	w, h int
	rev  uint64
}

// Preview returns a w x h thumbnail of a layer or channel. Thumbnails are
// cached until the drawable's pixels change. The result must not be
// modified.
func (im *Image) Preview(id ItemID, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: preview %dx%d", ErrInvalidDimensions, w, h)
	}
	d, err := im.Drawable(id)
	if err != nil {
		return nil, err
	}
	rev := d.Revision()
	key := previewKey{id: id, w: w, h: h, rev: rev}
	return im.previews.GetOrCreate(key, func() *image.RGBA {
		im.previews.RemoveFunc(func(k previewKey) bool {
			return k.id == id && k.rev != rev
		})
		src, err := tile.ToImage(d.tiles, d.layout, im.cmap)
		if err != nil {
			Logger().Warn("gimp: preview render failed", "item", id, "err", err)
			return image.NewRGBA(image.Rect(0, 0, w, h))
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		var s draw.Scaler = draw.ApproxBiLinear
		if w > d.Width() || h > d.Height() {
			s = draw.CatmullRom
		}
		s.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		return dst
	}), nil
}

// compositeBand is the number of rows each worker flattens at a time.
const compositeBand = 64

// Composite flattens the visible layers onto a transparent canvas,
// applying layer masks and opacity. The floating selection is skipped
// since its pixels are already on its target.
func (im *Image) Composite() (*image.RGBA, error) {
	dst := image.NewRGBA(im.Bounds())

	type source struct {
		img  image.Image
		mask image.Image
	}
	var srcs []source
	layers, masks := im.layerMasks()
	for i, l := range slices.Backward(layers) {
		if !l.Visible || l.float != nil || l.Opacity <= 0 {
			continue
		}
		img, err := tile.ToImage(l.tiles, l.layout, im.cmap)
		if err != nil {
			return nil, err
		}
		var mask image.Image = image.NewUniform(color.Alpha{A: uint8(l.Opacity*255 + 0.5)})
		if m := masks[i]; m != nil {
			if mask, err = layerMaskImage(m, l.Opacity); err != nil {
				return nil, err
			}
		}
		srcs = append(srcs, source{img: img, mask: mask})
	}

	flatten := func(y0, y1 int) {
		band := image.Rect(0, y0, im.width, y1)
		for _, s := range srcs {
			r := s.img.Bounds().Intersect(band)
			if !r.Empty() {
				draw.DrawMask(dst, r, s.img, r.Min, s.mask, r.Min, draw.Over)
			}
		}
	}
	if im.workers <= 1 || im.height <= compositeBand {
		flatten(0, im.height)
		return dst, nil
	}
	pool := parallel.NewPool(im.workers)
	defer pool.Close()
	pool.Bands(0, im.height, compositeBand, flatten)
	return dst, nil
}

// layerMaskImage renders a layer mask scaled by opacity, in image space.
func layerMaskImage(m *Channel, opacity float64) (*image.Alpha, error) {
	out := image.NewAlpha(m.Bounds())
	w := m.Width()
	for y := 0; y < m.Height(); y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+w]
		if err := m.tiles.ReadRow(0, y, w, row); err != nil {
			return nil, err
		}
		if opacity < 1 {
			for x, v := range row {
				row[x] = uint8(float64(v)*opacity + 0.5)
			}
		}
	}
	return out, nil
}
