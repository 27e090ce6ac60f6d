package gimp

import (
	"image/color"
	"math"

	"github.com/Freedooom/gimp-sub000/tile"
)

// toNRGBA reads one packed pixel. A Mask pixel reads as white with the
// mask value as alpha.
func toNRGBA(layout tile.Layout, p []byte, cmap color.Palette) color.NRGBA {
	switch layout {
	case tile.RGB:
		return color.NRGBA{R: p[0], G: p[1], B: p[2], A: 0xff}
	case tile.RGBA:
		return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	case tile.Gray:
		return color.NRGBA{R: p[0], G: p[0], B: p[0], A: 0xff}
	case tile.GrayA:
		return color.NRGBA{R: p[0], G: p[0], B: p[0], A: p[1]}
	case tile.Indexed, tile.IndexedA:
		c := color.NRGBA{A: 0xff}
		if int(p[0]) < len(cmap) {
			c = color.NRGBAModel.Convert(cmap[p[0]]).(color.NRGBA)
			c.A = 0xff
		}
		if layout == tile.IndexedA {
			c.A = p[1]
		}
		return c
	case tile.Mask:
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: p[0]}
	}
	return color.NRGBA{}
}

// fromNRGBA packs c into p.
func fromNRGBA(layout tile.Layout, c color.NRGBA, cmap color.Palette, p []byte) {
	switch layout {
	case tile.RGB:
		p[0], p[1], p[2] = c.R, c.G, c.B
	case tile.RGBA:
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
	case tile.Gray:
		p[0] = tile.Luminance(c.R, c.G, c.B)
	case tile.GrayA:
		p[0], p[1] = tile.Luminance(c.R, c.G, c.B), c.A
	case tile.Indexed, tile.IndexedA:
		p[0] = 0
		if len(cmap) > 0 {
			p[0] = byte(cmap.Index(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}))
		}
		if layout == tile.IndexedA {
			p[1] = c.A
		}
	case tile.Mask:
		p[0] = c.A
	}
}

// pixelBytes packs c into a new slice.
func pixelBytes(layout tile.Layout, c color.NRGBA, cmap color.Palette) []byte {
	p := make([]byte, layout.BytesPerPixel())
	fromNRGBA(layout, c, cmap, p)
	return p
}

// blendOver composites src over dst in place. opacity scales the source
// alpha.
func blendOver(dst []byte, dl tile.Layout, src []byte, sl tile.Layout, opacity float64, cmap color.Palette) {
	s := toNRGBA(sl, src, cmap)
	sa := float64(s.A) / 255 * opacity
	if sa <= 0 {
		return
	}
	d := toNRGBA(dl, dst, cmap)
	da := float64(d.A) / 255

	oa := sa + da*(1-sa)
	mix := func(sc, dc uint8) uint8 {
		v := (float64(sc)*sa + float64(dc)*da*(1-sa)) / oa
		return uint8(math.Min(255, math.Round(v)))
	}
	out := color.NRGBA{
		R: mix(s.R, d.R),
		G: mix(s.G, d.G),
		B: mix(s.B, d.B),
		A: uint8(math.Round(oa * 255)),
	}
	fromNRGBA(dl, out, cmap, dst)
}

// convertTiles returns a copy of src repacked from one layout to another.
// Adding an alpha channel keeps the colour bytes as they are. The same
// layout on both sides yields a shared copy.
func convertTiles(src *tile.Manager, from, to tile.Layout, cmap color.Palette) (*tile.Manager, error) {
	if from == to {
		return src.Duplicate(), nil
	}
	w, h := src.Width(), src.Height()
	dst, err := tile.NewManager(w, h, to.BytesPerPixel())
	if err != nil {
		return nil, err
	}
	dst.SetOffsets(src.Offsets())

	fb, tb := from.BytesPerPixel(), to.BytesPerPixel()
	addAlpha := from.WithAlpha() == to
	in := make([]byte, w*fb)
	out := make([]byte, w*tb)
	for y := 0; y < h; y++ {
		if err := src.ReadRow(0, y, w, in); err != nil {
			return nil, err
		}
		for x := 0; x < w; x++ {
			sp := in[x*fb : (x+1)*fb]
			dp := out[x*tb : (x+1)*tb]
			if addAlpha {
				copy(dp, sp)
				dp[tb-1] = 0xff
				continue
			}
			fromNRGBA(to, toNRGBA(from, sp, cmap), cmap, dp)
		}
		if err := dst.WriteRow(0, y, w, out); err != nil {
			return nil, err
		}
	}
	return dst, nil
}
