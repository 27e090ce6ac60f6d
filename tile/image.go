package tile

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ErrUnsupportedLayout is returned when an image cannot be converted to or
// from the requested layout.
var ErrUnsupportedLayout = errors.New("tile: unsupported layout")

// ToImage renders the manager's pixels as an *image.NRGBA whose bounds are
// the manager's image-space bounds. Indexed layouts look colours up in
// cmap; indices past its end render black.
func ToImage(m *Manager, layout Layout, cmap color.Palette) (*image.NRGBA, error) {
	if layout.BytesPerPixel() != m.bpp {
		return nil, ErrBPPMismatch
	}
	out := image.NewNRGBA(m.Bounds())
	row := make([]byte, m.width*m.bpp)
	for y := 0; y < m.height; y++ {
		if err := m.ReadRow(0, y, m.width, row); err != nil {
			return nil, err
		}
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < m.width; x++ {
			p := row[x*m.bpp : (x+1)*m.bpp]
			r, g, b, a := expand(layout, p, cmap)
			dst[x*4+0] = r
			dst[x*4+1] = g
			dst[x*4+2] = b
			dst[x*4+3] = a
		}
	}
	return out, nil
}

// expand converts one packed pixel to non-premultiplied RGBA.
func expand(layout Layout, p []byte, cmap color.Palette) (r, g, b, a uint8) {
	switch layout {
	case RGB:
		return p[0], p[1], p[2], 0xff
	case RGBA:
		return p[0], p[1], p[2], p[3]
	case Gray, Mask:
		return p[0], p[0], p[0], 0xff
	case GrayA:
		return p[0], p[0], p[0], p[1]
	case Indexed, IndexedA:
		a = 0xff
		if layout == IndexedA {
			a = p[1]
		}
		if int(p[0]) < len(cmap) {
			c := color.NRGBAModel.Convert(cmap[p[0]]).(color.NRGBA)
			return c.R, c.G, c.B, a
		}
		return 0, 0, 0, a
	}
	return 0, 0, 0, 0
}

// FromImage copies img into a new manager of the given layout, placed at
// img's bounds origin. Indexed layouts require an *image.Paletted source.
func FromImage(img image.Image, layout Layout) (*Manager, error) {
	if !layout.IsValid() {
		return nil, ErrUnsupportedLayout
	}
	b := img.Bounds()
	m, err := NewManager(b.Dx(), b.Dy(), layout.BytesPerPixel())
	if err != nil {
		return nil, err
	}
	m.SetOffsets(b.Min.X, b.Min.Y)

	bpp := m.bpp
	row := make([]byte, b.Dx()*bpp)

	if layout.IsIndexed() {
		pal, ok := img.(*image.Paletted)
		if !ok {
			return nil, ErrUnsupportedLayout
		}
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				idx := pal.ColorIndexAt(b.Min.X+x, b.Min.Y+y)
				row[x*bpp] = idx
				if bpp == 2 {
					_, _, _, a := pal.Palette[idx].RGBA()
					row[x*bpp+1] = uint8(a >> 8)
				}
			}
			if err := m.WriteRow(0, y, b.Dx(), row); err != nil {
				return nil, err
			}
		}
		return m, nil
	}

	// Normalise through NRGBA so every source image type is handled.
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	for y := 0; y < b.Dy(); y++ {
		src := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := src[x*4], src[x*4+1], src[x*4+2], src[x*4+3]
			p := row[x*bpp : (x+1)*bpp]
			switch layout {
			case RGB:
				p[0], p[1], p[2] = r, g, bl
			case RGBA:
				p[0], p[1], p[2], p[3] = r, g, bl, a
			case Gray:
				p[0] = Luminance(r, g, bl)
			case GrayA:
				p[0], p[1] = Luminance(r, g, bl), a
			case Mask:
				p[0] = a
			}
		}
		if err := m.WriteRow(0, y, b.Dx(), row); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Luminance converts an RGB pixel to gray with the Rec. 601 weights.
func Luminance(r, g, b uint8) uint8 {
	return uint8((int(r)*299 + int(g)*587 + int(b)*114 + 500) / 1000)
}
