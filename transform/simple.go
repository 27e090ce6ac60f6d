package transform

import "github.com/Freedooom/gimp-sub000/tile"

// Flip mirrors src about its own centre line and returns a new manager
// with the same bounds. Pixels are copied, never resampled.
func Flip(src *tile.Manager, horizontal bool) (*tile.Manager, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	w, h, bpp := src.Width(), src.Height(), src.BPP()
	dst, err := tile.NewManager(w, h, bpp)
	if err != nil {
		return nil, err
	}
	dst.SetOffsets(src.Offsets())

	row := make([]byte, w*bpp)
	out := make([]byte, w*bpp)
	for y := 0; y < h; y++ {
		if err := src.ReadRow(0, y, w, row); err != nil {
			return nil, err
		}
		dy := y
		if horizontal {
			for x := 0; x < w; x++ {
				copy(out[(w-1-x)*bpp:(w-x)*bpp], row[x*bpp:(x+1)*bpp])
			}
		} else {
			dy = h - 1 - y
			copy(out, row)
		}
		if err := dst.WriteRow(0, dy, w, out); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// Rotate90 rotates src by quarter turns clockwise (as seen with the y axis
// pointing down) about its centre. The result has swapped dimensions for
// odd turns; when width and height differ in parity its origin is rounded
// down. Pixels are copied, never resampled.
func Rotate90(src *tile.Manager, quarters int) (*tile.Manager, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	q := ((quarters % 4) + 4) % 4
	w, h, bpp := src.Width(), src.Height(), src.BPP()
	dw, dh := w, h
	if q%2 == 1 {
		dw, dh = h, w
	}
	dst, err := tile.NewManager(dw, dh, bpp)
	if err != nil {
		return nil, err
	}
	ox, oy := src.Offsets()
	dst.SetOffsets(ox+floorDiv(w-dw, 2), oy+floorDiv(h-dh, 2))

	row := make([]byte, w*bpp)
	for y := 0; y < h; y++ {
		if err := src.ReadRow(0, y, w, row); err != nil {
			return nil, err
		}
		for x := 0; x < w; x++ {
			var dx, dy int
			switch q {
			case 0:
				dx, dy = x, y
			case 1:
				dx, dy = h-1-y, x
			case 2:
				dx, dy = w-1-x, h-1-y
			case 3:
				dx, dy = y, w-1-x
			}
			dst.WritePixel(dx, dy, row[x*bpp:(x+1)*bpp])
		}
	}
	return dst, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
