package transform

import "github.com/Freedooom/gimp-sub000/tile"

// Surround reads w x h pixel neighbourhoods from a tile manager.
//
// When a neighbourhood lies inside a single tile, Lock hands out a slice
// of that tile directly. Otherwise the pixels are gathered into a scratch
// buffer, with the background colour standing in for pixels outside the
// manager. Coordinates are relative to the manager's origin.
//
// A Surround is used by one goroutine for one pass: Lock and Release per
// destination pixel, Clear at the end.
type Surround struct {
	mgr *tile.Manager
	w   int
	h   int
	bpp int
	bg  []byte

	buf  []byte
	tile *tile.Tile
}

// NewSurround prepares an accessor for w x h neighbourhoods of src.
// bg supplies the colour for out-of-range pixels; missing bytes are zero.
func NewSurround(src *tile.Manager, w, h int, bg []byte) *Surround {
	bpp := src.BPP()
	bgc := make([]byte, bpp)
	copy(bgc, bg)
	return &Surround{
		mgr: src,
		w:   w,
		h:   h,
		bpp: bpp,
		bg:  bgc,
		buf: make([]byte, w*h*bpp),
	}
}

// Lock returns the neighbourhood anchored at (x, y) and its row stride in
// bytes. Pixel (i, j) of the block starts at data[j*stride+i*bpp]. The
// data stays valid until the next Lock or Release.
func (s *Surround) Lock(x, y int) (data []byte, stride int) {
	if t := s.mgr.GetTile(x, y, false); t != nil {
		i := x % tile.TileWidth
		j := y % tile.TileHeight
		if i+s.w <= t.EWidth && j+s.h <= t.EHeight {
			s.tile = t
			return t.From(i, j), t.RowStride()
		}
		s.mgr.Release(t)
	}

	if s.buf == nil {
		s.buf = make([]byte, s.w*s.h*s.bpp)
	}
	stride = s.w * s.bpp
	for j := 0; j < s.h; j++ {
		for i := 0; i < s.w; i++ {
			dst := s.buf[j*stride+i*s.bpp : j*stride+(i+1)*s.bpp]
			t := s.mgr.GetTile(x+i, y+j, false)
			if t == nil {
				copy(dst, s.bg)
				continue
			}
			copy(dst, t.Pixel((x+i)%tile.TileWidth, (y+j)%tile.TileHeight))
			s.mgr.Release(t)
		}
	}
	return s.buf, stride
}

// Release unlocks the tile handed out by the last Lock, if any.
func (s *Surround) Release() {
	if s.tile != nil {
		s.mgr.Release(s.tile)
		s.tile = nil
	}
}

// Clear frees the scratch buffer.
func (s *Surround) Clear() {
	s.Release()
	s.buf = nil
}
