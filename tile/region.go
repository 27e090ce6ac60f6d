package tile

// Region operations move pixels between two managers. When source and
// destination rectangles cover whole, identically sized tiles at tile
// aligned positions, the tiles themselves are shared or swapped instead of
// copying bytes.

// CopyRegion copies a w x h rectangle from src at (sx, sy) to dst at
// (dx, dy). Both rectangles must be inside their managers.
func CopyRegion(src *Manager, sx, sy int, dst *Manager, dx, dy, w, h int) error {
	if src.bpp != dst.bpp {
		return ErrBPPMismatch
	}
	if !src.contains(sx, sy, w, h) || !dst.contains(dx, dy, w, h) {
		return ErrOutOfBounds
	}
	if src == dst {
		if sx == dx && sy == dy {
			return nil
		}
		buf, err := src.ReadRect(sx, sy, w, h)
		if err != nil {
			return err
		}
		return dst.WriteRect(dx, dy, w, h, buf)
	}

	row := make([]byte, TileWidth*src.bpp)
	forEachChunk(dx, dy, w, h, func(cx, cy, cw, ch int) {
		ox, oy := sx+(cx-dx), sy+(cy-dy)
		if mapTile(src, ox, oy, dst, cx, cy, cw, ch) {
			return
		}
		for j := 0; j < ch; j++ {
			_ = src.ReadRow(ox, oy+j, cw, row)
			_ = dst.WriteRow(cx, cy+j, cw, row)
		}
	})
	return nil
}

// SwapRegion exchanges the contents of a w x h rectangle of a at (ax, ay)
// with the rectangle of b at (bx, by). Swapping twice restores both.
func SwapRegion(a *Manager, ax, ay int, b *Manager, bx, by, w, h int) error {
	if a.bpp != b.bpp {
		return ErrBPPMismatch
	}
	if !a.contains(ax, ay, w, h) || !b.contains(bx, by, w, h) {
		return ErrOutOfBounds
	}
	if a == b {
		return nil
	}

	rowA := make([]byte, TileWidth*a.bpp)
	rowB := make([]byte, TileWidth*a.bpp)
	forEachChunk(ax, ay, w, h, func(cx, cy, cw, ch int) {
		ox, oy := bx+(cx-ax), by+(cy-ay)
		if swapTile(a, cx, cy, b, ox, oy, cw, ch) {
			return
		}
		for j := 0; j < ch; j++ {
			_ = a.ReadRow(cx, cy+j, cw, rowA)
			_ = b.ReadRow(ox, oy+j, cw, rowB)
			_ = a.WriteRow(cx, cy+j, cw, rowB)
			_ = b.WriteRow(ox, oy+j, cw, rowA)
		}
	})
	return nil
}

// forEachChunk splits a rectangle along the tile grid of the manager the
// rectangle is expressed in. Chunks never exceed one tile row in width.
func forEachChunk(x, y, w, h int, fn func(cx, cy, cw, ch int)) {
	for cy := y; cy < y+h; {
		ch := min(TileHeight-cy%TileHeight, y+h-cy)
		for cx := x; cx < x+w; {
			cw := min(TileWidth-cx%TileWidth, x+w-cx)
			fn(cx, cy, cw, ch)
			cx += cw
		}
		cy += ch
	}
}

// wholeTile returns the tile coordinates of (x, y) when the chunk covers
// exactly one complete tile of m.
func wholeTile(m *Manager, x, y, w, h int) (tx, ty int, ok bool) {
	if x%TileWidth != 0 || y%TileHeight != 0 {
		return 0, 0, false
	}
	tx, ty = x/TileWidth, y/TileHeight
	ew, eh := m.tileSize(tx, ty)
	if ew != w || eh != h {
		return 0, 0, false
	}
	return tx, ty, true
}

// mapTile makes dst reference the source tile instead of copying it.
func mapTile(src *Manager, sx, sy int, dst *Manager, dx, dy, w, h int) bool {
	stx, sty, ok := wholeTile(src, sx, sy, w, h)
	if !ok {
		return false
	}
	dtx, dty, ok := wholeTile(dst, dx, dy, w, h)
	if !ok {
		return false
	}
	si := sty*src.tilesX + stx
	di := dty*dst.tilesX + dtx
	if src.tiles[si] != nil && src.tiles[si].locks > 0 {
		return false
	}
	if dst.tiles[di] != nil && dst.tiles[di].locks > 0 {
		return false
	}

	st := src.tileAt(stx, sty)
	old := dst.tiles[di]
	if old == st {
		return true
	}
	if old != nil {
		old.shares--
		if old.shares <= 0 {
			old.shares = 0
			dst.pool.Put(old)
		}
	}
	st.shares++
	dst.tiles[di] = st
	dst.dirty.Mark(dtx, dty)
	return true
}

// swapTile exchanges whole tiles between two managers.
func swapTile(a *Manager, ax, ay int, b *Manager, bx, by, w, h int) bool {
	atx, aty, ok := wholeTile(a, ax, ay, w, h)
	if !ok {
		return false
	}
	btx, bty, ok := wholeTile(b, bx, by, w, h)
	if !ok {
		return false
	}
	ai := aty*a.tilesX + atx
	bi := bty*b.tilesX + btx
	if (a.tiles[ai] != nil && a.tiles[ai].locks > 0) || (b.tiles[bi] != nil && b.tiles[bi].locks > 0) {
		return false
	}

	a.tiles[ai], b.tiles[bi] = b.tiles[bi], a.tiles[ai]
	a.dirty.Mark(atx, aty)
	b.dirty.Mark(btx, bty)
	return true
}

// Crop returns a new manager holding a copy of the given rectangle, with
// offsets advanced by (x, y). Tile-aligned parts are shared.
func (m *Manager) Crop(x, y, w, h int) (*Manager, error) {
	out, err := NewManager(w, h, m.bpp)
	if err != nil {
		return nil, err
	}
	if err := CopyRegion(m, x, y, out, 0, 0, w, h); err != nil {
		return nil, err
	}
	out.SetOffsets(m.offsetX+x, m.offsetY+y)
	return out, nil
}
