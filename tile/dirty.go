package tile

import (
	"image"
	"math/bits"
)

// DirtyMap tracks which tiles of a manager have been written.
//
// One bit per tile, packed into uint64 words. Bit index = ty*tilesX + tx.
// DirtyMap follows its manager's threading rules and is not safe for
// concurrent use.
type DirtyMap struct {
	words  []uint64
	tilesX int
	tilesY int
}

// NewDirtyMap creates a clean map for the given tile grid.
// Returns nil if dimensions are invalid.
func NewDirtyMap(tilesX, tilesY int) *DirtyMap {
	if tilesX <= 0 || tilesY <= 0 {
		return nil
	}
	return &DirtyMap{
		words:  make([]uint64, (tilesX*tilesY+63)/64),
		tilesX: tilesX,
		tilesY: tilesY,
	}
}

// Mark flags one tile. Out-of-range coordinates are ignored.
func (d *DirtyMap) Mark(tx, ty int) {
	if tx < 0 || tx >= d.tilesX || ty < 0 || ty >= d.tilesY {
		return
	}
	idx := ty*d.tilesX + tx
	d.words[idx/64] |= 1 << (idx & 63)
}

// MarkRect flags every tile intersecting the pixel rectangle.
func (d *DirtyMap) MarkRect(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	tx1 := max(x/TileWidth, 0)
	ty1 := max(y/TileHeight, 0)
	tx2 := min((x+w-1)/TileWidth, d.tilesX-1)
	ty2 := min((y+h-1)/TileHeight, d.tilesY-1)
	for ty := ty1; ty <= ty2; ty++ {
		for tx := tx1; tx <= tx2; tx++ {
			d.Mark(tx, ty)
		}
	}
}

// IsDirty reports whether the tile has been written.
func (d *DirtyMap) IsDirty(tx, ty int) bool {
	if tx < 0 || tx >= d.tilesX || ty < 0 || ty >= d.tilesY {
		return false
	}
	idx := ty*d.tilesX + tx
	return d.words[idx/64]&(1<<(idx&63)) != 0
}

// IsEmpty reports whether no tile is dirty.
func (d *DirtyMap) IsEmpty() bool {
	for _, w := range d.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of dirty tiles.
func (d *DirtyMap) Count() int {
	n := 0
	for _, w := range d.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Clear marks every tile clean.
func (d *DirtyMap) Clear() {
	clear(d.words)
}

// ForEach calls fn for each dirty tile in row-major order.
func (d *DirtyMap) ForEach(fn func(tx, ty int)) {
	total := d.tilesX * d.tilesY
	for wi, word := range d.words {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			idx := wi*64 + b
			if idx >= total {
				break
			}
			fn(idx%d.tilesX, idx/d.tilesX)
			word &^= 1 << b
		}
	}
}

// Bounds returns the pixel rectangle (in tile-grid space, before offsets)
// covering every dirty tile. The result is empty when nothing is dirty.
func (d *DirtyMap) Bounds() image.Rectangle {
	var r image.Rectangle
	d.ForEach(func(tx, ty int) {
		r = r.Union(image.Rect(tx*TileWidth, ty*TileHeight, (tx+1)*TileWidth, (ty+1)*TileHeight))
	})
	return r
}
