// Package tile provides the tiled raster store used by the transform and
// undo engines.
//
// A Manager splits a width x height x bpp pixel buffer into 64x64 tiles.
// Key features:
//
//   - Lazy tile allocation from a shared Pool
//   - Copy-on-write tile sharing between managers (Duplicate, CopyRegion)
//   - Short-lived lock/release access to individual tiles
//   - Dirty tile tracking for incremental updates
//
// Thread safety: Manager is NOT thread-safe. A manager belongs to one
// document and is accessed from one goroutine at a time. Pool is safe for
// concurrent use.
package tile

// Tile size constants.
const (
	// TileWidth is the width of a full tile in pixels.
	TileWidth = 64

	// TileHeight is the height of a full tile in pixels.
	TileHeight = 64
)

// Tile is a rectangular block of pixels owned by one or more managers.
//
// Edge tiles have smaller effective dimensions when the manager is not
// evenly divisible by the tile size. A tile referenced by several managers
// is copied before the first write through any of them.
type Tile struct {
	// EWidth is the effective width in pixels (may be < TileWidth for edge tiles).
	EWidth int

	// EHeight is the effective height in pixels (may be < TileHeight for edge tiles).
	EHeight int

	// BPP is the number of bytes per pixel.
	BPP int

	// Data holds EWidth * EHeight * BPP bytes in row-major order.
	Data []byte

	// shares is the number of managers referencing this tile.
	shares int

	// locks is the number of outstanding GetTile calls not yet released.
	locks int
}

// Reset clears the tile data for reuse.
func (t *Tile) Reset() {
	clear(t.Data)
	t.shares = 0
	t.locks = 0
}

// RowStride returns the number of bytes per tile row.
func (t *Tile) RowStride() int {
	return t.EWidth * t.BPP
}

// PixelOffset returns the byte offset into Data for the given pixel.
// Coordinates are relative to the tile. Returns -1 if out of bounds.
func (t *Tile) PixelOffset(px, py int) int {
	if px < 0 || px >= t.EWidth || py < 0 || py >= t.EHeight {
		return -1
	}
	return (py*t.EWidth + px) * t.BPP
}

// Pixel returns the bytes of one pixel, or nil when out of bounds.
// The returned slice aliases the tile data.
func (t *Tile) Pixel(px, py int) []byte {
	off := t.PixelOffset(px, py)
	if off < 0 {
		return nil
	}
	return t.Data[off : off+t.BPP]
}

// From returns the tile data starting at the given tile-relative pixel.
// Rows continue at multiples of RowStride.
func (t *Tile) From(px, py int) []byte {
	off := t.PixelOffset(px, py)
	if off < 0 {
		return nil
	}
	return t.Data[off:]
}

// Shared reports whether more than one manager references this tile.
func (t *Tile) Shared() bool {
	return t.shares > 1
}

// ByteSize returns the size of the tile data in bytes.
func (t *Tile) ByteSize() int {
	return t.EWidth * t.EHeight * t.BPP
}
