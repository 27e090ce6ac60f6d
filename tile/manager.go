package tile

import (
	"errors"
	"image"
)

// Common errors for tile manager operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("tile: invalid dimensions")

	// ErrInvalidBPP is returned when bytes per pixel is outside 1..4.
	ErrInvalidBPP = errors.New("tile: invalid bytes per pixel")

	// ErrBPPMismatch is returned when two managers with different depths
	// take part in one region operation.
	ErrBPPMismatch = errors.New("tile: bytes per pixel mismatch")

	// ErrOutOfBounds is returned when a region is not fully inside a manager.
	ErrOutOfBounds = errors.New("tile: region out of bounds")
)

// Manager is a width x height x bpp pixel buffer split into tiles.
//
// Tiles are stored in a flat slice, index = ty * tilesX + tx, and are
// allocated on first access. The manager is placed in image space by its
// offsets; all pixel coordinates accepted by its methods are relative to
// the manager's own origin.
type Manager struct {
	width  int
	height int
	bpp    int

	// offsetX and offsetY place the buffer in image space.
	offsetX int
	offsetY int

	tilesX int
	tilesY int
	tiles  []*Tile

	pool   *Pool
	dirty  *DirtyMap
	locked int
}

// NewManager creates an empty (all zero) buffer.
func NewManager(width, height, bpp int) (*Manager, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if bpp <= 0 || bpp > maxBPP {
		return nil, ErrInvalidBPP
	}

	tilesX := (width + TileWidth - 1) / TileWidth
	tilesY := (height + TileHeight - 1) / TileHeight

	return &Manager{
		width:  width,
		height: height,
		bpp:    bpp,
		tilesX: tilesX,
		tilesY: tilesY,
		tiles:  make([]*Tile, tilesX*tilesY),
		pool:   defaultPool,
		dirty:  NewDirtyMap(tilesX, tilesY),
	}, nil
}

// Width returns the buffer width in pixels.
func (m *Manager) Width() int { return m.width }

// Height returns the buffer height in pixels.
func (m *Manager) Height() int { return m.height }

// BPP returns the number of bytes per pixel.
func (m *Manager) BPP() int { return m.bpp }

// Offsets returns the position of the buffer in image space.
func (m *Manager) Offsets() (x, y int) { return m.offsetX, m.offsetY }

// SetOffsets places the buffer in image space.
func (m *Manager) SetOffsets(x, y int) {
	m.offsetX = x
	m.offsetY = y
}

// Bounds returns the buffer rectangle in image space.
func (m *Manager) Bounds() image.Rectangle {
	return image.Rect(m.offsetX, m.offsetY, m.offsetX+m.width, m.offsetY+m.height)
}

// TilesX returns the number of tile columns.
func (m *Manager) TilesX() int { return m.tilesX }

// TilesY returns the number of tile rows.
func (m *Manager) TilesY() int { return m.tilesY }

// LockedTiles returns the number of tiles currently locked via GetTile.
func (m *Manager) LockedTiles() int { return m.locked }

// Dirty returns the map of tiles written since the last Clear.
func (m *Manager) Dirty() *DirtyMap { return m.dirty }

// MemSize returns the nominal memory footprint of the pixel data in bytes.
func (m *Manager) MemSize() int64 {
	return int64(m.width) * int64(m.height) * int64(m.bpp)
}

// tileSize returns the effective size of the tile at tile coordinates.
func (m *Manager) tileSize(tx, ty int) (int, int) {
	w := TileWidth
	h := TileHeight
	if (tx+1)*TileWidth > m.width {
		w = m.width - tx*TileWidth
	}
	if (ty+1)*TileHeight > m.height {
		h = m.height - ty*TileHeight
	}
	return w, h
}

// tileAt returns the tile at tile coordinates, allocating it if needed.
func (m *Manager) tileAt(tx, ty int) *Tile {
	idx := ty*m.tilesX + tx
	t := m.tiles[idx]
	if t == nil {
		w, h := m.tileSize(tx, ty)
		t = m.pool.Get(w, h, m.bpp)
		t.shares = 1
		m.tiles[idx] = t
	}
	return t
}

// writableTileAt returns the tile at tile coordinates, copying it first if
// it is shared with another manager.
func (m *Manager) writableTileAt(tx, ty int) *Tile {
	t := m.tileAt(tx, ty)
	if t.shares > 1 {
		clone := m.pool.Get(t.EWidth, t.EHeight, t.BPP)
		copy(clone.Data, t.Data)
		clone.shares = 1
		t.shares--
		m.tiles[ty*m.tilesX+tx] = clone
		slogger().Debug("tile: copy-on-write", "tx", tx, "ty", ty, "bpp", m.bpp)
		t = clone
	}
	m.dirty.Mark(tx, ty)
	return t
}

// GetTile locks and returns the tile containing pixel (x, y).
// Returns nil if the pixel lies outside the buffer.
//
// A writable request copies a shared tile first and marks it dirty.
// Every non-nil result must be handed back to Release.
func (m *Manager) GetTile(x, y int, writable bool) *Tile {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return nil
	}
	tx := x / TileWidth
	ty := y / TileHeight

	var t *Tile
	if writable {
		t = m.writableTileAt(tx, ty)
	} else {
		t = m.tileAt(tx, ty)
	}
	t.locks++
	m.locked++
	return t
}

// Release unlocks a tile obtained from GetTile.
func (m *Manager) Release(t *Tile) {
	if t == nil || t.locks == 0 {
		return
	}
	t.locks--
	m.locked--
}

// Duplicate returns a manager with the same geometry that shares every
// tile with m. Either side copies a tile before writing to it.
func (m *Manager) Duplicate() *Manager {
	dup := &Manager{
		width:   m.width,
		height:  m.height,
		bpp:     m.bpp,
		offsetX: m.offsetX,
		offsetY: m.offsetY,
		tilesX:  m.tilesX,
		tilesY:  m.tilesY,
		tiles:   make([]*Tile, len(m.tiles)),
		pool:    m.pool,
		dirty:   NewDirtyMap(m.tilesX, m.tilesY),
	}
	for i, t := range m.tiles {
		if t != nil {
			t.shares++
			dup.tiles[i] = t
		}
	}
	return dup
}

// Free drops the manager's references to its tiles. Tiles no longer
// referenced by any manager go back to the pool. The manager must not be
// used afterwards.
func (m *Manager) Free() {
	for i, t := range m.tiles {
		if t == nil {
			continue
		}
		t.shares--
		if t.shares <= 0 {
			t.shares = 0
			m.pool.Put(t)
		}
		m.tiles[i] = nil
	}
}

// ReadPixel copies the pixel at (x, y) into dst. Returns false if the
// pixel lies outside the buffer.
func (m *Manager) ReadPixel(x, y int, dst []byte) bool {
	t := m.GetTile(x, y, false)
	if t == nil {
		return false
	}
	copy(dst[:m.bpp], t.Pixel(x%TileWidth, y%TileHeight))
	m.Release(t)
	return true
}

// WritePixel stores src at (x, y). Returns false if the pixel lies outside
// the buffer.
func (m *Manager) WritePixel(x, y int, src []byte) bool {
	t := m.GetTile(x, y, true)
	if t == nil {
		return false
	}
	copy(t.Pixel(x%TileWidth, y%TileHeight), src[:m.bpp])
	m.Release(t)
	return true
}

// ReadRow copies w pixels starting at (x, y) into dst.
func (m *Manager) ReadRow(x, y, w int, dst []byte) error {
	if y < 0 || y >= m.height || x < 0 || w < 0 || x+w > m.width {
		return ErrOutOfBounds
	}
	for w > 0 {
		t := m.GetTile(x, y, false)
		px := x % TileWidth
		n := min(w, t.EWidth-px)
		copy(dst[:n*m.bpp], t.From(px, y%TileHeight))
		m.Release(t)
		dst = dst[n*m.bpp:]
		x += n
		w -= n
	}
	return nil
}

// WriteRow stores w pixels from src starting at (x, y).
func (m *Manager) WriteRow(x, y, w int, src []byte) error {
	if y < 0 || y >= m.height || x < 0 || w < 0 || x+w > m.width {
		return ErrOutOfBounds
	}
	for w > 0 {
		t := m.GetTile(x, y, true)
		px := x % TileWidth
		n := min(w, t.EWidth-px)
		copy(t.From(px, y%TileHeight), src[:n*m.bpp])
		m.Release(t)
		src = src[n*m.bpp:]
		x += n
		w -= n
	}
	return nil
}

// Fill sets every pixel to the given value.
func (m *Manager) Fill(pixel []byte) {
	m.FillRect(0, 0, m.width, m.height, pixel)
}

// FillRect sets every pixel of the rectangle, clipped to the buffer.
func (m *Manager) FillRect(x, y, w, h int, pixel []byte) {
	r := image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, m.width, m.height))
	if r.Empty() {
		return
	}
	row := make([]byte, r.Dx()*m.bpp)
	for i := 0; i < len(row); i += m.bpp {
		copy(row[i:i+m.bpp], pixel)
	}
	for yy := r.Min.Y; yy < r.Max.Y; yy++ {
		_ = m.WriteRow(r.Min.X, yy, r.Dx(), row)
	}
}

// ReadRect returns a packed copy of the rectangle, row-major.
func (m *Manager) ReadRect(x, y, w, h int) ([]byte, error) {
	if !m.contains(x, y, w, h) {
		return nil, ErrOutOfBounds
	}
	out := make([]byte, w*h*m.bpp)
	stride := w * m.bpp
	for j := 0; j < h; j++ {
		if err := m.ReadRow(x, y+j, w, out[j*stride:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WriteRect stores packed row-major pixels into the rectangle.
func (m *Manager) WriteRect(x, y, w, h int, src []byte) error {
	if !m.contains(x, y, w, h) {
		return ErrOutOfBounds
	}
	stride := w * m.bpp
	for j := 0; j < h; j++ {
		if err := m.WriteRow(x, y+j, w, src[j*stride:]); err != nil {
			return err
		}
	}
	return nil
}

// contains reports whether the rectangle lies inside the buffer.
func (m *Manager) contains(x, y, w, h int) bool {
	return x >= 0 && y >= 0 && w >= 0 && h >= 0 && x+w <= m.width && y+h <= m.height
}
