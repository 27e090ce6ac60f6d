package tile

import (
	"bytes"
	"errors"
	"testing"
)

// =============================================================================
// Manager Construction
// =============================================================================

func TestNewManager(t *testing.T) {
	tests := []struct {
		name           string
		w, h, bpp      int
		wantErr        error
		tilesX, tilesY int
	}{
		{"single tile", 10, 10, 4, nil, 1, 1},
		{"exact tiles", 128, 64, 1, nil, 2, 1},
		{"edge tiles", 130, 65, 3, nil, 3, 2},
		{"zero width", 0, 10, 4, ErrInvalidDimensions, 0, 0},
		{"negative height", 10, -1, 4, ErrInvalidDimensions, 0, 0},
		{"zero bpp", 10, 10, 0, ErrInvalidBPP, 0, 0},
		{"bpp too large", 10, 10, 5, ErrInvalidBPP, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager(tt.w, tt.h, tt.bpp)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewManager() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if m.TilesX() != tt.tilesX || m.TilesY() != tt.tilesY {
				t.Errorf("tile grid = %dx%d, want %dx%d", m.TilesX(), m.TilesY(), tt.tilesX, tt.tilesY)
			}
			if m.MemSize() != int64(tt.w*tt.h*tt.bpp) {
				t.Errorf("MemSize() = %d, want %d", m.MemSize(), tt.w*tt.h*tt.bpp)
			}
		})
	}
}

func TestManager_GetTileBounds(t *testing.T) {
	m := mustManager(t, 100, 70, 2)

	if tl := m.GetTile(-1, 0, false); tl != nil {
		t.Error("GetTile(-1, 0) should be nil")
	}
	if tl := m.GetTile(100, 0, false); tl != nil {
		t.Error("GetTile(100, 0) should be nil")
	}

	tl := m.GetTile(99, 69, false)
	if tl == nil {
		t.Fatal("GetTile(99, 69) returned nil")
	}
	if tl.EWidth != 36 || tl.EHeight != 6 {
		t.Errorf("edge tile = %dx%d, want 36x6", tl.EWidth, tl.EHeight)
	}
	if m.LockedTiles() != 1 {
		t.Errorf("LockedTiles() = %d, want 1", m.LockedTiles())
	}
	m.Release(tl)
	if m.LockedTiles() != 0 {
		t.Errorf("LockedTiles() after release = %d, want 0", m.LockedTiles())
	}
}

func TestManager_PixelRoundTrip(t *testing.T) {
	m := mustManager(t, 130, 130, 4)

	points := [][2]int{{0, 0}, {63, 63}, {64, 64}, {129, 0}, {0, 129}, {129, 129}}
	for i, p := range points {
		px := []byte{byte(i), byte(i + 1), byte(i + 2), 255}
		if !m.WritePixel(p[0], p[1], px) {
			t.Fatalf("WritePixel(%d, %d) failed", p[0], p[1])
		}
	}
	for i, p := range points {
		got := make([]byte, 4)
		if !m.ReadPixel(p[0], p[1], got) {
			t.Fatalf("ReadPixel(%d, %d) failed", p[0], p[1])
		}
		want := []byte{byte(i), byte(i + 1), byte(i + 2), 255}
		if !bytes.Equal(got, want) {
			t.Errorf("pixel (%d, %d) = %v, want %v", p[0], p[1], got, want)
		}
	}
	if m.LockedTiles() != 0 {
		t.Errorf("LockedTiles() = %d, want 0", m.LockedTiles())
	}
}

func TestManager_RowsAcrossTiles(t *testing.T) {
	m := mustManager(t, 200, 3, 1)
	row := make([]byte, 150)
	for i := range row {
		row[i] = byte(i)
	}
	if err := m.WriteRow(25, 1, 150, row); err != nil {
		t.Fatalf("WriteRow() error = %v", err)
	}

	got := make([]byte, 150)
	if err := m.ReadRow(25, 1, 150, got); err != nil {
		t.Fatalf("ReadRow() error = %v", err)
	}
	if !bytes.Equal(got, row) {
		t.Error("ReadRow() did not return the written row")
	}

	if err := m.ReadRow(100, 1, 101, got); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("ReadRow() past the edge error = %v, want ErrOutOfBounds", err)
	}
}

func TestManager_FillRectClips(t *testing.T) {
	m := mustManager(t, 10, 10, 1)
	m.FillRect(-5, -5, 8, 8, []byte{7})

	px := make([]byte, 1)
	m.ReadPixel(2, 2, px)
	if px[0] != 7 {
		t.Errorf("inside pixel = %d, want 7", px[0])
	}
	m.ReadPixel(3, 3, px)
	if px[0] != 0 {
		t.Errorf("outside pixel = %d, want 0", px[0])
	}
}

// =============================================================================
// Copy-on-write
// =============================================================================

func TestManager_DuplicateIsolation(t *testing.T) {
	m := mustManager(t, 80, 80, 1)
	m.Fill([]byte{7})

	d := m.Duplicate()
	tl := d.GetTile(0, 0, false)
	if !tl.Shared() {
		t.Error("duplicated tile should be shared before the first write")
	}
	d.Release(tl)

	d.WritePixel(0, 0, []byte{9})

	px := make([]byte, 1)
	m.ReadPixel(0, 0, px)
	if px[0] != 7 {
		t.Errorf("original pixel = %d after write to duplicate, want 7", px[0])
	}
	d.ReadPixel(0, 0, px)
	if px[0] != 9 {
		t.Errorf("duplicate pixel = %d, want 9", px[0])
	}

	// The untouched tile stays shared.
	tl = m.GetTile(70, 70, false)
	if !tl.Shared() {
		t.Error("untouched tile should still be shared")
	}
	m.Release(tl)

	m.Free()
	d.ReadPixel(70, 70, px)
	if px[0] != 7 {
		t.Errorf("duplicate pixel after freeing original = %d, want 7", px[0])
	}
}

func TestManager_DirtyTracking(t *testing.T) {
	m := mustManager(t, 200, 200, 1)
	m.ReadPixel(10, 10, make([]byte, 1))
	if !m.Dirty().IsEmpty() {
		t.Error("read access should not mark tiles dirty")
	}

	m.WritePixel(70, 130, []byte{1})
	if !m.Dirty().IsDirty(1, 2) {
		t.Error("tile (1, 2) should be dirty")
	}
	if m.Dirty().Count() != 1 {
		t.Errorf("dirty count = %d, want 1", m.Dirty().Count())
	}
}

func mustManager(t *testing.T, w, h, bpp int) *Manager {
	t.Helper()
	m, err := NewManager(w, h, bpp)
	if err != nil {
		t.Fatalf("NewManager(%d, %d, %d) error = %v", w, h, bpp, err)
	}
	return m
}
