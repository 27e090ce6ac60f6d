package transform

import (
	"testing"

	"github.com/Freedooom/gimp-sub000/tile"
)

func TestSurround_Lock(t *testing.T) {
	src := newBuffer(t, 130, 70, tile.GrayA, func(x, y int) []byte {
		return []byte{byte(x), byte(y)}
	})
	bg := []byte{0xaa, 0xbb}

	tests := []struct {
		name     string
		x, y     int
		fastPath bool
	}{
		{"inside first tile", 10, 10, true},
		{"touching tile edge", 60, 60, true},
		{"straddling columns", 62, 10, false},
		{"straddling rows", 10, 62, false},
		{"straddling corner", 63, 63, false},
		{"partly outside left", -2, 5, false},
		{"partly outside bottom", 20, 68, false},
		{"fully outside", 500, 500, false},
		{"edge tile", 124, 66, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSurround(src, 4, 4, bg)
			defer s.Clear()

			data, stride := s.Lock(tt.x, tt.y)
			if fast := src.LockedTiles() == 1; fast != tt.fastPath {
				t.Errorf("fast path = %v, want %v", fast, tt.fastPath)
			}
			for j := 0; j < 4; j++ {
				for i := 0; i < 4; i++ {
					px, py := tt.x+i, tt.y+j
					want := bg
					if px >= 0 && py >= 0 && px < 130 && py < 70 {
						want = []byte{byte(px), byte(py)}
					}
					off := j*stride + i*2
					if data[off] != want[0] || data[off+1] != want[1] {
						t.Errorf("pixel (%d, %d) = %v, want %v", i, j, data[off:off+2], want)
					}
				}
			}
			s.Release()
			if n := src.LockedTiles(); n != 0 {
				t.Errorf("LockedTiles() after Release = %d, want 0", n)
			}
		})
	}
}

func BenchmarkSurround_Lock(b *testing.B) {
	src, _ := tile.NewManager(256, 256, 4)
	s := NewSurround(src, 4, 4, nil)
	defer s.Clear()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Lock(i%250, (i/250)%250)
		s.Release()
	}
}

func BenchmarkTransform(b *testing.B) {
	src, _ := tile.NewManager(256, 256, 4)
	src.Fill([]byte{10, 20, 30, 255})
	m := RotateAbout(0.3, 128, 128)

	for _, mode := range []InterpolationMode{InterpNearest, InterpBilinear, InterpBicubic} {
		b.Run(mode.String(), func(b *testing.B) {
			opts := DefaultOptions()
			opts.Interpolation = mode
			for i := 0; i < b.N; i++ {
				if _, err := Transform(src, tile.RGBA, m, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
