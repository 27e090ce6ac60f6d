package tile

import (
	"image"
	"image/color"
	"testing"
)

func TestFromImage_ToImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 7, 9, 10))
	src.SetNRGBA(5, 7, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.SetNRGBA(8, 9, color.NRGBA{R: 200, G: 100, B: 50, A: 128})

	m, err := FromImage(src, RGBA)
	if err != nil {
		t.Fatalf("FromImage() error = %v", err)
	}
	if m.Width() != 4 || m.Height() != 3 {
		t.Fatalf("size = %dx%d, want 4x3", m.Width(), m.Height())
	}
	if x, y := m.Offsets(); x != 5 || y != 7 {
		t.Errorf("Offsets() = (%d, %d), want (5, 7)", x, y)
	}

	out, err := ToImage(m, RGBA, nil)
	if err != nil {
		t.Fatalf("ToImage() error = %v", err)
	}
	if out.Bounds() != src.Bounds() {
		t.Errorf("bounds = %v, want %v", out.Bounds(), src.Bounds())
	}
	if got := out.NRGBAAt(8, 9); got != (color.NRGBA{R: 200, G: 100, B: 50, A: 128}) {
		t.Errorf("pixel (8, 9) = %v", got)
	}
}

func TestFromImage_Layouts(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 77})

	tests := []struct {
		layout Layout
		want   []byte
	}{
		{RGB, []byte{255, 255, 255}},
		{Gray, []byte{255}},
		{GrayA, []byte{255, 77}},
		{Mask, []byte{77}},
	}
	for _, tt := range tests {
		t.Run(tt.layout.String(), func(t *testing.T) {
			m, err := FromImage(src, tt.layout)
			if err != nil {
				t.Fatalf("FromImage() error = %v", err)
			}
			got := make([]byte, m.BPP())
			m.ReadPixel(0, 0, got)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("pixel = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestFromImage_Indexed(t *testing.T) {
	pal := color.Palette{color.Black, color.NRGBA{R: 255, A: 255}}
	src := image.NewPaletted(image.Rect(0, 0, 2, 1), pal)
	src.SetColorIndex(1, 0, 1)

	if _, err := FromImage(image.NewNRGBA(src.Bounds()), Indexed); err != ErrUnsupportedLayout {
		t.Errorf("non-paletted source error = %v, want ErrUnsupportedLayout", err)
	}

	m, err := FromImage(src, Indexed)
	if err != nil {
		t.Fatalf("FromImage() error = %v", err)
	}
	out, err := ToImage(m, Indexed, pal)
	if err != nil {
		t.Fatalf("ToImage() error = %v", err)
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pixel (1, 0) = %v, want red", got)
	}
}

func TestLayout_Info(t *testing.T) {
	tests := []struct {
		layout     Layout
		bpp        int
		alphaIndex int
		hasAlpha   bool
	}{
		{RGB, 3, -1, false},
		{RGBA, 4, 3, true},
		{Gray, 1, -1, false},
		{GrayA, 2, 1, true},
		{Indexed, 1, -1, false},
		{IndexedA, 2, 1, true},
		{Mask, 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.layout.String(), func(t *testing.T) {
			if tt.layout.BytesPerPixel() != tt.bpp {
				t.Errorf("BytesPerPixel() = %d, want %d", tt.layout.BytesPerPixel(), tt.bpp)
			}
			if tt.layout.AlphaIndex() != tt.alphaIndex {
				t.Errorf("AlphaIndex() = %d, want %d", tt.layout.AlphaIndex(), tt.alphaIndex)
			}
			if tt.layout.HasAlpha() != tt.hasAlpha {
				t.Errorf("HasAlpha() = %v, want %v", tt.layout.HasAlpha(), tt.hasAlpha)
			}
		})
	}

	if RGB.WithAlpha() != RGBA || GrayA.WithoutAlpha() != Gray || Mask.WithAlpha() != Mask {
		t.Error("WithAlpha/WithoutAlpha mapping is wrong")
	}
	if Layout(99).IsValid() || Layout(99).String() != "Unknown" {
		t.Error("Layout(99) should be invalid")
	}
}
