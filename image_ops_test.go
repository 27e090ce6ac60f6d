package gimp

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"

	"github.com/Freedooom/gimp-sub000/tile"
	"github.com/Freedooom/gimp-sub000/transform"
	"github.com/Freedooom/gimp-sub000/undo"
)

func addPoint(t *testing.T, im *Image, p vec.Vec2) ItemID {
	t.Helper()
	id := im.NewVectors("path", (&path.Data{}).MoveTo(p))
	if err := im.AddVectors(id, 0); err != nil {
		t.Fatal(err)
	}
	return id
}

func firstPoint(t *testing.T, im *Image, id ItemID) vec.Vec2 {
	t.Helper()
	v, err := im.Vectors(id)
	if err != nil {
		t.Fatal(err)
	}
	return v.Strokes().Coords[0]
}

func guidePosition(t *testing.T, im *Image, id int) (Orientation, int) {
	t.Helper()
	i := im.guideIndex(id)
	if i < 0 {
		t.Fatalf("guide %d missing", id)
	}
	g := im.Guides()[i]
	return g.Orientation, g.Position
}

// =============================================================================
// Resize
// =============================================================================

func TestResize(t *testing.T) {
	im := newTestImage(t, 4, 4)
	a := addLayer(t, im, image.Rect(0, 0, 4, 4), red)
	im.SelectAll()
	g, err := im.AddGuide(Vertical, 2)
	if err != nil {
		t.Fatal(err)
	}
	p := addPoint(t, im, vec.Vec2{X: 1, Y: 1})

	if err := im.Resize(6, 5, 1, 1); err != nil {
		t.Fatal(err)
	}
	if im.Width() != 6 || im.Height() != 5 {
		t.Errorf("size = %dx%d, want 6x5", im.Width(), im.Height())
	}
	l, _ := im.Layer(a)
	if x, y := l.Offsets(); x != 1 || y != 1 {
		t.Errorf("layer offsets = %d, %d, want 1, 1", x, y)
	}
	for _, tt := range []struct {
		x, y int
		want byte
	}{
		{0, 0, 0}, {1, 1, 255}, {4, 4, 255}, {5, 4, 0},
	} {
		if v := im.SelectionValue(tt.x, tt.y); v != tt.want {
			t.Errorf("selection(%d, %d) = %d, want %d", tt.x, tt.y, v, tt.want)
		}
	}
	if _, pos := guidePosition(t, im, g); pos != 3 {
		t.Errorf("guide position = %d, want 3", pos)
	}
	if q := firstPoint(t, im, p); q != (vec.Vec2{X: 2, Y: 2}) {
		t.Errorf("path point = %v, want (2, 2)", q)
	}

	im.Undo()
	if im.Width() != 4 || im.Height() != 4 {
		t.Errorf("after undo size = %dx%d", im.Width(), im.Height())
	}
	if x, y := l.Offsets(); x != 0 || y != 0 {
		t.Errorf("after undo offsets = %d, %d", x, y)
	}
	if im.SelectionValue(0, 0) != 255 {
		t.Error("after undo selection not restored")
	}
	if _, pos := guidePosition(t, im, g); pos != 2 {
		t.Errorf("after undo guide position = %d, want 2", pos)
	}
	ch := im.LastChanges()
	if !ch.Has(undo.SizeChanged) || !ch.Has(undo.MaskChanged) {
		t.Errorf("LastChanges() = %v, want size and mask", ch)
	}

	if err := im.Resize(0, 1, 0, 0); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Resize(0, 1) error = %v", err)
	}
}

// =============================================================================
// Scale
// =============================================================================

func TestScale(t *testing.T) {
	im := newTestImage(t, 2, 2, WithInterpolation(transform.InterpNearest))
	a := addLayer(t, im, image.Rect(0, 0, 2, 2), red)
	l, _ := im.Layer(a)
	l.Tiles().WritePixel(1, 0, []byte{0, 255, 0, 255})
	l.Tiles().WritePixel(0, 1, []byte{0, 0, 255, 255})
	p := addPoint(t, im, vec.Vec2{X: 1, Y: 0.5})
	g, _ := im.AddGuide(Horizontal, 1)

	if err := im.Scale(4, 4); err != nil {
		t.Fatal(err)
	}
	if l.Bounds() != image.Rect(0, 0, 4, 4) {
		t.Fatalf("layer bounds = %v, want (0,0)-(4,4)", l.Bounds())
	}
	want := map[image.Point]string{
		{0, 0}: "red", {1, 1}: "red", {2, 0}: "green", {3, 1}: "green", {0, 2}: "blue", {1, 3}: "blue",
	}
	colors := map[string][4]byte{"red": {255, 0, 0, 255}, "green": {0, 255, 0, 255}, "blue": {0, 0, 255, 255}}
	px := make([]byte, 4)
	for at, name := range want {
		l.Tiles().ReadPixel(at.X, at.Y, px)
		if [4]byte(px) != colors[name] {
			t.Errorf("pixel %v = %v, want %s", at, px, name)
		}
	}
	if sel := im.selectionChannel(); sel.Width() != 4 || sel.Height() != 4 {
		t.Errorf("selection = %dx%d, want 4x4", sel.Width(), sel.Height())
	}
	if q := firstPoint(t, im, p); q != (vec.Vec2{X: 2, Y: 1}) {
		t.Errorf("path point = %v, want (2, 1)", q)
	}
	if _, pos := guidePosition(t, im, g); pos != 2 {
		t.Errorf("guide position = %d, want 2", pos)
	}

	im.Undo()
	if l.Bounds() != image.Rect(0, 0, 2, 2) || im.Width() != 2 {
		t.Errorf("after undo layer = %v, width = %d", l.Bounds(), im.Width())
	}
	l.Tiles().ReadPixel(1, 0, px)
	if [4]byte(px) != colors["green"] {
		t.Errorf("after undo pixel (1, 0) = %v, want green", px)
	}
}

// =============================================================================
// Flip and Rotate
// =============================================================================

func TestFlip(t *testing.T) {
	im := newTestImage(t, 3, 2)
	a := addLayer(t, im, image.Rect(0, 0, 1, 1), red)
	im.SelectRect(image.Rect(0, 0, 1, 1))
	g, _ := im.AddGuide(Vertical, 1)
	p := addPoint(t, im, vec.Vec2{X: 0.5, Y: 0.5})

	if err := im.Flip(Horizontal); err != nil {
		t.Fatal(err)
	}
	l, _ := im.Layer(a)
	if x, y := l.Offsets(); x != 2 || y != 0 {
		t.Errorf("layer offsets = %d, %d, want 2, 0", x, y)
	}
	if im.SelectionValue(2, 0) != 255 || im.SelectionValue(0, 0) != 0 {
		t.Error("selection not mirrored")
	}
	if _, pos := guidePosition(t, im, g); pos != 2 {
		t.Errorf("guide position = %d, want 2", pos)
	}
	if q := firstPoint(t, im, p); q != (vec.Vec2{X: 2.5, Y: 0.5}) {
		t.Errorf("path point = %v, want (2.5, 0.5)", q)
	}

	if err := im.Flip(Vertical); err != nil {
		t.Fatal(err)
	}
	if x, y := l.Offsets(); x != 2 || y != 1 {
		t.Errorf("after vertical flip offsets = %d, %d, want 2, 1", x, y)
	}

	im.Undo()
	im.Undo()
	if x, y := l.Offsets(); x != 0 || y != 0 {
		t.Errorf("after undo offsets = %d, %d", x, y)
	}
	if _, pos := guidePosition(t, im, g); pos != 1 {
		t.Errorf("after undo guide position = %d, want 1", pos)
	}
}

func TestRotate(t *testing.T) {
	tests := []struct {
		quarters  int
		w, h      int
		offset    image.Point
		guide     Orientation
		guidePos  int
		pathPoint vec.Vec2
	}{
		{1, 2, 3, image.Pt(1, 0), Vertical, 1, vec.Vec2{X: 1.5, Y: 0.5}},
		{2, 3, 2, image.Pt(2, 1), Horizontal, 1, vec.Vec2{X: 2.5, Y: 1.5}},
		{-1, 2, 3, image.Pt(0, 2), Vertical, 1, vec.Vec2{X: 0.5, Y: 2.5}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("quarters=%d", tt.quarters), func(t *testing.T) {
			im := newTestImage(t, 3, 2)
			a := addLayer(t, im, image.Rect(0, 0, 1, 1), red)
			g, _ := im.AddGuide(Horizontal, 1)
			p := addPoint(t, im, vec.Vec2{X: 0.5, Y: 0.5})

			if err := im.Rotate(tt.quarters); err != nil {
				t.Fatal(err)
			}
			if im.Width() != tt.w || im.Height() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", im.Width(), im.Height(), tt.w, tt.h)
			}
			l, _ := im.Layer(a)
			if x, y := l.Offsets(); x != tt.offset.X || y != tt.offset.Y {
				t.Errorf("offsets = %d, %d, want %v", x, y, tt.offset)
			}
			if o, pos := guidePosition(t, im, g); o != tt.guide || pos != tt.guidePos {
				t.Errorf("guide = %v %d, want %v %d", o, pos, tt.guide, tt.guidePos)
			}
			if q := firstPoint(t, im, p); q != tt.pathPoint {
				t.Errorf("path point = %v, want %v", q, tt.pathPoint)
			}

			im.Undo()
			if im.Width() != 3 || im.Height() != 2 {
				t.Errorf("after undo size = %dx%d", im.Width(), im.Height())
			}
			if x, y := l.Offsets(); x != 0 || y != 0 {
				t.Errorf("after undo offsets = %d, %d", x, y)
			}
		})
	}
}

func TestImageOps_RefusedWhileFloating(t *testing.T) {
	im := newTestImage(t, 4, 4)
	a := addLayer(t, im, image.Rect(0, 0, 4, 4), red)
	buf := newBuffer(t, image.Rect(0, 0, 1, 1), tile.RGBA, []byte{0, 0, 255, 255})
	defer buf.Free()
	if _, err := im.AttachFloating(buf, a); err != nil {
		t.Fatal(err)
	}

	ops := map[string]func() error{
		"Resize":  func() error { return im.Resize(5, 5, 0, 0) },
		"Scale":   func() error { return im.Scale(2, 2) },
		"Flip":    func() error { return im.Flip(Vertical) },
		"Rotate":  func() error { return im.Rotate(1) },
		"Convert": func() error { return im.Convert(BaseGray) },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrFloatingSelection) {
			t.Errorf("%s error = %v, want ErrFloatingSelection", name, err)
		}
	}
}

// =============================================================================
// Convert
// =============================================================================

func TestConvert(t *testing.T) {
	im := newTestImage(t, 2, 2)
	id, _ := im.NewLayer("bg", 2, 2, false)
	l, _ := im.Layer(id)
	l.Tiles().Fill([]byte{255, 0, 0})
	if err := im.AddLayer(id, 0); err != nil {
		t.Fatal(err)
	}

	if err := im.Convert(BaseIndexed); !errors.Is(err, ErrUnsupportedConversion) {
		t.Errorf("Convert(Indexed) error = %v", err)
	}
	if err := im.Convert(BaseGray); err != nil {
		t.Fatal(err)
	}
	if im.Base() != BaseGray || l.Layout() != tile.Gray {
		t.Fatalf("after convert base = %v, layout = %v", im.Base(), l.Layout())
	}
	p := []byte{0}
	l.Tiles().ReadPixel(0, 0, p)
	if p[0] != tile.Luminance(255, 0, 0) {
		t.Errorf("gray value = %d, want %d", p[0], tile.Luminance(255, 0, 0))
	}

	im.Undo()
	if im.Base() != BaseRGB || l.Layout() != tile.RGB {
		t.Errorf("after undo base = %v, layout = %v", im.Base(), l.Layout())
	}
	if c := colorAt(t, im, id, 1, 1); c != red {
		t.Errorf("after undo pixel = %v, want red", c)
	}
	if !im.LastChanges().Has(undo.ModeChanged) {
		t.Errorf("LastChanges() = %v, want mode", im.LastChanges())
	}
}
