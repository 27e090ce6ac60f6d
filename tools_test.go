package gimp

import (
	"errors"
	"image"
	"testing"

	"seehuhn.de/go/geom/vec"

	"github.com/Freedooom/gimp-sub000/transform"
	"github.com/Freedooom/gimp-sub000/undo"
)

func pt(x, y float64) vec.Vec2 { return vec.Vec2{X: x, Y: y} }

// =============================================================================
// Transform tool
// =============================================================================

func TestTransformTool_WholeLayer(t *testing.T) {
	im := newTestImage(t, 8, 8)
	a := addLayer(t, im, image.Rect(0, 0, 2, 2), red)

	tool := NewTransformTool(transform.Translate(3, 1))
	tool.Options.Interpolation = transform.InterpNearest
	if err := tool.Apply(im, a); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	l, _ := im.Layer(a)
	if l.Bounds() != image.Rect(3, 1, 5, 3) {
		t.Errorf("layer bounds = %v, want (3,1)-(5,3)", l.Bounds())
	}
	if c := colorAt(t, im, a, 4, 2); c != red {
		t.Errorf("pixel (4, 2) = %v, want red", c)
	}
	if tool.Original == nil || tool.Original.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("Original = %v", tool.Original)
	}
	if got := im.UndoLog().UndoName(); got != undo.GroupTransformCore.String() {
		t.Errorf("UndoName() = %q", got)
	}

	if !im.Undo() {
		t.Fatal("Undo failed")
	}
	if l.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("after undo bounds = %v", l.Bounds())
	}
	if tool.Original != nil {
		t.Error("undo should restore the previous Original")
	}

	if !im.Redo() {
		t.Fatal("Redo failed")
	}
	if l.Bounds() != image.Rect(3, 1, 5, 3) || tool.Original == nil {
		t.Errorf("after redo bounds = %v, original %v", l.Bounds(), tool.Original)
	}
}

func TestTransformTool_Selection(t *testing.T) {
	im := newTestImage(t, 8, 8)
	a := addLayer(t, im, image.Rect(0, 0, 4, 4), red)
	im.SelectRect(image.Rect(0, 0, 2, 2))

	tool := NewTransformTool(transform.Translate(2, 2))
	if err := tool.Apply(im, a); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	fs := im.FloatingSelection()
	if !fs.IsValid() {
		t.Fatal("no floating selection after transforming a selection")
	}
	f, _ := im.Layer(fs)
	if f.Bounds() != image.Rect(2, 2, 4, 4) || f.FloatTarget() != a {
		t.Errorf("floating bounds = %v, target %v", f.Bounds(), f.FloatTarget())
	}
	if c := colorAt(t, im, a, 0, 0); c.A != 0 {
		t.Errorf("source alpha at (0, 0) = %d, want 0", c.A)
	}
	if err := tool.Apply(im, a); err != ErrFloatingSelection {
		t.Errorf("Apply on the target while floating error = %v", err)
	}

	im.Undo()
	if im.FloatingSelection().IsValid() {
		t.Error("undo left the floating selection")
	}
	if c := colorAt(t, im, a, 0, 0); c != red {
		t.Errorf("after undo pixel (0, 0) = %v, want red", c)
	}
}

func TestTransformTool_FailureLeavesImage(t *testing.T) {
	tests := []struct {
		name string
		m    transform.Matrix
		want error
	}{
		{"singular", transform.Scale(0, 0), transform.ErrSingularMatrix},
		{"unbounded", transform.Matrix{1, 0, 0, 0, 1, 0, -0.5, 0, 1}, transform.ErrUnbounded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im := newTestImage(t, 8, 8)
			a := addLayer(t, im, image.Rect(0, 0, 4, 4), red)
			im.SelectRect(image.Rect(0, 0, 2, 2))
			levels := im.UndoLog().Levels()
			name := im.UndoLog().UndoName()

			tool := NewTransformTool(tt.m)
			err := tool.Apply(im, a)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Apply error = %v, want %v", err, tt.want)
			}
			if c := colorAt(t, im, a, 0, 0); c != red {
				t.Errorf("pixel (0, 0) = %v, want red", c)
			}
			if got := im.UndoLog().Levels(); got != levels {
				t.Errorf("Levels() = %d, want %d", got, levels)
			}
			if got := im.UndoLog().UndoName(); got != name {
				t.Errorf("UndoName() = %q, want %q", got, name)
			}
			if tool.Original != nil {
				t.Error("failed Apply replaced Original")
			}
			if im.FloatingSelection().IsValid() {
				t.Error("failed Apply created a floating selection")
			}
		})
	}
}

func TestTransformTool_Vectors(t *testing.T) {
	im := newTestImage(t, 8, 8)
	a := addLayer(t, im, image.Rect(0, 0, 2, 2), red)
	v := addPoint(t, im, pt(1, 1))

	tool := NewTransformTool(transform.Translate(3, 1))
	tool.TransformVectors = true
	if err := tool.Apply(im, a); err != nil {
		t.Fatal(err)
	}
	if got := firstPoint(t, im, v); got != pt(4, 2) {
		t.Errorf("point = %v, want (4, 2)", got)
	}
	im.Undo()
	if got := firstPoint(t, im, v); got != pt(1, 1) {
		t.Errorf("after undo point = %v, want (1, 1)", got)
	}
}

// =============================================================================
// Paint tool
// =============================================================================

func newPaintImage(t *testing.T) (*Image, ItemID) {
	t.Helper()
	im := newTestImage(t, 6, 6)
	id, err := im.NewLayer("bg", 6, 6, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := im.AddLayer(id, 0); err != nil {
		t.Fatal(err)
	}
	return im, id
}

func TestPaintTool(t *testing.T) {
	im, id := newPaintImage(t)
	white := im.Background()
	tool := NewPaintTool(2, red)

	if err := tool.StrokeTo(im, id, pt(1, 1)); err != nil {
		t.Fatal(err)
	}
	if c := colorAt(t, im, id, 0, 0); c != red {
		t.Errorf("dab pixel (0, 0) = %v, want red", c)
	}
	if err := tool.StrokeTo(im, id, pt(4, 1)); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x, y int
		want bool
	}{
		{2, 0, true},
		{4, 1, true},
		{5, 1, false},
		{4, 3, false},
	}
	for _, tt := range tests {
		c := colorAt(t, im, id, tt.x, tt.y)
		if (c == red) != tt.want {
			t.Errorf("pixel (%d, %d) = %v, painted want %v", tt.x, tt.y, c, tt.want)
		}
	}
	if !tool.HasLast || tool.Last != pt(4, 1) {
		t.Errorf("Last = %v, %v", tool.Last, tool.HasLast)
	}
	if got := im.UndoLog().UndoName(); got != undo.GroupPaintCore.String() {
		t.Errorf("UndoName() = %q", got)
	}

	im.Undo()
	if c := colorAt(t, im, id, 4, 1); c != white {
		t.Errorf("after undo pixel (4, 1) = %v", c)
	}
	if tool.Last != pt(1, 1) {
		t.Errorf("after undo Last = %v", tool.Last)
	}
	im.Undo()
	if c := colorAt(t, im, id, 0, 0); c != white || tool.HasLast {
		t.Errorf("after second undo pixel = %v, HasLast %v", c, tool.HasLast)
	}
}

func TestPaintTool_Selection(t *testing.T) {
	im, id := newPaintImage(t)
	im.SelectRect(image.Rect(0, 0, 3, 6))
	tool := NewPaintTool(2, red)
	if err := tool.Stroke(im, id, pt(1, 4), pt(5, 4)); err != nil {
		t.Fatal(err)
	}
	if c := colorAt(t, im, id, 1, 4); c != red {
		t.Errorf("selected pixel = %v, want red", c)
	}
	if c := colorAt(t, im, id, 4, 4); c != im.Background() {
		t.Errorf("unselected pixel = %v, want background", c)
	}
}
