package gimp

import (
	"errors"
	"image"
	"slices"
	"testing"

	"github.com/Freedooom/gimp-sub000/tile"
	"github.com/Freedooom/gimp-sub000/undo"
)

func newBuffer(t *testing.T, r image.Rectangle, layout tile.Layout, fill []byte) *Buffer {
	t.Helper()
	m, err := tile.NewManager(r.Dx(), r.Dy(), layout.BytesPerPixel())
	if err != nil {
		t.Fatal(err)
	}
	m.Fill(fill)
	m.SetOffsets(r.Min.X, r.Min.Y)
	return &Buffer{Tiles: m, Layout: layout}
}

// =============================================================================
// Cut
// =============================================================================

func TestCut_WithSelection(t *testing.T) {
	im := newTestImage(t, 8, 8)
	a := addLayer(t, im, image.Rect(0, 0, 8, 8), red)
	im.SelectRect(image.Rect(2, 2, 6, 6))

	buf, isNew, err := im.Cut(a)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Free()
	if !isNew {
		t.Error("cut with a selection should make a new layer")
	}
	if buf.Bounds() != image.Rect(2, 2, 6, 6) || buf.Layout != tile.RGBA {
		t.Errorf("buffer = %v %v, want (2,2)-(6,6) RGBA", buf.Bounds(), buf.Layout)
	}
	p := make([]byte, 4)
	buf.Tiles.ReadPixel(0, 0, p)
	if !slices.Equal(p, []byte{255, 0, 0, 255}) {
		t.Errorf("lifted pixel = %v, want opaque red", p)
	}
	if c := colorAt(t, im, a, 3, 3); c.A != 0 {
		t.Errorf("cut source alpha = %d, want 0", c.A)
	}
	if c := colorAt(t, im, a, 0, 0); c != red {
		t.Errorf("unselected pixel = %v, want red", c)
	}
	if im.UndoLog().UndoName() != undo.GroupEditCut.String() {
		t.Errorf("UndoName() = %q", im.UndoLog().UndoName())
	}

	im.Undo()
	if c := colorAt(t, im, a, 3, 3); c != red {
		t.Errorf("after undo pixel = %v, want red", c)
	}
}

func TestCopy_LeavesSource(t *testing.T) {
	im := newTestImage(t, 8, 8)
	a := addLayer(t, im, image.Rect(0, 0, 8, 8), red)
	im.SelectRect(image.Rect(2, 2, 6, 6))
	levels := im.UndoLog().Levels()

	buf, isNew, err := im.Copy(a)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Free()
	if !isNew || buf.Bounds() != image.Rect(2, 2, 6, 6) {
		t.Errorf("copy = %v, new layer %v", buf.Bounds(), isNew)
	}
	if c := colorAt(t, im, a, 3, 3); c != red {
		t.Errorf("source pixel = %v, want red", c)
	}
	if got := im.UndoLog().Levels(); got != levels {
		t.Errorf("Levels() = %d, want %d", got, levels)
	}
}

func TestCut_NoAlphaFillsBackground(t *testing.T) {
	im := newTestImage(t, 4, 4)
	id, err := im.NewLayer("bg", 4, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	l, _ := im.Layer(id)
	l.Tiles().Fill([]byte{10, 20, 30})
	if err := im.AddLayer(id, 0); err != nil {
		t.Fatal(err)
	}
	im.SelectRect(image.Rect(0, 0, 2, 2))

	buf, _, err := im.Cut(id)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Free()
	if c := colorAt(t, im, id, 1, 1); c != im.Background() {
		t.Errorf("cut pixel = %v, want background %v", c, im.Background())
	}
	if c := colorAt(t, im, id, 3, 3); c.R != 10 || c.G != 20 || c.B != 30 {
		t.Errorf("unselected pixel = %v", c)
	}
}

func TestCut_NoSelection(t *testing.T) {
	im := newTestImage(t, 4, 4)
	id, _ := im.NewLayer("bg", 3, 2, false)
	if err := im.AddLayer(id, 0); err != nil {
		t.Fatal(err)
	}
	levels := im.UndoLog().Levels()

	buf, isNew, err := im.Cut(id)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Free()
	if isNew {
		t.Error("cut without a selection should not make a new layer")
	}
	if buf.Bounds() != image.Rect(0, 0, 3, 2) || buf.Layout != tile.RGBA {
		t.Errorf("buffer = %v %v, want (0,0)-(3,2) RGBA", buf.Bounds(), buf.Layout)
	}
	if im.UndoLog().Levels() != levels {
		t.Error("copying the whole drawable should not record a step")
	}
}

func TestCut_EmptyOverlap(t *testing.T) {
	im := newTestImage(t, 8, 8)
	a := addLayer(t, im, image.Rect(0, 0, 4, 4), red)
	im.SelectRect(image.Rect(6, 6, 8, 8))
	if _, _, err := im.Cut(a); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("Cut error = %v, want ErrEmptyRegion", err)
	}
}

// =============================================================================
// Paste and floating selections
// =============================================================================

func TestPaste_ReplacesDrawable(t *testing.T) {
	im := newTestImage(t, 8, 8)
	id, _ := im.NewLayer("bg", 4, 4, false)
	if err := im.AddLayer(id, 0); err != nil {
		t.Fatal(err)
	}
	buf := newBuffer(t, image.Rect(5, 5, 7, 7), tile.RGBA, []byte{0, 255, 0, 255})
	defer buf.Free()

	if !im.Paste(id, buf, false) {
		t.Fatal("Paste failed")
	}
	l, _ := im.Layer(id)
	if l.Bounds() != image.Rect(5, 5, 7, 7) || l.Layout() != tile.RGBA {
		t.Errorf("layer = %v %v, want (5,5)-(7,7) RGBA", l.Bounds(), l.Layout())
	}
	if c := colorAt(t, im, id, 6, 6); c != green {
		t.Errorf("pasted pixel = %v, want green", c)
	}

	im.Undo()
	if l.Bounds() != image.Rect(0, 0, 4, 4) || l.Layout() != tile.RGB {
		t.Errorf("after undo layer = %v %v", l.Bounds(), l.Layout())
	}
	if !im.LastChanges().Has(undo.AlphaChanged) {
		t.Errorf("LastChanges() = %v, want alpha", im.LastChanges())
	}
}

func TestFloating_AttachAnchor(t *testing.T) {
	im := newTestImage(t, 8, 8)
	a := addLayer(t, im, image.Rect(0, 0, 8, 8), blue)
	buf := newBuffer(t, image.Rect(1, 1, 3, 3), tile.RGBA, []byte{255, 0, 0, 255})
	defer buf.Free()

	if err := im.AnchorFloating(); !errors.Is(err, ErrNoFloatingSelection) {
		t.Errorf("AnchorFloating without one error = %v", err)
	}

	f, err := im.AttachFloating(buf, a)
	if err != nil {
		t.Fatal(err)
	}
	if im.FloatingSelection() != f || im.Layers()[0] != f {
		t.Fatalf("floating selection not on top: %v", im.Layers())
	}
	if fl, _ := im.Layer(f); !fl.IsFloating() || fl.FloatTarget() != a {
		t.Error("layer not marked floating over a")
	}
	if c := colorAt(t, im, a, 1, 1); c != red {
		t.Errorf("target under floating = %v, want red", c)
	}
	if c := colorAt(t, im, a, 0, 0); c != blue {
		t.Errorf("target outside floating = %v, want blue", c)
	}
	if _, err := im.AttachFloating(buf, a); !errors.Is(err, ErrFloatingSelection) {
		t.Errorf("second AttachFloating error = %v", err)
	}

	im.Undo()
	if im.FloatingSelection().IsValid() || !slices.Equal(im.Layers(), []ItemID{a}) {
		t.Errorf("after undo floating = %v, layers = %v", im.FloatingSelection(), im.Layers())
	}
	if c := colorAt(t, im, a, 1, 1); c != blue {
		t.Errorf("after undo target = %v, want blue", c)
	}
	im.Redo()
	if im.FloatingSelection() != f || colorAt(t, im, a, 1, 1) != red {
		t.Error("redo did not restore the floating selection")
	}

	if err := im.AnchorFloating(); err != nil {
		t.Fatal(err)
	}
	if im.FloatingSelection().IsValid() || !slices.Equal(im.Layers(), []ItemID{a}) {
		t.Errorf("after anchor layers = %v", im.Layers())
	}
	if c := colorAt(t, im, a, 1, 1); c != red {
		t.Errorf("anchored pixel = %v, want red", c)
	}

	im.Undo()
	if im.FloatingSelection() != f {
		t.Fatal("undoing the anchor should bring the floating selection back")
	}
	if fl, _ := im.Layer(f); !fl.float.rigid {
		t.Error("restored floating selection should be rigid")
	}
	if c := colorAt(t, im, a, 1, 1); c != red {
		t.Errorf("after anchor undo pixel = %v, want red", c)
	}
	im.Undo()
	if c := colorAt(t, im, a, 1, 1); c != blue {
		t.Errorf("after paste undo pixel = %v, want blue", c)
	}
}

func TestFloating_Translate(t *testing.T) {
	im := newTestImage(t, 8, 8)
	a := addLayer(t, im, image.Rect(0, 0, 8, 8), blue)
	buf := newBuffer(t, image.Rect(0, 0, 2, 2), tile.RGBA, []byte{255, 0, 0, 255})
	defer buf.Free()
	f, err := im.AttachFloating(buf, a)
	if err != nil {
		t.Fatal(err)
	}

	if err := im.TranslateLayer(f, 4, 4); err != nil {
		t.Fatal(err)
	}
	if c := colorAt(t, im, a, 0, 0); c != blue {
		t.Errorf("old position = %v, want blue", c)
	}
	if c := colorAt(t, im, a, 5, 5); c != red {
		t.Errorf("new position = %v, want red", c)
	}

	im.Undo()
	if c := colorAt(t, im, a, 0, 0); c != red {
		t.Errorf("after undo old position = %v, want red", c)
	}
	if c := colorAt(t, im, a, 5, 5); c != blue {
		t.Errorf("after undo new position = %v, want blue", c)
	}

	if err := im.RemoveLayer(f); err != nil {
		t.Fatal(err)
	}
	if im.FloatingSelection().IsValid() || colorAt(t, im, a, 0, 0) != blue {
		t.Error("removing the floating selection should restore its target")
	}
}
