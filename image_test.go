package gimp

import (
	"errors"
	"image"
	"image/color"
	"slices"
	"testing"

	"github.com/Freedooom/gimp-sub000/undo"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

// newTestImage returns an RGB image with room for plenty of undo steps.
func newTestImage(t *testing.T, w, h int, opts ...Option) *Image {
	t.Helper()
	im, err := NewImage(w, h, BaseRGB, append([]Option{WithUndoLevels(100)}, opts...)...)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	return im
}

// addLayer creates an RGBA layer filled with c covering r and puts it on
// top of the stack.
func addLayer(t *testing.T, im *Image, r image.Rectangle, c color.NRGBA) ItemID {
	t.Helper()
	id, err := im.NewLayer("layer", r.Dx(), r.Dy(), true)
	if err != nil {
		t.Fatalf("NewLayer: %v", err)
	}
	l, _ := im.Layer(id)
	l.Tiles().Fill(pixelBytes(l.Layout(), c, nil))
	l.Tiles().SetOffsets(r.Min.X, r.Min.Y)
	if err := im.AddLayer(id, 0); err != nil {
		t.Fatalf("AddLayer: %v", err)
	}
	return id
}

// colorAt reads the drawable pixel at an image-space position.
func colorAt(t *testing.T, im *Image, id ItemID, x, y int) color.NRGBA {
	t.Helper()
	d, err := im.Drawable(id)
	if err != nil {
		t.Fatalf("Drawable(%v): %v", id, err)
	}
	ox, oy := d.Offsets()
	p := make([]byte, d.Layout().BytesPerPixel())
	if !d.Tiles().ReadPixel(x-ox, y-oy, p) {
		t.Fatalf("pixel (%d, %d) outside %v", x, y, d.Bounds())
	}
	return toNRGBA(d.Layout(), p, im.Colormap())
}

// =============================================================================
// Image
// =============================================================================

func TestNewImage(t *testing.T) {
	if _, err := NewImage(0, 5, BaseRGB); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("NewImage(0, 5) error = %v, want ErrInvalidDimensions", err)
	}

	im, err := NewImage(4, 3, BaseGray, WithResolution(300, 150))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	if im.Width() != 4 || im.Height() != 3 || im.Base() != BaseGray {
		t.Errorf("image = %dx%d %v, want 4x3 Gray", im.Width(), im.Height(), im.Base())
	}
	if x, y := im.Resolution(); x != 300 || y != 150 {
		t.Errorf("Resolution() = %g, %g, want 300, 150", x, y)
	}
	if !im.Selection().IsValid() || !im.SelectionIsEmpty() {
		t.Error("new image should have an empty selection mask")
	}
	if n := im.ItemCount(); n != 1 {
		t.Errorf("ItemCount() = %d, want 1", n)
	}
	if im.IsDirty() || len(im.Layers()) != 0 {
		t.Error("new image should be clean and empty")
	}
}

func TestBaseType_Layout(t *testing.T) {
	tests := []struct {
		base  BaseType
		alpha bool
		want  string
	}{
		{BaseRGB, false, "RGB"},
		{BaseRGB, true, "RGBA"},
		{BaseGray, true, "GrayA"},
		{BaseIndexed, false, "Indexed"},
	}
	for _, tt := range tests {
		if got := tt.base.Layout(tt.alpha).String(); got != tt.want {
			t.Errorf("%v.Layout(%v) = %s, want %s", tt.base, tt.alpha, got, tt.want)
		}
	}
}

// =============================================================================
// Item stacks
// =============================================================================

func TestLayerStack_UndoRedo(t *testing.T) {
	im := newTestImage(t, 8, 8)
	a := addLayer(t, im, image.Rect(0, 0, 8, 8), red)
	b := addLayer(t, im, image.Rect(0, 0, 8, 8), blue)

	if got := im.Layers(); !slices.Equal(got, []ItemID{b, a}) {
		t.Fatalf("Layers() = %v, want [b a]", got)
	}
	if im.ActiveLayer() != b {
		t.Errorf("ActiveLayer() = %v, want b", im.ActiveLayer())
	}
	if err := im.RepositionLayer(b, 1); err != nil {
		t.Fatal(err)
	}
	if err := im.RemoveLayer(a); err != nil {
		t.Fatal(err)
	}

	steps := [][]ItemID{
		{b},
		{a, b},
		{b, a},
		{a},
		{},
	}
	for i := 1; i < len(steps); i++ {
		if !im.Undo() {
			t.Fatalf("Undo %d failed", i)
		}
		if got := im.Layers(); !slices.Equal(got, steps[i]) {
			t.Errorf("after undo %d Layers() = %v, want %v", i, got, steps[i])
		}
	}
	if im.IsDirty() {
		t.Error("image dirty after undoing everything")
	}
	for i := len(steps) - 2; i >= 0; i-- {
		if !im.Redo() {
			t.Fatalf("Redo failed")
		}
		if got := im.Layers(); !slices.Equal(got, steps[i]) {
			t.Errorf("after redo Layers() = %v, want %v", got, steps[i])
		}
	}
}

func TestLayerStack_RaiseLower(t *testing.T) {
	im := newTestImage(t, 4, 4)
	a := addLayer(t, im, image.Rect(0, 0, 4, 4), red)
	b := addLayer(t, im, image.Rect(0, 0, 4, 4), blue)

	if err := im.RaiseLayer(a); err != nil {
		t.Fatal(err)
	}
	if got := im.Layers(); !slices.Equal(got, []ItemID{a, b}) {
		t.Errorf("after raise Layers() = %v, want [a b]", got)
	}
	levels := im.UndoLog().Levels()
	if err := im.RaiseLayer(a); err != nil {
		t.Fatal(err)
	}
	if im.UndoLog().Levels() != levels {
		t.Error("raising the top layer should not record a step")
	}
	if err := im.LowerLayer(a); err != nil {
		t.Fatal(err)
	}
	if got := im.Layers(); !slices.Equal(got, []ItemID{b, a}) {
		t.Errorf("after lower Layers() = %v, want [b a]", got)
	}
}

func TestLayer_WrongBase(t *testing.T) {
	im := newTestImage(t, 4, 4)
	gray, err := NewImage(4, 4, BaseGray)
	if err != nil {
		t.Fatal(err)
	}
	id, _ := gray.NewLayer("g", 4, 4, false)
	l, _ := gray.Layer(id)

	own := im.items.add(newLayer("g", l.Tiles().Duplicate(), l.Layout()))
	if err := im.AddLayer(own, 0); !errors.Is(err, ErrUnsupportedConversion) {
		t.Errorf("AddLayer(gray into RGB) error = %v, want ErrUnsupportedConversion", err)
	}
	if _, err := im.Layer(im.Selection()); !errors.Is(err, ErrWrongItemType) {
		t.Errorf("Layer(selection) error = %v, want ErrWrongItemType", err)
	}
}

func TestRemovedItems_FreedWithRecords(t *testing.T) {
	im := newTestImage(t, 4, 4)
	a := addLayer(t, im, image.Rect(0, 0, 4, 4), red)
	if err := im.RemoveLayer(a); err != nil {
		t.Fatal(err)
	}
	if _, err := im.Layer(a); err != nil {
		t.Fatalf("removed layer should be parked in its record: %v", err)
	}
	im.UndoLog().Free()
	if _, err := im.Layer(a); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Layer after Free error = %v, want ErrItemNotFound", err)
	}

	c := addLayer(t, im, image.Rect(0, 0, 4, 4), blue)
	im.Undo()
	if _, err := im.Layer(c); err != nil {
		t.Fatalf("undone layer should stay on the redo stack: %v", err)
	}
	im.SelectAll() // discards the redo stack
	if _, err := im.Layer(c); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Layer after redo discard error = %v, want ErrItemNotFound", err)
	}
	if n := im.ItemCount(); n != 1 {
		t.Errorf("ItemCount() = %d, want 1", n)
	}
}

func TestUndo_StaleItemSkipped(t *testing.T) {
	im := newTestImage(t, 6, 6)
	a := addLayer(t, im, image.Rect(0, 0, 6, 6), red)
	if err := NewPaintTool(2, blue).Stroke(im, a, pt(2, 2), pt(4, 2)); err != nil {
		t.Fatal(err)
	}

	im.UndoLog().SetEnabled(false)
	if err := im.RemoveLayer(a); err != nil {
		t.Fatal(err)
	}
	im.UndoLog().SetEnabled(true)
	if _, err := im.Layer(a); err == nil {
		t.Fatal("layer removed without undo should be freed")
	}

	if !im.Undo() {
		t.Error("undoing a paint step on a freed layer should succeed")
	}
	if !im.Undo() {
		t.Error("undoing the add of a freed layer should succeed")
	}
	if len(im.Layers()) != 0 {
		t.Errorf("Layers() = %v, want none", im.Layers())
	}
}

func TestItemArena(t *testing.T) {
	var a arena
	l := newLayer("x", nil, 0)
	id := a.add(l)
	if a.get(id) != l || l.ID() != id {
		t.Fatal("get should return the added item")
	}
	a.release(id)
	if a.get(id) != nil {
		t.Error("released ID should not resolve")
	}
	id2 := a.add(newLayer("y", nil, 0))
	if id2.Index != id.Index || id2.Gen == id.Gen {
		t.Errorf("reused slot ID = %v, old %v", id2, id)
	}
	if a.get(id) != nil {
		t.Error("stale ID resolves to the slot's new occupant")
	}
	if a.len() != 1 {
		t.Errorf("len() = %d, want 1", a.len())
	}
	if NoItem.String() != "none" || (ItemID{Index: 1, Gen: 2}).String() != "1.2" {
		t.Error("ItemID.String mismatch")
	}
}

// =============================================================================
// Image properties
// =============================================================================

func TestResolutionAndUnit_Undo(t *testing.T) {
	im := newTestImage(t, 4, 4)
	if err := im.SetResolution(0, 1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("SetResolution(0, 1) error = %v", err)
	}
	if err := im.SetResolution(300, 300); err != nil {
		t.Fatal(err)
	}
	im.SetUnit(UnitMillimeter)

	im.Undo()
	if im.Unit() != UnitInch || !im.LastChanges().Has(undo.UnitChanged) {
		t.Errorf("after undo unit = %v, changes = %v", im.Unit(), im.LastChanges())
	}
	im.Undo()
	if x, _ := im.Resolution(); x != 72 || !im.LastChanges().Has(undo.ResolutionChanged) {
		t.Errorf("after undo xres = %g, changes = %v", x, im.LastChanges())
	}
}

func TestCantUndo(t *testing.T) {
	var msgs []string
	im := newTestImage(t, 4, 4, WithMessageHandler(func(s string) { msgs = append(msgs, s) }))
	im.CantUndo("Magic")
	if !im.IsDirty() {
		t.Error("CantUndo should dirty the image")
	}
	if !im.Undo() {
		t.Error("Undo of a not-undoable step should report success")
	}
	if !slices.Equal(msgs, []string{"Can't undo Magic"}) {
		t.Errorf("messages = %q", msgs)
	}
}

func TestUndoEvents(t *testing.T) {
	type event struct {
		ev   undo.Event
		name string
	}
	var got []event
	im := newTestImage(t, 4, 4, WithEventHandler(func(ev undo.Event, name string) {
		got = append(got, event{ev, name})
	}))
	addLayer(t, im, image.Rect(0, 0, 4, 4), red)
	im.SelectAll()
	im.Undo()

	want := []event{
		{undo.EventPushed, "New Layer"},
		{undo.EventPushed, "Selection Mask"},
		{undo.EventPopped, "Selection Mask"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}
