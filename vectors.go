package gimp

import (
	"math"
	"slices"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/Freedooom/gimp-sub000/transform"
)

// Vectors is a named path in image coordinates.
type Vectors struct {
	itemBase

	// strokes is replaced, never edited in place, so undo records can
	// share it.
	strokes *path.Data
}

// Strokes returns a copy of the path.
func (v *Vectors) Strokes() *path.Data { return clonePath(v.strokes) }

// Bounds returns the box around every point of the path, control points
// included. ok is false for an empty path.
func (v *Vectors) Bounds() (box rect.Rect, ok bool) {
	if len(v.strokes.Coords) == 0 {
		return rect.Rect{}, false
	}
	box = rect.Rect{LLx: math.Inf(1), LLy: math.Inf(1), URx: math.Inf(-1), URy: math.Inf(-1)}
	for _, p := range v.strokes.Coords {
		box.LLx, box.URx = min(box.LLx, p.X), max(box.URx, p.X)
		box.LLy, box.URy = min(box.LLy, p.Y), max(box.URy, p.Y)
	}
	return box, true
}

func clonePath(p *path.Data) *path.Data {
	if p == nil {
		return &path.Data{}
	}
	return &path.Data{Cmds: slices.Clone(p.Cmds), Coords: slices.Clone(p.Coords)}
}

// NewVectors creates a detached path. Use AddVectors to put it in the
// image.
func (im *Image) NewVectors(name string, p *path.Data) ItemID {
	v := &Vectors{
		itemBase: itemBase{name: name, typ: ItemVectors},
		strokes:  clonePath(p),
	}
	return im.items.add(v)
}

// AddVectors inserts a detached path into the path stack at pos.
func (im *Image) AddVectors(id ItemID, pos int) error {
	return im.addItem(id, ItemVectors, pos)
}

// RemoveVectors takes a path out of the stack.
func (im *Image) RemoveVectors(id ItemID) error {
	return im.removeItem(id, ItemVectors)
}

// RepositionVectors moves a path to pos in the stack.
func (im *Image) RepositionVectors(id ItemID, pos int) error {
	return im.repositionItem(id, ItemVectors, pos)
}

// SetStrokes replaces a path's strokes.
func (im *Image) SetStrokes(id ItemID, p *path.Data) error {
	v, err := im.Vectors(id)
	if err != nil {
		return err
	}
	im.pushVectorsMod(id, v)
	v.strokes = clonePath(p)
	return nil
}

// TransformVectors maps every point of a path through m. Points sent to
// infinity by a perspective matrix are left where they are.
func (im *Image) TransformVectors(id ItemID, m transform.Matrix) error {
	v, err := im.Vectors(id)
	if err != nil {
		return err
	}
	im.pushVectorsMod(id, v)
	v.strokes = mapPath(v.strokes, func(p vec.Vec2) vec.Vec2 {
		if x, y, ok := m.Project(p.X, p.Y); ok {
			return vec.Vec2{X: x, Y: y}
		}
		return p
	})
	return nil
}

// mapPath returns a copy of p with fn applied to every coordinate.
func mapPath(p *path.Data, fn func(vec.Vec2) vec.Vec2) *path.Data {
	out := clonePath(p)
	for i, c := range out.Coords {
		out.Coords[i] = fn(c)
	}
	return out
}
