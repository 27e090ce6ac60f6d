package gimp

import (
	"fmt"

	"github.com/Freedooom/gimp-sub000/transform"
	"github.com/Freedooom/gimp-sub000/undo"
)

// TransformTool applies a matrix to the working region of a drawable.
//
// Apply copies the region, resamples it, then cuts the source and pastes
// the result back, all as one undo step. The tool's own state (matrix, handle
// parameters and the lifted pixels) is recorded too, so undoing the step
// also returns the tool to where it was.
type TransformTool struct {
	// Matrix maps source to destination, or the reverse for
	// transform.Corrective.
	Matrix transform.Matrix

	// Params holds tool-specific handle values, such as an angle and a
	// centre for rotation or the four corners for perspective.
	Params [8]float64

	// Original is the region lifted by the last Apply. The tool owns it.
	Original *Buffer

	// Options configures the resampling pass.
	Options transform.Options

	// TransformVectors also maps the active path.
	TransformVectors bool
}

// NewTransformTool returns a tool for m with default options.
func NewTransformTool(m transform.Matrix) *TransformTool {
	return &TransformTool{Matrix: m, Options: transform.DefaultOptions()}
}

// Apply transforms the working region of drawable id. The result replaces
// the drawable when nothing is selected, and becomes a floating selection
// otherwise. The region is resampled before anything is modified, so a
// failed Apply leaves the image, the undo stack and the tool untouched.
func (t *TransformTool) Apply(im *Image, id ItemID) error {
	if _, err := im.Drawable(id); err != nil {
		return err
	}
	if im.floating.IsValid() && im.floating != id {
		return ErrFloatingSelection
	}
	inv, ok := t.Matrix.Invert()
	if !ok {
		return transform.ErrSingularMatrix
	}

	buf, isNewLayer, err := im.Copy(id)
	if err != nil {
		return err
	}
	out, err := transform.Transform(buf.Tiles, buf.Layout, t.Matrix, t.Options)
	if err != nil {
		buf.Free()
		return fmt.Errorf("gimp: transform: %w", err)
	}
	res := &Buffer{Tiles: out, Layout: buf.Layout}
	defer res.Free()

	im.log.PushGroupStart(undo.GroupTransformCore)
	defer im.log.PushGroupEnd()

	// The record takes over the previous Original.
	im.log.Push(&transformToolRecord{
		Header:   undo.NewHeader(undo.KindTransformTool, t.stateSize(), false),
		tool:     t,
		matrix:   t.Matrix,
		params:   t.Params,
		original: t.Original,
	})
	t.Original = buf

	if isNewLayer {
		if err := im.clearSelected(id, buf.Bounds()); err != nil {
			return err
		}
	}
	if !im.Paste(id, res, isNewLayer) {
		return fmt.Errorf("gimp: transform: paste into %v failed", id)
	}

	if t.TransformVectors && im.activeVectors.IsValid() {
		fwd := t.Matrix
		if t.Options.Direction == transform.Corrective {
			fwd = inv
		}
		if err := im.TransformVectors(im.activeVectors, fwd); err != nil {
			return err
		}
	}
	Logger().Debug("gimp: transform applied", "item", id, "new_layer", isNewLayer,
		"bounds", out.Bounds())
	return nil
}

func (t *TransformTool) stateSize() int64 {
	size := int64(smallRecord + 8*len(t.Params) + 8*9)
	if t.Original != nil && t.Original.Tiles != nil {
		size += t.Original.Tiles.MemSize()
	}
	return size
}

// transformToolRecord keeps the tool state from before an Apply.
type transformToolRecord struct {
	undo.Header
	tool     *TransformTool
	matrix   transform.Matrix
	params   [8]float64
	original *Buffer
}

func (r *transformToolRecord) Restore(state undo.State, changes *undo.ChangeSet) bool {
	t := r.tool
	t.Matrix, r.matrix = r.matrix, t.Matrix
	t.Params, r.params = r.params, t.Params
	t.Original, r.original = r.original, t.Original
	return true
}

func (r *transformToolRecord) Dispose(undo.Side) {
	if r.original != nil {
		r.original.Free()
	}
}
