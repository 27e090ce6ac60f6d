// Package gimp provides a tiled raster document model with a grouped
// undo/redo history.
//
// # Overview
//
// An Image is a fixed canvas holding a stack of layers, a stack of
// auxiliary channels, a stack of paths, a selection mask, guides and
// parasites. Pixels live in tile managers (package tile), so copies made
// for undo share unchanged tiles with the live image.
//
// Every mutating method records itself on the image's undo log (package
// undo). Multi-step operations such as Scale or a transform tool
// application are recorded as one group and undo as a single step.
//
// # Quick Start
//
//	img, _ := gimp.NewImage(640, 480, gimp.BaseRGB)
//	id, _ := img.NewLayerFromImage("Background", src)
//	img.AddLayer(id, 0)
//
//	img.SelectRect(image.Rect(100, 100, 300, 200))
//	tool := gimp.NewTransformTool(transform.RotateAbout(0.3, 200, 150))
//	tool.Apply(img, id)
//	img.AnchorFloating()
//
//	img.Undo() // back to before the anchor
//
// # Items
//
// Layers, channels and paths are addressed by ItemID handles. Removing an
// item parks it in an undo record; once the record is discarded the item
// is freed and its ID stops resolving. Records whose item is gone are
// skipped when popped.
//
// # Floating Selections
//
// Pasting a cut region creates a floating selection: a layer composited
// onto its target drawable (rigid), which can be lifted off again
// (relaxed) to move or transform it. AnchorFloating merges it for good.
//
// # Coordinate System
//
// Image space has its origin at the top-left pixel corner, with y
// pointing down. Drawable offsets, guides and paths use image space.
package gimp
