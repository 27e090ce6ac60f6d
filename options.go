package gimp

import (
	"image/color"
	"runtime"

	"github.com/Freedooom/gimp-sub000/transform"
	"github.com/Freedooom/gimp-sub000/undo"
)

// Option configures an Image during creation.
//
// Example:
//
//	img, err := gimp.NewImage(640, 480, gimp.BaseRGB,
//	    gimp.WithUndoLevels(20),
//	    gimp.WithResolution(300, 300))
type Option func(*options)

// options holds optional configuration for Image creation.
type options struct {
	undo         undo.Config
	undoDisabled bool
	xres, yres   float64
	unit         Unit
	fg, bg       color.NRGBA
	interp       transform.InterpolationMode
	onMessage    func(string)
	onEvent      func(undo.Event, string)
	previewSize  int
	workers      int
}

// defaultOptions returns the default image options.
func defaultOptions() options {
	return options{
		undo:        undo.DefaultConfig(),
		xres:        72,
		yres:        72,
		unit:        UnitInch,
		fg:          color.NRGBA{A: 0xff},
		bg:          color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		interp:      transform.InterpBicubic,
		previewSize: 32,
		workers:     runtime.GOMAXPROCS(0),
	}
}

// WithUndoLevels sets the maximum number of undo steps kept. Zero turns
// undo recording off while still tracking the dirty state.
func WithUndoLevels(n int) Option {
	return func(o *options) {
		o.undo.LevelsOfUndo = n
	}
}

// WithUndoEnabled switches undo recording on or off from the start.
func WithUndoEnabled(on bool) Option {
	return func(o *options) {
		o.undoDisabled = !on
	}
}

// WithResolution sets the image resolution in pixels per inch.
// Non-positive values are ignored.
func WithResolution(x, y float64) Option {
	return func(o *options) {
		if x > 0 && y > 0 {
			o.xres, o.yres = x, y
		}
	}
}

// WithUnit sets the display unit.
func WithUnit(u Unit) Option {
	return func(o *options) {
		o.unit = u
	}
}

// WithForeground sets the foreground colour used by painting.
func WithForeground(c color.Color) Option {
	return func(o *options) {
		o.fg = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
}

// WithBackground sets the background colour used when clearing or
// growing drawables without alpha.
func WithBackground(c color.Color) Option {
	return func(o *options) {
		o.bg = color.NRGBAModel.Convert(c).(color.NRGBA)
	}
}

// WithInterpolation sets the resampling kernel for scaling and transforms.
func WithInterpolation(mode transform.InterpolationMode) Option {
	return func(o *options) {
		o.interp = mode
	}
}

// WithMessageHandler sets the function that receives user-facing
// messages such as "Can't undo Crop".
func WithMessageHandler(fn func(string)) Option {
	return func(o *options) {
		o.onMessage = fn
	}
}

// WithEventHandler sets the function notified of undo log events.
func WithEventHandler(fn func(ev undo.Event, name string)) Option {
	return func(o *options) {
		o.onEvent = fn
	}
}

// WithPreviewCacheSize sets how many rendered previews are kept.
func WithPreviewCacheSize(n int) Option {
	return func(o *options) {
		o.previewSize = n
	}
}

// WithWorkers sets how many goroutines Composite uses. Values below 2
// flatten on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
