// Command xform loads an image, applies a transform through the undo log
// and writes the flattened result.
//
//	xform -in photo.png -out out.tiff -rotate 30 -scale 1.5 -interp cubic
//	xform -in photo.tif -out out.png -select 10,10,200,120 -rotate 90
//
// With -undo the transform is undone again before saving, which is mostly
// useful for checking that a round trip restores the input.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
	"golang.org/x/text/language"
	"seehuhn.de/go/geom/matrix"

	gimp "github.com/Freedooom/gimp-sub000"
	"github.com/Freedooom/gimp-sub000/transform"
)

func main() {
	var (
		in      = flag.String("in", "", "input image (PNG or TIFF)")
		out     = flag.String("out", "out.png", "output file, format from extension")
		rotate  = flag.Float64("rotate", 0, "rotation in degrees, clockwise")
		scale   = flag.Float64("scale", 1, "uniform scale factor")
		interp  = flag.String("interp", "cubic", "interpolation: none, linear or cubic")
		clip    = flag.Bool("clip", false, "keep the original extent instead of growing")
		sel     = flag.String("select", "", "transform only x,y,w,h")
		undoIt  = flag.Bool("undo", false, "undo the transform before saving")
		levels  = flag.Int("levels", 5, "undo levels")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		gimp.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	mode, err := parseInterp(*interp)
	if err != nil {
		log.Fatal(err)
	}
	src, err := load(*in)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", *in, err)
	}

	b := src.Bounds()
	im, err := gimp.NewImage(b.Dx(), b.Dy(), gimp.BaseRGB,
		gimp.WithUndoLevels(*levels),
		gimp.WithUndoEnabled(false),
		gimp.WithInterpolation(mode))
	if err != nil {
		log.Fatal(err)
	}
	layer, err := im.NewLayerFromImage(filepath.Base(*in), src)
	if err != nil {
		log.Fatal(err)
	}
	if err := im.AddLayer(layer, 0); err != nil {
		log.Fatal(err)
	}

	if *sel != "" {
		r, err := parseRect(*sel)
		if err != nil {
			log.Fatal(err)
		}
		im.SelectRect(r)
	}

	area := b.Sub(b.Min)
	if r, ok := im.SelectionBounds(); ok {
		area = r
	}
	cx := float64(area.Min.X+area.Max.X) / 2
	cy := float64(area.Min.Y+area.Max.Y) / 2
	m := transform.Translate(cx, cy).
		Multiply(transform.FromGeom(matrix.RotateDeg(*rotate))).
		Multiply(transform.FromGeom(matrix.Scale(*scale, *scale))).
		Multiply(transform.Translate(-cx, -cy))

	im.UndoLog().SetEnabled(true)
	tool := gimp.NewTransformTool(m)
	tool.Options.Interpolation = mode
	tool.Options.InterpolationEnabled = mode != transform.InterpNearest
	if *clip {
		tool.Options.Clip = transform.Clip
	}
	if err := tool.Apply(im, layer); err != nil {
		log.Fatalf("Transform failed: %v", err)
	}
	if fs := im.FloatingSelection(); fs.IsValid() {
		if err := im.AnchorFloating(); err != nil {
			log.Fatal(err)
		}
	}

	if *undoIt {
		for im.UndoLog().CanUndo() {
			if !im.Undo() {
				log.Fatal("Undo failed")
			}
		}
	}
	for _, h := range im.UndoHistory(language.English) {
		log.Printf("history: %s", h)
	}

	res, err := im.Composite()
	if err != nil {
		log.Fatal(err)
	}
	if err := save(*out, res); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Saved %s (%dx%d)", *out, res.Bounds().Dx(), res.Bounds().Dy())
}

func parseInterp(s string) (transform.InterpolationMode, error) {
	switch strings.ToLower(s) {
	case "none", "nearest":
		return transform.InterpNearest, nil
	case "linear":
		return transform.InterpBilinear, nil
	case "cubic":
		return transform.InterpBicubic, nil
	}
	return 0, fmt.Errorf("unknown interpolation %q", s)
}

func parseRect(s string) (image.Rectangle, error) {
	var x, y, w, h int
	if _, err := fmt.Sscanf(s, "%d,%d,%d,%d", &x, &y, &w, &h); err != nil {
		return image.Rectangle{}, fmt.Errorf("bad selection %q: %w", s, err)
	}
	return image.Rect(x, y, x+w, y+h), nil
}

func load(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(name)) {
	case ".tif", ".tiff":
		return tiff.Decode(f)
	default:
		return png.Decode(f)
	}
}

func save(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
