package tile

// Layout describes how the bytes of one pixel are interpreted.
type Layout uint8

const (
	// RGB is 24-bit color without alpha.
	RGB Layout = iota

	// RGBA is 24-bit color followed by an 8-bit alpha channel.
	RGBA

	// Gray is 8-bit grayscale without alpha.
	Gray

	// GrayA is 8-bit grayscale followed by alpha.
	GrayA

	// Indexed is an 8-bit colormap index without alpha.
	Indexed

	// IndexedA is a colormap index followed by alpha.
	IndexedA

	// Mask is a single 8-bit coverage channel (selection masks, layer
	// masks, auxiliary channels). Its only channel behaves as alpha when
	// resampled.
	Mask

	// layoutCount is the number of layouts (for internal use).
	layoutCount
)

// LayoutInfo contains metadata about a pixel layout.
type LayoutInfo struct {
	// BytesPerPixel is the number of bytes per pixel.
	BytesPerPixel int

	// HasAlpha indicates if the layout carries a separate alpha channel.
	HasAlpha bool

	// AlphaIndex is the byte index treated as alpha during resampling,
	// or -1 when every channel is color.
	AlphaIndex int

	// IsIndexed indicates colormap indices, which must never be interpolated.
	IsIndexed bool

	// IsGrayscale indicates a single color channel.
	IsGrayscale bool
}

// layoutInfoTable contains metadata for each layout.
var layoutInfoTable = [layoutCount]LayoutInfo{
	RGB:      {BytesPerPixel: 3, AlphaIndex: -1},
	RGBA:     {BytesPerPixel: 4, HasAlpha: true, AlphaIndex: 3},
	Gray:     {BytesPerPixel: 1, AlphaIndex: -1, IsGrayscale: true},
	GrayA:    {BytesPerPixel: 2, HasAlpha: true, AlphaIndex: 1, IsGrayscale: true},
	Indexed:  {BytesPerPixel: 1, AlphaIndex: -1, IsIndexed: true},
	IndexedA: {BytesPerPixel: 2, HasAlpha: true, AlphaIndex: 1, IsIndexed: true},
	Mask:     {BytesPerPixel: 1, AlphaIndex: 0, IsGrayscale: true},
}

// Info returns the LayoutInfo for this layout.
func (l Layout) Info() LayoutInfo {
	if l >= layoutCount {
		return LayoutInfo{AlphaIndex: -1}
	}
	return layoutInfoTable[l]
}

// BytesPerPixel returns the number of bytes per pixel.
func (l Layout) BytesPerPixel() int {
	return l.Info().BytesPerPixel
}

// HasAlpha returns true if this layout has an alpha channel.
func (l Layout) HasAlpha() bool {
	return l.Info().HasAlpha
}

// AlphaIndex returns the byte index resampled as alpha, or -1.
func (l Layout) AlphaIndex() int {
	return l.Info().AlphaIndex
}

// IsIndexed returns true for colormap layouts.
func (l Layout) IsIndexed() bool {
	return l.Info().IsIndexed
}

// IsGrayscale returns true for single color channel layouts.
func (l Layout) IsGrayscale() bool {
	return l.Info().IsGrayscale
}

// IsValid returns true if the layout is a known layout.
func (l Layout) IsValid() bool {
	return l < layoutCount
}

// WithAlpha returns the layout with an alpha channel added.
// Layouts that already have alpha, and Mask, are returned unchanged.
func (l Layout) WithAlpha() Layout {
	switch l {
	case RGB:
		return RGBA
	case Gray:
		return GrayA
	case Indexed:
		return IndexedA
	default:
		return l
	}
}

// WithoutAlpha returns the layout with its alpha channel removed.
func (l Layout) WithoutAlpha() Layout {
	switch l {
	case RGBA:
		return RGB
	case GrayA:
		return Gray
	case IndexedA:
		return Indexed
	default:
		return l
	}
}

// String returns a string representation of the layout.
func (l Layout) String() string {
	switch l {
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	case Gray:
		return "Gray"
	case GrayA:
		return "GrayA"
	case Indexed:
		return "Indexed"
	case IndexedA:
		return "IndexedA"
	case Mask:
		return "Mask"
	default:
		return "Unknown"
	}
}
