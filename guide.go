package gimp

import (
	"fmt"
	"slices"
)

// Orientation is the direction of a guide line.
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

// String returns a string representation of the orientation.
func (o Orientation) String() string {
	if o == Vertical {
		return "Vertical"
	}
	return "Horizontal"
}

// Guide is a ruler line. Position is a row for horizontal guides and a
// column for vertical ones.
type Guide struct {
	ID          int
	Orientation Orientation
	Position    int
}

// Guides returns the image's guides in creation order.
func (im *Image) Guides() []Guide { return slices.Clone(im.guides) }

func (im *Image) guideIndex(id int) int {
	return slices.IndexFunc(im.guides, func(g Guide) bool { return g.ID == id })
}

// setGuide stores g, replacing the guide with the same ID. A negative
// position removes it.
func (im *Image) setGuide(g Guide) {
	i := im.guideIndex(g.ID)
	switch {
	case g.Position < 0 && i >= 0:
		im.guides = slices.Delete(im.guides, i, i+1)
	case g.Position < 0:
	case i >= 0:
		im.guides[i] = g
	default:
		im.guides = append(im.guides, g)
	}
}

func (im *Image) guideLimit(o Orientation) int {
	if o == Vertical {
		return im.width
	}
	return im.height
}

// AddGuide creates a guide and returns its ID.
func (im *Image) AddGuide(o Orientation, pos int) (int, error) {
	if pos < 0 || pos > im.guideLimit(o) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGuide, pos)
	}
	im.nextGuide++
	g := Guide{ID: im.nextGuide, Orientation: o, Position: pos}
	im.pushGuide(Guide{ID: g.ID, Orientation: o, Position: -1})
	im.setGuide(g)
	return g.ID, nil
}

// MoveGuide changes a guide's position.
func (im *Image) MoveGuide(id, pos int) error {
	i := im.guideIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrGuideNotFound, id)
	}
	g := im.guides[i]
	if pos < 0 || pos > im.guideLimit(g.Orientation) {
		return fmt.Errorf("%w: %d", ErrInvalidGuide, pos)
	}
	im.pushGuide(g)
	g.Position = pos
	im.setGuide(g)
	return nil
}

// RemoveGuide deletes a guide.
func (im *Image) RemoveGuide(id int) error {
	i := im.guideIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrGuideNotFound, id)
	}
	g := im.guides[i]
	im.pushGuide(g)
	g.Position = -1
	im.setGuide(g)
	return nil
}

// remapGuides records every guide and moves it with fn. Guides mapped off
// the canvas are removed.
func (im *Image) remapGuides(fn func(g Guide) Guide) {
	for _, g := range slices.Clone(im.guides) {
		im.pushGuide(g)
		ng := fn(g)
		if ng.Position < 0 || ng.Position > im.guideLimit(ng.Orientation) {
			ng.Position = -1
		}
		im.setGuide(ng)
	}
}
