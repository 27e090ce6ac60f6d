package gimp

import (
	"fmt"
	"image/color"

	"github.com/Freedooom/gimp-sub000/tile"
)

// NewChannel creates a detached canvas-sized channel filled with value.
func (im *Image) NewChannel(name string, c color.NRGBA, value byte) (ItemID, error) {
	m, err := tile.NewManager(im.width, im.height, 1)
	if err != nil {
		return NoItem, err
	}
	if value != 0 {
		m.Fill([]byte{value})
	}
	return im.items.add(newChannel(name, m, c)), nil
}

// AddChannel inserts a detached channel into the channel stack at pos.
func (im *Image) AddChannel(id ItemID, pos int) error {
	c, err := im.Channel(id)
	if err != nil {
		return err
	}
	if id == im.selection {
		return fmt.Errorf("%w: the selection mask", ErrItemAttached)
	}
	if c.Width() != im.width || c.Height() != im.height {
		return fmt.Errorf("%w: channel %dx%d in %dx%d image", ErrInvalidDimensions,
			c.Width(), c.Height(), im.width, im.height)
	}
	return im.addItem(id, ItemChannel, pos)
}

// RemoveChannel takes a channel out of the stack.
func (im *Image) RemoveChannel(id ItemID) error {
	return im.removeItem(id, ItemChannel)
}

// RepositionChannel moves a channel to pos in the stack.
func (im *Image) RepositionChannel(id ItemID, pos int) error {
	return im.repositionItem(id, ItemChannel, pos)
}

// FillChannel sets every value of a channel, layer mask or the selection.
func (im *Image) FillChannel(id ItemID, value byte) error {
	c, err := im.Channel(id)
	if err != nil {
		return err
	}
	m, err := tile.NewManager(c.Width(), c.Height(), 1)
	if err != nil {
		return err
	}
	m.SetOffsets(c.Offsets())
	if value != 0 {
		m.Fill([]byte{value})
	}
	im.replaceTiles(id, &c.Drawable, m, tile.Mask)
	return nil
}
