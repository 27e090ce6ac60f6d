package gimp

import (
	"image/color"

	"github.com/Freedooom/gimp-sub000/tile"
	"github.com/Freedooom/gimp-sub000/undo"
)

const qmaskName = "Qmask"

// QuickMask reports whether quick mask mode is on.
func (im *Image) QuickMask() bool { return im.qmask }

// SetQuickMask switches quick mask mode. Turning it on moves the
// selection into a new channel on top of the channel stack; turning it off
// moves that channel back into the selection.
func (im *Image) SetQuickMask(on bool) error {
	if on == im.qmask {
		return nil
	}
	im.log.PushGroupStart(undo.GroupMisc)
	defer im.log.PushGroupEnd()

	sel := im.selectionChannel()
	if on {
		ch := newChannel(qmaskName, sel.tiles.Duplicate(), color.NRGBA{R: 0xff, A: 0x80})
		id := im.items.add(ch)
		if err := im.addItem(id, ItemChannel, 0); err != nil {
			im.items.release(id)
			return err
		}
		im.SelectNone()
	} else if id := im.quickMaskChannel(); id.IsValid() {
		ch, _ := im.Channel(id)
		im.pushMask()
		old, _ := sel.swapTiles(ch.tiles.Duplicate(), tile.Mask)
		old.Free()
		if err := im.removeItem(id, ItemChannel); err != nil {
			return err
		}
	}

	im.pushQMask()
	im.qmask = on
	return nil
}

// quickMaskChannel returns the topmost channel named like the quick mask.
func (im *Image) quickMaskChannel() ItemID {
	for _, id := range im.channels {
		if it := im.items.get(id); it != nil && it.Name() == qmaskName {
			return id
		}
	}
	return NoItem
}
