package gimp

import "fmt"

// ItemID is a generation-checked handle to a layer, channel or vectors
// item. The zero ItemID refers to nothing.
//
// Undo records hold IDs rather than pointers. Once an item is released its
// slot may be reused, but the generation changes, so old IDs resolve to
// nothing instead of to the new occupant.
type ItemID struct {
	Index uint32
	Gen   uint32
}

// NoItem is the zero ItemID.
var NoItem ItemID

// IsValid reports whether id was ever issued.
func (id ItemID) IsValid() bool { return id.Gen != 0 }

// String returns "index.gen", or "none".
func (id ItemID) String() string {
	if !id.IsValid() {
		return "none"
	}
	return fmt.Sprintf("%d.%d", id.Index, id.Gen)
}

// ItemType distinguishes the item variants.
type ItemType uint8

const (
	ItemLayer ItemType = iota
	ItemChannel
	ItemVectors
)

// String returns a string representation of the item type.
func (t ItemType) String() string {
	switch t {
	case ItemLayer:
		return "Layer"
	case ItemChannel:
		return "Channel"
	case ItemVectors:
		return "Vectors"
	default:
		return "Unknown"
	}
}

// Item is implemented by *Layer, *Channel and *Vectors.
type Item interface {
	ID() ItemID
	Name() string
	Type() ItemType

	base() *itemBase
}

// itemBase carries the fields shared by all items.
type itemBase struct {
	id   ItemID
	name string
	typ  ItemType

	// attached is true while the item is part of the image (in a stack,
	// or the selection, or a layer's mask).
	attached bool
}

// ID returns the item's handle.
func (b *itemBase) ID() ItemID { return b.id }

// Name returns the item's name.
func (b *itemBase) Name() string { return b.name }

// Type returns the item variant.
func (b *itemBase) Type() ItemType { return b.typ }

// Attached reports whether the item is part of the image.
func (b *itemBase) Attached() bool { return b.attached }

func (b *itemBase) base() *itemBase { return b }

type slot struct {
	gen  uint32
	item Item
}

// arena owns every item of an image, attached or parked in an undo record.
type arena struct {
	slots []slot
	free  []uint32
}

// add stores it and assigns its ID.
func (a *arena) add(it Item) ItemID {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}
	s := &a.slots[idx]
	s.gen++
	s.item = it
	id := ItemID{Index: idx, Gen: s.gen}
	it.base().id = id
	return id
}

// get returns the item for id, or nil if id is stale or invalid.
func (a *arena) get(id ItemID) Item {
	if !id.IsValid() || int(id.Index) >= len(a.slots) {
		return nil
	}
	s := a.slots[id.Index]
	if s.gen != id.Gen || s.item == nil {
		return nil
	}
	return s.item
}

// release drops the item for id and invalidates id. Pixel storage of
// drawables goes back to the tile pool.
func (a *arena) release(id ItemID) {
	it := a.get(id)
	if it == nil {
		return
	}
	switch v := it.(type) {
	case *Layer:
		v.free()
		if v.mask.IsValid() {
			a.release(v.mask)
		}
	case *Channel:
		v.free()
	}
	s := &a.slots[id.Index]
	s.item = nil
	s.gen++
	a.free = append(a.free, id.Index)
}

// len returns the number of live items.
func (a *arena) len() int {
	return len(a.slots) - len(a.free)
}
