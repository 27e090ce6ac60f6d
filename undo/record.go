package undo

import "strings"

// State is the direction of a pop.
type State uint8

const (
	// Undo moves a unit from the undo stack to the redo stack.
	Undo State = iota

	// Redo moves a unit from the redo stack back to the undo stack.
	Redo
)

// String returns a string representation of the state.
func (s State) String() string {
	if s == Redo {
		return "Redo"
	}
	return "Undo"
}

// Side names the stack a record sat on when it was disposed.
//
// A record on the undo stack describes a change that is currently applied
// to the image; one on the redo stack describes a change that is not.
// Records that own detached items free them only on the side where the
// item is no longer part of the image.
type Side uint8

const (
	UndoSide Side = iota
	RedoSide
)

// ChangeSet collects image-wide changes made while restoring a unit.
// The log applies it once, after the whole unit has been restored.
type ChangeSet uint8

const (
	ModeChanged ChangeSet = 1 << iota
	SizeChanged
	ResolutionChanged
	UnitChanged
	MaskChanged
	QMaskChanged
	AlphaChanged
)

var changeNames = []struct {
	bit  ChangeSet
	name string
}{
	{ModeChanged, "mode"},
	{SizeChanged, "size"},
	{ResolutionChanged, "resolution"},
	{UnitChanged, "unit"},
	{MaskChanged, "mask"},
	{QMaskChanged, "qmask"},
	{AlphaChanged, "alpha"},
}

// Set adds flags to the set.
func (c *ChangeSet) Set(flags ChangeSet) { *c |= flags }

// Has reports whether all of flags are set.
func (c ChangeSet) Has(flags ChangeSet) bool { return c&flags == flags }

// IsEmpty reports whether no flag is set.
func (c ChangeSet) IsEmpty() bool { return c == 0 }

// String lists the set flags, e.g. "size|mask".
func (c ChangeSet) String() string {
	if c == 0 {
		return "none"
	}
	var parts []string
	for _, n := range changeNames {
		if c&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Record is one restorable mutation on an undo stack.
//
// The set of implementations is closed: a record type must embed Header,
// which supplies Kind, Size and DirtiesImage and the unexported method
// that seals the interface.
type Record interface {
	// Kind returns the variant of the record.
	Kind() Kind

	// Size returns the number of bytes the record accounts for.
	Size() int64

	// DirtiesImage reports whether the change affects the dirty counter.
	DirtiesImage() bool

	// Restore swaps the recorded state with the live state. It returns
	// false if the state could not be restored. Image-wide consequences
	// are added to changes instead of being applied directly.
	Restore(state State, changes *ChangeSet) bool

	// Dispose releases whatever the record owns. side is the stack the
	// record was on.
	Dispose(side Side)

	header() *Header
}

// Header carries the fields shared by every record.
type Header struct {
	kind    Kind
	size    int64
	dirties bool
}

// NewHeader returns a header for a record of the given kind.
func NewHeader(kind Kind, size int64, dirtiesImage bool) Header {
	return Header{kind: kind, size: size, dirties: dirtiesImage}
}

// Kind returns the record kind.
func (h *Header) Kind() Kind { return h.kind }

// Size returns the accounted size in bytes.
func (h *Header) Size() int64 { return h.size }

// DirtiesImage reports whether the record changes the dirty counter.
func (h *Header) DirtiesImage() bool { return h.dirties }

func (h *Header) header() *Header { return h }
