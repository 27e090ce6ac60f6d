package gimp

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/Freedooom/gimp-sub000/undo"
)

// ParasiteFlags control how a parasite is stored.
type ParasiteFlags uint8

const (
	// ParasitePersistent parasites are saved with the image; changing
	// them dirties it.
	ParasitePersistent ParasiteFlags = 1 << iota

	// ParasiteUndoable parasites are recorded on the undo log.
	ParasiteUndoable
)

// Parasite is a named blob of data attached to an image.
type Parasite struct {
	Name  string
	Flags ParasiteFlags
	Data  []byte
}

// Is reports whether all of flags are set.
func (p Parasite) Is(flags ParasiteFlags) bool { return p.Flags&flags == flags }

// Equal reports whether two parasites have the same name, flags and data.
func (p Parasite) Equal(q Parasite) bool {
	return p.Name == q.Name && p.Flags == q.Flags && bytes.Equal(p.Data, q.Data)
}

// AttachParasite adds p, replacing any parasite of the same name.
func (im *Image) AttachParasite(p Parasite) error {
	if p.Name == "" {
		return ErrInvalidParasite
	}
	p.Data = bytes.Clone(p.Data)
	if old, ok := im.parasites[p.Name]; ok && old.Equal(p) {
		return nil
	}
	im.changeParasite(undo.KindParasiteAttach, p.Name, p.Flags)
	im.parasites[p.Name] = p
	return nil
}

// DetachParasite removes the named parasite.
func (im *Image) DetachParasite(name string) error {
	p, ok := im.parasites[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrParasiteNotFound, name)
	}
	im.changeParasite(undo.KindParasiteRemove, name, p.Flags)
	delete(im.parasites, name)
	return nil
}

// changeParasite records a parasite change before it happens.
func (im *Image) changeParasite(kind undo.Kind, name string, flags ParasiteFlags) {
	persistent := flags&ParasitePersistent != 0
	if flags&ParasiteUndoable != 0 {
		im.pushParasite(kind, name, persistent)
		return
	}
	if persistent {
		im.Dirty()
	}
}

// Parasite returns the named parasite.
func (im *Image) Parasite(name string) (Parasite, bool) {
	p, ok := im.parasites[name]
	if ok {
		p.Data = bytes.Clone(p.Data)
	}
	return p, ok
}

// ParasiteNames returns the names of all parasites, sorted.
func (im *Image) ParasiteNames() []string {
	return slices.Sorted(maps.Keys(im.parasites))
}
