package gimp

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Freedooom/gimp-sub000/undo"
)

// UndoHistory describes the undo steps, newest first, as "name (size)"
// with the byte count formatted for tag.
func (im *Image) UndoHistory(tag language.Tag) []string {
	return history(im.log, undo.Undo, tag)
}

// RedoHistory describes the redo steps, next first.
func (im *Image) RedoHistory(tag language.Tag) []string {
	return history(im.log, undo.Redo, tag)
}

func history(l *undo.Log, state undo.State, tag language.Tag) []string {
	p := message.NewPrinter(tag)
	var out []string
	for u := range l.Units(state) {
		out = append(out, p.Sprintf("%s (%d bytes)", u.Name, u.Size))
	}
	return out
}
