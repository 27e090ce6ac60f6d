package undo

import "iter"

// UnrecoverablyDirty is the dirty count given to a document whose clean
// state could only have been reached through a redo stack that has just
// been discarded.
const UnrecoverablyDirty = 10000

// Event is a notification sent to the document.
type Event uint8

const (
	// EventPushed reports a new top-level unit on the undo stack.
	EventPushed Event = iota

	// EventPopped reports a unit moved to the redo stack.
	EventPopped

	// EventRedo reports a unit moved back to the undo stack.
	EventRedo

	// EventExpired reports the oldest unit being evicted.
	EventExpired

	// EventFree reports that both stacks were emptied.
	EventFree
)

// String returns a string representation of the event.
func (e Event) String() string {
	switch e {
	case EventPushed:
		return "Pushed"
	case EventPopped:
		return "Popped"
	case EventRedo:
		return "Redo"
	case EventExpired:
		return "Expired"
	case EventFree:
		return "Free"
	default:
		return "Unknown"
	}
}

// Document is the image a Log records changes for.
type Document interface {
	// Dirty increments the dirty counter and returns the new value.
	Dirty() int

	// Clean decrements the dirty counter and returns the new value.
	Clean() int

	// DirtyCount returns the dirty counter. Zero means unchanged since
	// the last save; negative means the saved state lies on the redo
	// stack.
	DirtyCount() int

	// SetDirtyCount overwrites the dirty counter.
	SetDirtyCount(n int)

	// ApplyChanges reacts to the image-wide changes of one pop.
	ApplyChanges(changes ChangeSet)

	// UndoEvent is called for every log event with the affected unit's
	// name (empty for EventFree).
	UndoEvent(ev Event, name string)
}

// Config holds the log settings.
type Config struct {
	// LevelsOfUndo is the maximum number of top-level units kept on the
	// undo stack. Zero disables recording.
	LevelsOfUndo int
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{LevelsOfUndo: 5}
}

// entry is one element of a stack: a record, or a group marker when rec
// is nil.
type entry struct {
	rec   Record
	size  int64
	group GroupType
}

func (e entry) marker() bool { return e.rec == nil }

// Log is the undo/redo history of one document.
//
// Both stacks keep their top at the end of the slice. A group is a run of
// records between two markers carrying the group type. Only the outermost
// PushGroupStart/PushGroupEnd pair emits markers; nested pairs just move
// the depth counter.
//
// Log is not safe for concurrent use.
type Log struct {
	doc Document

	undo []entry
	redo []entry

	bytes        int64
	levels       int
	levelsOfUndo int

	groupCount   int
	pushingGroup GroupType

	// refused is set when the outermost group start could not make room.
	// Everything pushed until the matching end is dropped.
	refused bool

	enabled bool
}

// NewLog creates an empty, enabled log for doc.
func NewLog(doc Document, cfg Config) *Log {
	return &Log{
		doc:          doc,
		levelsOfUndo: max(cfg.LevelsOfUndo, 0),
		enabled:      true,
	}
}

// Enabled reports whether the log records changes.
func (l *Log) Enabled() bool { return l.enabled }

// SetEnabled switches recording on or off. It is rejected while a group
// is open.
func (l *Log) SetEnabled(on bool) bool {
	if l.groupCount > 0 {
		slogger().Error("undo: cannot toggle recording inside a group", "group", l.pushingGroup)
		return false
	}
	l.enabled = on
	return true
}

// LevelsOfUndo returns the configured maximum number of levels.
func (l *Log) LevelsOfUndo() int { return l.levelsOfUndo }

// SetLevels changes the maximum number of levels. Units beyond the new
// limit are evicted from the bottom of the undo stack straight away.
func (l *Log) SetLevels(n int) {
	l.levelsOfUndo = max(n, 0)
	if l.groupCount > 0 {
		return
	}
	for l.levels > l.levelsOfUndo && len(l.undo) > 0 {
		l.removeBottom()
	}
}

// Bytes returns the total size of all records on both stacks.
func (l *Log) Bytes() int64 { return l.bytes }

// Levels returns the number of top-level units on the undo stack.
func (l *Log) Levels() int { return l.levels }

// GroupDepth returns the current group nesting depth.
func (l *Log) GroupDepth() int { return l.groupCount }

// PushingGroup returns the type of the open group, or GroupNone.
func (l *Log) PushingGroup() GroupType { return l.pushingGroup }

// CanUndo reports whether the undo stack holds a unit.
func (l *Log) CanUndo() bool { return len(l.undo) > 0 }

// CanRedo reports whether the redo stack holds a unit.
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }

// PushGroupStart opens a group. Nested calls only increase the depth and
// return true unless the outermost start was refused.
func (l *Log) PushGroupStart(t GroupType) bool {
	if t == GroupNone || t >= groupCount {
		slogger().Error("undo: invalid group type", "type", t)
		return false
	}
	if !l.enabled {
		return false
	}

	l.groupCount++
	if l.groupCount > 1 {
		return !l.refused
	}

	l.discardRedo(false)
	if !l.freeUpSpace() {
		l.refused = true
		slogger().Warn("undo: group refused", "type", t)
		return false
	}

	l.pushingGroup = t
	l.undo = append(l.undo, entry{group: t})
	l.levels++
	return true
}

// PushGroupEnd closes a group. Only the outermost end emits the closing
// marker and notifies the document.
func (l *Log) PushGroupEnd() bool {
	if !l.enabled {
		return false
	}
	if l.groupCount == 0 {
		slogger().Error("undo: group end without start")
		return false
	}

	l.groupCount--
	if l.groupCount > 0 {
		return !l.refused
	}

	if l.refused {
		l.refused = false
		return false
	}
	t := l.pushingGroup
	l.pushingGroup = GroupNone
	l.undo = append(l.undo, entry{group: t})
	l.doc.UndoEvent(EventPushed, t.String())
	return true
}

// Push records rec. If rec dirties the image the document is marked dirty
// first, whether or not the push succeeds. A false result means the edit
// is simply not undoable; rec has then already been disposed.
func (l *Log) Push(rec Record) bool {
	if rec == nil || rec.header() == nil {
		panic("undo: push of nil record")
	}

	wasRecoverable := l.doc.DirtyCount() < 0
	if rec.DirtiesImage() {
		l.doc.Dirty()
	}

	if !l.enabled || l.refused {
		rec.Dispose(UndoSide)
		return false
	}
	if l.groupCount == 0 && !l.freeUpSpace() {
		slogger().Debug("undo: push refused", "kind", rec.Kind())
		rec.Dispose(UndoSide)
		return false
	}
	l.discardRedo(wasRecoverable)

	size := rec.Size()
	l.bytes += size
	l.undo = append(l.undo, entry{rec: rec, size: size})

	if l.groupCount == 0 {
		l.levels++
		l.doc.UndoEvent(EventPushed, rec.Kind().String())
	}
	return true
}

// Undo pops one unit from the undo stack.
func (l *Log) Undo() bool { return l.Pop(Undo) }

// Redo pops one unit from the redo stack.
func (l *Log) Redo() bool { return l.Pop(Redo) }

// Pop moves one top-level unit, a single record or a whole group, from the
// source stack to the other stack, restoring each record on the way. It
// returns true when a unit was moved and every restore succeeded. The
// collected ChangeSet is applied once, whatever the outcome.
func (l *Log) Pop(state State) bool {
	if l.groupCount > 0 {
		slogger().Error("undo: pop while a group is open",
			"group", l.pushingGroup, "depth", l.groupCount)
		return false
	}

	src, dst := &l.undo, &l.redo
	delta := -1
	if state == Redo {
		src, dst = &l.redo, &l.undo
		delta = 1
	}
	if len(*src) == 0 {
		return false
	}

	var changes ChangeSet
	var name string
	ok := true
	inGroup := false

	for len(*src) > 0 {
		e := (*src)[len(*src)-1]
		*src = (*src)[:len(*src)-1]

		if e.marker() {
			inGroup = !inGroup
			if inGroup {
				l.levels += delta
				name = e.group.String()
			}
		} else {
			if !e.rec.Restore(state, &changes) {
				slogger().Warn("undo: restore failed", "kind", e.rec.Kind(), "state", state)
				ok = false
			}
			if e.rec.DirtiesImage() {
				if state == Undo {
					l.doc.Clean()
				} else {
					l.doc.Dirty()
				}
			}
			if !inGroup {
				l.levels += delta
				name = e.rec.Kind().String()
			}
		}
		*dst = append(*dst, e)

		if !inGroup {
			break
		}
	}

	if !changes.IsEmpty() {
		l.doc.ApplyChanges(changes)
	}
	if ok {
		ev := EventPopped
		if state == Redo {
			ev = EventRedo
		}
		l.doc.UndoEvent(ev, name)
	}
	return ok
}

// Free disposes of both stacks. A document whose clean state was only
// reachable by redo becomes unrecoverably dirty.
func (l *Log) Free() {
	if l.groupCount > 0 {
		slogger().Warn("undo: history cleared inside a group", "group", l.pushingGroup)
	}
	for i := len(l.undo) - 1; i >= 0; i-- {
		if e := l.undo[i]; !e.marker() {
			e.rec.Dispose(UndoSide)
		}
	}
	for i := len(l.redo) - 1; i >= 0; i-- {
		if e := l.redo[i]; !e.marker() {
			e.rec.Dispose(RedoSide)
		}
	}
	l.undo = nil
	l.redo = nil
	l.bytes = 0
	l.levels = 0
	l.groupCount = 0
	l.pushingGroup = GroupNone
	l.refused = false

	if l.doc.DirtyCount() < 0 {
		l.doc.SetDirtyCount(UnrecoverablyDirty)
	}
	slogger().Info("undo: history cleared")
	l.doc.UndoEvent(EventFree, "")
}

// discardRedo disposes of the redo stack. wasRecoverable carries the
// dirty state from before the caller marked the document dirty.
func (l *Log) discardRedo(wasRecoverable bool) {
	for i := len(l.redo) - 1; i >= 0; i-- {
		if e := l.redo[i]; !e.marker() {
			l.bytes -= e.size
			e.rec.Dispose(RedoSide)
		}
	}
	l.redo = nil

	if wasRecoverable || l.doc.DirtyCount() < 0 {
		l.doc.SetDirtyCount(UnrecoverablyDirty)
	}
}

// freeUpSpace evicts bottom units until there is room for one more level.
// It returns false when recording is configured off.
func (l *Log) freeUpSpace() bool {
	if l.levelsOfUndo == 0 {
		return false
	}
	for l.levels >= l.levelsOfUndo && len(l.undo) > 0 {
		l.removeBottom()
	}
	return true
}

// removeBottom evicts the oldest unit: the bottom record, or the bottom
// group up to and including its closing marker.
func (l *Log) removeBottom() {
	if len(l.undo) == 0 {
		return
	}
	n := 1
	name := ""
	if first := l.undo[0]; first.marker() {
		name = first.group.String()
		for n < len(l.undo) && !l.undo[n].marker() {
			n++
		}
		n++ // closing marker
		n = min(n, len(l.undo))
	} else {
		name = first.rec.Kind().String()
	}

	for _, e := range l.undo[:n] {
		if !e.marker() {
			l.bytes -= e.size
			e.rec.Dispose(UndoSide)
		}
	}
	clear(l.undo[:n])
	l.undo = l.undo[n:]
	l.levels--

	slogger().Debug("undo: expired", "unit", name, "levels", l.levels, "bytes", l.bytes)
	l.doc.UndoEvent(EventExpired, name)
}

// Unit is one top-level step of the history.
type Unit struct {
	// Name is the group type name, or the record kind name for a single
	// record.
	Name string

	// Group is the group type, or GroupNone for a single record.
	Group GroupType

	// Records lists the unit's records from the most recently applied
	// change on the undo stack (or the next to reapply on the redo stack)
	// downwards.
	Records []Record

	// Size is the sum of the record sizes.
	Size int64
}

// Units iterates over the units of one stack, top first.
func (l *Log) Units(state State) iter.Seq[Unit] {
	stack := l.undo
	if state == Redo {
		stack = l.redo
	}
	return func(yield func(Unit) bool) {
		i := len(stack) - 1
		for i >= 0 {
			var u Unit
			if e := stack[i]; e.marker() {
				u.Name = e.group.String()
				u.Group = e.group
				i--
				for i >= 0 && !stack[i].marker() {
					u.Records = append(u.Records, stack[i].rec)
					u.Size += stack[i].size
					i--
				}
				i-- // opening marker
			} else {
				u.Name = e.rec.Kind().String()
				u.Records = []Record{e.rec}
				u.Size = e.size
				i--
			}
			if !yield(u) {
				return
			}
		}
	}
}

// MapOverUndoStack calls fn for each undo unit, top first, until fn
// returns false.
func (l *Log) MapOverUndoStack(fn func(Unit) bool) {
	for u := range l.Units(Undo) {
		if !fn(u) {
			return
		}
	}
}

// MapOverRedoStack calls fn for each redo unit, top first, until fn
// returns false.
func (l *Log) MapOverRedoStack(fn func(Unit) bool) {
	for u := range l.Units(Redo) {
		if !fn(u) {
			return
		}
	}
}

// UndoName returns the name of the unit Undo would pop, or "".
func (l *Log) UndoName() string { return l.topName(Undo) }

// RedoName returns the name of the unit Redo would pop, or "".
func (l *Log) RedoName() string { return l.topName(Redo) }

func (l *Log) topName(state State) string {
	for u := range l.Units(state) {
		return u.Name
	}
	return ""
}
