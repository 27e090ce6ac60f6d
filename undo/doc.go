// Package undo implements a group-structured undo/redo log with a
// bounded number of steps.
//
// A Log keeps two stacks of Records. Records pushed between
// PushGroupStart and PushGroupEnd form one unit that undoes and redoes
// as a whole; nested groups merge into the outermost one. Once the undo
// stack holds more units than the configured level count, the oldest
// unit is evicted.
//
// The log also tracks whether the document matches its saved state
// through the Document's dirty counter: every change that dirties the
// image moves the counter away from zero, and undoing it moves it back.
// When the saved state sits on a redo stack that gets discarded, the
// counter is pushed to UnrecoverablyDirty so it can never read clean
// again.
//
// Records implement their own Restore and Dispose. Restore swaps the
// recorded state with the live one, so the same record serves undo and
// redo.
package undo
