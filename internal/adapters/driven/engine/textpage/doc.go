// Package textpage is the rendering engine for extracted chapter text.
//
// It implements the Renderer port over plain-text chapters: wrapping
// to a viewport, page and line navigation, and the vibe://spine/offset
// position identifier scheme. Identifiers address runes, not rows, so
// a persisted position stays valid across any terminal size.
//
// The engine is deliberately a text pager, not a layout engine. It
// exists so position tracking, recovery and location building can be
// exercised end to end in a terminal; richer clients bring their own
// Renderer.
package textpage
