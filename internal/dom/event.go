// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dom

// Pointer event types.
const (
	PointerDown = "pointerdown"
	PointerMove = "pointermove"
	PointerUp   = "pointerup"
	PointerOut  = "pointerout"
)

// Button codes as reported by Event.Button.
const (
	ButtonPrimary   = 0
	ButtonAuxiliary = 1
	ButtonSecondary = 2
)

// Bits of Event.Buttons.
const (
	ButtonsPrimary   = 1 << 0
	ButtonsSecondary = 1 << 1
	ButtonsAuxiliary = 1 << 2
)

// Event is a pointer event in client coordinates.
type Event struct {
	Type string
	// Target is the node the event was dispatched to.
	Target Node
	// RelatedTarget is the node the pointer moved into for pointerout,
	// nil when it left the root entirely.
	RelatedTarget Node

	Button  int
	Buttons int

	ShiftKey bool
	CtrlKey  bool
	AltKey   bool
	MetaKey  bool

	X float64
	Y float64

	currentTarget    Node
	defaultPrevented bool
	stopped          bool
	stoppedImmediate bool
}

// CurrentTarget is the node whose listener is running.
func (e *Event) CurrentTarget() Node { return e.currentTarget }

// PreventDefault marks the default action as suppressed.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops the event after the current node's listeners.
func (e *Event) StopPropagation() { e.stopped = true }

// StopImmediatePropagation stops the event before any further listener.
func (e *Event) StopImmediatePropagation() {
	e.stopped = true
	e.stoppedImmediate = true
}

// PropagationStopped reports whether either stop primitive was called.
func (e *Event) PropagationStopped() bool { return e.stopped }

// Consume stops immediate propagation and optionally prevents the default
// action.
func Consume(e *Event, preventDefault bool) {
	e.StopImmediatePropagation()
	if preventDefault {
		e.PreventDefault()
	}
}

// Listener wraps an event callback. Listeners are compared by pointer, so
// the same *Listener must be passed to add and remove.
type Listener struct {
	fn func(*Event)
}

// NewListener returns a listener calling fn.
func NewListener(fn func(*Event)) *Listener {
	return &Listener{fn: fn}
}

// Handle invokes the listener.
func (l *Listener) Handle(ev *Event) {
	if l != nil && l.fn != nil {
		l.fn(ev)
	}
}
