// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package drag implements the pointer-drag lifecycle used by the
// orientation stage: press, track moves on the owning document, release.
package drag

import (
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/orientation_widget/internal/dom"
	"github.com/relabs-tech/orientation_widget/internal/logging"
	"github.com/relabs-tech/orientation_widget/internal/platform"
)

// Clock schedules the delayed start of a drag.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) dom.Timer
}

// Options configure a drag handle.
type Options struct {
	// Start may veto a drag by returning false. Nil accepts every press.
	Start func(*dom.Event) bool
	// Move receives every pointermove while the primary button is held.
	// Returning true ends the drag without calling End.
	Move func(*dom.Event) bool
	// End receives the releasing event.
	End func(*dom.Event)

	// Cursor is applied to the element and the document body while
	// dragging. Empty leaves cursors alone.
	Cursor string
	// HoverCursor is applied to the element on install; Cursor is used
	// when empty.
	HoverCursor string

	// StartDelay postpones the drag start; a release on the element
	// before it elapses cancels the drag.
	StartDelay time.Duration

	Platform platform.Platform
	Registry *Registry
	// Clock defaults to the element's owner document.
	Clock  Clock
	Logger *zap.Logger
}

// Handle is a drag installation on one element.
type Handle struct {
	element *dom.Element
	opts    Options
	logger  *zap.Logger

	down  *dom.Listener
	up    *dom.Listener
	timer dom.Timer

	session *session
}

// Install makes element draggable.
func Install(element *dom.Element, opts Options) *Handle {
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry
	}
	if opts.Clock == nil {
		opts.Clock = element.OwnerDocument()
	}
	if opts.Platform == "" {
		opts.Platform = platform.Current()
	}

	h := &Handle{
		element: element,
		opts:    opts,
		logger:  logging.OrNop(opts.Logger),
	}
	h.down = dom.NewListener(h.onPointerDown)
	element.AddEventListener(dom.PointerDown, h.down, false)
	if opts.StartDelay > 0 {
		h.up = dom.NewListener(h.onPointerUp)
		element.AddEventListener(dom.PointerUp, h.up, false)
	}

	switch {
	case opts.HoverCursor != "":
		element.SetStyle("cursor", opts.HoverCursor)
	case opts.Cursor != "":
		element.SetStyle("cursor", opts.Cursor)
	}
	return h
}

// Uninstall removes the press listeners and cancels any drag in flight.
func (h *Handle) Uninstall() {
	h.stopTimer()
	if h.session != nil {
		h.session.cancel()
	}
	h.element.RemoveEventListener(dom.PointerDown, h.down, false)
	if h.up != nil {
		h.element.RemoveEventListener(dom.PointerUp, h.up, false)
	}
}

// Dragging reports whether a session is active.
func (h *Handle) Dragging() bool {
	return h.session != nil
}

func (h *Handle) onPointerDown(ev *dom.Event) {
	if h.opts.StartDelay <= 0 {
		h.start(ev)
		return
	}
	h.stopTimer()
	h.timer = h.opts.Clock.AfterFunc(h.opts.StartDelay, func() {
		h.timer = nil
		h.start(ev)
	})
}

func (h *Handle) onPointerUp(*dom.Event) {
	h.stopTimer()
}

func (h *Handle) stopTimer() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

func (h *Handle) start(ev *dom.Event) {
	// Right button opens a context menu, and so does ctrl-click on mac.
	if ev.Button != dom.ButtonPrimary || h.opts.Platform.SecondaryClick(ev.CtrlKey) {
		return
	}
	if h.session != nil {
		return
	}
	if h.opts.Start != nil && !h.opts.Start(ev) {
		return
	}

	doc := h.element.OwnerDocument()
	root := h.element.RootNode()
	if ev.Target != nil {
		if d := ev.Target.OwnerDocument(); d != nil {
			doc = d
		}
		root = ev.Target.RootNode()
	}

	s := &session{
		handle: h,
		doc:    doc,
		root:   root,
		onMove: h.opts.Move,
		onEnd:  h.opts.End,
		active: true,
	}
	s.move = dom.NewListener(s.elementDragMove)
	s.end = dom.NewListener(s.elementDragEnd)
	s.out = dom.NewListener(s.pointerOutWhileDragging)

	top, err := doc.Top()
	if err != nil {
		h.logger.Debug("top document unavailable, tracking owner document only", zap.Error(err))
	} else if top != doc {
		s.top = top
	}

	h.opts.Registry.acquire(doc, root, h.logger)
	h.session = s

	doc.AddEventListener(dom.PointerMove, s.move, true)
	doc.AddEventListener(dom.PointerUp, s.end, true)
	root.AddEventListener(dom.PointerOut, s.out, true)
	if s.top != nil {
		s.top.AddEventListener(dom.PointerUp, s.end, true)
	}

	if cursor := h.opts.Cursor; cursor != "" {
		old := h.element.Style("cursor")
		body := doc.Body()
		h.element.SetStyle("cursor", cursor)
		body.SetStyle("cursor", cursor)
		s.restoreCursor = func() {
			body.RemoveStyle("cursor")
			h.element.SetStyle("cursor", old)
		}
	}

	h.logger.Debug("drag started", zap.Float64("x", ev.X), zap.Float64("y", ev.Y))
	ev.PreventDefault()
}

// session is one press-to-release gesture. Its listeners are created once
// so the same values are removed on teardown.
type session struct {
	handle *Handle
	doc    *dom.Document
	top    *dom.Document
	root   dom.Node

	move *dom.Listener
	end  *dom.Listener
	out  *dom.Listener

	onMove        func(*dom.Event) bool
	onEnd         func(*dom.Event)
	restoreCursor func()
	active        bool
}

func (s *session) elementDragMove(ev *dom.Event) {
	if !s.active {
		return
	}
	// The release may have happened outside any tracked document.
	if ev.Buttons != dom.ButtonsPrimary {
		s.elementDragEnd(ev)
		return
	}
	if s.onMove != nil && s.onMove(ev) {
		s.cancel()
	}
}

func (s *session) elementDragEnd(ev *dom.Event) {
	if !s.active {
		return
	}
	onEnd := s.onEnd
	s.cancel()
	ev.PreventDefault()
	if onEnd != nil {
		onEnd(ev)
	}
}

func (s *session) pointerOutWhileDragging(ev *dom.Event) {
	if !s.active {
		return
	}
	if ev.RelatedTarget != nil && ev.RelatedTarget.RootNode() == s.root {
		return
	}
	s.handle.logger.Debug("pointer left the drag root")
	s.cancel()
}

// cancel tears the session down. It is safe to call more than once.
func (s *session) cancel() {
	if !s.active {
		return
	}
	s.active = false

	s.doc.RemoveEventListener(dom.PointerMove, s.move, true)
	s.doc.RemoveEventListener(dom.PointerUp, s.end, true)
	if s.top != nil {
		s.top.RemoveEventListener(dom.PointerUp, s.end, true)
	}
	s.root.RemoveEventListener(dom.PointerOut, s.out, true)

	if s.restoreCursor != nil {
		s.restoreCursor()
		s.restoreCursor = nil
	}

	s.handle.opts.Registry.release()
	if s.handle.session == s {
		s.handle.session = nil
	}
	s.handle.logger.Debug("drag ended")
}
