// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dom

import (
	"errors"
	"sync"
	"time"
)

// ErrCrossOrigin is returned by Document.Top when the top-level document
// may not be accessed from a framed one.
var ErrCrossOrigin = errors.New("dom: top document is cross-origin")

// eventLoop serializes dispatch and timer callbacks for a document and its
// frames.
type eventLoop struct {
	mu sync.Mutex
}

// Document is the root of an element tree and the unit of event dispatch.
type Document struct {
	ls   listeners
	loop *eventLoop
	body *Element

	top         *Document
	crossOrigin bool
}

// NewDocument returns a top-level document with an empty body.
func NewDocument() *Document {
	d := &Document{loop: &eventLoop{}}
	d.top = d
	d.body = d.CreateElement("body", "")
	d.body.attached = true
	return d
}

// NewFrameDocument returns a document nested in parent. Frames share the
// parent's event loop. When crossOrigin is set, Top reports ErrCrossOrigin.
func NewFrameDocument(parent *Document, crossOrigin bool) *Document {
	d := &Document{loop: parent.loop, crossOrigin: crossOrigin}
	d.top = parent.top
	d.body = d.CreateElement("body", "")
	d.body.attached = true
	return d
}

func (d *Document) AddEventListener(typ string, l *Listener, capture bool) {
	d.ls.add(typ, l, capture)
}

func (d *Document) RemoveEventListener(typ string, l *Listener, capture bool) {
	d.ls.remove(typ, l, capture)
}

func (d *Document) OwnerDocument() *Document { return d }
func (d *Document) RootNode() Node { return d }
func (d *Document) ParentNode() Node { return nil }
func (d *Document) listenerSet() *listeners { return &d.ls }
func (d *Document) Body() *Element { return d.body }

// Top returns the top-level document, which is d itself for unframed
// documents.
func (d *Document) Top() (*Document, error) {
	if d.crossOrigin {
		return nil, ErrCrossOrigin
	}
	return d.top, nil
}

// CreateElement returns a detached element owned by d.
func (d *Document) CreateElement(tag, className string) *Element {
	e := &Element{
		Tag:   tag,
		doc:   d,
		style: map[string]string{},
	}
	e.SetClassName(className)
	return e
}

// Dispatch delivers ev to its target on the document's event loop.
// Listeners must not dispatch synchronously into the same loop.
func (d *Document) Dispatch(ev *Event) {
	if ev.Target == nil {
		ev.Target = d
	}
	d.loop.mu.Lock()
	defer d.loop.mu.Unlock()
	dispatch(ev)
}

// Do runs fn on the document's event loop, so it never overlaps a
// dispatch.
func (d *Document) Do(fn func()) {
	d.loop.mu.Lock()
	defer d.loop.mu.Unlock()
	fn()
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	Stop() bool
}

// AfterFunc runs fn on the document's event loop once dur has elapsed.
func (d *Document) AfterFunc(dur time.Duration, fn func()) Timer {
	return time.AfterFunc(dur, func() { d.Do(fn) })
}
