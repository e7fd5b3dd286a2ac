// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dom

import "sync"

// Target accepts event listeners.
type Target interface {
	AddEventListener(typ string, l *Listener, capture bool)
	RemoveEventListener(typ string, l *Listener, capture bool)
}

// Node is an element or a document.
type Node interface {
	Target
	// OwnerDocument is the document the node belongs to. A document is
	// its own owner.
	OwnerDocument() *Document
	// RootNode is the document for attached nodes and the topmost
	// ancestor for detached ones.
	RootNode() Node
	// ParentNode is nil for documents and detached roots.
	ParentNode() Node

	listenerSet() *listeners
}

type registration struct {
	typ     string
	l       *Listener
	capture bool
	removed bool
}

type listeners struct {
	mu      sync.Mutex
	entries []*registration
}

func (ls *listeners) add(typ string, l *Listener, capture bool) {
	if l == nil {
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, r := range ls.entries {
		if r.typ == typ && r.l == l && r.capture == capture {
			return
		}
	}
	ls.entries = append(ls.entries, &registration{typ: typ, l: l, capture: capture})
}

func (ls *listeners) remove(typ string, l *Listener, capture bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for i, r := range ls.entries {
		if r.typ == typ && r.l == l && r.capture == capture {
			r.removed = true
			ls.entries = append(ls.entries[:i], ls.entries[i+1:]...)
			return
		}
	}
}

// matching snapshots the registrations for one phase. Entries removed
// while the snapshot is being walked are skipped by invoke.
func (ls *listeners) matching(typ string, capture bool) []*registration {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	var out []*registration
	for _, r := range ls.entries {
		if r.typ == typ && r.capture == capture {
			out = append(out, r)
		}
	}
	return out
}

// count reports the registrations for typ, for tests and diagnostics.
func (ls *listeners) count(typ string) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	n := 0
	for _, r := range ls.entries {
		if r.typ == typ {
			n++
		}
	}
	return n
}

// ListenerCount reports how many listeners of typ are registered on n.
func ListenerCount(n Node, typ string) int {
	return n.listenerSet().count(typ)
}

func invoke(n Node, ev *Event, capture bool) {
	for _, r := range n.listenerSet().matching(ev.Type, capture) {
		if ev.stoppedImmediate {
			return
		}
		if r.removed {
			continue
		}
		ev.currentTarget = n
		r.l.Handle(ev)
	}
}

// dispatch runs the capture, target and bubble phases for ev.
func dispatch(ev *Event) {
	path := []Node{}
	for n := ev.Target; n != nil; n = n.ParentNode() {
		path = append(path, n)
	}

	// capture: root first, target excluded
	for i := len(path) - 1; i > 0; i-- {
		invoke(path[i], ev, true)
		if ev.stopped {
			return
		}
	}

	invoke(path[0], ev, true)
	if ev.stoppedImmediate {
		return
	}
	invoke(path[0], ev, false)
	if ev.stopped {
		return
	}

	for i := 1; i < len(path); i++ {
		invoke(path[i], ev, false)
		if ev.stopped {
			return
		}
	}
}
