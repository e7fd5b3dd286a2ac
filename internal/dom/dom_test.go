// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree() (*Document, *Element, *Element) {
	doc := NewDocument()
	outer := doc.CreateElement("div", "outer")
	doc.Body().AppendChild(outer)
	inner := outer.CreateChild("section", "inner box")
	return doc, outer, inner
}

func TestDispatchPhases(t *testing.T) {
	doc, outer, inner := tree()
	var order []string
	rec := func(name string) *Listener {
		return NewListener(func(*Event) { order = append(order, name) })
	}

	doc.AddEventListener(PointerDown, rec("doc-capture"), true)
	doc.AddEventListener(PointerDown, rec("doc-bubble"), false)
	outer.AddEventListener(PointerDown, rec("outer-capture"), true)
	outer.AddEventListener(PointerDown, rec("outer-bubble"), false)
	inner.AddEventListener(PointerDown, rec("inner-bubble"), false)
	inner.AddEventListener(PointerDown, rec("inner-capture"), true)

	doc.Dispatch(&Event{Type: PointerDown, Target: inner})

	assert.Equal(t, []string{
		"doc-capture", "outer-capture",
		"inner-capture", "inner-bubble",
		"outer-bubble", "doc-bubble",
	}, order)
}

func TestStopImmediatePropagation(t *testing.T) {
	doc, outer, inner := tree()
	var calls []string
	outer.AddEventListener(PointerMove, NewListener(func(ev *Event) {
		calls = append(calls, "first")
		Consume(ev, true)
	}), true)
	outer.AddEventListener(PointerMove, NewListener(func(*Event) {
		calls = append(calls, "second")
	}), true)
	inner.AddEventListener(PointerMove, NewListener(func(*Event) {
		calls = append(calls, "target")
	}), false)

	ev := &Event{Type: PointerMove, Target: inner}
	doc.Dispatch(ev)

	assert.Equal(t, []string{"first"}, calls)
	assert.True(t, ev.DefaultPrevented())
	assert.True(t, ev.PropagationStopped())
}

func TestListenerIdentity(t *testing.T) {
	doc := NewDocument()
	n := 0
	l := NewListener(func(*Event) { n++ })

	doc.AddEventListener(PointerUp, l, true)
	doc.AddEventListener(PointerUp, l, true)
	assert.Equal(t, 1, ListenerCount(doc, PointerUp))

	// same callback, different registration
	doc.RemoveEventListener(PointerUp, NewListener(func(*Event) { n++ }), true)
	assert.Equal(t, 1, ListenerCount(doc, PointerUp))

	doc.RemoveEventListener(PointerUp, l, false)
	assert.Equal(t, 1, ListenerCount(doc, PointerUp))

	doc.Dispatch(&Event{Type: PointerUp})
	assert.Equal(t, 1, n)

	doc.RemoveEventListener(PointerUp, l, true)
	assert.Zero(t, ListenerCount(doc, PointerUp))
	doc.Dispatch(&Event{Type: PointerUp})
	assert.Equal(t, 1, n)
}

func TestListenerRemovedDuringDispatchIsSkipped(t *testing.T) {
	doc := NewDocument()
	var second *Listener
	called := false
	first := NewListener(func(*Event) {
		doc.RemoveEventListener(PointerMove, second, true)
	})
	second = NewListener(func(*Event) { called = true })
	doc.AddEventListener(PointerMove, first, true)
	doc.AddEventListener(PointerMove, second, true)

	doc.Dispatch(&Event{Type: PointerMove})
	assert.False(t, called)
}

func TestRootNode(t *testing.T) {
	doc, outer, inner := tree()
	assert.Equal(t, Node(doc), inner.RootNode())
	assert.Equal(t, Node(doc), outer.RootNode())

	detached := doc.CreateElement("div", "")
	child := detached.CreateChild("span", "")
	assert.Equal(t, Node(detached), child.RootNode())
	assert.Same(t, doc, child.OwnerDocument())
}

func TestFrameTop(t *testing.T) {
	top := NewDocument()
	got, err := top.Top()
	require.NoError(t, err)
	assert.Same(t, top, got)

	frame := NewFrameDocument(top, false)
	got, err = frame.Top()
	require.NoError(t, err)
	assert.Same(t, top, got)

	foreign := NewFrameDocument(top, true)
	_, err = foreign.Top()
	assert.ErrorIs(t, err, ErrCrossOrigin)
}

func TestClassesAndStyle(t *testing.T) {
	doc := NewDocument()
	e := doc.CreateElement("div", "a b a")
	assert.Equal(t, "a b", e.ClassName())

	e.ToggleClass("is-animating", true)
	assert.True(t, e.HasClass("is-animating"))
	e.ToggleClass("is-animating", false)
	assert.False(t, e.HasClass("is-animating"))

	e.SetStyle("cursor", "grab")
	e.SetStyle("transform", "rotateY(0deg)")
	assert.Equal(t, "cursor: grab; transform: rotateY(0deg);", e.CSSText())
	e.SetStyle("cursor", "")
	assert.Equal(t, "", e.Style("cursor"))
}

func TestFindByClassAndContains(t *testing.T) {
	doc, outer, inner := tree()
	assert.Same(t, inner, outer.FindByClass("box"))
	assert.Nil(t, outer.FindByClass("missing"))
	assert.True(t, outer.Contains(inner))
	assert.False(t, inner.Contains(outer))
	assert.False(t, outer.Contains(doc))
}
