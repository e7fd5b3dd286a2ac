// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dom

import (
	"sort"
	"strings"
)

// Rect is a bounding box in client coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element is a styled node with children. Layout is owned by the host,
// which reports it through SetBoundingClientRect.
type Element struct {
	ls listeners

	Tag      string
	doc      *Document
	parent   *Element
	children []*Element
	attached bool

	classes []string
	style   map[string]string
	rect    Rect
}

func (e *Element) AddEventListener(typ string, l *Listener, capture bool) {
	e.ls.add(typ, l, capture)
}

func (e *Element) RemoveEventListener(typ string, l *Listener, capture bool) {
	e.ls.remove(typ, l, capture)
}

func (e *Element) listenerSet() *listeners { return &e.ls }

func (e *Element) OwnerDocument() *Document { return e.doc }

func (e *Element) ParentNode() Node {
	if e.parent != nil {
		return e.parent
	}
	if e.attached {
		return e.doc
	}
	return nil
}

func (e *Element) RootNode() Node {
	var n Node = e
	for p := n.ParentNode(); p != nil; p = n.ParentNode() {
		n = p
	}
	return n
}

// AppendChild moves child under e.
func (e *Element) AppendChild(child *Element) {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
}

// CreateChild creates an element and appends it to e.
func (e *Element) CreateChild(tag, className string) *Element {
	child := e.doc.CreateElement(tag, className)
	e.AppendChild(child)
	return child
}

func (e *Element) removeChild(child *Element) {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Children returns the direct children of e.
func (e *Element) Children() []*Element {
	return append([]*Element(nil), e.children...)
}

// Contains reports whether n is e or one of its descendants.
func (e *Element) Contains(n Node) bool {
	for ; n != nil; n = n.ParentNode() {
		if el, ok := n.(*Element); ok && el == e {
			return true
		}
	}
	return false
}

// FindByClass returns the first element in e's subtree carrying class.
func (e *Element) FindByClass(class string) *Element {
	if e.HasClass(class) {
		return e
	}
	for _, c := range e.children {
		if found := c.FindByClass(class); found != nil {
			return found
		}
	}
	return nil
}

// ClassName returns the space-separated class list.
func (e *Element) ClassName() string {
	return strings.Join(e.classes, " ")
}

// SetClassName replaces the class list.
func (e *Element) SetClassName(className string) {
	e.classes = e.classes[:0]
	for _, c := range strings.Fields(className) {
		e.AddClass(c)
	}
}

func (e *Element) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(class string) {
	if !e.HasClass(class) {
		e.classes = append(e.classes, class)
	}
}

func (e *Element) RemoveClass(class string) {
	for i, c := range e.classes {
		if c == class {
			e.classes = append(e.classes[:i], e.classes[i+1:]...)
			return
		}
	}
}

// ToggleClass adds or removes class according to on.
func (e *Element) ToggleClass(class string, on bool) {
	if on {
		e.AddClass(class)
	} else {
		e.RemoveClass(class)
	}
}

// Style returns an inline style property, "" when unset.
func (e *Element) Style(prop string) string {
	return e.style[prop]
}

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(prop, value string) {
	if value == "" {
		delete(e.style, prop)
		return
	}
	e.style[prop] = value
}

// RemoveStyle deletes an inline style property.
func (e *Element) RemoveStyle(prop string) {
	delete(e.style, prop)
}

// Styles returns a copy of the inline style, keyed by property.
func (e *Element) Styles() map[string]string {
	out := make(map[string]string, len(e.style))
	for k, v := range e.style {
		out[k] = v
	}
	return out
}

// CSSText renders the inline style in property order.
func (e *Element) CSSText() string {
	keys := make([]string, 0, len(e.style))
	for k := range e.style {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(e.style[k])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

func (e *Element) BoundingClientRect() Rect { return e.rect }

func (e *Element) SetBoundingClientRect(r Rect) { e.rect = r }
