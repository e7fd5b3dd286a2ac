// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package drag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/relabs-tech/orientation_widget/internal/dom"
	"github.com/relabs-tech/orientation_widget/internal/platform"
)

type recorder struct {
	starts, moves, ends int
	veto                bool
	finishOnMove        bool
	lastEnd             *dom.Event
}

func (r *recorder) options() Options {
	return Options{
		Start: func(*dom.Event) bool {
			r.starts++
			return !r.veto
		},
		Move: func(*dom.Event) bool {
			r.moves++
			return r.finishOnMove
		},
		End: func(ev *dom.Event) {
			r.ends++
			r.lastEnd = ev
		},
		Cursor:      "grabbing",
		HoverCursor: "grab",
		Platform:    platform.Linux,
		Registry:    NewRegistry(nil),
	}
}

type fixture struct {
	doc   *dom.Document
	stage *dom.Element
	rec   *recorder
	h     *Handle
}

func newFixture(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()
	doc := dom.NewDocument()
	stage := doc.CreateElement("div", "stage")
	doc.Body().AppendChild(stage)
	rec := &recorder{}
	opts := rec.options()
	if mutate != nil {
		mutate(&opts)
	}
	return &fixture{doc: doc, stage: stage, rec: rec, h: Install(stage, opts)}
}

func (f *fixture) down(button int, ctrl bool) *dom.Event {
	ev := &dom.Event{Type: dom.PointerDown, Target: f.stage, Button: button, Buttons: 1 << button, CtrlKey: ctrl}
	f.doc.Dispatch(ev)
	return ev
}

func (f *fixture) move(buttons int) {
	f.doc.Dispatch(&dom.Event{Type: dom.PointerMove, Target: f.stage, Buttons: buttons})
}

func (f *fixture) up() *dom.Event {
	ev := &dom.Event{Type: dom.PointerUp, Target: f.stage}
	f.doc.Dispatch(ev)
	return ev
}

func (f *fixture) listenerTotal() int {
	return dom.ListenerCount(f.doc, dom.PointerMove) +
		dom.ListenerCount(f.doc, dom.PointerUp) +
		dom.ListenerCount(f.doc, dom.PointerOut)
}

func TestInstallSetsHoverCursor(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, "grab", f.stage.Style("cursor"))

	g := newFixture(t, func(o *Options) { o.HoverCursor = "" })
	assert.Equal(t, "grabbing", g.stage.Style("cursor"))
}

func TestFullGesture(t *testing.T) {
	f := newFixture(t, nil)

	down := f.down(dom.ButtonPrimary, false)
	require.True(t, f.h.Dragging())
	assert.True(t, down.DefaultPrevented())
	assert.Equal(t, 1, f.rec.starts)
	assert.Equal(t, 3, f.listenerTotal())
	assert.Equal(t, "grabbing", f.stage.Style("cursor"))
	assert.Equal(t, "grabbing", f.doc.Body().Style("cursor"))

	doc, root := f.h.opts.Registry.Active()
	assert.Same(t, f.doc, doc)
	assert.Equal(t, dom.Node(f.doc), root)

	f.move(dom.ButtonsPrimary)
	f.move(dom.ButtonsPrimary)
	assert.Equal(t, 2, f.rec.moves)

	up := f.up()
	assert.False(t, f.h.Dragging())
	assert.Equal(t, 1, f.rec.ends)
	assert.Same(t, up, f.rec.lastEnd)
	assert.True(t, up.DefaultPrevented())
	assert.Zero(t, f.listenerTotal())
	assert.Equal(t, "grab", f.stage.Style("cursor"))
	assert.Equal(t, "", f.doc.Body().Style("cursor"))

	doc, root = f.h.opts.Registry.Active()
	assert.Nil(t, doc)
	assert.Nil(t, root)

	// moves after the release go nowhere
	f.move(dom.ButtonsPrimary)
	assert.Equal(t, 2, f.rec.moves)
}

func TestSecondaryButtonNeverArms(t *testing.T) {
	f := newFixture(t, nil)

	f.down(dom.ButtonSecondary, false)
	assert.False(t, f.h.Dragging())
	assert.Zero(t, f.rec.starts)
	assert.Zero(t, f.listenerTotal())

	f.move(dom.ButtonsSecondary)
	f.move(dom.ButtonsPrimary)
	assert.Zero(t, f.rec.moves)
}

func TestCtrlClickOnMac(t *testing.T) {
	mac := newFixture(t, func(o *Options) { o.Platform = platform.Mac })
	mac.down(dom.ButtonPrimary, true)
	assert.False(t, mac.h.Dragging())

	linux := newFixture(t, nil)
	linux.down(dom.ButtonPrimary, true)
	assert.True(t, linux.h.Dragging())
}

func TestStartVeto(t *testing.T) {
	f := newFixture(t, nil)
	f.rec.veto = true

	ev := f.down(dom.ButtonPrimary, false)
	assert.Equal(t, 1, f.rec.starts)
	assert.False(t, f.h.Dragging())
	assert.False(t, ev.DefaultPrevented())
	assert.Zero(t, f.listenerTotal())
	assert.Equal(t, "grab", f.stage.Style("cursor"))
}

func TestSecondPressWhileDraggingIsIgnored(t *testing.T) {
	f := newFixture(t, nil)
	f.down(dom.ButtonPrimary, false)
	f.down(dom.ButtonPrimary, false)
	assert.Equal(t, 1, f.rec.starts)
	assert.Equal(t, 3, f.listenerTotal())
}

func TestMoveCallbackCanFinish(t *testing.T) {
	f := newFixture(t, nil)
	f.rec.finishOnMove = true

	f.down(dom.ButtonPrimary, false)
	f.move(dom.ButtonsPrimary)

	assert.False(t, f.h.Dragging())
	assert.Zero(t, f.rec.ends)
	assert.Zero(t, f.listenerTotal())
	assert.Equal(t, "grab", f.stage.Style("cursor"))
}

func TestMoveWithoutButtonEnds(t *testing.T) {
	f := newFixture(t, nil)
	f.down(dom.ButtonPrimary, false)

	f.move(0)
	assert.False(t, f.h.Dragging())
	assert.Zero(t, f.rec.moves)
	assert.Equal(t, 1, f.rec.ends)
	assert.Zero(t, f.listenerTotal())
}

func TestPointerOutOfRootCancels(t *testing.T) {
	f := newFixture(t, nil)
	other := f.doc.CreateElement("div", "other")
	f.doc.Body().AppendChild(other)

	f.down(dom.ButtonPrimary, false)

	// moving between elements of the same document keeps the drag
	f.doc.Dispatch(&dom.Event{Type: dom.PointerOut, Target: f.stage, RelatedTarget: other})
	assert.True(t, f.h.Dragging())

	f.doc.Dispatch(&dom.Event{Type: dom.PointerOut, Target: f.stage})
	assert.False(t, f.h.Dragging())
	assert.Zero(t, f.rec.ends)
	assert.Zero(t, f.listenerTotal())
	assert.Equal(t, "", f.doc.Body().Style("cursor"))

	// teardown already happened; a late release is harmless
	f.up()
	assert.Zero(t, f.rec.ends)
}

func TestTopDocumentRelease(t *testing.T) {
	top := dom.NewDocument()
	frame := dom.NewFrameDocument(top, false)
	stage := frame.CreateElement("div", "stage")
	frame.Body().AppendChild(stage)
	rec := &recorder{}
	h := Install(stage, rec.options())

	frame.Dispatch(&dom.Event{Type: dom.PointerDown, Target: stage, Buttons: 1})
	require.True(t, h.Dragging())
	assert.Equal(t, 1, dom.ListenerCount(top, dom.PointerUp))

	top.Dispatch(&dom.Event{Type: dom.PointerUp, Target: top.Body()})
	assert.False(t, h.Dragging())
	assert.Equal(t, 1, rec.ends)
	assert.Zero(t, dom.ListenerCount(top, dom.PointerUp))
	assert.Zero(t, dom.ListenerCount(frame, dom.PointerUp))
	assert.Zero(t, dom.ListenerCount(frame, dom.PointerMove))
}

func TestCrossOriginFrameTracksOwnerOnly(t *testing.T) {
	top := dom.NewDocument()
	frame := dom.NewFrameDocument(top, true)
	stage := frame.CreateElement("div", "stage")
	frame.Body().AppendChild(stage)
	rec := &recorder{}
	h := Install(stage, rec.options())

	frame.Dispatch(&dom.Event{Type: dom.PointerDown, Target: stage, Buttons: 1})
	require.True(t, h.Dragging())
	assert.Zero(t, dom.ListenerCount(top, dom.PointerUp))

	frame.Dispatch(&dom.Event{Type: dom.PointerMove, Target: stage, Buttons: 1})
	frame.Dispatch(&dom.Event{Type: dom.PointerUp, Target: stage})
	assert.Equal(t, 1, rec.moves)
	assert.Equal(t, 1, rec.ends)
}

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	timers []*fakeTimer
	delays []time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) dom.Timer {
	t := &fakeTimer{fn: fn}
	c.timers = append(c.timers, t)
	c.delays = append(c.delays, d)
	return t
}

func (c *fakeClock) fire() {
	for _, t := range c.timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

func TestStartDelay(t *testing.T) {
	clock := &fakeClock{}
	f := newFixture(t, func(o *Options) {
		o.StartDelay = 300 * time.Millisecond
		o.Clock = clock
	})

	f.down(dom.ButtonPrimary, false)
	assert.False(t, f.h.Dragging())
	require.Len(t, clock.timers, 1)
	assert.Equal(t, 300*time.Millisecond, clock.delays[0])

	clock.fire()
	assert.True(t, f.h.Dragging())
	assert.Equal(t, 1, f.rec.starts)
	f.up()
	assert.Equal(t, 1, f.rec.ends)
}

func TestStartDelayCancelledByRelease(t *testing.T) {
	clock := &fakeClock{}
	f := newFixture(t, func(o *Options) {
		o.StartDelay = 300 * time.Millisecond
		o.Clock = clock
	})

	f.down(dom.ButtonPrimary, false)
	f.up()
	clock.fire()

	assert.False(t, f.h.Dragging())
	assert.Zero(t, f.rec.starts)
	assert.Zero(t, f.rec.ends)
}

func TestStartDelayOnDocumentClock(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.StartDelay = 5 * time.Millisecond })
	f.down(dom.ButtonPrimary, false)

	assert.Eventually(t, func() bool {
		var dragging bool
		f.doc.Do(func() { dragging = f.h.Dragging() })
		return dragging
	}, time.Second, time.Millisecond)
}

func TestUninstall(t *testing.T) {
	f := newFixture(t, nil)
	f.down(dom.ButtonPrimary, false)
	f.h.Uninstall()

	assert.False(t, f.h.Dragging())
	assert.Zero(t, f.listenerTotal())
	assert.Zero(t, dom.ListenerCount(f.stage, dom.PointerDown))

	f.down(dom.ButtonPrimary, false)
	assert.Equal(t, 1, f.rec.starts)
}

func TestDraggingOnTwoDocumentsWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zap.New(core)
	registry := NewRegistry(logger)

	docA, docB := dom.NewDocument(), dom.NewDocument()
	stageA := docA.CreateElement("div", "a")
	docA.Body().AppendChild(stageA)
	stageB := docB.CreateElement("div", "b")
	docB.Body().AppendChild(stageB)

	opts := Options{Platform: platform.Linux, Registry: registry, Logger: logger}
	ha := Install(stageA, opts)
	hb := Install(stageB, opts)

	docA.Dispatch(&dom.Event{Type: dom.PointerDown, Target: stageA, Buttons: 1})
	docB.Dispatch(&dom.Event{Type: dom.PointerDown, Target: stageB, Buttons: 1})

	assert.True(t, ha.Dragging())
	assert.True(t, hb.Dragging())
	assert.Equal(t, 1, logs.FilterMessage("dragging on multiple documents").Len())

	active, _ := registry.Active()
	assert.Same(t, docA, active)

	docB.Dispatch(&dom.Event{Type: dom.PointerUp, Target: stageB})
	active, _ = registry.Active()
	assert.Nil(t, active)
	assert.True(t, ha.Dragging())
}
