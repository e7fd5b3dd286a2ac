// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relabs-tech/orientation_widget/internal/dom"
	"github.com/relabs-tech/orientation_widget/internal/orientation"
	"github.com/relabs-tech/orientation_widget/internal/platform"
)

// WebSocket message types
type WSMessage struct {
	Action string `json:"action"` // init, pointer, resize, reset, preset, input, override

	// init
	UserAgent string `json:"userAgent,omitempty"`
	// init, resize
	Rect *dom.Rect `json:"rect,omitempty"`

	Pointer *PointerMessage `json:"pointer,omitempty"`
	Preset  string          `json:"preset,omitempty"`

	// input
	Alpha string `json:"alpha,omitempty"`
	Beta  string `json:"beta,omitempty"`
	Gamma string `json:"gamma,omitempty"`

	Enabled *bool `json:"enabled,omitempty"`
}

// PointerMessage is a browser pointer event in page coordinates.
type PointerMessage struct {
	Type    string  `json:"type"` // pointerdown, pointermove, pointerup, pointerout
	OnStage bool    `json:"onStage"`
	Outside bool    `json:"outside,omitempty"` // pointerout left the page
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Button  int     `json:"button"`
	Buttons int     `json:"buttons"`
	Shift   bool    `json:"shift,omitempty"`
	Ctrl    bool    `json:"ctrl,omitempty"`
	Alt     bool    `json:"alt,omitempty"`
	Meta    bool    `json:"meta,omitempty"`
}

type WSResponse struct {
	Type    string               `json:"type"` // state, presets, error
	State   *WidgetState         `json:"state,omitempty"`
	Presets []orientation.Preset `json:"presets,omitempty"`
	Message string               `json:"message,omitempty"`
}

// WidgetState is what the page needs to mirror the widget.
type WidgetState struct {
	Session         string                        `json:"session"`
	Orientation     orientation.DeviceOrientation `json:"orientation"`
	Transform       string                        `json:"transform"`
	Animating       bool                          `json:"animating"`
	Dragging        bool                          `json:"dragging"`
	OverrideEnabled bool                          `json:"overrideEnabled"`
	StageCursor     string                        `json:"stageCursor"`
	BodyCursor      string                        `json:"bodyCursor"`
}

// webSession owns the widget document of one browser tab.
type webSession struct {
	id     string
	server *Server
	conn   *websocket.Conn
	logger *zap.Logger

	writeMu sync.Mutex

	doc  *dom.Document
	view *orientation.View
}

func newWebSession(s *Server, conn *websocket.Conn, init WSMessage) *webSession {
	ws := &webSession{
		id:     uuid.NewString(),
		server: s,
		conn:   conn,
		doc:    dom.NewDocument(),
	}
	ws.logger = s.logger.With(zap.String("session", ws.id))

	container := ws.doc.Body().CreateChild("div", "orientation-group")
	ws.view = orientation.Register(container,
		orientation.WithLogger(ws.logger),
		orientation.WithRegistry(s.registry),
		orientation.WithPlatform(platform.FromUserAgent(init.UserAgent)),
		orientation.WithStartDelay(time.Duration(s.cfg.DragStartDelayMS)*time.Millisecond),
		orientation.WithCursors(s.cfg.DragCursor, s.cfg.HoverCursor),
		orientation.WithPresets(s.presets),
	)

	ws.doc.Do(func() {
		ws.view.CreateDeviceOrientation()
		if init.Rect != nil {
			ws.view.Stage().SetBoundingClientRect(*init.Rect)
		}
		if o, ok := s.Latest(); ok {
			ws.view.SetDeviceOrientation(&o, orientation.SourceUserInput)
		}
		ws.view.OnChangeDeviceOrientation(func(o orientation.DeviceOrientation) {
			s.record(o, ws.view.LastSource(), ws.id)
		})
	})

	ws.logger.Info("session started", zap.String("platform", string(platform.FromUserAgent(init.UserAgent))))
	return ws
}

// handle applies one message to the widget.
func (ws *webSession) handle(msg WSMessage) error {
	var err error

	switch msg.Action {
	case "pointer":
		if msg.Pointer == nil {
			return fmt.Errorf("pointer action without pointer")
		}
		err = ws.dispatchPointer(*msg.Pointer)
	case "resize":
		if msg.Rect == nil {
			return fmt.Errorf("resize action without rect")
		}
		ws.doc.Do(func() { ws.view.Stage().SetBoundingClientRect(*msg.Rect) })
	case "reset":
		ws.doc.Do(ws.view.ResetDeviceOrientation)
	case "preset":
		ws.doc.Do(func() { err = ws.view.SelectPreset(msg.Preset) })
	case "input":
		ws.doc.Do(func() {
			if !ws.view.SetFromUserInput(msg.Alpha, msg.Beta, msg.Gamma) {
				err = fmt.Errorf("invalid orientation input")
			}
		})
	case "override":
		if msg.Enabled == nil {
			return fmt.Errorf("override action without enabled")
		}
		ws.doc.Do(func() { ws.view.SetOverrideEnabled(*msg.Enabled) })
	default:
		return fmt.Errorf("unknown action %q", msg.Action)
	}
	return err
}

func (ws *webSession) dispatchPointer(p PointerMessage) error {
	switch p.Type {
	case dom.PointerDown, dom.PointerMove, dom.PointerUp, dom.PointerOut:
	default:
		return fmt.Errorf("unknown pointer event %q", p.Type)
	}

	var wasDragging bool
	var final orientation.DeviceOrientation
	var ended bool

	ws.doc.Do(func() {
		wasDragging = ws.view.Dragging()
	})

	var target dom.Node = ws.doc.Body()
	if p.OnStage {
		target = ws.view.Stage()
	}
	ev := &dom.Event{
		Type:     p.Type,
		Target:   target,
		Button:   p.Button,
		Buttons:  p.Buttons,
		ShiftKey: p.Shift,
		CtrlKey:  p.Ctrl,
		AltKey:   p.Alt,
		MetaKey:  p.Meta,
		X:        p.X,
		Y:        p.Y,
	}
	if p.Type == dom.PointerOut && !p.Outside {
		ev.RelatedTarget = ws.doc.Body()
	}
	ws.doc.Dispatch(ev)

	ws.doc.Do(func() {
		ended = wasDragging && !ws.view.Dragging()
		final = ws.view.DeviceOrientation()
	})
	if ended {
		ws.publishRest(final)
	}
	return nil
}

// publishRest stores the resting orientation of a finished drag on the
// retained topic.
func (ws *webSession) publishRest(o orientation.DeviceOrientation) {
	cfg := ws.server.cfg
	if cfg.TopicOrientation == "" {
		return
	}
	msg := Message{DeviceOrientation: o.Rounded(), Source: orientation.SourceUserDrag, Session: ws.id, Time: time.Now()}
	if err := ws.server.publisher.Publish(cfg.TopicOrientation, true, msg); err != nil {
		ws.logger.Warn("publish failed", zap.Error(err))
	}
}

func (ws *webSession) state() *WidgetState {
	var st *WidgetState
	ws.doc.Do(func() {
		st = &WidgetState{
			Session:         ws.id,
			Orientation:     ws.view.DeviceOrientation().Rounded(),
			Transform:       ws.view.Layer().Style("transform"),
			Animating:       ws.view.Stage().HasClass(orientation.AnimatingClass),
			Dragging:        ws.view.Dragging(),
			OverrideEnabled: ws.view.OverrideEnabled(),
			StageCursor:     ws.view.Stage().Style("cursor"),
			BodyCursor:      ws.doc.Body().Style("cursor"),
		}
	})
	return st
}

func (ws *webSession) write(resp WSResponse) {
	ws.writeMu.Lock()
	defer ws.writeMu.Unlock()
	if err := ws.conn.WriteJSON(resp); err != nil {
		ws.logger.Debug("websocket write error", zap.Error(err))
	}
}

func (ws *webSession) sendState() {
	ws.write(WSResponse{Type: "state", State: ws.state()})
}

func (ws *webSession) sendPresets() {
	ws.write(WSResponse{Type: "presets", Presets: ws.server.presets.List()})
}

func (ws *webSession) sendError(message string) {
	sendError(ws.conn, &ws.writeMu, message)
}

func sendError(conn *websocket.Conn, mu *sync.Mutex, message string) {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	conn.WriteJSON(WSResponse{Type: "error", Message: message})
}

func (ws *webSession) close() {
	ws.doc.Do(ws.view.Destroy)
	ws.logger.Info("session closed")
}
