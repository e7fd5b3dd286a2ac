// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/orientation_widget/internal/config"
	"github.com/relabs-tech/orientation_widget/internal/dom"
	"github.com/relabs-tech/orientation_widget/internal/heading"
	"github.com/relabs-tech/orientation_widget/internal/orientation"
)

type published struct {
	topic    string
	retained bool
	msg      Message
}

type recordingPublisher struct {
	mu  sync.Mutex
	out []published
}

func (p *recordingPublisher) Publish(topic string, retained bool, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = append(p.out, published{topic, retained, msg})
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) messages() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.out...)
}

type webFixture struct {
	server    *Server
	http      *httptest.Server
	publisher *recordingPublisher
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()
	cfg := config.Default()
	cfg.WebRoot = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.WebRoot, "index.html"), []byte("<html>widget</html>"), 0o644))

	pub := &recordingPublisher{}
	server, err := NewServer(cfg, nil, pub)
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return &webFixture{server: server, http: ts, publisher: pub}
}

func (f *webFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *webFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.http.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func read(t *testing.T, conn *websocket.Conn) WSResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var resp WSResponse
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func send(t *testing.T, conn *websocket.Conn, msg WSMessage) WSResponse {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	return read(t, conn)
}

func initSession(t *testing.T, conn *websocket.Conn) *WidgetState {
	t.Helper()
	require.NoError(t, conn.WriteJSON(WSMessage{
		Action:    "init",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64)",
		Rect:      &dom.Rect{Width: 200, Height: 200},
	}))

	presets := read(t, conn)
	require.Equal(t, "presets", presets.Type)
	assert.Len(t, presets.Presets, 6)

	state := read(t, conn)
	require.Equal(t, "state", state.Type)
	require.NotNil(t, state.State)
	return state.State
}

func pointer(typ string, x, y float64, buttons int) WSMessage {
	return WSMessage{Action: "pointer", Pointer: &PointerMessage{
		Type: typ, OnStage: true, X: x, Y: y, Buttons: buttons, Shift: true,
	}}
}

func TestWebInitRequired(t *testing.T) {
	f := newWebFixture(t)
	conn := f.dial(t)

	resp := send(t, conn, WSMessage{Action: "reset"})
	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, "init required", resp.Message)
}

func TestWebSessionState(t *testing.T) {
	f := newWebFixture(t)
	conn := f.dial(t)

	st := initSession(t, conn)
	assert.NotEmpty(t, st.Session)
	assert.Equal(t, "rotateY(0deg) rotateX(0deg) rotateZ(0deg)", st.Transform)
	assert.Equal(t, orientation.DefaultHoverCursor, st.StageCursor)
	assert.True(t, st.OverrideEnabled)
	assert.Equal(t, 1, f.server.SessionCount())

	resp := send(t, conn, WSMessage{Action: "init"})
	assert.Equal(t, "error", resp.Type)
}

func TestWebDragPublishes(t *testing.T) {
	f := newWebFixture(t)
	conn := f.dial(t)
	initSession(t, conn)

	resp := send(t, conn, pointer(dom.PointerDown, 100, 100, dom.ButtonsPrimary))
	require.Equal(t, "state", resp.Type)
	assert.True(t, resp.State.Dragging)
	assert.Equal(t, orientation.DefaultDragCursor, resp.State.BodyCursor)

	resp = send(t, conn, pointer(dom.PointerMove, 110, 100, dom.ButtonsPrimary))
	require.Equal(t, "state", resp.Type)
	assert.InDelta(t, 1.6, resp.State.Orientation.Alpha, 1e-3)
	assert.False(t, resp.State.Animating)

	resp = send(t, conn, pointer(dom.PointerUp, 110, 100, 0))
	assert.False(t, resp.State.Dragging)
	assert.Empty(t, resp.State.BodyCursor)

	msgs := f.publisher.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "orientation/drag", msgs[0].topic)
	assert.False(t, msgs[0].retained)
	assert.Equal(t, orientation.SourceUserDrag, msgs[0].msg.Source)
	assert.Equal(t, "orientation/device", msgs[1].topic)
	assert.True(t, msgs[1].retained)
	assert.InDelta(t, 1.6, msgs[1].msg.Alpha, 1e-3)

	latest := f.get(t, "/api/orientation")
	require.Equal(t, http.StatusOK, latest.StatusCode)
	var o orientation.DeviceOrientation
	require.NoError(t, json.NewDecoder(latest.Body).Decode(&o))
	assert.InDelta(t, 1.6, o.Alpha, 1e-3)
}

func TestWebActions(t *testing.T) {
	f := newWebFixture(t)
	conn := f.dial(t)
	initSession(t, conn)

	resp := send(t, conn, WSMessage{Action: "reset"})
	assert.Equal(t, orientation.ResetOrientation, resp.State.Orientation)
	assert.True(t, resp.State.Animating)
	assert.Equal(t, "rotateY(0deg) rotateX(-90deg) rotateZ(0deg)", resp.State.Transform)

	resp = send(t, conn, WSMessage{Action: "preset", Preset: "Landscape left"})
	assert.Equal(t, orientation.DeviceOrientation{Alpha: 90, Gamma: -90}, resp.State.Orientation)

	resp = send(t, conn, WSMessage{Action: "preset", Preset: "Nope"})
	assert.Equal(t, "error", resp.Type)

	resp = send(t, conn, WSMessage{Action: "input", Alpha: "10", Beta: "20", Gamma: "30"})
	assert.Equal(t, orientation.DeviceOrientation{Alpha: 10, Beta: 20, Gamma: 30}, resp.State.Orientation)

	resp = send(t, conn, WSMessage{Action: "input"})
	assert.Equal(t, "error", resp.Type)

	disabled := false
	resp = send(t, conn, WSMessage{Action: "override", Enabled: &disabled})
	assert.False(t, resp.State.OverrideEnabled)
	resp = send(t, conn, pointer(dom.PointerDown, 100, 100, dom.ButtonsPrimary))
	assert.False(t, resp.State.Dragging)

	resp = send(t, conn, WSMessage{Action: "resize", Rect: &dom.Rect{Width: 400, Height: 300}})
	assert.Equal(t, "state", resp.Type)

	resp = send(t, conn, WSMessage{Action: "spin"})
	assert.Equal(t, "error", resp.Type)

	resp = send(t, conn, WSMessage{Action: "pointer", Pointer: &PointerMessage{Type: "click"}})
	assert.Equal(t, "error", resp.Type)

	for _, m := range f.publisher.messages() {
		assert.Equal(t, "orientation/device", m.topic)
		assert.True(t, m.retained)
	}
}

func TestWebHeadingFeed(t *testing.T) {
	f := newWebFixture(t)
	conn := f.dial(t)
	initSession(t, conn)

	send(t, conn, WSMessage{Action: "input", Alpha: "0", Beta: "45", Gamma: "10"})

	f.server.ApplyHeading(heading.Reading{Heading: 90})
	resp := read(t, conn)
	require.Equal(t, "state", resp.Type)
	assert.Equal(t, orientation.DeviceOrientation{Alpha: 270, Beta: 45, Gamma: 10}, resp.State.Orientation)
	assert.True(t, resp.State.Animating)

	msgs := f.publisher.messages()
	assert.Equal(t, orientation.SourceHeadingFeed, msgs[len(msgs)-1].msg.Source)
}

func TestWebHeadingFeedWithoutSessions(t *testing.T) {
	f := newWebFixture(t)
	f.server.ApplyHeading(heading.Reading{Heading: 270})

	o, ok := f.server.Latest()
	require.True(t, ok)
	assert.InDelta(t, 90, o.Alpha, 1e-9)
}

func TestWebSessionClosed(t *testing.T) {
	f := newWebFixture(t)
	conn := f.dial(t)
	initSession(t, conn)
	require.Equal(t, 1, f.server.SessionCount())

	conn.Close()
	assert.Eventually(t, func() bool { return f.server.SessionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebAPI(t *testing.T) {
	f := newWebFixture(t)

	resp := f.get(t, "/api/orientation")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = f.get(t, "/api/presets")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var presets []orientation.Preset
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&presets))
	assert.Len(t, presets, 6)

	resp = f.get(t, "/api/orientation.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	resp = f.get(t, "/")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "widget")
}

func TestNewServerInitialOrientation(t *testing.T) {
	cfg := config.Default()
	cfg.InitialOrientation = &orientation.DeviceOrientation{Beta: 90}
	server, err := NewServer(cfg, nil, nil)
	require.NoError(t, err)

	o, ok := server.Latest()
	require.True(t, ok)
	assert.Equal(t, 90.0, o.Beta)
}
