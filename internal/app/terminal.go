// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/relabs-tech/orientation_widget/internal/config"
	"github.com/relabs-tech/orientation_widget/internal/dom"
	"github.com/relabs-tech/orientation_widget/internal/heading"
	"github.com/relabs-tech/orientation_widget/internal/logging"
	"github.com/relabs-tech/orientation_widget/internal/orientation"
)

// Terminal cells are about twice as tall as wide; stage units are half a
// cell high so the trackball stays round.
const (
	terminalHeaderRows = 2
	terminalFooterRows = 1
	cellUnitsY         = 2
)

const terminalLogFile = "orientation_terminal.log"

const terminalHelp = "drag: rotate  shift+drag: spin  r: reset  1-6: presets  q: quit"

var shadeRamp = []rune(" .:-=+*#%@")

// terminalHost drives a widget from tcell mouse and key events.
type terminalHost struct {
	doc       *dom.Document
	view      *orientation.View
	publisher Publisher
	cfg       *config.Config
	logger    *zap.Logger

	width, height int
	buttons       tcell.ButtonMask
	status        string
}

func newTerminalHost(cfg *config.Config, logger *zap.Logger, publisher Publisher) (*terminalHost, error) {
	presets, err := orientation.LoadPresets(cfg.PresetsFile)
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}

	h := &terminalHost{
		doc:       dom.NewDocument(),
		publisher: publisher,
		cfg:       cfg,
		logger:    logging.OrNop(logger),
	}
	container := h.doc.Body().CreateChild("div", "orientation-group")
	h.view = orientation.Register(container,
		orientation.WithLogger(h.logger),
		orientation.WithStartDelay(time.Duration(cfg.DragStartDelayMS)*time.Millisecond),
		orientation.WithCursors(cfg.DragCursor, cfg.HoverCursor),
		orientation.WithPresets(presets),
	)

	h.doc.Do(func() {
		h.view.CreateDeviceOrientation()
		if cfg.InitialOrientation != nil {
			o := *cfg.InitialOrientation
			h.view.SetDeviceOrientation(&o, orientation.SourceUserInput)
		}
		h.view.OnChangeDeviceOrientation(h.publish)
	})
	return h, nil
}

func (h *terminalHost) publish(o orientation.DeviceOrientation) {
	src := h.view.LastSource()
	topic, retained := h.cfg.TopicOrientation, true
	if src == orientation.SourceUserDrag {
		topic, retained = h.cfg.TopicOrientationDrag, false
	}
	if topic == "" {
		return
	}
	msg := Message{DeviceOrientation: o, Source: src, Time: time.Now()}
	if err := h.publisher.Publish(topic, retained, msg); err != nil {
		h.logger.Warn("publish failed", zap.Error(err))
	}
}

// stageRect is the stage in stage units for the current screen size.
func (h *terminalHost) stageRect() dom.Rect {
	rows := h.height - terminalHeaderRows - terminalFooterRows
	if rows < 0 {
		rows = 0
	}
	return dom.Rect{
		Left:   0,
		Top:    float64(terminalHeaderRows * cellUnitsY),
		Width:  float64(h.width),
		Height: float64(rows * cellUnitsY),
	}
}

func (h *terminalHost) resize(width, height int) {
	h.width, h.height = width, height
	h.doc.Do(func() { h.view.Stage().SetBoundingClientRect(h.stageRect()) })
}

// handleMouse turns a tcell mouse report into pointer events. tcell only
// reports button state, so presses and releases are found by comparing
// with the previous report.
func (h *terminalHost) handleMouse(x, y int, buttons tcell.ButtonMask, mods tcell.ModMask) {
	ev := &dom.Event{
		X:        float64(x) + 0.5,
		Y:        float64(y*cellUnitsY) + cellUnitsY/2,
		ShiftKey: mods&tcell.ModShift != 0,
		CtrlKey:  mods&tcell.ModCtrl != 0,
		AltKey:   mods&tcell.ModAlt != 0,
		MetaKey:  mods&tcell.ModMeta != 0,
	}

	rect := h.stageRect()
	onStage := ev.X >= rect.Left && ev.X < rect.Left+rect.Width && ev.Y >= rect.Top && ev.Y < rect.Top+rect.Height
	ev.Target = h.doc.Body()
	if onStage {
		ev.Target = h.view.Stage()
	}

	pressed := buttons&tcell.Button1 != 0
	wasPressed := h.buttons&tcell.Button1 != 0
	h.buttons = buttons

	switch {
	case pressed && !wasPressed:
		ev.Type = dom.PointerDown
		ev.Button = dom.ButtonPrimary
		ev.Buttons = dom.ButtonsPrimary
	case pressed:
		ev.Type = dom.PointerMove
		ev.Buttons = dom.ButtonsPrimary
	case buttons&(tcell.Button2|tcell.Button3) != 0:
		ev.Type = dom.PointerDown
		ev.Button = dom.ButtonSecondary
		ev.Buttons = dom.ButtonsSecondary
	case wasPressed:
		ev.Type = dom.PointerUp
	default:
		ev.Type = dom.PointerMove
	}
	h.doc.Dispatch(ev)
}

// handleKey applies a key press and reports whether the host should quit.
func (h *terminalHost) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	switch r := ev.Rune(); {
	case r == 'q' || r == 'Q':
		return true
	case r == 'r' || r == 'R':
		h.doc.Do(h.view.ResetDeviceOrientation)
		h.status = "reset"
	case r >= '1' && r <= '9':
		presets := h.view.Presets().List()
		i := int(r - '1')
		if i >= len(presets) {
			return false
		}
		h.doc.Do(func() {
			if err := h.view.SelectPreset(presets[i].Name); err != nil {
				h.status = err.Error()
				return
			}
			h.status = presets[i].Name
		})
	}
	return false
}

func (h *terminalHost) draw(s tcell.Screen) {
	var (
		o        orientation.DeviceOrientation
		dragging bool
	)
	h.doc.Do(func() {
		o = h.view.DeviceOrientation().Rounded()
		dragging = h.view.Dragging()
	})

	s.Clear()
	header := tcell.StyleDefault.Bold(true)
	drawText(s, 0, 0, header, fmt.Sprintf("alpha %8.2f  beta %8.2f  gamma %8.2f", o.Alpha, o.Beta, o.Gamma))
	status := h.status
	if dragging {
		status = "dragging"
	}
	drawText(s, 0, 1, tcell.StyleDefault.Dim(true), status)

	rect := h.stageRect()
	if rect.Width > 0 && rect.Height > 0 {
		radius := min(rect.Width, rect.Height) / 2
		cx := rect.Left + rect.Width/2
		cy := rect.Top + rect.Height/2
		faces := projectBox(o, cx, cy, radius*1.6, radius*1.6)

		for row := terminalHeaderRows; row < h.height-terminalFooterRows; row++ {
			for col := 0; col < h.width; col++ {
				p := point2{X: float64(col) + 0.5, Y: float64(row*cellUnitsY) + cellUnitsY/2}
				for _, f := range faces {
					if !f.contains(p) {
						continue
					}
					c := shade(f.color, f.light)
					glyph := shadeRamp[min(len(shadeRamp)-1, int(f.light*float64(len(shadeRamp))))]
					style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
					s.SetContent(col, row, glyph, nil, style)
					break
				}
			}
		}
	}

	drawText(s, 0, h.height-1, tcell.StyleDefault.Dim(true), terminalHelp)
	s.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, str string) {
	for i, r := range []rune(str) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

// RunTerminal shows the widget in the terminal until q or Esc.
func RunTerminal(ctx context.Context) error {
	cfg := config.Get()
	// stderr belongs to the screen
	logger, err := logging.NewWithOutput(cfg.LogLevel, cfg.LogFormat, terminalLogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	publisher, err := NewPublisher(cfg.MQTTBroker, cfg.MQTTClientIDTerminal, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("screen init failed: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("screen start failed: %w", err)
	}
	defer s.Fini()
	s.EnableMouse()

	return runTerminal(ctx, s, cfg, logger, publisher)
}

func runTerminal(ctx context.Context, s tcell.Screen, cfg *config.Config, logger *zap.Logger, publisher Publisher) error {
	h, err := newTerminalHost(cfg, logger, publisher)
	if err != nil {
		return err
	}
	defer h.doc.Do(h.view.Destroy)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.HeadingSerialPort != "" {
		go func() {
			err := runHeadingFeed(ctx, cfg, logger, func(r heading.Reading) {
				h.doc.Do(func() {
					if h.view.Dragging() {
						return
					}
					o := heading.Apply(h.view.DeviceOrientation(), r)
					h.view.SetDeviceOrientation(&o, orientation.SourceHeadingFeed)
				})
				s.PostEvent(tcell.NewEventInterrupt(nil))
			})
			if err != nil {
				logger.Warn("heading feed stopped", zap.Error(err))
			}
		}()
	}

	events := make(chan tcell.Event)
	quit := make(chan struct{})
	go s.ChannelEvents(events, quit)
	defer close(quit)

	h.resize(s.Size())
	h.draw(s)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if h.handleKey(ev) {
					return nil
				}
			case *tcell.EventMouse:
				x, y := ev.Position()
				h.handleMouse(x, y, ev.Buttons(), ev.Modifiers())
			case *tcell.EventResize:
				s.Sync()
				h.resize(s.Size())
			}
			h.draw(s)
		}
	}
}
