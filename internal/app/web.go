// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/orientation_widget/internal/config"
	"github.com/relabs-tech/orientation_widget/internal/drag"
	"github.com/relabs-tech/orientation_widget/internal/heading"
	"github.com/relabs-tech/orientation_widget/internal/logging"
	"github.com/relabs-tech/orientation_widget/internal/orientation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Server hosts one widget per websocket session and keeps the latest
// orientation from any of them.
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	presets   *orientation.Presets
	registry  *drag.Registry
	publisher Publisher

	mu         sync.RWMutex
	latest     orientation.DeviceOrientation
	haveLatest bool
	sessions   map[string]*webSession
}

// NewServer loads the preset file named in cfg. A nil publisher disables
// publishing.
func NewServer(cfg *config.Config, logger *zap.Logger, publisher Publisher) (*Server, error) {
	logger = logging.OrNop(logger)
	presets, err := orientation.LoadPresets(cfg.PresetsFile)
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		presets:   presets,
		registry:  drag.NewRegistry(logger),
		publisher: publisher,
		sessions:  make(map[string]*webSession),
	}
	if cfg.InitialOrientation != nil {
		s.latest, s.haveLatest = *cfg.InitialOrientation, true
	}
	return s, nil
}

// Handler routes the API, the websocket and the static page.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// JSON API endpoint: latest orientation
	mux.HandleFunc("/api/orientation", func(w http.ResponseWriter, r *http.Request) {
		o, ok := s.Latest()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, s.logger, o)
	})

	mux.HandleFunc("/api/orientation.png", func(w http.ResponseWriter, r *http.Request) {
		o, _ := s.Latest()
		w.Header().Set("Content-Type", "image/png")
		if err := EncodeSnapshot(w, o, s.cfg.SnapshotWidth, s.cfg.SnapshotHeight); err != nil {
			s.logger.Warn("snapshot failed", zap.Error(err))
		}
	})

	mux.HandleFunc("/api/presets", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.logger, s.presets.List())
	})

	mux.HandleFunc("/ws", s.handleWS)

	// Static files from the web root
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.WebRoot)))
	return mux
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("json encode error", zap.Error(err))
	}
}

// Latest returns the most recent orientation of any session.
func (s *Server) Latest() (orientation.DeviceOrientation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.haveLatest
}

// record stores o and publishes it. Drag moves go to the drag topic
// unretained; everything else replaces the retained orientation.
func (s *Server) record(o orientation.DeviceOrientation, src orientation.Source, session string) {
	s.mu.Lock()
	s.latest, s.haveLatest = o, true
	s.mu.Unlock()

	topic, retained := s.cfg.TopicOrientation, true
	if src == orientation.SourceUserDrag {
		topic, retained = s.cfg.TopicOrientationDrag, false
	}
	if topic == "" {
		return
	}
	msg := Message{DeviceOrientation: o, Source: src, Session: session, Time: time.Now()}
	if err := s.publisher.Publish(topic, retained, msg); err != nil {
		s.logger.Warn("publish failed", zap.Error(err))
	}
}

// ApplyHeading sets alpha from r on every session not being dragged. With
// no sessions open the latest orientation is updated directly.
func (s *Server) ApplyHeading(r heading.Reading) {
	s.mu.RLock()
	sessions := make([]*webSession, 0, len(s.sessions))
	for _, ws := range s.sessions {
		sessions = append(sessions, ws)
	}
	s.mu.RUnlock()

	if len(sessions) == 0 {
		o, _ := s.Latest()
		s.record(heading.Apply(o, r), orientation.SourceHeadingFeed, "")
		return
	}

	for _, ws := range sessions {
		ws.doc.Do(func() {
			if ws.view.Dragging() {
				return
			}
			o := heading.Apply(ws.view.DeviceOrientation(), r)
			ws.view.SetDeviceOrientation(&o, orientation.SourceHeadingFeed)
		})
		ws.sendState()
	}
}

func (s *Server) addSession(ws *webSession) {
	s.mu.Lock()
	s.sessions[ws.id] = ws
	s.mu.Unlock()
}

func (s *Server) removeSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// SessionCount is the number of open websocket sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()

	var ws *webSession

	// Main message loop
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read error", zap.Error(err))
			}
			break
		}

		if msg.Action == "init" {
			if ws != nil {
				ws.sendError("session already initialized")
				continue
			}
			ws = newWebSession(s, conn, msg)
			s.addSession(ws)
			ws.sendPresets()
			ws.sendState()
			continue
		}

		if ws == nil {
			sendError(conn, nil, "init required")
			continue
		}
		if err := ws.handle(msg); err != nil {
			ws.sendError(err.Error())
			continue
		}
		ws.sendState()
	}

	if ws != nil {
		ws.close()
		s.removeSession(ws.id)
	}
}

// RunWeb serves the widget until ctx is done.
func RunWeb(ctx context.Context) error {
	cfg := config.Get()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	publisher, err := NewPublisher(cfg.MQTTBroker, cfg.MQTTClientIDWeb, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	server, err := NewServer(cfg, logger, publisher)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler: server.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("web server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if cfg.HeadingSerialPort != "" {
		g.Go(func() error {
			return runHeadingFeed(ctx, cfg, logger, server.ApplyHeading)
		})
	}
	return g.Wait()
}

// runHeadingFeed reads the configured serial port until ctx is done.
func runHeadingFeed(ctx context.Context, cfg *config.Config, logger *zap.Logger, apply func(heading.Reading)) error {
	port, err := heading.OpenSerial(cfg.HeadingSerialPort, uint(cfg.HeadingBaudRate))
	if err != nil {
		return err
	}
	logger.Info("heading feed opened",
		zap.String("port", cfg.HeadingSerialPort), zap.Int("baud", cfg.HeadingBaudRate))

	// closing the port unblocks the reader
	stop := context.AfterFunc(ctx, func() { port.Close() })
	defer func() {
		if stop() {
			port.Close()
		}
	}()

	return heading.Feed(ctx, port, logger, apply)
}
