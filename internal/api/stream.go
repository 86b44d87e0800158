package api

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/habitat/internal/engine"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamMessage is one websocket frame. Exactly one payload field is set,
// matching Type: "station" once on connect, then "frame" and "event".
type streamMessage struct {
	Type    string              `json:"type"`
	Station *engine.StationView `json:"station,omitempty"`
	Frame   *engine.Frame       `json:"frame,omitempty"`
	Event   *engine.Event       `json:"event,omitempty"`
}

// handleStream pushes the station layout, then inhabitant positions at a
// fixed period plus every event as it happens. The feed is one-way; anything
// the client sends is discarded.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	limit := s.MaxStreamConns
	if limit <= 0 {
		limit = 4
	}
	if current := atomic.AddInt32(&s.streamConns, 1); current > limit {
		atomic.AddInt32(&s.streamConns, -1)
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.streamConns, -1)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	subID, events := s.Sim.Subscribe()
	defer s.Sim.Unsubscribe(subID)
	slog.Info("stream client connected", "sub_id", subID, "remote", r.RemoteAddr)

	// Drain reads so close frames are processed; exit when the peer goes away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(msg streamMessage) bool {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return false
		}
		return conn.WriteJSON(msg) == nil
	}

	layout := s.Sim.StationLayout()
	if !send(streamMessage{Type: "station", Station: &layout}) {
		return
	}

	interval := s.FrameInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	frames := time.NewTicker(interval)
	defer frames.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-frames.C:
			frame := s.Sim.CurrentFrame()
			if !send(streamMessage{Type: "frame", Frame: &frame}) {
				return
			}
		case e, ok := <-events:
			if !ok {
				return
			}
			if !send(streamMessage{Type: "event", Event: &e}) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			slog.Info("stream client disconnected", "sub_id", subID)
			return
		case <-r.Context().Done():
			return
		}
	}
}
