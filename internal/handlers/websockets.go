package handlers

import (
	"net/http"
	"strconv"
	"time"

	"sensor_simulator/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

const envelopeSnapshot = "snapshot"

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// The stream is read-only and the API is local, so any origin may connect.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// subscribe before reading Latest so no tick falls in between
	feed, unsubscribe := h.services.Monitoring.Subscribe(0)
	defer unsubscribe()

	done := make(chan struct{})
	go h.startReader(conn, done)

	flush := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		flush.Stop()
		ping.Stop()
	}()

	var lastSent int64
	if snap, ok := h.services.Monitoring.Latest(); ok {
		if err := h.sendSnapshot(conn, snap); err != nil {
			if h.log != nil {
				h.log.Infow("ws_write_failed_initial", "err", err)
			}
			return
		}
		lastSent = snap.Tick
	}

	// newest unsent snapshot; flushed at most once per interval
	var pending *models.Snapshot
	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case snap, ok := <-feed:
			if !ok {
				return
			}
			if snap.Tick > lastSent {
				pending = &snap
			}
		case <-flush.C:
			if pending == nil {
				continue
			}
			if err := h.sendSnapshot(conn, *pending); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
			lastSent = pending.Tick
			pending = nil
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		}
	}
}

// Helper: parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return interval
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// Helper: sendSnapshot writes one snapshot envelope with a write deadline.
func (h *Handler) sendSnapshot(conn *websocket.Conn, snap models.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: envelopeSnapshot, Data: snap})
}
