package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"airsense_console/internal/service"
	"airsense_console/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	maxMsgSize  = 1 << 12 // 4 KB
	minInterval = time.Second
	maxInterval = time.Hour
)

// wsEnvelope is the frame sent to live view clients: "state" carries the view
// state name, "charts" the chart configurations, "error" a failed load.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // same-site cookie guards the session
}

// wsDevice streams the detail view of one device. The view lives as long as
// the connection; without an interval it is loaded once.
func (h *Handler) wsDevice(c *gin.Context) {
	interval := parseInterval(c)
	sess := currentSession(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go h.startReader(conn, cancel)

	view := h.services.DeviceView(sess, c.Param("id"), service.ViewOptions{
		OnState: func(s service.ViewState) {
			if err := writeEnvelope(conn, wsEnvelope{Type: "state", Data: s.String()}); err != nil {
				h.log.Infow("ws_write_failed", "err", err)
			}
		},
	})
	log := h.log.With("device_id", view.ID(), "interval", interval)

	if !h.pushDevice(ctx, conn, sess, view) {
		return
	}

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Infow("ws_ping_failed", "err", err)
				return
			}
		case <-tick:
			if !h.pushDevice(ctx, conn, sess, view) {
				return
			}
		}
	}
}

// pushDevice loads the view and sends its charts. It reports whether the
// connection should stay open.
func (h *Handler) pushDevice(ctx context.Context, conn *websocket.Conn, sess *session.Accessor, view *service.DeviceView) bool {
	err := view.Load(ctx)
	if ctx.Err() != nil {
		return false
	}
	if err != nil && h.clearOnAuthError(ctx, sess, err) {
		_ = writeEnvelope(conn, wsEnvelope{Type: "error", Error: "not logged in"})
		return false
	}

	resp := viewCharts(view)
	env := wsEnvelope{Type: "charts", Data: resp.Charts}
	if err != nil {
		env = wsEnvelope{Type: "error", Data: resp.Charts, Error: resp.Error}
	}
	if err := writeEnvelope(conn, env); err != nil {
		h.log.Infow("ws_write_failed", "err", err)
		return false
	}
	return true
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}

// parseInterval reads ?interval=2s or ?interval_ms=2000. Values outside
// [minInterval, maxInterval] are ignored; zero means no refresh.
func parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= minInterval && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil {
			d := time.Duration(v) * time.Millisecond
			if d >= minInterval && d <= maxInterval {
				return d
			}
		}
	}

	return 0
}

// startReader drains incoming messages to handle control frames and cancels
// the view once the peer goes away.
func (h *Handler) startReader(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Infow("ws_read_closed", "err", err)
			return
		}
	}
}
