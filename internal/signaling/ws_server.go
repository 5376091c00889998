package signaling

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/videomeet/relay/internal/config"
	"github.com/videomeet/relay/internal/metrics"
)

const wsCloseWait = 1 * time.Second

// WebSocketServer accepts client transports on /ws and feeds their message
// streams to the hub.
//
// Each connection gets one reader goroutine; the hub sees messages from a
// connection strictly in arrival order, which is what makes the per-peer
// state machine safe without per-message locking.
type WebSocketServer struct {
	cfg      config.Config
	hub      *Hub
	log      *slog.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
}

func NewWebSocketServer(cfg config.Config, hub *Hub, m *metrics.Metrics, logger *slog.Logger) *WebSocketServer {
	return &WebSocketServer{
		cfg:     cfg,
		hub:     hub,
		log:     logger,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}
}

func (s *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "err", err, "remote_addr", r.RemoteAddr)
		return
	}
	defer conn.Close()

	s.metrics.ConnectionsTotal.Inc()
	s.metrics.ActiveConnections.Inc()
	defer s.metrics.ActiveConnections.Dec()

	// Oversized messages error the read, which tears the connection down
	// through the normal implicit-leave path.
	conn.SetReadLimit(s.cfg.MaxSignalingMessageBytes)

	p := newPeer(conn, s.log)
	s.hub.Connect(p)
	defer s.hub.Disconnect(p)

	s.log.Debug("client connected", "remote_addr", r.RemoteAddr)

	limiter := newRateLimiter(s.cfg.MaxSignalingMessagesPerSecond)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Debug("websocket read failed", "err", err, "remote_addr", r.RemoteAddr)
			}
			return
		}
		if msgType != websocket.TextMessage {
			s.log.Debug("skipping non-text websocket frame", "remote_addr", r.RemoteAddr)
			continue
		}

		if !limiter.Allow(time.Now()) {
			writeClose(conn, websocket.ClosePolicyViolation, "rate limit exceeded")
			return
		}

		s.hub.HandleMessage(p, data)
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(wsCloseWait))
}

// originChecker allows every origin when no allowlist is configured (dev
// posture) and otherwise matches the Origin header against it. Requests
// without an Origin header (non-browser clients) are always allowed.
func originChecker(allowedOrigins []string) func(*http.Request) bool {
	if len(allowedOrigins) == 0 {
		return func(*http.Request) bool { return true }
	}

	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
			continue
		}
		allowed[strings.ToLower(o)] = struct{}{}
	}

	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		raw := r.Header.Get("Origin")
		if raw == "" {
			return true
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		_, ok := allowed[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}
