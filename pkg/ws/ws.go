// Package ws pushes server-side messages to a browser over a WebSocket
// using gorilla/websocket. The connection is write-only from the server's
// point of view: inbound frames are read only to answer pings and notice
// the close.
//
//	sub := hub.Subscribe("restaurante:3")
//	if err := ws.Stream(c.W, c.R, sub.C, sub.Close); err != nil {
//	    return // the upgrade already answered the request
//	}
package ws

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/marmita/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// upgrader uses gorilla's same-origin check.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// AllowOrigins accepts handshakes from the listed origins on top of the
// same-origin ones. "*" is ignored: the session cookie rides along.
func AllowOrigins(origins []string) {
	upgrader.CheckOrigin = OriginChecker(origins)
}

// OriginChecker is the check AllowOrigins installs.
func OriginChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o != "*" {
			allowed[strings.ToLower(strings.TrimRight(o, "/"))] = true
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return allowed[strings.ToLower(origin)]
	}
}

// Stream upgrades the request and writes every message received on msgs as
// a text frame. It returns once the connection is set up; release runs when
// the client goes away or msgs is closed.
func Stream(w http.ResponseWriter, r *http.Request, msgs <-chan []byte, release func()) error {
	conn, err := upgrader.Upgrade(hijacker(w), r, nil)
	if err != nil {
		logger.WithCtx(r.Context()).Warn("ws: upgrade failed", "error", err)
		release()
		return err
	}

	log := logger.WithCtx(r.Context())
	done := make(chan struct{})
	go readPump(conn, done)
	go func() {
		defer release()
		writePump(conn, msgs, done)
		log.Debug("ws: client disconnected", "path", r.URL.Path)
	}()
	log.Debug("ws: client connected", "path", r.URL.Path)
	return nil
}

// readPump discards inbound frames and closes done when the peer leaves.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws: unexpected close", "error", err)
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, msgs <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case msg, ok := <-msgs:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")) //nolint:errcheck
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// hijacker walks Unwrap chains of middleware writers down to the one that
// can be hijacked.
func hijacker(w http.ResponseWriter) http.ResponseWriter {
	for {
		if _, ok := w.(http.Hijacker); ok {
			return w
		}
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return w
		}
		w = u.Unwrap()
	}
}
