package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/sabridge/internal/logging"
)

var upgrader = websocket.Upgrader{
	// The bridge has no browser origin policy; it serves trusted LAN
	// tooling, same as the raw TCP surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// runWebSocket serves the line protocol over WebSocket text messages at
// /bridge. Sessions are serialized: one client at a time, matching the
// TCP surface.
func (g *Gateway) runWebSocket() error {
	addr := fmt.Sprintf("%s:%d", g.cfg.Network.ListenHost, g.cfg.Network.ListenPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	go func() {
		<-g.shutdown
		_ = listener.Close()
	}()

	if g.cfg.Network.Zeroconf {
		stop, err := g.advertise()
		if err != nil {
			logging.Warn("zeroconf advertisement failed", zap.Error(err))
		} else {
			defer stop()
		}
	}

	var sessions sync.Mutex
	mux := http.NewServeMux()
	mux.HandleFunc("/bridge", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		// Single-client invariant: later connections block here until
		// the current socket is released.
		sessions.Lock()
		defer sessions.Unlock()

		remote := r.RemoteAddr
		logging.LogConnection(remote, "websocket_connected")
		g.serveConn(newWSLineConn(conn), remote)
		logging.LogConnection(remote, "websocket_closed")
	})

	logging.Info("Waiting for websocket connection",
		zap.String("addr", addr),
		zap.String("path", "/bridge"),
	)
	err = http.Serve(listener, mux)
	if g.stopping() {
		return nil
	}
	return err
}

// wsLineConn adapts a WebSocket connection to the io surface the
// session loop expects: each text message is one client line, each
// reply Write is one text message.
type wsLineConn struct {
	conn *websocket.Conn
	rest []byte
}

func newWSLineConn(conn *websocket.Conn) *wsLineConn {
	return &wsLineConn{conn: conn}
}

func (w *wsLineConn) Read(p []byte) (int, error) {
	if len(w.rest) == 0 {
		for {
			msgType, data, err := w.conn.ReadMessage()
			if err != nil {
				return 0, err
			}
			if msgType != websocket.TextMessage {
				continue
			}
			if !strings.HasSuffix(string(data), "\n") {
				data = append(data, '\n')
			}
			w.rest = data
			break
		}
	}
	n := copy(p, w.rest)
	w.rest = w.rest[n:]
	return n, nil
}

func (w *wsLineConn) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	if err := w.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsLineConn) Close() error {
	return w.conn.Close()
}
