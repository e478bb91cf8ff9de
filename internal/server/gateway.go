package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sabridge/internal/appliance"
	"github.com/muurk/sabridge/internal/bridge"
	"github.com/muurk/sabridge/internal/config"
	"github.com/muurk/sabridge/internal/logging"
	"github.com/muurk/sabridge/internal/protocol"
)

// reconnectDelay is the fixed wait between outbound connection attempts
// in client role. Deliberately not exponential.
const reconnectDelay = 5 * time.Second

// Gateway bridges one serial channel to one TCP/IP client at a time.
type Gateway struct {
	cfg      *config.Config
	serial   io.ReadWriteCloser
	codec    *protocol.Codec
	registry *appliance.Registry

	shutdown chan struct{}
}

// New creates a Gateway over an already-open serial channel. The
// configured type id must name a registered device profile; a typo
// fails here rather than on the first client command.
func New(cfg *config.Config, serial io.ReadWriteCloser) (*Gateway, error) {
	registry := appliance.NewRegistry()
	if _, err := registry.Profile(cfg.TypeID); err != nil {
		return nil, fmt.Errorf("type_id %d: %w", cfg.TypeID, err)
	}
	return &Gateway{
		cfg:      cfg,
		serial:   serial,
		codec:    protocol.NewCodec(),
		registry: registry,
		shutdown: make(chan struct{}),
	}, nil
}

// Run serves clients until an operator interrupt.
func (g *Gateway) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logging.Info("Shutdown signal received, stopping bridge...")
		close(g.shutdown)
		_ = g.serial.Close()
	}()

	if g.cfg.Network.Connect != "" {
		return g.runClient()
	}
	if g.cfg.Network.WebSocket {
		return g.runWebSocket()
	}
	return g.runServer()
}

func (g *Gateway) stopping() bool {
	select {
	case <-g.shutdown:
		return true
	default:
		return false
	}
}

// runServer listens and serves one inbound TCP client at a time.
func (g *Gateway) runServer() error {
	addr := fmt.Sprintf("%s:%d", g.cfg.Network.ListenHost, g.cfg.Network.ListenPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	defer listener.Close()
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

	logging.Info("Waiting for connection",
		zap.String("addr", addr),
		zap.Uint8("type_id", g.cfg.TypeID),
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if g.stopping() {
				return nil
			}
			logging.Error("Failed to accept connection", zap.Error(err))
			continue
		}
		configureTCP(conn)
		logging.LogConnection(conn.RemoteAddr().String(), "connected")

		// One client at a time: the accept loop blocks until this
		// socket is released.
		g.serveConn(conn, conn.RemoteAddr().String())
		logging.LogConnection(conn.RemoteAddr().String(), "disconnected")

		if g.stopping() {
			return nil
		}
	}
}

// runClient dials out and retries after a fixed delay on failure or
// disconnect.
func (g *Gateway) runClient() error {
	target := g.cfg.Network.Connect
	for {
		if g.stopping() {
			return nil
		}
		logging.Info("Opening connection", zap.String("target", target))
		conn, err := net.DialTimeout("tcp", target, reconnectDelay)
		if err != nil {
			logging.Warn("Connection attempt failed", zap.Error(err))
			if g.sleep(reconnectDelay) {
				return nil
			}
			continue
		}
		configureTCP(conn)
		logging.LogConnection(target, "connected")

		g.serveConn(conn, target)
		logging.LogConnection(target, "disconnected")

		if g.sleep(reconnectDelay) {
			return nil
		}
	}
}

// sleep waits d unless shutdown arrives first; reports shutdown.
func (g *Gateway) sleep(d time.Duration) bool {
	select {
	case <-g.shutdown:
		return true
	case <-time.After(d):
		return false
	}
}

// configureTCP applies keepalive tuning so dead clients are detected
// within a few seconds, and disables Nagle for the line protocol.
func configureTCP(conn net.Conn) {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tcp.SetNoDelay(true)
	_ = tcp.SetKeepAliveConfig(net.KeepAliveConfig{
		Enable:   true,
		Idle:     1 * time.Second,
		Interval: 1 * time.Second,
		Count:    3,
	})
}

// serveConn runs one client session to completion: a background serial
// pump feeds frames to the session while the foreground loop feeds it
// client lines.
func (g *Gateway) serveConn(conn io.ReadWriteCloser, remoteAddr string) {
	defer conn.Close()

	session := bridge.NewSession(g.cfg.TypeID, g.codec, g.registry, g.serial, conn)

	pumpDone := make(chan struct{})
	connDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		g.pump(session, connDone)
		// A pump-side failure must unblock the client read loop too.
		_ = conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		action, err := session.HandleClientText(scanner.Text())
		if err != nil {
			logging.Warn("session error", zap.String("remote_addr", remoteAddr), zap.Error(err))
			break
		}
		if action == bridge.ActionClose {
			break
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		logging.Info("client read ended", zap.String("remote_addr", remoteAddr), zap.Error(err))
	}

	close(connDone)
	<-pumpDone
}
