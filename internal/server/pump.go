package server

import (
	"time"

	"go.uber.org/zap"

	"github.com/muurk/sabridge/internal/bridge"
	"github.com/muurk/sabridge/internal/logging"
	"github.com/muurk/sabridge/internal/protocol"
)

// pollInterval is how often a blocked serial read wakes so the pump can
// observe connection teardown and the frame timeout.
const pollInterval = 200 * time.Millisecond

// readTimeoutSetter is the optional deadline surface of the serial
// port. go.bug.st/serial ports implement it; test fakes need not.
type readTimeoutSetter interface {
	SetReadTimeout(t time.Duration) error
}

// pump reads serial bytes into a frame assembler and hands completed
// frames to the session until the connection ends or the serial channel
// fails.
//
// Assembler errors follow the drop-and-resync policy: the partial
// buffer is discarded with a log line and accumulation restarts at the
// next byte. The optional frame timeout bounds how long an outstanding
// command may wait for its frame; it changes nothing when disabled.
func (g *Gateway) pump(session *bridge.Session, done <-chan struct{}) {
	assembler := protocol.NewAssembler(g.cfg.MaxFrameSize)
	frameTimeout := g.cfg.FrameTimeout.Std()

	if setter, ok := g.serial.(readTimeoutSetter); ok {
		if err := setter.SetReadTimeout(pollInterval); err != nil {
			logging.Warn("failed to set serial read timeout", zap.Error(err))
		}
	}

	buf := make([]byte, 256)
	for {
		select {
		case <-done:
			return
		default:
		}

		n, err := g.serial.Read(buf)
		if err != nil {
			// Serial transport failure terminates the connection.
			logging.Error("serial read failed", zap.Error(err))
			return
		}

		for _, b := range buf[:n] {
			frame, err := assembler.Accept(b)
			if err != nil {
				// Drop-and-resync: surface the error, clear the buffer,
				// keep the session.
				logging.Warn("frame assembly failed, resyncing", zap.Error(err))
				assembler.Reset()
				continue
			}
			if frame == nil {
				continue
			}
			logging.LogSerialFrame(frame)
			if err := session.HandleFrame(frame); err != nil {
				logging.Info("client write failed", zap.Error(err))
				return
			}
		}

		// The timeout is enforced after every read, idle tick or not: a
		// device dribbling bytes that never complete a frame must not
		// hold an outstanding command open forever.
		if frameTimeout > 0 {
			if since, ok := session.OutstandingSince(); ok && time.Since(since) > frameTimeout {
				logging.Warn("outstanding command timed out",
					zap.Duration("timeout", frameTimeout))
				assembler.Reset()
				if _, err := session.ExpireOutstanding(); err != nil {
					return
				}
			}
		}
	}
}
