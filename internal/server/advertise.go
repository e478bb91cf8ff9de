package server

import (
	"fmt"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/sabridge/internal/logging"
)

// zeroconfService is the mDNS service type clients browse for.
const zeroconfService = "_sabridge._tcp"

// advertise registers the bridge on the local network so clients can
// discover it without knowing the host. Best effort: callers log and
// continue on failure.
func (g *Gateway) advertise() (stop func(), err error) {
	txt := []string{
		fmt.Sprintf("type_id=%d", g.cfg.TypeID),
	}
	srv, err := zeroconf.Register("sabridge", zeroconfService, "local.",
		g.cfg.Network.ListenPort, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Advertising service",
		zap.String("service", zeroconfService),
		zap.Int("port", g.cfg.Network.ListenPort),
	)
	return srv.Shutdown, nil
}
