package discovery

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type bridges advertise as.
	ServiceType = "_sabridge._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for bridge discovery
	DefaultScanTimeout = 5 * time.Second
)

// Bridge is one discovered bridge instance.
type Bridge struct {
	Instance string
	Hostname string
	IP       string
	Port     int

	// TypeID is the appliance type the bridge serves, parsed from the
	// advertisement's TXT records (-1 when absent).
	TypeID int
}

// String returns a human-readable representation of the bridge.
func (b *Bridge) String() string {
	return fmt.Sprintf("%s at %s:%d (type_id %d)", b.Instance, b.IP, b.Port, b.TypeID)
}

// Addr returns the "host:port" dial target for the bridge.
func (b *Bridge) Addr() string {
	return fmt.Sprintf("%s:%d", b.IP, b.Port)
}

// Scanner handles mDNS bridge discovery
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration
}

// NewScanner creates a scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// Scan discovers all bridges on the local network.
func (s *Scanner) Scan(ctx context.Context) ([]*Bridge, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	bridges := make([]*Bridge, 0)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for entry := range entries {
			if b := parseServiceEntry(entry); b != nil {
				bridges = append(bridges, b)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-collected
	return bridges, nil
}

func parseServiceEntry(entry *zeroconf.ServiceEntry) *Bridge {
	if entry == nil || len(entry.AddrIPv4) == 0 {
		return nil
	}
	b := &Bridge{
		Instance: entry.Instance,
		Hostname: strings.TrimSuffix(entry.HostName, "."),
		IP:       entry.AddrIPv4[0].String(),
		Port:     entry.Port,
		TypeID:   -1,
	}
	for _, txt := range entry.Text {
		if v, ok := strings.CutPrefix(txt, "type_id="); ok {
			if n, err := strconv.Atoi(v); err == nil {
				b.TypeID = n
			}
		}
	}
	return b
}
