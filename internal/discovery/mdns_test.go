package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "bridge-host.local.",
		Port:     7777,
		Text:     []string{"type_id=4"},
		AddrIPv4: []net.IP{net.IPv4(192, 168, 1, 20)},
	}
	entry.Instance = "sabridge"

	b := parseServiceEntry(entry)
	if b == nil {
		t.Fatal("parseServiceEntry() = nil")
	}
	if b.IP != "192.168.1.20" || b.Port != 7777 {
		t.Errorf("addr = %s", b.Addr())
	}
	if b.TypeID != 4 {
		t.Errorf("TypeID = %d, want 4", b.TypeID)
	}
	if b.Hostname != "bridge-host.local" {
		t.Errorf("Hostname = %q", b.Hostname)
	}
}

func TestParseServiceEntrySkipsAddressless(t *testing.T) {
	if b := parseServiceEntry(&zeroconf.ServiceEntry{}); b != nil {
		t.Errorf("parseServiceEntry() = %v, want nil", b)
	}
	if b := parseServiceEntry(nil); b != nil {
		t.Errorf("parseServiceEntry(nil) = %v, want nil", b)
	}
}

func TestTypeIDDefaultsToUnknown(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		AddrIPv4: []net.IP{net.IPv4(10, 0, 0, 2)},
		Port:     7777,
	}
	b := parseServiceEntry(entry)
	if b.TypeID != -1 {
		t.Errorf("TypeID = %d, want -1", b.TypeID)
	}
}
