package appliance

import (
	"fmt"
	"strings"

	"github.com/muurk/sabridge/internal/protocol"
)

// Device type ids assigned by the protocol's device classification.
const (
	TypeAirConditioner byte = 0x01
	TypeDehumidifier   byte = 0x04
)

// DeviceProfile is the capability set of one device kind: its ordered
// service list plus the lookup indexes built from it.
type DeviceProfile struct {
	TypeID   byte
	Name     string
	Services []ServiceDescriptor

	byID   map[byte]*ServiceDescriptor
	byName map[string]*ServiceDescriptor
}

func newProfile(typeID byte, name string, services []ServiceDescriptor) *DeviceProfile {
	p := &DeviceProfile{
		TypeID:   typeID,
		Name:     name,
		Services: services,
		byID:     make(map[byte]*ServiceDescriptor, len(services)),
		byName:   make(map[string]*ServiceDescriptor, len(services)),
	}
	for i := range services {
		s := &p.Services[i]
		p.byID[s.ID] = s
		p.byName[strings.ToLower(s.Name)] = s
	}
	return p
}

// Service returns the descriptor for a raw service id.
func (p *DeviceProfile) Service(id byte) (*ServiceDescriptor, bool) {
	s, ok := p.byID[id]
	return s, ok
}

// Helps returns the client-facing summary of every service in declared
// order.
func (p *DeviceProfile) Helps() []CommandHelp {
	helps := make([]CommandHelp, 0, len(p.Services))
	for i := range p.Services {
		helps = append(helps, p.Services[i].Help())
	}
	return helps
}

// Registry is the immutable type-id-keyed profile table. Built once at
// startup; safe for concurrent readers.
type Registry struct {
	profiles map[byte]*DeviceProfile
}

// NewRegistry builds the registry with every supported device kind.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[byte]*DeviceProfile)}
	r.register(newDehumidifierProfile())
	r.register(newAirConditionerProfile())
	return r
}

func (r *Registry) register(p *DeviceProfile) {
	r.profiles[p.TypeID] = p
}

// Profile returns the profile for a device type id.
func (r *Registry) Profile(typeID byte) (*DeviceProfile, error) {
	p, ok := r.profiles[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedDeviceType, typeID)
	}
	return p, nil
}

// TranslateCommandName resolves a case-insensitive command name to its
// service id.
func (r *Registry) TranslateCommandName(typeID byte, name string) (byte, error) {
	p, err := r.Profile(typeID)
	if err != nil {
		return 0, err
	}
	s, ok := p.byName[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q for %s", ErrUnknownCommand, name, p.Name)
	}
	return s.ID, nil
}

// DecodeServiceValue interprets one raw big-endian service value under
// the device's decode table.
func (r *Registry) DecodeServiceValue(typeID, serviceID byte, raw uint16) (StateReport, error) {
	p, err := r.Profile(typeID)
	if err != nil {
		return StateReport{}, err
	}
	s, ok := p.Service(serviceID)
	if !ok {
		return StateReport{}, fmt.Errorf("%w: service 0x%02x for %s",
			ErrUnknownCommand, serviceID, p.Name)
	}
	return s.Decode(raw)
}

// DecodeAllStates walks a states payload in fixed 3-byte records, in the
// order the device emitted them, and decodes each through the profile.
func (r *Registry) DecodeAllStates(typeID byte, data []byte) ([]StateReport, error) {
	p, err := r.Profile(typeID)
	if err != nil {
		return nil, err
	}
	records, err := protocol.ParseServiceRecords(data)
	if err != nil {
		return nil, err
	}
	reports := make([]StateReport, 0, len(records))
	for _, rec := range records {
		s, ok := p.Service(rec.ServiceID)
		if !ok {
			return nil, fmt.Errorf("%w: service 0x%02x for %s",
				ErrUnknownCommand, rec.ServiceID, p.Name)
		}
		report, err := s.Decode(rec.Raw)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
