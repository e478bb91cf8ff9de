package appliance

import (
	"fmt"
	"math"
)

// ServiceDescriptor declares one device service: its wire id, the
// command name clients use, and the rule that turns a raw big-endian
// value into something human-readable.
//
// A descriptor decodes through exactly one of two rules: when Enum is
// non-nil the raw value maps through the table; otherwise the value is
// raw multiplied by Scale, bounded by [Min, Max].
type ServiceDescriptor struct {
	ID       byte
	Name     string
	Unit     string
	Scale    float64
	Min, Max uint16
	Enum     map[uint16]string
	Writable bool
}

// StateReport is the decoded, client-facing interpretation of one raw
// service reading.
type StateReport struct {
	Description string `json:"description"`
	Value       any    `json:"value"`
	Unit        string `json:"unit,omitempty"`
}

// Decode interprets a raw service value under this descriptor's rule.
func (s *ServiceDescriptor) Decode(raw uint16) (StateReport, error) {
	report := StateReport{Description: s.Name, Unit: s.Unit}

	if s.Enum != nil {
		label, ok := s.Enum[raw]
		if !ok {
			return StateReport{}, fmt.Errorf("%w: %s has no mapping for %d",
				ErrValueOutOfRange, s.Name, raw)
		}
		report.Value = label
		return report, nil
	}

	if raw < s.Min || raw > s.Max {
		return StateReport{}, fmt.Errorf("%w: %s value %d outside [%d, %d]",
			ErrValueOutOfRange, s.Name, raw, s.Min, s.Max)
	}

	scale := s.Scale
	if scale == 0 {
		scale = 1
	}
	if scale == math.Trunc(scale) {
		report.Value = int(float64(raw) * scale)
	} else {
		report.Value = float64(raw) * scale
	}
	return report, nil
}

// CommandHelp summarizes a service for client-facing listings.
type CommandHelp struct {
	Name     string   `json:"name"`
	Writable bool     `json:"writable"`
	Unit     string   `json:"unit,omitempty"`
	Choices  []string `json:"choices,omitempty"`
}

// Help returns the client-facing summary of this service.
func (s *ServiceDescriptor) Help() CommandHelp {
	help := CommandHelp{Name: s.Name, Writable: s.Writable, Unit: s.Unit}
	if s.Enum != nil {
		// Walk the enum domain in value order for stable output.
		for v := uint16(0); len(help.Choices) < len(s.Enum); v++ {
			if label, ok := s.Enum[v]; ok {
				help.Choices = append(help.Choices, label)
			}
		}
	}
	return help
}
