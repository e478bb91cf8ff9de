package protocol

import "fmt"

// Info service ids of the general (registration) device class.
const (
	SvcRegistration         byte = 0x00
	SvcReadClassID          byte = 0x01
	SvcReadProtocolVersion  byte = 0x02
	SvcReadTypeID           byte = 0x03
	SvcReadBrand            byte = 0x04
	SvcReadModel            byte = 0x05
	SvcReadSupportedService byte = 0x07
	SvcReadAllStates        byte = 0x08
)

// RequestLen is the fixed size of every request PDU.
const RequestLen = 6

// writeFlag marks a service id byte as a state write.
const writeFlag = 0x80

// infoServiceNames drives both validation and logging of info services.
var infoServiceNames = map[byte]string{
	SvcRegistration:         "registration",
	SvcReadClassID:          "read_class_id",
	SvcReadProtocolVersion:  "read_protocol_version",
	SvcReadTypeID:           "read_type_id",
	SvcReadBrand:            "read_brand",
	SvcReadModel:            "read_model",
	SvcReadSupportedService: "read_supported_services",
	SvcReadAllStates:        "read_all_states",
}

// InfoServiceName returns a human-readable name for an info service id.
func InfoServiceName(id byte) string {
	if name, ok := infoServiceNames[id]; ok {
		return name
	}
	return fmt.Sprintf("unknown(0x%02x)", id)
}

// Request is a typed serial request. Exactly one of the concrete types
// below; the codec turns it into a wire PDU.
type Request interface {
	// ServiceID is the service id the device's response must echo.
	ServiceID() byte
}

// InfoRequest queries one of the general info services (registration,
// class id, brand, ...).
type InfoRequest struct {
	Service byte
}

func (r InfoRequest) ServiceID() byte { return r.Service }

// StateReadRequest reads the current value of one device service.
type StateReadRequest struct {
	TypeID  byte
	Service byte
}

func (r StateReadRequest) ServiceID() byte { return r.Service }

// StateWriteRequest writes a value to one device service. The device
// answers with the resulting state.
type StateWriteRequest struct {
	TypeID  byte
	Service byte
	Value   uint16
}

func (r StateWriteRequest) ServiceID() byte { return r.Service }

// Response is a typed serial response decoded from a Frame.
type Response interface {
	isResponse()
}

// InfoResponse carries the raw data bytes answering an InfoRequest.
type InfoResponse struct {
	Service byte
	Data    []byte
}

func (InfoResponse) isResponse() {}

// ServiceRecord is one fixed 3-byte service entry from a register or
// states response: service id with writable flag, and a big-endian raw
// value.
type ServiceRecord struct {
	ServiceID byte
	Writable  bool
	Raw       uint16
}

// RegisterResponse is the decoded registration answer: the device's
// identity header followed by its supported services in declared order.
type RegisterResponse struct {
	TypeID        byte
	ClassID       byte
	ProtocolMajor byte
	ProtocolMinor byte
	Services      []ServiceRecord
}

func (RegisterResponse) isResponse() {}

// StateReadResponse is the decoded answer to a single state read or
// write: the echoed type id, service id and raw big-endian value.
type StateReadResponse struct {
	TypeID    byte
	ServiceID byte
	Raw       uint16
}

func (StateReadResponse) isResponse() {}
