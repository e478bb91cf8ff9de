package protocol

import (
	"encoding/binary"
	"fmt"
)

// registerHeaderLen is the identity header at the front of a register
// response payload: type id, class id, protocol major, protocol minor.
const registerHeaderLen = 4

// Codec translates between typed requests/responses and raw byte PDUs.
// The zero value is not usable; construct with NewCodec.
type Codec struct {
	checksum ChecksumFunc
}

// NewCodec returns a Codec using the default XOR trailer.
func NewCodec() *Codec {
	return &Codec{checksum: XORChecksum}
}

// NewCodecWithChecksum returns a Codec sealing and validating frames
// with the supplied trailer function.
func NewCodecWithChecksum(fn ChecksumFunc) *Codec {
	return &Codec{checksum: fn}
}

// Encode builds the wire PDU for a request: fixed six bytes of length,
// type id, service id, big-endian data and trailer.
func (c *Codec) Encode(req Request) ([]byte, error) {
	pdu := make([]byte, RequestLen)
	pdu[0] = RequestLen

	switch r := req.(type) {
	case InfoRequest:
		if _, ok := infoServiceNames[r.Service]; !ok {
			return nil, fmt.Errorf("%w: info service 0x%02x", ErrUnknownServiceID, r.Service)
		}
		pdu[1] = 0x00 // general device class
		pdu[2] = r.Service
		pdu[3], pdu[4] = 0xFF, 0xFF
	case StateReadRequest:
		pdu[1] = r.TypeID
		pdu[2] = r.Service &^ writeFlag
		pdu[3], pdu[4] = 0xFF, 0xFF
	case StateWriteRequest:
		pdu[1] = r.TypeID
		pdu[2] = r.Service | writeFlag
		binary.BigEndian.PutUint16(pdu[3:5], r.Value)
	default:
		return nil, fmt.Errorf("unsupported request type %T", req)
	}

	pdu[RequestLen-1] = c.checksum(pdu[:RequestLen-1])
	return pdu, nil
}

// Decode validates a complete frame against the request that solicited
// it and returns the matching typed response.
func (c *Codec) Decode(frame Frame, req Request) (Response, error) {
	if err := c.validate(frame); err != nil {
		return nil, err
	}

	switch r := req.(type) {
	case InfoRequest:
		if r.Service == SvcRegistration {
			return c.decodeRegister(frame)
		}
		return c.decodeInfo(frame, r.Service)
	case StateReadRequest:
		return c.decodeState(frame, r.TypeID, r.Service)
	case StateWriteRequest:
		return c.decodeState(frame, r.TypeID, r.Service)
	default:
		return nil, fmt.Errorf("unsupported request type %T", req)
	}
}

// validate checks the frame envelope: declared length, minimum size and
// checksum trailer.
func (c *Codec) validate(frame Frame) error {
	if len(frame) < 2 {
		return fmt.Errorf("%w: %d bytes", ErrTruncated, len(frame))
	}
	if int(frame[0]) != len(frame) {
		return fmt.Errorf("%w: declared %d, have %d", ErrTruncated, frame[0], len(frame))
	}
	if want := c.checksum(frame[:len(frame)-1]); want != frame.Checksum() {
		return fmt.Errorf("%w: want 0x%02x, have 0x%02x", ErrChecksum, want, frame.Checksum())
	}
	return nil
}

// decodeInfo parses an info response: service id followed by data bytes.
func (c *Codec) decodeInfo(frame Frame, expected byte) (InfoResponse, error) {
	payload := frame.Payload()
	if len(payload) < 1 {
		return InfoResponse{}, fmt.Errorf("%w: empty info payload", ErrTruncated)
	}
	svc := payload[0]
	if _, ok := infoServiceNames[svc]; !ok {
		return InfoResponse{}, fmt.Errorf("%w: 0x%02x", ErrUnknownServiceID, svc)
	}
	if svc != expected {
		return InfoResponse{}, fmt.Errorf("%w: requested %s, got %s",
			ErrServiceMismatch, InfoServiceName(expected), InfoServiceName(svc))
	}
	return InfoResponse{Service: svc, Data: payload[1:]}, nil
}

// decodeRegister parses a registration response: identity header then a
// variable-length run of 3-byte service records in declared order.
func (c *Codec) decodeRegister(frame Frame) (RegisterResponse, error) {
	info, err := c.decodeInfo(frame, SvcRegistration)
	if err != nil {
		return RegisterResponse{}, err
	}
	if len(info.Data) < registerHeaderLen {
		return RegisterResponse{}, fmt.Errorf("%w: register header needs %d bytes, have %d",
			ErrTruncated, registerHeaderLen, len(info.Data))
	}
	records := info.Data[registerHeaderLen:]
	services, err := ParseServiceRecords(records)
	if err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{
		TypeID:        info.Data[0],
		ClassID:       info.Data[1],
		ProtocolMajor: info.Data[2],
		ProtocolMinor: info.Data[3],
		Services:      services,
	}, nil
}

// decodeState parses a single-state response. The write flag is masked
// on both sides: a write is answered with the resulting read state.
func (c *Codec) decodeState(frame Frame, typeID, service byte) (StateReadResponse, error) {
	if len(frame) != RequestLen {
		return StateReadResponse{}, fmt.Errorf("%w: state response needs %d bytes, have %d",
			ErrTruncated, RequestLen, len(frame))
	}
	if frame[1] != typeID {
		return StateReadResponse{}, fmt.Errorf("%w: requested type 0x%02x, got 0x%02x",
			ErrServiceMismatch, typeID, frame[1])
	}
	if frame[2]&^writeFlag != service&^writeFlag {
		return StateReadResponse{}, fmt.Errorf("%w: requested service 0x%02x, got 0x%02x",
			ErrServiceMismatch, service&^writeFlag, frame[2]&^writeFlag)
	}
	return StateReadResponse{
		TypeID:    frame[1],
		ServiceID: frame[2] &^ writeFlag,
		Raw:       binary.BigEndian.Uint16(frame[3:5]),
	}, nil
}

// ParseServiceRecords splits a payload region into fixed 3-byte service
// records, preserving order.
func ParseServiceRecords(data []byte) ([]ServiceRecord, error) {
	if len(data)%3 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedStatesBlock, len(data))
	}
	records := make([]ServiceRecord, 0, len(data)/3)
	for i := 0; i < len(data); i += 3 {
		records = append(records, ServiceRecord{
			ServiceID: data[i] &^ writeFlag,
			Writable:  data[i]&writeFlag != 0,
			Raw:       binary.BigEndian.Uint16(data[i+1 : i+3]),
		})
	}
	return records, nil
}

// Seal appends the checksum trailer to a raw PDU whose final byte is
// reserved for it. Exposed for constructing diagnostic frames in tests.
func (c *Codec) Seal(pdu []byte) []byte {
	pdu[len(pdu)-1] = c.checksum(pdu[:len(pdu)-1])
	return pdu
}
