package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestEncodeRequests(t *testing.T) {
	c := NewCodec()

	tests := []struct {
		name string
		req  Request
		want []byte
	}{
		{
			name: "registration info request",
			req:  InfoRequest{Service: SvcRegistration},
			want: []byte{0x06, 0x00, 0x00, 0xFF, 0xFF, 0x06},
		},
		{
			name: "read all states info request",
			req:  InfoRequest{Service: SvcReadAllStates},
			want: []byte{0x06, 0x00, 0x08, 0xFF, 0xFF, 0x0E},
		},
		{
			name: "state read",
			req:  StateReadRequest{TypeID: 0x04, Service: 0x03},
			want: []byte{0x06, 0x04, 0x03, 0xFF, 0xFF, 0x01},
		},
		{
			name: "state write sets bit 7 and carries value",
			req:  StateWriteRequest{TypeID: 0x04, Service: 0x03, Value: 0x0132},
			want: []byte{0x06, 0x04, 0x83, 0x01, 0x32, 0xB2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdu, err := c.Encode(tt.req)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !bytes.Equal(pdu, tt.want) {
				t.Errorf("Encode() = %#v, want %#v", pdu, tt.want)
			}
			// Trailer must validate under the same checksum function.
			if got := XORChecksum(pdu[:len(pdu)-1]); got != pdu[len(pdu)-1] {
				t.Errorf("trailer 0x%02x does not validate, want 0x%02x", pdu[len(pdu)-1], got)
			}
		})
	}
}

func TestEncodeRejectsUnknownInfoService(t *testing.T) {
	_, err := NewCodec().Encode(InfoRequest{Service: 0x66})
	if !errors.Is(err, ErrUnknownServiceID) {
		t.Fatalf("Encode() error = %v, want ErrUnknownServiceID", err)
	}
}

// responseFrame seals a response PDU so tests build frames the way the
// device would.
func responseFrame(c *Codec, payload []byte) Frame {
	pdu := make([]byte, 0, len(payload)+2)
	pdu = append(pdu, byte(len(payload)+2))
	pdu = append(pdu, payload...)
	pdu = append(pdu, 0)
	return Frame(c.Seal(pdu))
}

func TestDecodeRegisterResponse(t *testing.T) {
	c := NewCodec()
	// Header: type 0x04, class 0x01, protocol 1.0; two services.
	frame := responseFrame(c, []byte{
		SvcRegistration,
		0x04, 0x01, 0x01, 0x00,
		0x80, 0x00, 0x01, // service 0, writable, raw 1
		0x07, 0x00, 0x37, // service 7, read-only, raw 55
	})

	resp, err := c.Decode(frame, InfoRequest{Service: SvcRegistration})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	reg, ok := resp.(RegisterResponse)
	if !ok {
		t.Fatalf("Decode() = %T, want RegisterResponse", resp)
	}

	want := RegisterResponse{
		TypeID:        0x04,
		ClassID:       0x01,
		ProtocolMajor: 0x01,
		ProtocolMinor: 0x00,
		Services: []ServiceRecord{
			{ServiceID: 0x00, Writable: true, Raw: 1},
			{ServiceID: 0x07, Writable: false, Raw: 55},
		},
	}
	if !reflect.DeepEqual(reg, want) {
		t.Errorf("Decode() = %+v, want %+v", reg, want)
	}
}

func TestDecodeStateRoundTrip(t *testing.T) {
	c := NewCodec()
	req := StateReadRequest{TypeID: 0x04, Service: 0x07}

	// Device answers a 6-byte state PDU with the same type and service.
	frame := Frame(c.Seal([]byte{0x06, 0x04, 0x07, 0x00, 0x2A, 0x00}))
	resp, err := c.Decode(frame, req)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	state, ok := resp.(StateReadResponse)
	if !ok {
		t.Fatalf("Decode() = %T, want StateReadResponse", resp)
	}
	if state.Raw != 42 || state.ServiceID != 0x07 || state.TypeID != 0x04 {
		t.Errorf("Decode() = %+v, want raw 42 service 0x07 type 0x04", state)
	}
}

func TestDecodeWriteAnsweredAsState(t *testing.T) {
	c := NewCodec()
	req := StateWriteRequest{TypeID: 0x04, Service: 0x03, Value: 50}

	// Echo carries the write flag; decode masks it.
	frame := Frame(c.Seal([]byte{0x06, 0x04, 0x83, 0x00, 0x32, 0x00}))
	resp, err := c.Decode(frame, req)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if state := resp.(StateReadResponse); state.ServiceID != 0x03 || state.Raw != 50 {
		t.Errorf("Decode() = %+v, want service 0x03 raw 50", state)
	}
}

func TestDecodeErrors(t *testing.T) {
	c := NewCodec()

	tests := []struct {
		name    string
		frame   Frame
		req     Request
		wantErr error
	}{
		{
			name:    "declared length exceeds available",
			frame:   Frame{0x09, SvcRegistration, 0x00},
			req:     InfoRequest{Service: SvcRegistration},
			wantErr: ErrTruncated,
		},
		{
			name:    "checksum mismatch",
			frame:   Frame{0x03, SvcReadBrand, 0xFF},
			req:     InfoRequest{Service: SvcReadBrand},
			wantErr: ErrChecksum,
		},
		{
			name:    "service id disagrees with request",
			frame:   responseFrame(c, []byte{SvcReadModel, 'x'}),
			req:     InfoRequest{Service: SvcReadBrand},
			wantErr: ErrServiceMismatch,
		},
		{
			name:    "unrecognized service id",
			frame:   responseFrame(c, []byte{0x5F, 0x00}),
			req:     InfoRequest{Service: SvcReadBrand},
			wantErr: ErrUnknownServiceID,
		},
		{
			name: "register records not a multiple of 3",
			frame: responseFrame(c, []byte{
				SvcRegistration,
				0x04, 0x01, 0x01, 0x00,
				0x80, 0x00, // dangling record
			}),
			req:     InfoRequest{Service: SvcRegistration},
			wantErr: ErrMalformedStatesBlock,
		},
		{
			name:    "state response wrong type id",
			frame:   Frame(c.Seal([]byte{0x06, 0x01, 0x07, 0x00, 0x2A, 0x00})),
			req:     StateReadRequest{TypeID: 0x04, Service: 0x07},
			wantErr: ErrServiceMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.frame, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCustomChecksum(t *testing.T) {
	// Additive trailer instead of XOR; encode and decode must agree.
	sum := func(data []byte) byte {
		var s byte
		for _, b := range data {
			s += b
		}
		return s
	}
	c := NewCodecWithChecksum(sum)

	pdu, err := c.Encode(InfoRequest{Service: SvcReadAllStates})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := sum(pdu[:len(pdu)-1]); got != pdu[len(pdu)-1] {
		t.Fatalf("trailer = 0x%02x, want 0x%02x", pdu[len(pdu)-1], got)
	}
	if err := c.validate(Frame(pdu)); err != nil {
		t.Errorf("validate() error = %v", err)
	}
}
