package protocol

import "fmt"

// DefaultMaxFrameSize bounds frame accumulation. The largest observed
// TaiSEIA PDU is a register response well under 128 bytes; anything
// larger is a corrupted length byte.
const DefaultMaxFrameSize = 128

// Frame is one complete, self-delimited PDU. Byte 0 is the total frame
// length including itself and the checksum trailer.
type Frame []byte

// Payload returns the frame bytes between the length header and the
// checksum trailer.
func (f Frame) Payload() []byte {
	if len(f) < 2 {
		return nil
	}
	return f[1 : len(f)-1]
}

// Checksum returns the trailer byte.
func (f Frame) Checksum() byte {
	return f[len(f)-1]
}

// Assembler accumulates raw serial bytes and emits complete frames.
//
// The format carries no start marker, so the assembler is a two-state
// machine: idle (empty buffer) and accumulating. The first byte of an
// accumulation run is taken as the declared frame length; the frame is
// complete when the buffer reaches it.
type Assembler struct {
	buf     []byte
	maxSize int
}

// NewAssembler returns an Assembler bounded by maxSize. A maxSize of 0
// selects DefaultMaxFrameSize.
func NewAssembler(maxSize int) *Assembler {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	return &Assembler{maxSize: maxSize}
}

// Accept appends one byte to the accumulation buffer. It returns a
// non-nil Frame exactly when the byte completes one.
//
// A leading zero byte fails with ErrZeroLengthHeader and a declared
// length above the maximum fails with ErrFrameTooLarge; both clear the
// buffer so the caller can resync or reset.
func (a *Assembler) Accept(b byte) (Frame, error) {
	if len(a.buf) == 0 {
		if b == 0 {
			return nil, ErrZeroLengthHeader
		}
		if b == 1 {
			return nil, ErrHeaderTooShort
		}
		if int(b) > a.maxSize {
			return nil, fmt.Errorf("%w: declared %d, max %d", ErrFrameTooLarge, b, a.maxSize)
		}
	}
	a.buf = append(a.buf, b)
	if len(a.buf) == int(a.buf[0]) {
		frame := Frame(a.buf)
		a.buf = nil
		return frame, nil
	}
	return nil, nil
}

// Pending returns the number of bytes accumulated toward the next frame.
func (a *Assembler) Pending() int {
	return len(a.buf)
}

// Reset discards any partial accumulation. Used after a desync or when a
// transport reconnects.
func (a *Assembler) Reset() {
	a.buf = nil
}
