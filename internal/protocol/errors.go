package protocol

import "errors"

// Assembler errors. These indicate stream desynchronization and must be
// surfaced to the transport layer, never swallowed.
var (
	// ErrZeroLengthHeader is returned when a frame declares length 0,
	// which would otherwise "complete" an empty frame immediately.
	ErrZeroLengthHeader = errors.New("frame header declares zero length")

	// ErrFrameTooLarge is returned when a frame declares a length above
	// the assembler's maximum, usually a corrupted length byte.
	ErrFrameTooLarge = errors.New("frame length exceeds maximum")

	// ErrHeaderTooShort is returned when a frame declares length 1, too
	// short to hold the header and trailer.
	ErrHeaderTooShort = errors.New("frame header declares length below minimum")
)

// Codec errors. These are recoverable: the offending frame is discarded
// and the session continues.
var (
	// ErrTruncated is returned when a PDU's declared length exceeds the
	// bytes actually available.
	ErrTruncated = errors.New("pdu truncated")

	// ErrServiceMismatch is returned when a response embeds a service id
	// that disagrees with the one requested.
	ErrServiceMismatch = errors.New("response service id mismatch")

	// ErrUnknownServiceID is returned when a PDU carries a service id
	// outside the known info service set.
	ErrUnknownServiceID = errors.New("unknown service id")

	// ErrMalformedStatesBlock is returned when a services/states payload
	// is not a whole number of 3-byte records.
	ErrMalformedStatesBlock = errors.New("states block not a multiple of 3 bytes")

	// ErrChecksum is returned when a frame's trailer fails validation.
	ErrChecksum = errors.New("checksum mismatch")
)
