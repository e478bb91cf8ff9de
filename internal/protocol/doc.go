// Package protocol implements the TaiSEIA smart appliance wire protocol:
// the self-delimiting frame format and the packet codec that translates
// between symbolic requests/responses and raw byte PDUs.
//
// # Frame Format
//
// Every PDU is a self-delimited frame. Byte 0 carries the total frame
// length, including the length byte itself and the one-byte checksum
// trailer:
//
//	[len] [payload ...] [checksum]
//
// There is no start marker. The Assembler accumulates one byte at a time
// and emits a frame exactly when the buffer length reaches the declared
// length. A corrupted length byte therefore desynchronizes the stream;
// the Assembler detects the two observable failure modes (zero length
// header, oversized frame) and the caller decides between drop-and-resync
// and connection reset.
//
// # PDU Layout
//
// Requests are a fixed 6 bytes:
//
//	[0x06] [type_id] [service_id] [data_hi] [data_lo] [checksum]
//
// Info requests use type id 0x00 and 0xFFFF data. State writes set bit 7
// of the service id and carry the value big-endian. Responses embed the
// answered service id, which the codec validates against the request.
//
// The checksum algorithm is pluggable (see ChecksumFunc); the default is
// XOR over all bytes preceding the trailer.
package protocol
