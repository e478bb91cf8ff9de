package protocol

// ChecksumFunc computes the one-byte trailer over every frame byte that
// precedes it. The function must be symmetric: the same implementation
// validates inbound frames and seals outbound ones.
//
// The vendor specification does not publish the algorithm; XORChecksum
// matches observed device traffic and is the default. Wire-exact
// deployments can supply their own via NewCodecWithChecksum.
type ChecksumFunc func(data []byte) byte

// XORChecksum XORs all bytes preceding the trailer.
func XORChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}
