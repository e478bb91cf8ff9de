// Package bridge implements the per-connection session state machine.
//
// A Session translates client text lines into serial requests, tracks
// the single outstanding command, and turns completed frames into
// client-facing replies. Two flows touch a session concurrently: the
// client read loop (HandleClientText) and the background serial pump
// (HandleFrame). Access to the pending command is mutex-serialized; a
// command issued while a frame is in flight is queued FIFO and its
// serial write deferred until the outstanding frame resolves, so
// commands are never lost or interleaved.
package bridge
