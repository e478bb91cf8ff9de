// Package server is the network gateway: it owns the TCP (or WebSocket)
// client surface and the background serial pump, and hands each
// connection to a bridge.Session.
//
// Exactly one client is served at a time; a new connection is not
// accepted until the previous socket is released. In server role the
// gateway listens and waits between clients; in client role it dials
// out and retries with a fixed delay. Transport errors terminate the
// current connection only - nothing short of an operator interrupt is
// fatal to the process.
package server
