// Package discovery finds running bridges on the local network by
// browsing for the mDNS service the gateway advertises.
package discovery
