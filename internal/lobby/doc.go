// Package lobby implements the stranger pairing engine: the session registry,
// the matchmaker, the two-party room store and the protocol dispatcher that
// turns inbound client frames into state changes and outbound responses.
//
// Every mutating operation runs under a single engine-wide lock, so a frame
// from one client is applied as one atomic step with respect to all others.
// The transport layer only supplies a Conn per client and forwards connect,
// frame and close events.
package lobby
