// Package server implements the HTTP and WebSocket transport for the stranger
// chat service.
//
// It upgrades connections, runs one read and one write pump per client, and
// feeds connect, frame and close events to the lobby engine through the Hub.
// Configuration, origin checks, rate limiting and HTTP lifecycle helpers live
// alongside in their own files.
package server
