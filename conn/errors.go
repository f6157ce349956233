package conn

import "errors"

var (
	// ErrRequestFailed is returned by Call/Exec when the request queue has
	// already been released by every Conn handle that held it — the
	// connection process is no longer running to pick it up (spec.md §4.4,
	// "a disconnected sender resolves the future to RequestFailed").
	ErrRequestFailed = errors.New("conn: connection is no longer running")

	// ErrRequestCancelled is delivered to every request still pending when
	// the connection process shuts down, whether cleanly (peer EOF, all
	// senders released) or on a fatal error (spec.md §8, "graceful
	// shutdown cancels in-flight futures").
	ErrRequestCancelled = errors.New("conn: request cancelled, connection shut down")

	// ErrOriginMismatch is a fatal connection error: an inbound response's
	// origin bit does not match this side's role, so the sequence space it
	// claims to correlate against cannot be trusted. Per spec.md §9's open
	// question, origin is checked on inbound responses but deliberately
	// NOT on inbound requests (see DESIGN.md).
	ErrOriginMismatch = errors.New("conn: inbound response origin mismatch")

	// ErrInvalidSequence covers two distinct situations: an inbound
	// response correlating to no pending request (fatal — the peer is
	// misbehaving), and an outbound request whose freshly assigned
	// sequence number collides with one still pending (rejected locally,
	// not fatal — see process.go).
	ErrInvalidSequence = errors.New("conn: invalid or unknown sequence number")
)
