// Package socket adapts an arbitrary bidirectional byte stream into a
// duplex, message-oriented source/sink of packets, with explicit
// broken/closed latch semantics (spec §4.3).
package socket

import (
	"errors"
	"io"
	"sync/atomic"

	"github.com/avitex/battlelayer/packet"
)

// ErrBroken is returned by ReadPacket/WritePacket once the socket has
// latched into the broken state (any prior codec or I/O error). The
// latch is one-way: once broken, always broken.
var ErrBroken = errors.New("socket: broken")

// ErrClosed is returned by ReadPacket when the underlying stream reached
// a clean EOF. Closed is distinct from Broken: a clean peer shutdown is
// not a failure.
var ErrClosed = errors.New("socket: closed")

const readChunkSize = 4096

// Socket wraps an io.ReadWriter with the battlelayer packet framing.
// It is not safe for concurrent ReadPacket calls, nor for concurrent
// WritePacket calls; one reader running alongside one writer is fine.
// Package conn's connection process is the sole owner of a Socket: its
// read loop goroutine is the only reader and its run goroutine the only
// writer (spec §5, "must not be moved").
type Socket struct {
	rw  io.ReadWriter
	in  []byte // accumulated, not-yet-decoded inbound bytes
	tmp []byte // scratch read buffer, reused across Read calls

	broken atomic.Bool
}

// New wraps rw. rw may be a net.Conn, an io.Pipe end, or any other
// bidirectional byte stream (spec §1: "the core accepts any bidirectional
// byte stream").
func New(rw io.ReadWriter) *Socket {
	return &Socket{
		rw:  rw,
		tmp: make([]byte, readChunkSize),
	}
}

// Broken reports whether the socket has latched into the broken state.
func (s *Socket) Broken() bool {
	return s.broken.Load()
}

// ReadPacket reads and returns the next packet from the stream. It
// returns ErrClosed on a clean EOF with no partial packet pending, and
// ErrBroken if the socket already latched from a prior error. Any other
// returned error (a SizeError, ErrMalformed, an InvalidCharError, or a
// raw I/O error) latches the socket broken before returning.
func (s *Socket) ReadPacket() (*packet.Packet, error) {
	if s.broken.Load() {
		return nil, ErrBroken
	}
	for {
		p, n, err := packet.Decode(s.in)
		if err != nil {
			s.broken.Store(true)
			return nil, err
		}
		if p != nil {
			s.in = s.in[n:]
			return p, nil
		}

		read, err := s.rw.Read(s.tmp)
		if read > 0 {
			s.in = append(s.in, s.tmp[:read]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(s.in) > 0 {
					// A peer that closes mid-packet is a protocol
					// failure, not a clean close.
					s.broken.Store(true)
					return nil, ErrBroken
				}
				// A clean EOF does NOT latch the socket broken: the
				// connection process may still need to flush
				// in-flight handler responses after the read side
				// has seen EOF (half-close).
				return nil, ErrClosed
			}
			s.broken.Store(true)
			return nil, err
		}
	}
}

// WritePacket encodes and writes p to the stream in one Write call, so a
// concurrent reader of the same underlying stream never observes a
// partial frame interleaved with another packet's bytes (spec §5:
// "the write is atomic from the protocol's point of view").
func (s *Socket) WritePacket(p *packet.Packet) error {
	if s.broken.Load() {
		return ErrBroken
	}
	buf, err := packet.Encode(nil, p)
	if err != nil {
		s.broken.Store(true)
		return err
	}
	if _, err := s.rw.Write(buf); err != nil {
		s.broken.Store(true)
		return err
	}
	return nil
}

// Close closes the underlying stream if it implements io.Closer, and
// latches the socket broken regardless (a closed socket can no longer be
// used for reads or writes).
func (s *Socket) Close() error {
	s.broken.Store(true)
	if c, ok := s.rw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
