package packet

import (
	"errors"
	"fmt"
)

// Role distinguishes which side of a connection a packet originated from.
// It is set once per connection and never mutated.
type Role bool

const (
	RoleServer Role = false
	RoleClient Role = true
)

func (r Role) String() string {
	if r == RoleClient {
		return "client"
	}
	return "server"
}

// Kind distinguishes a request packet from a response packet.
type Kind bool

const (
	KindRequest  Kind = false
	KindResponse Kind = true
)

func (k Kind) String() string {
	if k == KindResponse {
		return "response"
	}
	return "request"
}

const (
	seqClientMask = 0x8000_0000
	seqRespMask   = 0x4000_0000
	seqHeaderMask = seqClientMask | seqRespMask
)

// ErrInvalidSequenceNumber is returned by NewSequence when n sets either of
// the two reserved high bits.
var ErrInvalidSequenceNumber = errors.New("packet: invalid sequence number")

// Sequence is the packet header's 32-bit sequence field: bit 31 marks
// client origin, bit 30 marks a response, and the low 30 bits carry the
// monotonically assigned sequence number.
type Sequence uint32

// NewSequence builds a Sequence from its three logical fields. It fails if
// n sets either of the two high bits reserved for kind/origin.
func NewSequence(kind Kind, origin Role, n uint32) (Sequence, error) {
	if n&seqHeaderMask != 0 {
		return 0, ErrInvalidSequenceNumber
	}
	raw := n
	if kind == KindResponse {
		raw |= seqRespMask
	}
	if origin == RoleClient {
		raw |= seqClientMask
	}
	return Sequence(raw), nil
}

// SequenceFromRaw interprets a raw 32-bit wire value as a Sequence. Every
// raw value decodes unambiguously; this never fails.
func SequenceFromRaw(raw uint32) Sequence {
	return Sequence(raw)
}

// Raw returns the sequence's wire representation.
func (s Sequence) Raw() uint32 {
	return uint32(s)
}

// Kind reports whether the sequence marks a request or a response.
func (s Sequence) Kind() Kind {
	if uint32(s)&seqRespMask != 0 {
		return KindResponse
	}
	return KindRequest
}

// Origin reports which role the sequence's packet originated from.
func (s Sequence) Origin() Role {
	if uint32(s)&seqClientMask != 0 {
		return RoleClient
	}
	return RoleServer
}

// Number returns the sequence number, with the kind/origin bits masked off.
func (s Sequence) Number() uint32 {
	return uint32(s) &^ seqHeaderMask
}

// WithKind returns a copy of s with its kind bit set to k, leaving the
// origin and number fields untouched. A connection process uses this to
// turn an inbound request's Sequence into the matching response's
// Sequence without re-deriving the origin or number.
func (s Sequence) WithKind(k Kind) Sequence {
	raw := uint32(s) &^ seqRespMask
	if k == KindResponse {
		raw |= seqRespMask
	}
	return Sequence(raw)
}

func (s Sequence) String() string {
	return fmt.Sprintf("Sequence{kind=%s origin=%s number=%d}", s.Kind(), s.Origin(), s.Number())
}
