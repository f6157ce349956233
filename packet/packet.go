// Package packet implements the exact binary framing of the battlelayer
// wire protocol: packets made of NUL-terminated, length-prefixed words,
// bounded in size and word count.
//
// The codec (Decode/Encode) is stateless and operates on byte slices; it
// never touches a socket. Package socket drives it against an I/O stream.
package packet

import (
	"fmt"

	"github.com/avitex/battlelayer/word"
)

const (
	// MaxSize is the largest permitted total wire size of a packet,
	// header included.
	MaxSize = 16384
	// MaxWords is the largest permitted word count in a packet.
	MaxWords = 256
	// HeaderSize is the fixed 12-byte packet header: sequence, total
	// size, and word count, each a little-endian uint32.
	HeaderSize = 12
	// wordOverhead is the per-word wire overhead: a 4-byte size prefix
	// plus a 1-byte NUL terminator.
	wordOverhead = 5
	// MaxWordContentSize is the largest permitted content size of a
	// single word, derived from MaxSize so that a packet containing one
	// maximally sized word never exceeds MaxSize.
	MaxWordContentSize = MaxSize - (HeaderSize + wordOverhead)
)

// Packet is a framed message: a sequence header followed by zero or more
// words.
type Packet struct {
	Seq   Sequence
	Words word.Body
}

// New constructs a Packet, validating the word count bound eagerly (the
// size bound depends on content and is checked by Encode, via ByteSize).
func New(seq Sequence, words word.Body) (*Packet, error) {
	if len(words) > MaxWords {
		return nil, &SizeError{Value: len(words), Reason: "word count"}
	}
	return &Packet{Seq: seq, Words: words}, nil
}

// ByteSize computes the packet's total wire size: a 12-byte header plus a
// 5-byte (4-byte size prefix + 1-byte NUL) overhead per word, plus each
// word's content length.
func (p *Packet) ByteSize() int {
	total := HeaderSize
	for _, w := range p.Words {
		total += wordOverhead + w.Len()
	}
	return total
}

// SizeError reports a size field (total packet size, word count, or word
// content size) that fell outside its bounded range.
type SizeError struct {
	Value  int
	Reason string
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("packet: invalid size %d (%s)", e.Value, e.Reason)
}
