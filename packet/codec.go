package packet

import (
	"encoding/binary"

	"github.com/avitex/battlelayer/word"
)

// Decode attempts to parse one packet from the front of data.
//
// It returns (nil, 0, nil) when data holds fewer bytes than the next
// packet needs — the caller should read more and retry; data is left
// completely untouched in this case (the essential re-entry property: a
// short read must never be mistaken for a consumed header).
//
// On success it returns the decoded packet and the number of bytes the
// caller should advance past (exactly the packet's wire size). On a
// framing error it returns a non-nil error; the connection holding this
// data is expected to treat the error as fatal (spec §7) rather than
// retry.
func Decode(data []byte) (p *Packet, n int, err error) {
	if len(data) < HeaderSize {
		return nil, 0, nil
	}
	seq := SequenceFromRaw(binary.LittleEndian.Uint32(data[0:4]))
	size := binary.LittleEndian.Uint32(data[4:8])
	wordCount := binary.LittleEndian.Uint32(data[8:12])

	if size < HeaderSize || size > MaxSize {
		return nil, 0, &SizeError{Value: int(size), Reason: "total packet size"}
	}
	if wordCount > MaxWords {
		return nil, 0, &SizeError{Value: int(wordCount), Reason: "word count"}
	}

	bodySize := int(size) - HeaderSize
	if len(data)-HeaderSize < bodySize {
		// Short body: the header bytes we peeked at are NOT consumed.
		return nil, 0, nil
	}
	body := data[HeaderSize : HeaderSize+bodySize]

	words := make(word.Body, 0, wordCount)
	cursor := 0
	for i := uint32(0); i < wordCount; i++ {
		if len(body)-cursor < 4 {
			return nil, 0, ErrMalformed
		}
		wordSize := binary.LittleEndian.Uint32(body[cursor : cursor+4])
		if wordSize > MaxWordContentSize {
			return nil, 0, &SizeError{Value: int(wordSize), Reason: "word content size"}
		}
		cursor += 4

		if len(body)-cursor < int(wordSize)+1 {
			return nil, 0, ErrMalformed
		}
		content := body[cursor : cursor+int(wordSize)]
		cursor += int(wordSize)

		if body[cursor] != 0x00 {
			return nil, 0, ErrMalformed
		}
		cursor++

		w, err := word.FromBytes(content)
		if err != nil {
			return nil, 0, err
		}
		words = append(words, w)
	}
	// Any bytes remaining in body beyond the declared words are a server
	// bug, not a decoder error: the declared total size governs how much
	// of the stream we consume (spec §9, "trailing body bytes").
	return &Packet{Seq: seq, Words: words}, HeaderSize + bodySize, nil
}

// Encode appends the wire representation of p to dst and returns the
// extended slice, in the style of append.
func Encode(dst []byte, p *Packet) ([]byte, error) {
	size := p.ByteSize()
	if size > MaxSize {
		return nil, &SizeError{Value: size, Reason: "total packet size"}
	}
	if len(p.Words) > MaxWords {
		return nil, &SizeError{Value: len(p.Words), Reason: "word count"}
	}

	out := dst
	if cap(out)-len(out) < size {
		grown := make([]byte, len(out), len(out)+size)
		copy(grown, out)
		out = grown
	}

	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], p.Seq.Raw())
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(size))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(p.Words)))
	out = append(out, hdr[:]...)

	for _, w := range p.Words {
		if w.Len() > MaxWordContentSize {
			return nil, &SizeError{Value: w.Len(), Reason: "word content size"}
		}
		var wlen [4]byte
		binary.LittleEndian.PutUint32(wlen[:], uint32(w.Len()))
		out = append(out, wlen[:]...)
		out = append(out, w.Bytes()...)
		out = append(out, 0x00)
	}
	return out, nil
}
