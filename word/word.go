// Package word implements Word and Body, the atomic payload units of the
// battlelayer wire protocol.
//
// A Word is a validated, immutable byte string: every byte must be in the
// range [1,127] (printable-ASCII-ish, NUL forbidden, high bit forbidden).
// Words carry no wire terminator in memory — that's a framing detail owned
// by package packet.
package word

import "fmt"

// InvalidCharError is returned when a byte outside [1,127] is found while
// constructing a Word. It names the first offending byte.
type InvalidCharError struct {
	Byte byte
}

func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("word: invalid character byte 0x%02x", e.Byte)
}

// IsValidChar reports whether b may appear in a Word: non-NUL, 7-bit ASCII.
func IsValidChar(b byte) bool {
	return b != 0 && b < 0x80
}

// Word is an immutable, validated byte string. The zero Word is the empty
// word, which is a valid word.
type Word struct {
	bytes []byte
}

// New validates s and returns a Word holding its bytes.
func New(s string) (Word, error) {
	return FromBytes([]byte(s))
}

// FromBytes validates b and returns a Word holding a private copy of its
// bytes, so later mutation of b does not affect the Word.
func FromBytes(b []byte) (Word, error) {
	for _, c := range b {
		if !IsValidChar(c) {
			return Word{}, &InvalidCharError{Byte: c}
		}
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return Word{bytes: cp}, nil
}

// MustNew is New, panicking on error. Intended for static word literals
// (e.g. the default "OK" response), never for validating external input.
func MustNew(s string) Word {
	w, err := New(s)
	if err != nil {
		panic(err)
	}
	return w
}

// Bytes returns the word's raw byte content. The caller must not modify
// the returned slice.
func (w Word) Bytes() []byte {
	return w.bytes
}

// String returns the word's text content. Safe because every Word byte is
// validated 7-bit ASCII, which is always valid UTF-8.
func (w Word) String() string {
	return string(w.bytes)
}

// Len returns the word's content length in bytes.
func (w Word) Len() int {
	return len(w.bytes)
}

// Equal reports whether w and o hold identical byte content.
func (w Word) Equal(o Word) bool {
	if len(w.bytes) != len(o.bytes) {
		return false
	}
	for i := range w.bytes {
		if w.bytes[i] != o.bytes[i] {
			return false
		}
	}
	return true
}
