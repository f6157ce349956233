package packet

import "errors"

// ErrMalformed is returned when a packet's body runs out of bytes before
// its declared word count is satisfied, or a word's NUL terminator is
// missing. It is always fatal to the connection (spec §7).
var ErrMalformed = errors.New("packet: malformed body")
