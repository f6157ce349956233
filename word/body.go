package word

// Body is an ordered sequence of words. Bodies are cheap to clone: words
// are immutable value types, so a shallow copy of the slice is a full
// logical clone.
type Body []Word

// NewBody validates each string and returns the resulting Body, or the
// first validation error encountered.
func NewBody(words ...string) (Body, error) {
	body := make(Body, 0, len(words))
	for _, s := range words {
		w, err := New(s)
		if err != nil {
			return nil, err
		}
		body = append(body, w)
	}
	return body, nil
}

// Clone returns an independent copy of the body. The underlying Words are
// shared (they're immutable), only the slice header is duplicated.
func (b Body) Clone() Body {
	out := make(Body, len(b))
	copy(out, b)
	return out
}

// Strings returns the body's words rendered as a plain []string, primarily
// for logging and the CLI front end.
func (b Body) Strings() []string {
	out := make([]string, len(b))
	for i, w := range b {
		out[i] = w.String()
	}
	return out
}
