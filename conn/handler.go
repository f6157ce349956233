// Package conn implements the connection process: the single goroutine
// that multiplexes inbound packets, outbound requests, and in-flight
// handler completions over one framed socket (spec.md §4.4-§4.7).
package conn

import (
	"context"

	"github.com/avitex/battlelayer/word"
)

// Request is an inbound call delivered to a Handler, or an outbound call
// queued through Conn.Call/Conn.Exec.
type Request struct {
	Body word.Body
}

// Response is a Handler's reply to a Request.
type Response struct {
	Body word.Body
}

// Handler services a single request per Handle call. A connection process runs each
// call to Handle in its own goroutine, so a slow handler never blocks the
// processing of other requests multiplexed over the same connection
// (spec.md §4.5).
//
// An error returned from Handle cannot be represented on the wire — the
// protocol has no error channel, only word bodies — so the connection
// process treats it as fatal and tears the connection down. Handlers that
// want to report a failure to the peer should encode it into the
// response body instead (see package ratelimit for one example).
type Handler interface {
	Handle(ctx context.Context, req *Request) (*Response, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

func (f HandlerFunc) Handle(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

var defaultResponseBody = word.Body{word.MustNew("OK")}

// DefaultHandler replies to every request with the single word "OK",
// matching the connection's built-in handler when none is supplied
// (spec.md §4.5).
type DefaultHandler struct{}

func (DefaultHandler) Handle(context.Context, *Request) (*Response, error) {
	return &Response{Body: defaultResponseBody}, nil
}
