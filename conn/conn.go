package conn

import (
	"context"

	"github.com/avitex/battlelayer/word"
)

// processResult lets every Conn handle sharing one connection process
// observe its terminal error exactly once, however many handles call
// Finish.
type processResult struct {
	done chan struct{}
	err  error
}

func (r *processResult) wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Conn is a handle to a running connection process (spec.md §4.7). It is
// safe for concurrent use: Call and Exec may be invoked from any number
// of goroutines at once, each resolving independently as responses
// arrive, regardless of order (spec.md §4.6, multiplexing).
type Conn struct {
	queue  *requestQueue
	result *processResult
}

// Call sends req and blocks until the connection process delivers a
// matching response, the request is cancelled by connection shutdown, or
// ctx is done first.
func (c *Conn) Call(ctx context.Context, req *Request) (*Response, error) {
	o := newOutbound(req)
	if err := c.queue.send(o); err != nil {
		return nil, err
	}
	select {
	case res := <-o.result:
		return res.resp, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Exec is a convenience wrapper around Call for the common case of a
// plain word list in, word list out (the shape the CLI front end uses).
func (c *Conn) Exec(ctx context.Context, words ...string) (word.Body, error) {
	body, err := word.NewBody(words...)
	if err != nil {
		return nil, err
	}
	resp, err := c.Call(ctx, &Request{Body: body})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Clone returns a new handle to the same connection process. The process
// keeps running until every handle obtained this way (including the
// original) has been Closed.
func (c *Conn) Clone() *Conn {
	c.queue.acquire()
	return &Conn{queue: c.queue, result: c.result}
}

// Close releases this handle's reference to the connection process. Once
// every handle has been released, the process treats its request queue
// as closed — one of its three shutdown conditions.
func (c *Conn) Close() {
	c.queue.release()
}

// Finish blocks until the connection process has fully terminated,
// returning the error it terminated with (nil on a clean shutdown).
func (c *Conn) Finish(ctx context.Context) error {
	return c.result.wait(ctx)
}
