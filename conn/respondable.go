package conn

import "sync/atomic"

// outboundResult is what a queued call eventually resolves to.
type outboundResult struct {
	resp *Response
	err  error
}

// outbound is one call queued by Conn.Call, waiting for the connection
// process to assign it a sequence number, write it, and eventually
// correlate a response (or cancel it). result is buffered by one so
// deliver never blocks, even if the caller stopped listening (its
// context was cancelled and Call already returned).
type outbound struct {
	req    *Request
	result chan outboundResult
}

func newOutbound(req *Request) *outbound {
	return &outbound{req: req, result: make(chan outboundResult, 1)}
}

func (o *outbound) deliver(resp *Response, err error) {
	o.result <- outboundResult{resp: resp, err: err}
}

// requestQueue is the many-producer, single-consumer queue of outbound
// calls that feeds the connection process (spec.md §4.4). It stands in
// for the reference-counted mpsc sender the original relies on: every
// Conn handle holds one acquired reference, and allReleased closes once
// the last one calls release, which the process treats as "no more
// outbound work will ever arrive" — one of its three termination
// conditions.
//
// allReleased is closed exactly once instead of closing ch itself, so a
// send racing against the last release can never panic on a closed
// channel; it either lands before the process stops looking, or loses
// the race and observes allReleased closed, in which case its sender
// gets ErrRequestFailed.
//
// procDone is the connection process's own termination signal (closed
// when its run loop returns, whatever the reason). Without it, a send
// racing against a process that has already died on a fatal error — with
// refs still held by a live Conn handle, so allReleased never fires —
// would block forever with nothing left to read ch. Observing procDone
// gives send a second, independent way out.
type requestQueue struct {
	ch          chan *outbound
	refs        int32
	allReleased chan struct{}
	closeOnce   int32
	procDone    <-chan struct{}
}

func newRequestQueue(procDone <-chan struct{}) *requestQueue {
	return &requestQueue{
		ch:          make(chan *outbound),
		refs:        1,
		allReleased: make(chan struct{}),
		procDone:    procDone,
	}
}

func (q *requestQueue) acquire() {
	atomic.AddInt32(&q.refs, 1)
}

func (q *requestQueue) release() {
	if atomic.AddInt32(&q.refs, -1) != 0 {
		return
	}
	if atomic.CompareAndSwapInt32(&q.closeOnce, 0, 1) {
		close(q.allReleased)
	}
}

func (q *requestQueue) send(o *outbound) error {
	select {
	case q.ch <- o:
		return nil
	case <-q.allReleased:
		return ErrRequestFailed
	case <-q.procDone:
		return ErrRequestFailed
	}
}
