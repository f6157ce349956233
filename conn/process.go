package conn

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/avitex/battlelayer/packet"
	"github.com/avitex/battlelayer/socket"
)

// seqNumberMask keeps a freshly assigned sequence number inside its 30-bit
// field, matching the header bits packet.NewSequence reserves.
const seqNumberMask = 0x3fff_ffff

// readResult is one value off the background read loop: either a decoded
// packet, or the terminal error that ended it (socket.ErrClosed on a
// clean EOF, anything else on a framing or I/O failure).
type readResult struct {
	p   *packet.Packet
	err error
}

// handlerDone is a completed Handler.Handle call, routed back to the
// connection process so it can write the response (or, on error, treat
// the connection as fatally broken — see handler.go).
type handlerDone struct {
	reqSeq packet.Sequence
	resp   *Response
	err    error
}

// process is the connection process itself: the single owner of a
// socket.Socket, multiplexing inbound packets, outbound requests, and
// in-flight handler completions over one native Go select loop. It
// generalizes the teacher's per-connection read loop (server.handleConn)
// and per-sequence response correlation (transport.ClientTransport's
// pending map + recvLoop) into the single bidirectional loop spec.md
// §4.6 describes — this implementation is not forked into separate
// client/server state machines; Role only changes which header bit it
// stamps on outbound sequence numbers.
type process struct {
	sock    *socket.Socket
	handler Handler
	role    packet.Role
	queue   *requestQueue
}

// readLoop feeds decoded packets to out until ReadPacket returns an error
// (clean EOF, a broken socket, or the socket having been closed out from
// under it by run on shutdown), then sends that terminal result once and
// exits. out is given one slot of buffer precisely so this last send
// cannot block forever on a run loop that has already stopped receiving.
func readLoop(sock *socket.Socket, out chan<- readResult) {
	for {
		p, err := sock.ReadPacket()
		out <- readResult{p: p, err: err}
		if err != nil {
			return
		}
	}
}

// run drives the connection until the socket reaches a clean EOF, every
// Conn handle has released its reference to the request queue, and every
// in-flight handler has completed — or until a fatal error occurs. It
// returns nil on clean shutdown, and the fatal error otherwise.
func (pr *process) run(ctx context.Context) error {
	packets := make(chan readResult, 1)
	go readLoop(pr.sock, packets)

	done := make(chan handlerDone)
	pending := make(map[uint32]*outbound)
	inflight := 0
	var seqCounter uint32

	hctx, cancel := context.WithCancel(ctx)
	defer cancel()

	packetCh := (chan readResult)(packets)
	releasedCh := pr.queue.allReleased
	var socketClosed, requestClosed bool
	var finalErr error

loop:
	for {
		select {
		case res := <-packetCh:
			if res.err != nil {
				if errors.Is(res.err, socket.ErrClosed) {
					socketClosed = true
					packetCh = nil
					if requestClosed && inflight == 0 {
						break loop
					}
					continue
				}
				finalErr = res.err
				break loop
			}
			if err := pr.handleInbound(hctx, res.p, pending, &inflight, done); err != nil {
				finalErr = err
				break loop
			}

		case o := <-pr.queue.ch:
			if err := pr.handleOutbound(o, pending, &seqCounter); err != nil {
				finalErr = err
				break loop
			}

		case <-releasedCh:
			requestClosed = true
			releasedCh = nil
			if socketClosed && inflight == 0 {
				break loop
			}

		case d := <-done:
			inflight--
			if err := pr.handleHandlerDone(d); err != nil {
				finalErr = err
				break loop
			}
			if socketClosed && requestClosed && inflight == 0 {
				break loop
			}
		}
	}

	// Close the socket unconditionally, even on a clean shutdown where
	// the peer already closed its end: this is what unblocks readLoop's
	// in-flight sock.ReadPacket call on every other exit path (a fatal
	// codec/handler/origin/sequence error), so it can send its terminal
	// readResult and return instead of leaking for the rest of the
	// process's lifetime.
	pr.sock.Close()

	cancel()
	for _, o := range pending {
		o.deliver(nil, ErrRequestCancelled)
	}
	for inflight > 0 {
		<-done
		inflight--
	}
	return finalErr
}

func (pr *process) handleInbound(ctx context.Context, p *packet.Packet, pending map[uint32]*outbound, inflight *int, done chan<- handlerDone) error {
	switch p.Seq.Kind() {
	case packet.KindRequest:
		// Origin is deliberately NOT checked on inbound requests (spec.md
		// §9 open question): a request's origin bit only needs to be
		// echoed back correctly on the matching response, so a peer that
		// mislabels its own requests only hurts itself.
		*inflight++
		reqSeq, body := p.Seq, p.Words
		go func() {
			resp, err := pr.handler.Handle(ctx, &Request{Body: body})
			done <- handlerDone{reqSeq: reqSeq, resp: resp, err: err}
		}()
		return nil

	case packet.KindResponse:
		if p.Seq.Origin() != pr.role {
			return fmt.Errorf("%w: got %s, this side is %s", ErrOriginMismatch, p.Seq.Origin(), pr.role)
		}
		num := p.Seq.Number()
		o, ok := pending[num]
		if !ok {
			return fmt.Errorf("%w: response for sequence %d has no pending request", ErrInvalidSequence, num)
		}
		delete(pending, num)
		o.deliver(&Response{Body: p.Words}, nil)
		return nil
	}
	return nil
}

func (pr *process) handleOutbound(o *outbound, pending map[uint32]*outbound, seqCounter *uint32) error {
	num := *seqCounter & seqNumberMask
	*seqCounter = num + 1

	if _, collides := pending[num]; collides {
		// The 30-bit sequence space wrapped while a very long-lived
		// request was still outstanding. This is a local, per-request
		// failure, not a reason to tear down an otherwise healthy
		// connection.
		o.deliver(nil, ErrInvalidSequence)
		return nil
	}

	seq, err := packet.NewSequence(packet.KindRequest, pr.role, num)
	if err != nil {
		o.deliver(nil, err)
		return nil
	}
	pkt, err := packet.New(seq, o.req.Body)
	if err != nil {
		o.deliver(nil, err)
		return nil
	}

	pending[num] = o
	if err := pr.sock.WritePacket(pkt); err != nil {
		// Leave o in pending rather than deleting it here: run's cleanup
		// drain delivers ErrRequestCancelled to every remaining pending
		// entry once the loop exits, which is what actually wakes this
		// caller. Deleting it here and returning the write error would
		// strand it in Conn.Call forever (spec §7).
		return err
	}
	return nil
}

func (pr *process) handleHandlerDone(d handlerDone) error {
	if d.err != nil {
		return d.err
	}
	respSeq := d.reqSeq.WithKind(packet.KindResponse)
	pkt, err := packet.New(respSeq, d.resp.Body)
	if err != nil {
		// A handler returned a body packet.New rejects (too many words):
		// that handler's caller gets nothing back, but it doesn't take
		// down the rest of the connection.
		log.Printf("conn: dropping response for sequence %d: %v", respSeq.Number(), err)
		return nil
	}
	if err := pr.sock.WritePacket(pkt); err != nil {
		return err
	}
	return nil
}
