package conn

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/avitex/battlelayer/packet"
	"github.com/avitex/battlelayer/socket"
	"github.com/avitex/battlelayer/word"
)

// halfPipe is one end of a full-duplex stream built from two unbuffered
// io.Pipes, giving each side independent half-close semantics: closing
// Close() ends only the outbound direction, so the peer observes a clean
// EOF on read without losing the ability to still write (spec.md §4.3's
// "Closed is distinct from Broken").
type halfPipe struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (h *halfPipe) Read(p []byte) (int, error)  { return h.r.Read(p) }
func (h *halfPipe) Write(p []byte) (int, error) { return h.w.Write(p) }
func (h *halfPipe) Close() error                { return h.w.Close() }

func newDuplexPair() (client, server *halfPipe) {
	r1, w1 := io.Pipe() // client -> server
	r2, w2 := io.Pipe() // server -> client
	client = &halfPipe{r: r2, w: w1}
	server = &halfPipe{r: r1, w: w2}
	return client, server
}

func echoHandler() HandlerFunc {
	return func(_ context.Context, req *Request) (*Response, error) {
		return &Response{Body: req.Body}, nil
	}
}

func TestCallDefaultHandler(t *testing.T) {
	client, server := newDuplexPair()
	ctx := context.Background()

	NewBuilder(packet.RoleServer).Start(ctx, server)
	c := NewBuilder(packet.RoleClient).Start(ctx, client)
	defer c.Close()

	got, err := c.Exec(ctx, "ping")
	if err != nil {
		t.Fatal(err)
	}
	want, _ := word.NewBody("OK")
	if len(got) != 1 || !got[0].Equal(want[0]) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestConcurrentRequestsResolveIndependently(t *testing.T) {
	client, server := newDuplexPair()
	ctx := context.Background()

	NewBuilder(packet.RoleServer).Handler(echoHandler()).Start(ctx, server)
	c := NewBuilder(packet.RoleClient).Start(ctx, client)
	defer c.Close()

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			w := string(rune('a' + i%26))
			got, err := c.Exec(ctx, w)
			if err != nil {
				t.Errorf("request %d: %v", i, err)
				return
			}
			if len(got) != 1 || got.Strings()[0] != w {
				t.Errorf("request %d: got %v, want [%s]", i, got, w)
			}
		}(i)
	}
	wg.Wait()
}

func TestRequestCancelledOnPeerHangup(t *testing.T) {
	client, dummyPeer := newDuplexPair()
	ctx := context.Background()
	c := NewBuilder(packet.RoleClient).Start(ctx, client)

	// Drain whatever the client writes so its WritePacket call for the
	// "hang" request doesn't block forever on an unbuffered pipe that
	// nothing reads.
	go io.Copy(io.Discard, dummyPeer.r)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Exec(context.Background(), "hang")
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	c.Close()         // releases the only handle: request queue closes
	dummyPeer.Close() // peer hangs up: client observes a clean EOF

	select {
	case err := <-errCh:
		if err != ErrRequestCancelled {
			t.Fatalf("got %v, want ErrRequestCancelled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Exec never returned")
	}

	if err := c.Finish(context.Background()); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestOriginMismatchIsFatal(t *testing.T) {
	client, peer := newDuplexPair()
	ctx := context.Background()
	c := NewBuilder(packet.RoleClient).Start(ctx, client)
	defer c.Close()

	// A "response" claiming to originate from the server, sent to a
	// client-role connection: the origin bit can never legitimately be
	// anything but RoleClient here.
	seq, err := packet.NewSequence(packet.KindResponse, packet.RoleServer, 0)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := word.NewBody("bogus")
	pkt, err := packet.New(seq, body)
	if err != nil {
		t.Fatal(err)
	}
	sock := socket.New(peer)
	if err := sock.WritePacket(pkt); err != nil {
		t.Fatal(err)
	}

	err = c.Finish(context.Background())
	if !errors.Is(err, ErrOriginMismatch) {
		t.Fatalf("got %v, want ErrOriginMismatch", err)
	}
}

func TestUnknownSequenceIsFatal(t *testing.T) {
	client, peer := newDuplexPair()
	ctx := context.Background()
	c := NewBuilder(packet.RoleClient).Start(ctx, client)
	defer c.Close()

	// A well-formed response, correctly marked client-origin, but for a
	// sequence number this connection never assigned.
	seq, err := packet.NewSequence(packet.KindResponse, packet.RoleClient, 999)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := word.NewBody("bogus")
	pkt, err := packet.New(seq, body)
	if err != nil {
		t.Fatal(err)
	}
	sock := socket.New(peer)
	if err := sock.WritePacket(pkt); err != nil {
		t.Fatal(err)
	}

	err = c.Finish(context.Background())
	if !errors.Is(err, ErrInvalidSequence) {
		t.Fatalf("got %v, want ErrInvalidSequence", err)
	}
}
