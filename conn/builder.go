package conn

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/avitex/battlelayer/packet"
	"github.com/avitex/battlelayer/registry"
	"github.com/avitex/battlelayer/socket"
)

// Builder assembles a Conn through a small chain of setters, the way the
// teacher's Server.Use(mw) accumulates middleware before Serve: nothing
// actually starts until Dial or Start is called.
type Builder struct {
	role    packet.Role
	handler Handler
}

// NewBuilder returns a Builder for a connection acting as role, defaulting
// to DefaultHandler (spec.md §4.5).
func NewBuilder(role packet.Role) *Builder {
	return &Builder{role: role, handler: DefaultHandler{}}
}

// Handler sets the handler the connection process dispatches inbound
// requests to.
func (b *Builder) Handler(h Handler) *Builder {
	b.handler = h
	return b
}

// Dial opens network/addr and starts a connection process over it.
func (b *Builder) Dial(ctx context.Context, network, addr string) (*Conn, error) {
	nc, err := (&net.Dialer{}).DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("conn: dial %s %s: %w", network, addr, err)
	}
	return b.Start(ctx, nc), nil
}

// DialService discovers the instances reg has registered under name and
// dials the first one found, for callers that locate a server through
// the registry rather than a hardcoded address (spec.md's §4.9 service
// registry, put to use on the dialing side).
func (b *Builder) DialService(ctx context.Context, reg registry.Registry, name, network string) (*Conn, error) {
	instances, err := reg.Discover(name)
	if err != nil {
		return nil, fmt.Errorf("conn: discover %q: %w", name, err)
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("conn: no instances registered for %q", name)
	}
	return b.Dial(ctx, network, instances[0].Addr)
}

// Start spawns a connection process over an already-established duplex
// stream and returns a handle to it immediately; the process runs in its
// own goroutine until shutdown.
func (b *Builder) Start(ctx context.Context, rw io.ReadWriter) *Conn {
	result := &processResult{done: make(chan struct{})}
	pr := &process{
		sock:    socket.New(rw),
		handler: b.handler,
		role:    b.role,
		queue:   newRequestQueue(result.done),
	}
	go func() {
		result.err = pr.run(ctx)
		close(result.done)
	}()
	return &Conn{queue: pr.queue, result: result}
}
