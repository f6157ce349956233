// Package registry provides a directory of running battlelayer servers.
//
// Service discovery solves the problem of "how does the client find the
// server?" Instead of hardcoding an address, servers register themselves
// in a central registry (etcd), and clients query the registry to find
// available instances.
package registry

// Instance represents a single running battlelayer server.
type Instance struct {
	Addr    string // dial address, e.g. "127.0.0.1:27015"
	Version string // free-form version tag, for canary rollouts
}

// Registry is the interface for service registration and discovery.
// Implementations include EtcdRegistry (production) and MemRegistry
// (testing, or single-process deployments with no real directory).
type Registry interface {
	// Register adds inst to the registry under name with a TTL lease.
	// The instance is automatically removed if KeepAlive stops (e.g. the
	// server crashes).
	Register(name string, inst Instance, ttl int64) error

	// Deregister removes an instance from the registry.
	// Called during graceful shutdown BEFORE closing the listener.
	Deregister(name string, addr string) error

	// Discover returns all currently registered instances under name.
	// A client calls this to get the instance list to dial.
	Discover(name string) ([]Instance, error)

	// Watch returns a channel that emits the updated instance list
	// whenever it changes (new registrations, deregistrations, lease
	// expirations). This enables real-time service discovery without
	// polling.
	Watch(name string) <-chan []Instance
}
