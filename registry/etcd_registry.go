// Package registry provides the etcd-based implementation of the
// Registry interface.
//
// etcd is a distributed key-value store that provides strong consistency
// (Raft protocol). We use it as a "distributed phonebook" for servers:
//
//	Key:   /battlelayer/servers/{Name}/{Addr}
//	Value: JSON-encoded Instance
//
// Registration uses TTL-based leases: if a server crashes, its lease
// expires and the entry is automatically removed — preventing "ghost"
// instances a client might otherwise try to dial.
package registry

import (
	"context"
	"encoding/json"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const keyPrefix = "/battlelayer/servers/"

// EtcdRegistry implements Registry using etcd v3.
type EtcdRegistry struct {
	client *clientv3.Client // thread-safe, shared across goroutines
}

// NewEtcdRegistry creates a registry connected to the given etcd endpoints.
func NewEtcdRegistry(endpoints []string) (*EtcdRegistry, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints: endpoints,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdRegistry{client: c}, nil
}

// Register adds inst to etcd with a TTL lease.
//
// Flow:
//  1. Create a lease with the given TTL (e.g., 10 seconds)
//  2. Put the key-value pair with the lease attached
//  3. Start KeepAlive to automatically renew the lease
//
// leaseID is a local variable, not stored on the struct: storing it would
// race if the same EtcdRegistry is used to register more than one name
// concurrently.
func (r *EtcdRegistry) Register(name string, inst Instance, ttl int64) error {
	ctx := context.TODO()

	lease, err := r.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}

	val, err := json.Marshal(inst)
	if err != nil {
		return err
	}

	_, err = r.client.Put(ctx, keyPrefix+name+"/"+inst.Addr, string(val), clientv3.WithLease(lease.ID))
	if err != nil {
		return err
	}

	ch, err := r.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return err
	}
	// Consume KeepAlive responses so the channel never fills up.
	go func() {
		for range ch {
		}
	}()
	return nil
}

// Deregister removes inst from etcd before its lease would otherwise
// expire. Called during graceful shutdown, before closing the listener.
func (r *EtcdRegistry) Deregister(name string, addr string) error {
	ctx := context.TODO()
	_, err := r.client.Delete(ctx, keyPrefix+name+"/"+addr)
	return err
}

// Watch monitors name's key prefix in etcd and emits the full updated
// instance list whenever something under it changes (new registration,
// deregistration, or lease expiration).
//
// Uses etcd's server-push Watch API rather than polling.
func (r *EtcdRegistry) Watch(name string) <-chan []Instance {
	ctx := context.TODO()
	ch := make(chan []Instance, 1)
	prefix := keyPrefix + name + "/"

	go func() {
		watchChan := r.client.Watch(ctx, prefix, clientv3.WithPrefix())
		for range watchChan {
			// Re-fetch the full list rather than parse individual watch
			// events — simpler, and Discover is already cheap.
			instances, _ := r.Discover(name)
			ch <- instances
		}
	}()

	return ch
}

// Discover returns all currently registered instances under name.
func (r *EtcdRegistry) Discover(name string) ([]Instance, error) {
	ctx := context.TODO()
	prefix := keyPrefix + name + "/"

	resp, err := r.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	instances := make([]Instance, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var inst Instance
		if err := json.Unmarshal(kv.Value, &inst); err != nil {
			continue // skip malformed entries
		}
		instances = append(instances, inst)
	}
	return instances, nil
}
