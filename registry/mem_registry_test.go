package registry

import "testing"

func TestMemRegistryRegisterDiscoverDeregister(t *testing.T) {
	r := NewMemRegistry()

	if err := r.Register("rcon", Instance{Addr: "127.0.0.1:27015"}, 10); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("rcon", Instance{Addr: "127.0.0.1:27016"}, 10); err != nil {
		t.Fatal(err)
	}

	got, err := r.Discover("rcon")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d instances, want 2", len(got))
	}

	if err := r.Deregister("rcon", "127.0.0.1:27015"); err != nil {
		t.Fatal(err)
	}
	got, err = r.Discover("rcon")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Addr != "127.0.0.1:27016" {
		t.Fatalf("got %v, want single instance 127.0.0.1:27016", got)
	}
}

func TestMemRegistryWatchReceivesUpdates(t *testing.T) {
	r := NewMemRegistry()
	ch := r.Watch("rcon")

	initial := <-ch
	if len(initial) != 0 {
		t.Fatalf("expected empty initial snapshot, got %v", initial)
	}

	if err := r.Register("rcon", Instance{Addr: "127.0.0.1:27015"}, 10); err != nil {
		t.Fatal(err)
	}
	updated := <-ch
	if len(updated) != 1 || updated[0].Addr != "127.0.0.1:27015" {
		t.Fatalf("got %v, want one registered instance", updated)
	}
}

func TestMemRegistryReregisterReplacesInstance(t *testing.T) {
	r := NewMemRegistry()
	if err := r.Register("rcon", Instance{Addr: "127.0.0.1:27015", Version: "1.0"}, 10); err != nil {
		t.Fatal(err)
	}
	if err := r.Register("rcon", Instance{Addr: "127.0.0.1:27015", Version: "2.0"}, 10); err != nil {
		t.Fatal(err)
	}
	got, err := r.Discover("rcon")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Version != "2.0" {
		t.Fatalf("got %v, want single updated instance", got)
	}
}
