package packet

import "testing"

func TestNewSequenceRoundTrip(t *testing.T) {
	cases := []struct {
		kind   Kind
		origin Role
		n      uint32
	}{
		{KindRequest, RoleClient, 0},
		{KindRequest, RoleServer, 1234},
		{KindResponse, RoleClient, 7},
		{KindResponse, RoleServer, (1 << 30) - 1},
	}
	for _, c := range cases {
		seq, err := NewSequence(c.kind, c.origin, c.n)
		if err != nil {
			t.Fatalf("NewSequence(%v,%v,%d): %v", c.kind, c.origin, c.n, err)
		}
		if seq.Kind() != c.kind || seq.Origin() != c.origin || seq.Number() != c.n {
			t.Fatalf("got kind=%v origin=%v number=%d, want kind=%v origin=%v number=%d",
				seq.Kind(), seq.Origin(), seq.Number(), c.kind, c.origin, c.n)
		}
	}
}

func TestNewSequenceRejectsReservedBits(t *testing.T) {
	if _, err := NewSequence(KindRequest, RoleClient, 0xffffffff); err != ErrInvalidSequenceNumber {
		t.Fatalf("expected ErrInvalidSequenceNumber, got %v", err)
	}
	if _, err := NewSequence(KindRequest, RoleClient, seqClientMask); err != ErrInvalidSequenceNumber {
		t.Fatalf("expected ErrInvalidSequenceNumber for client-bit collision, got %v", err)
	}
}

func TestSequenceNumberNeverSetsHeaderBits(t *testing.T) {
	for n := uint32(0); n < 1000; n += 37 {
		seq, err := NewSequence(KindResponse, RoleClient, n)
		if err != nil {
			t.Fatal(err)
		}
		if seq.Number()&seqHeaderMask != 0 {
			t.Fatalf("Number() leaked header bits: %#x", seq.Number())
		}
	}
}

func TestClientAndServerFixtureSequences(t *testing.T) {
	// Client request, sequence 0.
	seq := SequenceFromRaw(0x8000_0000)
	if seq.Origin() != RoleClient || seq.Kind() != KindRequest || seq.Number() != 0 {
		t.Fatalf("unexpected decode: %v", seq)
	}
	// Server response, sequence 0.
	seq = SequenceFromRaw(0x4000_0000)
	if seq.Origin() != RoleServer || seq.Kind() != KindResponse || seq.Number() != 0 {
		t.Fatalf("unexpected decode: %v", seq)
	}
}
