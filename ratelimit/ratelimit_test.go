package ratelimit

import (
	"context"
	"testing"

	"golang.org/x/time/rate"

	"github.com/avitex/battlelayer/conn"
	"github.com/avitex/battlelayer/word"
)

func TestWrapAllowsWithinBurst(t *testing.T) {
	calls := 0
	inner := conn.HandlerFunc(func(_ context.Context, req *conn.Request) (*conn.Response, error) {
		calls++
		return &conn.Response{Body: req.Body}, nil
	})
	h := Wrap(inner, rate.Limit(1), 2)

	body, _ := word.NewBody("ping")
	req := &conn.Request{Body: body}
	for i := 0; i < 2; i++ {
		resp, err := h.Handle(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if len(resp.Body) != 1 || resp.Body[0].String() != "ping" {
			t.Fatalf("request %d was unexpectedly rejected: %v", i, resp.Body)
		}
	}
	if calls != 2 {
		t.Fatalf("inner handler called %d times, want 2", calls)
	}
}

func TestWrapRejectsOverBurst(t *testing.T) {
	inner := conn.HandlerFunc(func(_ context.Context, req *conn.Request) (*conn.Response, error) {
		return &conn.Response{Body: req.Body}, nil
	})
	h := Wrap(inner, rate.Limit(0), 1)

	body, _ := word.NewBody("ping")
	req := &conn.Request{Body: body}
	if resp, err := h.Handle(context.Background(), req); err != nil || resp.Body[0].String() != "ping" {
		t.Fatalf("first request should be admitted: %+v, %v", resp, err)
	}
	resp, err := h.Handle(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Body) != 2 || resp.Body[0].String() != "ERR" {
		t.Fatalf("second request should be rejected: %v", resp.Body)
	}
}
