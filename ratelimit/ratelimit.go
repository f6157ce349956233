// Package ratelimit wraps a conn.Handler with token-bucket admission
// control, grounded on the teacher's RateLimitMiddleware but adapted to
// battlelayer's word-oriented wire format: a rejected request returns a
// normal response body (["ERR", "rate limited"]) rather than an error,
// since conn.Handler errors are fatal to the whole connection and a
// single noisy caller should not take the connection down.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/avitex/battlelayer/conn"
	"github.com/avitex/battlelayer/word"
)

var rejectedBody = word.Body{word.MustNew("ERR"), word.MustNew("rate limited")}

// Wrap returns a Handler that admits at most r requests per second, with
// bursts up to burst, before delegating to next.
//
// CRITICAL: the limiter must be constructed once, here, outside the
// returned closure. One per request would hand every request a fresh
// full bucket and rate limiting would never trigger.
func Wrap(next conn.Handler, r rate.Limit, burst int) conn.Handler {
	limiter := rate.NewLimiter(r, burst)
	return conn.HandlerFunc(func(ctx context.Context, req *conn.Request) (*conn.Response, error) {
		if !limiter.Allow() {
			return &conn.Response{Body: rejectedBody}, nil
		}
		return next.Handle(ctx, req)
	})
}
