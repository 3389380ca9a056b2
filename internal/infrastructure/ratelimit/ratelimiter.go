package ratelimit

import "context"

// RateLimiter gates requests per key over a sliding window. The limit and
// window are fixed at construction; keys identify callers (client SID or
// remote address).
type RateLimiter interface {
	// Allow records a request for key and reports whether it fits the
	// window.
	Allow(ctx context.Context, key string) (bool, error)

	// Remaining returns how many requests key has left in the current
	// window.
	Remaining(ctx context.Context, key string) (int64, error)

	// Reset clears the window for key.
	Reset(ctx context.Context, key string) error
}
