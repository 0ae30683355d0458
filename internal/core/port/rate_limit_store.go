package port

import (
	"context"
	"time"
)

// WindowState reports the outcome of an atomic sliding-window check.
type WindowState struct {
	// Admitted is true when the attempt was recorded within quota.
	Admitted bool
	// Count is the number of admitted attempts inside the trailing window,
	// including this one when Admitted is true.
	Count int
	// Oldest is the timestamp of the oldest attempt still inside the window.
	Oldest time.Time
	// HasOldest is false when the window holds no attempts.
	HasOldest bool
}

// RateLimitStore defines the persistence operation required to enforce
// sliding-window limits. Allow must trim expired attempts, count the
// remainder, and record the new attempt only when the count is below quota,
// all in a single atomic operation against the store. Denied attempts must
// leave the window state untouched.
type RateLimitStore interface {
	Allow(ctx context.Context, identifier string, quota int, window time.Duration, at time.Time) (WindowState, error)
}
