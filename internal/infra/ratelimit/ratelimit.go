package ratelimit

import "context"

// Limiter counts hits per key in fixed windows. Callers treat an error as
// "allowed": a broken limiter must not block registrations.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
