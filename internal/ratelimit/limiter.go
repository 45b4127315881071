// Package ratelimit throttles outbound sends per transport channel.
package ratelimit

import "context"

// RateLimiter controls send throughput per channel.
type RateLimiter interface {
	Allow(ctx context.Context, channel string) (bool, error)
	Wait(ctx context.Context, channel string) error
}

// Unlimited admits every send. It is used when no shared limiter is configured.
type Unlimited struct{}

func (Unlimited) Allow(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (Unlimited) Wait(ctx context.Context, _ string) error {
	return ctx.Err()
}
