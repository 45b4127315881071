package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kursadbilgin/orderflow/internal/ratelimit"
	"github.com/kursadbilgin/orderflow/internal/retry"
)

const (
	defaultSendsPerWindow int64 = 100
	defaultWindow               = time.Second
	pollStep                    = 10 * time.Millisecond
	pollMax                     = 50 * time.Millisecond
	keyPrefix                   = "orderflow:send"
)

// The counter for a window expires with the window.
var admitScript = goredis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if count > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

var _ ratelimit.RateLimiter = (*SendLimiter)(nil)

// SendLimiter is a fixed-window limiter shared by every process using the same Redis.
type SendLimiter struct {
	client *goredis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
	wait   func(ctx context.Context, d time.Duration) error
}

// NewSendLimiter admits at most perSecond sends per channel each second.
func NewSendLimiter(client *goredis.Client, perSecond int) (*SendLimiter, error) {
	return newSendLimiter(client, int64(perSecond), defaultWindow, time.Now, retry.Wait)
}

func newSendLimiter(
	client *goredis.Client,
	limit int64,
	window time.Duration,
	now func() time.Time,
	wait func(ctx context.Context, d time.Duration) error,
) (*SendLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if limit <= 0 {
		limit = defaultSendsPerWindow
	}
	if window <= 0 {
		window = defaultWindow
	}
	if now == nil {
		now = time.Now
	}
	if wait == nil {
		wait = retry.Wait
	}

	return &SendLimiter{client: client, limit: limit, window: window, now: now, wait: wait}, nil
}

func (l *SendLimiter) Allow(ctx context.Context, channel string) (bool, error) {
	if l == nil || l.client == nil {
		return false, fmt.Errorf("send limiter is not initialized")
	}

	channel = strings.ToLower(strings.TrimSpace(channel))
	if channel == "" {
		return false, fmt.Errorf("channel is required")
	}

	bucket := l.now().UTC().UnixNano() / int64(l.window)
	key := fmt.Sprintf("%s:%s:%d", keyPrefix, channel, bucket)

	admitted, err := admitScript.Run(ctx, l.client, []string{key}, l.limit, l.window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to evaluate send limit: %w", err)
	}
	return admitted == 1, nil
}

// Wait polls with a growing pause until the channel admits a send or ctx is done.
func (l *SendLimiter) Wait(ctx context.Context, channel string) error {
	pause := pollStep
	for {
		admitted, err := l.Allow(ctx, channel)
		if err != nil {
			return err
		}
		if admitted {
			return nil
		}

		if err := l.wait(ctx, pause); err != nil {
			return err
		}
		if pause += pollStep; pause > pollMax {
			pause = pollMax
		}
	}
}
