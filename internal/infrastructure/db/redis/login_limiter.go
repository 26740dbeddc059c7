package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginKeyPrefix  = "login:attempts:"
	limiterTimeout  = 500 * time.Millisecond
	defaultWindow   = 15 * time.Minute
	defaultAttempts = 10
)

// attemptScript increments the counter and starts the window on the first hit.
const attemptScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type scripter interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// LoginLimiter counts login attempts per email in a fixed window.
type LoginLimiter struct {
	client scripter
	window time.Duration
	max    int
}

func NewLoginLimiter(client *redis.Client, window time.Duration, max int) *LoginLimiter {
	return newLoginLimiter(client, window, max)
}

func newLoginLimiter(client scripter, window time.Duration, max int) *LoginLimiter {
	if window < time.Second {
		window = defaultWindow
	}
	if max <= 0 {
		max = defaultAttempts
	}
	return &LoginLimiter{client: client, window: window, max: max}
}

// Allow records an attempt for key and reports whether it is within budget.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, limiterTimeout)
	defer cancel()

	count, err := l.client.Eval(ctx, attemptScript, []string{l.key(key)}, int(l.window.Seconds())).Int()
	if err != nil {
		return false, fmt.Errorf("login limiter: %w", err)
	}
	return count <= l.max, nil
}

// Reset clears the attempt counter for key.
func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, limiterTimeout)
	defer cancel()

	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("login limiter reset: %w", err)
	}
	return nil
}

func (l *LoginLimiter) key(key string) string {
	return loginKeyPrefix + strings.ToLower(strings.TrimSpace(key))
}
