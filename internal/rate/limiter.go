package rate

import (
	"context"
	"time"
)

// Limiter answers whether a key may proceed within the current window and,
// when denied, how long until the window resets.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) (allowed bool, retryAfter time.Duration, err error)
}
