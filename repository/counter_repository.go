package repository

import (
	"context"
	"time"
)

// CounterRepository counts events per key inside a fixed window. The
// first Increment of a key opens its window; the count resets once the
// window has elapsed.
type CounterRepository interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}
