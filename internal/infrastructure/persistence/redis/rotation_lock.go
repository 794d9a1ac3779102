package redis

import (
	"context"
	"os"
)

// RotationLock implements achievements.RotationLock with a Redis SET NX key
// per month. The TTL bounds how long a crashed worker can block rotation for
// everyone else.
type RotationLock struct {
	cache  *Cache
	holder string
}

// NewRotationLock creates a new RotationLock. The holder tag identifies this
// worker replica in the lock value.
func NewRotationLock(cache *Cache) *RotationLock {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return &RotationLock{cache: cache, holder: hostname}
}

// Acquire takes the rotation lock for a month key. Returns false when
// another replica already holds it.
func (l *RotationLock) Acquire(ctx context.Context, monthKey string) (bool, error) {
	return l.cache.SetNX(ctx, LockKey("rotation:"+monthKey), l.holder, TTLRotationLock)
}

// Release drops the lock.
func (l *RotationLock) Release(ctx context.Context, monthKey string) error {
	return l.cache.Delete(ctx, LockKey("rotation:"+monthKey))
}
