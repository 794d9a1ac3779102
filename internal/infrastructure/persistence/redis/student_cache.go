package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/internal/domain/student"
)

// StudentCache implements student.Cache using the generic Redis Cache.
// The write path invalidates after every commit, so a stale entry lives at
// most one TTL after a crash between commit and invalidate.
type StudentCache struct {
	cache *Cache
}

// NewStudentCache creates a new StudentCache.
func NewStudentCache(cache *Cache) *StudentCache {
	return &StudentCache{cache: cache}
}

// Get returns a cached profile, or shared.ErrNotFound on a miss.
func (s *StudentCache) Get(ctx context.Context, studentID string) (*student.Profile, error) {
	var p student.Profile
	if err := s.cache.Get(ctx, StudentKey(studentID), &p); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, fmt.Errorf("profile %s: %w", studentID, shared.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// Set stores a profile with the given TTL.
func (s *StudentCache) Set(ctx context.Context, p *student.Profile, ttl time.Duration) error {
	if p == nil {
		return nil
	}
	return s.cache.Set(ctx, StudentKey(p.ID), p, ttl)
}

// Invalidate removes a profile from the cache.
func (s *StudentCache) Invalidate(ctx context.Context, studentID string) error {
	return s.cache.Delete(ctx, StudentKey(studentID))
}
