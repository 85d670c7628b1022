package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campus-hub/clubevent-hub/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATION CACHE
// Caches ranked recommendation results per student and limit. Scoring is
// deterministic, so a cached entry is exactly what a recompute would return
// until the student's profile or the catalog changes; writes that affect
// scoring invalidate the student's entries.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultRecommendationTTL bounds staleness from catalog changes
// (new events, view counts) that do not trigger invalidation.
const DefaultRecommendationTTL = 10 * time.Minute

const recommendationKeyPrefix = "recs:"

// RecommendationCache implements query.RecommendationCache on Redis.
type RecommendationCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewRecommendationCache creates a recommendation cache with the given TTL.
// A non-positive TTL falls back to DefaultRecommendationTTL.
func NewRecommendationCache(cache *Cache, ttl time.Duration) *RecommendationCache {
	if ttl <= 0 {
		ttl = DefaultRecommendationTTL
	}
	return &RecommendationCache{cache: cache, ttl: ttl}
}

// Get returns the cached result for the student and limit, or (nil, nil) on miss.
func (rc *RecommendationCache) Get(ctx context.Context, studentID string, limit int) (*query.GetRecommendationsResult, error) {
	var result query.GetRecommendationsResult
	err := rc.cache.Get(ctx, recommendationKey(studentID, limit), &result)
	if errors.Is(err, ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Set stores the result under the student and limit.
func (rc *RecommendationCache) Set(ctx context.Context, result *query.GetRecommendationsResult, limit int) error {
	if result == nil {
		return ErrCacheNilValue
	}
	return rc.cache.Set(ctx, recommendationKey(result.StudentID, limit), result, rc.ttl)
}

// Invalidate removes all cached entries of the student, across limits.
func (rc *RecommendationCache) Invalidate(ctx context.Context, studentID string) error {
	return rc.cache.DeleteByPattern(ctx, recommendationKeyPrefix+studentID+":*")
}

func recommendationKey(studentID string, limit int) string {
	return fmt.Sprintf("%s%s:%d", recommendationKeyPrefix, studentID, limit)
}
