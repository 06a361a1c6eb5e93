// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_server/internal/feature/posts/domain/entity"
	"blog_server/internal/feature/posts/usecase"
)

// CachingPostRepository decorates a PostRepository with Redis caching for the
// recency-ordered listing pages. It implements the decorator pattern,
// transparently adding caching without modifying the underlying repository.
// Per-author pages and by-ID reads always go to the database.
type CachingPostRepository struct {
	inner     usecase.PostRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// cachedPage is the serialized form of one cached listing page.
type cachedPage struct {
	Posts []entity.Post `json:"posts"`
	Total int64         `json:"total"`
}

// NewCachingPostRepository decorates a PostRepository with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "posts".
func NewCachingPostRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PostRepository, namespace string) *CachingPostRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "posts"
	}
	return &CachingPostRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create persists the post and invalidates the cached listing pages.
func (c *CachingPostRepository) Create(ctx context.Context, post *entity.Post) error {
	if err := c.inner.Create(ctx, post); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// FindByID always reads through to the underlying repository.
func (c *CachingPostRepository) FindByID(ctx context.Context, id uint) (*entity.Post, error) {
	return c.inner.FindByID(ctx, id)
}

// FindPage retrieves one recency page, checking cache first then falling back
// to the database.
func (c *CachingPostRepository) FindPage(ctx context.Context, page, perPage int) ([]entity.Post, int64, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindPage(ctx, page, perPage)
	}

	key := c.cacheKey(page, perPage)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out cachedPage
		if err := json.Unmarshal(b, &out); err == nil {
			return out.Posts, out.Total, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	posts, total, err := c.inner.FindPage(ctx, page, perPage)
	if err != nil {
		return nil, 0, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(cachedPage{Posts: posts, Total: total}); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return posts, total, nil
}

// FindPageByUser always reads through to the underlying repository.
func (c *CachingPostRepository) FindPageByUser(ctx context.Context, userID uint, page, perPage int) ([]entity.Post, int64, error) {
	return c.inner.FindPageByUser(ctx, userID, page, perPage)
}

// Update persists the change and invalidates the cached listing pages.
func (c *CachingPostRepository) Update(ctx context.Context, post *entity.Post) error {
	if err := c.inner.Update(ctx, post); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Delete removes the post and invalidates the cached listing pages.
func (c *CachingPostRepository) Delete(ctx context.Context, id uint) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// invalidate drops every cached listing page. Best effort: a stale page for
// at most one TTL is acceptable if Redis misbehaves.
func (c *CachingPostRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	_ = c.deleteByPattern(ctx, c.namespace+":recent:*")
}

// cacheKey generates a cache key for one listing page.
func (c *CachingPostRepository) cacheKey(page, perPage int) string {
	return fmt.Sprintf("%s:recent:%d:%d", c.namespace, page, perPage)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingPostRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
