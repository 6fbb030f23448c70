package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"course-marketplace/internal/domain/model"
	"course-marketplace/internal/domain/ports/repository"
	"course-marketplace/internal/infra/metrics"
	red "course-marketplace/internal/infra/redis"
)

var _ repository.CourseRepository = (*courseRepoCacheDecorator)(nil)

// courseRepoCacheDecorator caches the read-mostly catalog. Counter writes
// (enrollment, revenue) invalidate so checkout never prices stale data for
// long; the TTL is the hard ceiling.
type courseRepoCacheDecorator struct {
	inner repository.CourseRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCourseRepoCacheDecorator(inner repository.CourseRepository, cache red.RedisClient, ttl time.Duration) repository.CourseRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &courseRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *courseRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Course, error) {
	key := fmt.Sprintf("course:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("course", "hit")
		var c model.Course
		if json.Unmarshal([]byte(val), &c) == nil {
			return &c, nil
		}
	}
	if err != nil && err != redis.Nil {
		metrics.IncCacheRequest("course", "error")
	}

	metrics.IncCacheRequest("course", "miss")
	c, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if c != nil {
		bytes, _ := json.Marshal(c)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return c, nil
}

// ListByIDs caches per id-set; the key is order independent so cart
// reorderings share an entry.
func (d *courseRepoCacheDecorator) ListByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.Course, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	key := "courses:" + strings.Join(sorted, ",")

	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("course_list", "hit")
		var cs []*model.Course
		if json.Unmarshal([]byte(val), &cs) == nil {
			return cs, nil
		}
	}

	metrics.IncCacheRequest("course_list", "miss")
	cs, err := d.inner.ListByIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	if len(cs) > 0 {
		bytes, _ := json.Marshal(cs)
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return cs, nil
}

func (d *courseRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, c *model.Course) error {
	d.invalidate(ctx, c.ID)
	return d.inner.Save(ctx, tx, c)
}

func (d *courseRepoCacheDecorator) IncrementEnrollment(ctx context.Context, tx repository.Tx, courseID string, delta int) error {
	d.invalidate(ctx, courseID)
	return d.inner.IncrementEnrollment(ctx, tx, courseID, delta)
}

func (d *courseRepoCacheDecorator) AddRevenue(ctx context.Context, tx repository.Tx, courseID string, amount int64) error {
	d.invalidate(ctx, courseID)
	return d.inner.AddRevenue(ctx, tx, courseID, amount)
}

func (d *courseRepoCacheDecorator) invalidate(ctx context.Context, courseID string) {
	// List keys are not tracked per course; they age out via TTL.
	d.cache.Del(ctx, fmt.Sprintf("course:%s", courseID))
}
