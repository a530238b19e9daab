// Package cache keeps directory lookups and oversized callback payloads in redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"schedulebot/internal/schedule"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	groupKeyPrefix   = "directory:group:"
	teacherKeyPrefix = "directory:teacher:"
)

// Directory caches successful lookups of another schedule.Directory.
// Redis failures are logged and the lookup falls through to the wrapped directory.
type Directory struct {
	next   schedule.Directory
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewDirectory wraps next with a redis cache
func NewDirectory(next schedule.Directory, rdb redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Directory {
	return &Directory{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// ResolveGroup returns the cached group id or resolves and caches it
func (d *Directory) ResolveGroup(ctx context.Context, name string) (string, error) {
	key := groupKeyPrefix + schedule.NormalizeGroupName(name)

	id, err := d.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return id, nil
	case !errors.Is(err, redis.Nil):
		d.logger.Warn("Failed to read group from cache", zap.String("group", name), zap.Error(err))
	}

	id, err = d.next.ResolveGroup(ctx, name)
	if err != nil {
		return "", err
	}

	if err := d.rdb.Set(ctx, key, id, d.ttl).Err(); err != nil {
		d.logger.Warn("Failed to cache group", zap.String("group", name), zap.Error(err))
	}
	return id, nil
}

// ResolveTeacher returns cached matches or resolves them.
// Empty results are not cached so that new staff show up immediately.
func (d *Directory) ResolveTeacher(ctx context.Context, name string) ([]schedule.Teacher, error) {
	key := teacherKeyPrefix + name

	data, err := d.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var teachers []schedule.Teacher
		if err := json.Unmarshal(data, &teachers); err == nil {
			return teachers, nil
		}
		d.logger.Warn("Dropping malformed cache entry", zap.String("teacher", name))
	case !errors.Is(err, redis.Nil):
		d.logger.Warn("Failed to read teacher from cache", zap.String("teacher", name), zap.Error(err))
	}

	teachers, err := d.next.ResolveTeacher(ctx, name)
	if err != nil || len(teachers) == 0 {
		return teachers, err
	}

	data, err = json.Marshal(teachers)
	if err != nil {
		return teachers, nil
	}
	if err := d.rdb.Set(ctx, key, data, d.ttl).Err(); err != nil {
		d.logger.Warn("Failed to cache teacher", zap.String("teacher", name), zap.Error(err))
	}
	return teachers, nil
}
