package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"schedulebot/internal/schedule"
	"schedulebot/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestDirectory_ResolveGroup_CachesHits(t *testing.T) {
	mr, rdb := newTestRedis(t)
	next := new(testutil.MockDirectory)
	next.On("ResolveGroup", mock.Anything, "пи 21-1").Return("100", nil).Once()

	dir := NewDirectory(next, rdb, time.Hour, testutil.NewTestLogger())

	id, err := dir.ResolveGroup(context.Background(), "пи 21-1")
	require.NoError(t, err)
	assert.Equal(t, "100", id)

	// Second lookup is served from redis
	id, err = dir.ResolveGroup(context.Background(), "пи 21-1")
	require.NoError(t, err)
	assert.Equal(t, "100", id)

	next.AssertExpectations(t)
	assert.True(t, mr.Exists(groupKeyPrefix+"ПИ21-1"))
	assert.Equal(t, time.Hour, mr.TTL(groupKeyPrefix+"ПИ21-1"))
}

func TestDirectory_ResolveGroup_ErrorsAreNotCached(t *testing.T) {
	mr, rdb := newTestRedis(t)
	next := new(testutil.MockDirectory)
	next.On("ResolveGroup", mock.Anything, "XYZ").Return("", schedule.ErrNotFound).Twice()

	dir := NewDirectory(next, rdb, time.Hour, testutil.NewTestLogger())

	for i := 0; i < 2; i++ {
		_, err := dir.ResolveGroup(context.Background(), "XYZ")
		assert.ErrorIs(t, err, schedule.ErrNotFound)
	}

	next.AssertExpectations(t)
	assert.False(t, mr.Exists(groupKeyPrefix+"XYZ"))
}

func TestDirectory_ResolveGroup_RedisDown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mr.Close()
	next := new(testutil.MockDirectory)
	next.On("ResolveGroup", mock.Anything, "ПИ21-1").Return("100", nil)

	dir := NewDirectory(next, rdb, time.Hour, testutil.NewTestLogger())

	id, err := dir.ResolveGroup(context.Background(), "ПИ21-1")

	assert.NoError(t, err)
	assert.Equal(t, "100", id)
}

func TestDirectory_ResolveTeacher(t *testing.T) {
	_, rdb := newTestRedis(t)
	teachers := []schedule.Teacher{{ID: "5", Name: "Иванов Иван Иванович"}}
	next := new(testutil.MockDirectory)
	next.On("ResolveTeacher", mock.Anything, "Иванов").Return(teachers, nil).Once()
	next.On("ResolveTeacher", mock.Anything, "Никто").Return([]schedule.Teacher{}, nil).Twice()

	dir := NewDirectory(next, rdb, time.Hour, testutil.NewTestLogger())

	for i := 0; i < 2; i++ {
		got, err := dir.ResolveTeacher(context.Background(), "Иванов")
		require.NoError(t, err)
		assert.Equal(t, teachers, got)

		got, err = dir.ResolveTeacher(context.Background(), "Никто")
		require.NoError(t, err)
		assert.Empty(t, got)
	}

	next.AssertExpectations(t)
}

func TestDirectory_ResolveTeacher_Timeout(t *testing.T) {
	_, rdb := newTestRedis(t)
	next := new(testutil.MockDirectory)
	next.On("ResolveTeacher", mock.Anything, "Иванов").Return(nil, schedule.ErrTimeout)

	dir := NewDirectory(next, rdb, time.Hour, testutil.NewTestLogger())

	_, err := dir.ResolveTeacher(context.Background(), "Иванов")

	assert.True(t, errors.Is(err, schedule.ErrTimeout))
}

func TestRedisStash(t *testing.T) {
	mr, rdb := newTestRedis(t)
	stash := NewRedisStash(rdb, time.Minute)
	ctx := context.Background()
	value := `{"menu":"set_teacher","found_id":"12345","found_name":"Иванов Иван Иванович"}`

	token, err := stash.Put(ctx, value)
	require.NoError(t, err)
	assert.Len(t, token, 20)

	again, err := stash.Put(ctx, value)
	require.NoError(t, err)
	assert.Equal(t, token, again, "tokens are stable per value")

	got, err := stash.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	mr.FastForward(2 * time.Minute)

	_, err = stash.Get(ctx, token)
	assert.ErrorIs(t, err, ErrStashMiss)
}

func TestMemoryStash(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	stash := NewMemoryStash(time.Minute)
	stash.now = func() time.Time { return now }
	ctx := context.Background()

	token, err := stash.Put(ctx, "long value")
	require.NoError(t, err)

	got, err := stash.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "long value", got)

	_, err = stash.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrStashMiss)

	now = now.Add(2 * time.Minute)
	_, err = stash.Get(ctx, token)
	assert.ErrorIs(t, err, ErrStashMiss)

	// Expired entries are swept by the next write
	_, err = stash.Put(ctx, "other value")
	require.NoError(t, err)
	assert.Len(t, stash.items, 1)
}
