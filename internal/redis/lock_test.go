package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T, ttl time.Duration) (Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisPractitionerLocker(client, ttl), mr
}

func TestWithPractitionerLockRunsAndReleases(t *testing.T) {
	locker, mr := newTestLocker(t, 5*time.Second)
	id := uuid.New()

	ran := false
	err := locker.WithPractitionerLock(context.Background(), id, func(ctx context.Context) error {
		ran = true
		assert.True(t, mr.Exists(lockKey(id)))
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, mr.Exists(lockKey(id)))
}

func TestWithPractitionerLockBusy(t *testing.T) {
	locker, mr := newTestLocker(t, 5*time.Second)
	id := uuid.New()
	require.NoError(t, mr.Set(lockKey(id), "someone-else"))

	err := locker.WithPractitionerLock(context.Background(), id, func(context.Context) error {
		t.Fatal("critical section must not run")
		return nil
	})

	assert.ErrorIs(t, err, ErrLockNotAcquired)
	got, _ := mr.Get(lockKey(id))
	assert.Equal(t, "someone-else", got)
}

func TestWithPractitionerLockIsPerPractitioner(t *testing.T) {
	locker, _ := newTestLocker(t, 5*time.Second)
	a, b := uuid.New(), uuid.New()

	err := locker.WithPractitionerLock(context.Background(), a, func(ctx context.Context) error {
		return locker.WithPractitionerLock(ctx, b, func(context.Context) error { return nil })
	})
	require.NoError(t, err)

	err = locker.WithPractitionerLock(context.Background(), a, func(ctx context.Context) error {
		return locker.WithPractitionerLock(ctx, a, func(context.Context) error { return nil })
	})
	assert.ErrorIs(t, err, ErrLockNotAcquired)
}

func TestWithPractitionerLockPropagatesError(t *testing.T) {
	locker, mr := newTestLocker(t, 5*time.Second)
	id := uuid.New()
	boom := errors.New("boom")

	err := locker.WithPractitionerLock(context.Background(), id, func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(lockKey(id)))
}

func TestReleaseKeepsForeignToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	l := &redisPractitionerLocker{client: client, ttl: time.Second}

	require.NoError(t, mr.Set("lock:practitioner:x", "theirs"))
	require.NoError(t, l.release(context.Background(), "lock:practitioner:x", "mine"))
	assert.True(t, mr.Exists("lock:practitioner:x"))
}

func TestNewRedisClientPingFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), Options{Addr: addr})
	assert.Error(t, err)
}
