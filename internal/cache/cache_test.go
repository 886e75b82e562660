package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interviewbot/internal/model"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestSessionCache_RoundTripAndTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewSessionCache(client, time.Hour)
	ctx := context.Background()

	missing, err := store.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	s := model.NewSession("s1", "tpl", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	name := "Alex"
	s.ExtractedValues["name"] = &name
	s.ExtractedValues["skipped"] = nil
	s.FieldScores["name"] = 8
	require.NoError(t, store.Set(ctx, s))

	assert.Equal(t, time.Hour, mr.TTL("interview:session:s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alex", *got.ExtractedValues["name"])
	v, ok := got.ExtractedValues["skipped"]
	assert.True(t, ok)
	assert.Nil(t, v)

	mr.FastForward(2 * time.Hour)
	expired, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, expired)
}

func TestSessionCache_CorruptEntry(t *testing.T) {
	mr, client := newTestRedis(t)
	require.NoError(t, mr.Set("interview:session:bad", "{not json"))

	_, err := NewSessionCache(client, 0).Get(context.Background(), "bad")
	assert.Error(t, err)
}

type countingSource struct {
	calls int32
	tpl   *model.Template
	err   error
}

func (c *countingSource) GetByID(_ context.Context, id string) (*model.Template, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.err != nil {
		return nil, c.err
	}
	if c.tpl == nil || c.tpl.ID != id {
		return nil, nil
	}
	return c.tpl, nil
}

func TestTemplateCache_ReadThrough(t *testing.T) {
	mr, client := newTestRedis(t)
	source := &countingSource{tpl: &model.Template{ID: "tpl", Name: "Intro", Fields: []model.Field{{Name: "name", Prompt: "Name?", Type: model.FieldTypeString}}}}
	tc := NewTemplateCache(client, source, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tpl, err := tc.GetByID(ctx, "tpl")
		require.NoError(t, err)
		require.NotNil(t, tpl)
		assert.Equal(t, "Intro", tpl.Name)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&source.calls))
	assert.True(t, mr.Exists("interview:template:tpl"))

	require.NoError(t, tc.Invalidate(ctx, "tpl"))
	_, err := tc.GetByID(ctx, "tpl")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&source.calls))
}

func TestTemplateCache_MissesAreNotCached(t *testing.T) {
	mr, client := newTestRedis(t)
	source := &countingSource{}
	tc := NewTemplateCache(client, source, time.Minute)

	tpl, err := tc.GetByID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, tpl)
	assert.False(t, mr.Exists("interview:template:ghost"))

	source.err = errors.New("mongo down")
	_, err = tc.GetByID(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestTurnLock_ExclusiveAndReleased(t *testing.T) {
	mr, client := newTestRedis(t)
	lock := NewTurnLock(client, time.Minute, 100*time.Millisecond)
	ctx := context.Background()

	release, err := lock.Lock(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("interview:lock:s1"))

	_, err = lock.Lock(ctx, "s1")
	assert.ErrorIs(t, err, ErrLockNotAcquired)

	other, err := lock.Lock(ctx, "s2")
	require.NoError(t, err)
	other()

	release()
	assert.False(t, mr.Exists("interview:lock:s1"))

	again, err := lock.Lock(ctx, "s1")
	require.NoError(t, err)
	again()
}

func TestTurnLock_StaleReleaseKeepsNewOwner(t *testing.T) {
	mr, client := newTestRedis(t)
	lock := NewTurnLock(client, time.Second, 50*time.Millisecond)
	ctx := context.Background()

	staleRelease, err := lock.Lock(ctx, "s1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	release, err := lock.Lock(ctx, "s1")
	require.NoError(t, err)

	staleRelease()
	assert.True(t, mr.Exists("interview:lock:s1"))
	release()
	assert.False(t, mr.Exists("interview:lock:s1"))
}

func TestTurnLock_SerializesWaiters(t *testing.T) {
	_, client := newTestRedis(t)
	lock := NewTurnLock(client, time.Minute, 5*time.Second)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := lock.Lock(context.Background(), "s1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, maxInside)
}

func TestTurnLock_ContextCancel(t *testing.T) {
	_, client := newTestRedis(t)
	lock := NewTurnLock(client, time.Minute, 5*time.Second)

	release, err := lock.Lock(context.Background(), "s1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = lock.Lock(ctx, "s1")
	assert.Error(t, err)
}
