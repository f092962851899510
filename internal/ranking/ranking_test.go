package ranking

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNop(t *testing.T) {
	var r Ranker = Nop{}

	assert.NoError(t, r.Incr(context.Background(), 1, 1))
	assert.NoError(t, r.Set(context.Background(), 1, 3))
	assert.NoError(t, r.Remove(context.Background(), 1))

	_, err := r.Top(context.Background(), 10)
	assert.True(t, errors.Is(err, ErrDisabled))
}

func TestNewRedisDefaultKey(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	r := NewRedis(client, "")
	assert.Equal(t, DefaultKey, r.key)

	ids, err := r.Top(context.Background(), 0)
	assert.NoError(t, err)
	assert.Empty(t, ids)
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client, "test:rank"), mr
}

func member(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestRedisIncr(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, r.Incr(ctx, 7, 1))
	require.NoError(t, r.Incr(ctx, 7, 1))

	score, err := mr.ZScore("test:rank", member(7))
	require.NoError(t, err)
	assert.Equal(t, 2.0, score)

	require.NoError(t, r.Incr(ctx, 7, -1))
	score, err = mr.ZScore("test:rank", member(7))
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	// dropping to zero removes the member
	require.NoError(t, r.Incr(ctx, 7, -1))
	assert.False(t, mr.Exists("test:rank"))
}

func TestRedisSet(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, r.Set(ctx, 3, 5))
	require.NoError(t, r.Set(ctx, 3, 2))

	score, err := mr.ZScore("test:rank", member(3))
	require.NoError(t, err)
	assert.Equal(t, 2.0, score)

	require.NoError(t, r.Set(ctx, 3, 0))
	assert.False(t, mr.Exists("test:rank"))
}

func TestRedisTop(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	ids, err := r.Top(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, ids)

	for id, score := range map[int64]float64{1: 3, 2: 10, 3: 1, 4: 7} {
		require.NoError(t, r.Set(ctx, id, score))
	}
	_, err = mr.ZAdd("test:rank", 100, "not-an-id")
	require.NoError(t, err)

	ids, err = r.Top(ctx, 3)
	require.NoError(t, err)
	// the unparsable member takes a slot but is skipped
	assert.Equal(t, []int64{2, 4}, ids)

	ids, err = r.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 1, 3}, ids)
}

func TestRedisRemove(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	require.NoError(t, r.Incr(ctx, 1, 4))
	require.NoError(t, r.Incr(ctx, 2, 2))
	require.NoError(t, r.Remove(ctx, 1))
	require.NoError(t, r.Remove(ctx, 99))

	members, err := mr.ZMembers("test:rank")
	require.NoError(t, err)
	assert.Equal(t, []string{member(2)}, members)

	ids, err := r.Top(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}

func TestRedisUnavailable(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)
	mr.Close()

	_, err := r.Top(ctx, 1)
	assert.Error(t, err)
	assert.Error(t, r.Incr(ctx, 1, 1))
}
