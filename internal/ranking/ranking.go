package ranking

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis"
)

// ErrDisabled is returned by Top when no ranking backend is configured.
var ErrDisabled = errors.New("ranking disabled")

type Ranker interface {
	Incr(ctx context.Context, articleID int64, delta float64) error
	Set(ctx context.Context, articleID int64, score float64) error
	Remove(ctx context.Context, articleID int64) error
	Top(ctx context.Context, n int) ([]int64, error)
}

// Nop ranks nothing, callers fall back to the database.
type Nop struct{}

func (Nop) Incr(context.Context, int64, float64) error { return nil }

func (Nop) Set(context.Context, int64, float64) error { return nil }

func (Nop) Remove(context.Context, int64) error { return nil }

func (Nop) Top(context.Context, int) ([]int64, error) { return nil, ErrDisabled }

const DefaultKey = "rank:article:favorites"

// Redis keeps favorite counts in a sorted set.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}

	return &Redis{client: client, key: key}
}

// Dial connects to addr and checks the connection.
func Dial(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping().Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return client, nil
}

func (r *Redis) Incr(ctx context.Context, articleID int64, delta float64) error {
	c := r.client.WithContext(ctx)
	member := strconv.FormatInt(articleID, 10)

	pipe := c.TxPipeline()
	score := pipe.ZIncrBy(r.key, delta, member)
	if _, err := pipe.Exec(); err != nil {
		return fmt.Errorf("zincrby %s: %w", r.key, err)
	}

	// keep the set free of articles nobody favorites anymore
	if score.Val() <= 0 {
		return r.Remove(ctx, articleID)
	}

	return nil
}

// Set replaces the score of articleID. A score of zero or less drops it.
func (r *Redis) Set(ctx context.Context, articleID int64, score float64) error {
	if score <= 0 {
		return r.Remove(ctx, articleID)
	}

	member := strconv.FormatInt(articleID, 10)
	if err := r.client.WithContext(ctx).ZAdd(r.key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("zadd %s: %w", r.key, err)
	}

	return nil
}

func (r *Redis) Remove(ctx context.Context, articleID int64) error {
	if err := r.client.WithContext(ctx).ZRem(r.key, strconv.FormatInt(articleID, 10)).Err(); err != nil {
		return fmt.Errorf("zrem %s: %w", r.key, err)
	}

	return nil
}

// Top returns up to n article ids, highest score first.
func (r *Redis) Top(ctx context.Context, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}

	zs, err := r.client.WithContext(ctx).ZRevRangeWithScores(r.key, 0, int64(n-1)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("zrevrange %s: %w", r.key, err)
	}

	ids := make([]int64, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}
