package throttle

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the shared Cache for multi-instance deployments. Keys carry
// a TTL so entries vanish on their own once the suppression window has
// long passed.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func key(email string) string {
	return "login:last:" + email
}

func (r *Redis) LastLogin(ctx context.Context, email string) (time.Time, bool, error) {
	s, err := r.rdb.Get(ctx, key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func (r *Redis) SetLastLogin(ctx context.Context, email string, at time.Time) error {
	return r.rdb.Set(ctx, key(email), at.Format(time.RFC3339Nano), r.ttl).Err()
}

var _ Cache = (*Redis)(nil)
var _ Cache = (*Memory)(nil)
