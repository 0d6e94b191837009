package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
	extErrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// release only if the key still holds our token, so an expired lock taken over by
// another replica is never deleted from under it
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisOptions provides initialization parameters for Redis
type RedisOptions struct {
	Redis  redis.UniversalClient
	Logger *zap.Logger

	Prefix     string        // prepended to every key, defaults to "lock:"
	TTL        time.Duration // upper bound on how long a crashed holder blocks others
	RetryDelay time.Duration
}

func (o *RedisOptions) validate() error {
	if o.Redis == nil {
		return fmt.Errorf("nil Redis is invalid")
	}
	if o.Logger == nil {
		return fmt.Errorf("nil Logger is invalid")
	}
	if o.Prefix == "" {
		o.Prefix = "lock:"
	}
	if o.TTL == 0 {
		o.TTL = time.Second * 10
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = time.Millisecond * 50
	}
	return nil
}

// Redis is a Locker shared by every replica connected to the same Redis
type Redis struct {
	RedisOptions
}

var _ Locker = &Redis{}

// NewRedis returns a Locker backed by SET NX PX
func NewRedis(option RedisOptions) (*Redis, error) {
	if err := option.validate(); err != nil {
		return nil, err
	}
	return &Redis{
		RedisOptions: option,
	}, nil
}

// Acquire implements Locker
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	k := r.Prefix + key
	token := uuid.New().String()

	for {
		ok, err := r.Redis.SetNX(k, token, r.TTL).Result()
		if err != nil {
			return nil, extErrors.Wrap(err, "Cannot acquire lock")
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrNotAcquired
		case <-time.After(r.RetryDelay):
		}
	}

	return func() {
		if err := unlockScript.Run(r.Redis, []string{k}, token).Err(); err != nil {
			r.Logger.Error("Unable to release lock",
				zap.String("Key", k),
				zap.Error(err),
			)
		}
	}, nil
}
