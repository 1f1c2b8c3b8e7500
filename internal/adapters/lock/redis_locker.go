package lock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// RedisLocker serializes optimization runs per itinerary across service
// instances using SET NX with a TTL. The TTL guards against a crashed
// holder leaving the itinerary locked forever; a healthy run is expected
// to finish well within it.
type RedisLocker struct {
	rdb       *redis.Client
	ttl       time.Duration
	retryWait time.Duration
}

// Lua compare-and-delete so only the holder's token releases the lock.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisLocker{
		rdb:       rdb,
		ttl:       ttl,
		retryWait: 100 * time.Millisecond,
	}
}

func (l *RedisLocker) key(itineraryID int64) string {
	return fmt.Sprintf("optimize:lock:%d", itineraryID)
}

// Lock polls SET NX until the lock is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, itineraryID int64) (func(), error) {
	key := l.key(itineraryID)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryWait)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			unlock := func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := unlockScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
					log.Printf("redis unlock failed key=%s err=%v", key, err)
				}
			}
			return unlock, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
