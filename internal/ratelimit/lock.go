package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another request holds the lock.
var ErrLocked = errors.New("generation_locked")

// Deletes the key only while it still carries the owner's token, so an
// expired lease never removes a lock someone else took over.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockClient is the part of a redis client the lock uses.
type LockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Locker hands out expiring single-owner leases on redis keys.
type Locker struct {
	client LockClient
}

func NewLocker(client LockClient) *Locker {
	return &Locker{client: client}
}

// Lease is a held lock. Release is idempotent.
type Lease struct {
	locker *Locker
	key    string
	token  string
}

// Acquire takes key for ttl or fails with ErrLocked.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if key == "" {
		return nil, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("lock ttl must be positive")
	}
	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrLocked
	}
	return &Lease{locker: l, key: key, token: token}, nil
}

func (le *Lease) Key() string {
	if le == nil {
		return ""
	}
	return le.key
}

func (le *Lease) Release(ctx context.Context) error {
	if le == nil || le.token == "" {
		return nil
	}
	token := le.token
	le.token = ""
	return releaseScript.Run(ctx, le.locker.client, []string{le.key}, token).Err()
}
