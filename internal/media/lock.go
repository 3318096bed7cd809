package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker serialises media changes per concert. The returned func releases
// the lock and must always be called.
type Locker interface {
	Lock(ctx context.Context, concertID int64) (func(), error)
}

// LocalLocker is an in-process keyed mutex.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[int64]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker returns a Locker valid within a single process.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[int64]*keyedLock)}
}

// Lock blocks until the concert's lock is free or ctx is done.
func (l *LocalLocker) Lock(ctx context.Context, concertID int64) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[concertID]
	if !ok {
		kl = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[concertID] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.ch
				l.release(concertID, kl)
			})
		}, nil
	case <-ctx.Done():
		l.release(concertID, kl)
		return func() {}, ctx.Err()
	}
}

func (l *LocalLocker) release(concertID int64, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, concertID)
	}
}

const (
	redisLockTTL   = 30 * time.Second
	redisLockRetry = 50 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// extendScript resets the expiry only while the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// RedisLocker holds the lock in Redis so several API processes sharing one
// asset root still serialise uploads per concert. The key is extended while
// the lock is held, so a slow upload keeps it past the TTL.
type RedisLocker struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisLocker wraps an existing client.
func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{rdb: rdb, prefix: "showlog:media-lock:", ttl: redisLockTTL}
}

// Lock polls SETNX until the key is acquired or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, concertID int64) (func(), error) {
	key := fmt.Sprintf("%s%d", l.prefix, concertID)
	token := uuid.NewString()

	ticker := time.NewTicker(redisLockRetry)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return func() {}, fmt.Errorf("acquire media lock for concert %d: %w", concertID, err)
		}
		if ok {
			stop := keepAlive(l.ttl/3, func(ctx context.Context) (bool, error) {
				n, err := extendScript.Run(ctx, l.rdb, []string{key}, token, l.ttl.Milliseconds()).Int64()
				return n == 1, err
			})
			var once sync.Once
			return func() {
				once.Do(func() {
					stop()
					// The request context may already be cancelled here.
					releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = releaseScript.Run(releaseCtx, l.rdb, []string{key}, token).Err()
				})
			}, nil
		}

		select {
		case <-ctx.Done():
			return func() {}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// keepAlive calls extend every interval until the returned stop func is
// called or extend reports the lock is no longer held. Transient errors are
// retried on the next tick. stop waits for the loop to exit.
func keepAlive(interval time.Duration, extend func(context.Context) (bool, error)) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}

			ctx, cancel := context.WithTimeout(context.Background(), interval)
			held, err := extend(ctx)
			cancel()
			if err == nil && !held {
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}
