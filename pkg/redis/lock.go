package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a lock could not be acquired before the wait deadline.
var ErrLockTimeout = errors.New("lock wait timeout")

const lockKeyPrefix = "lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired holder never releases a lock re-acquired by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out named mutual-exclusion locks backed by Redis SET NX PX.
type Locker struct {
	client       *redis.Client
	ttl          time.Duration
	wait         time.Duration
	retryBackoff time.Duration
}

// NewLocker creates a Redis-backed locker. ttl bounds how long a crashed
// holder can block others; wait bounds how long Lock retries.
func NewLocker(c *redis.Client, ttl, wait time.Duration) *Locker {
	return &Locker{client: c, ttl: ttl, wait: wait, retryBackoff: 25 * time.Millisecond}
}

// Lock blocks until key is held, the wait deadline passes or ctx is done.
// The returned func releases the lock and is safe to call more than once.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token, err := newLockToken()
	if err != nil {
		return nil, err
	}
	fullKey := lockKeyPrefix + key
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					// release with a fresh context so a cancelled request still unlocks
					rctx, cancel := context.WithTimeout(context.Background(), time.Second)
					defer cancel()
					_ = releaseScript.Run(rctx, l.client, []string{fullKey}, token).Err()
				})
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryBackoff):
		}
	}
}

func newLockToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// LocalLocker is an in-process keyed mutex used when Redis is not configured.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localEntry
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localEntry)}
}

// Lock acquires the mutex for key, honoring ctx cancellation while waiting.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.drop(key, e)
		})
	}, nil
}

func (l *LocalLocker) drop(key string, e *localEntry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
