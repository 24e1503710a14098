package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// Locker guards a job tick across process instances. Acquire reports false
// when another instance holds the lock.
type Locker interface {
	Acquire(ctx context.Context, name string, expiry time.Duration) (release func(), acquired bool, err error)
}

type RedisLocker struct {
	rs *redsync.Redsync
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{rs: redsync.New(goredis.NewPool(client))}
}

func (l *RedisLocker) Acquire(ctx context.Context, name string, expiry time.Duration) (func(), bool, error) {
	mutex := l.rs.NewMutex("eventhub:job:"+name, redsync.WithExpiry(expiry), redsync.WithTries(1))
	if err := mutex.TryLockContext(ctx); err != nil {
		var taken redsync.ErrTaken
		var nodeTaken redsync.ErrNodeTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) || errors.As(err, &nodeTaken) {
			return nil, false, nil
		}
		return nil, false, err
	}
	release := func() {
		// The tick may have outlived ctx, so release on a fresh one.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = mutex.UnlockContext(unlockCtx)
	}
	return release, true, nil
}

// LocalLocker only excludes ticks inside this process. Used when no Redis
// is configured and in tests.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]bool{}}
}

func (l *LocalLocker) Acquire(ctx context.Context, name string, expiry time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, false, nil
	}
	l.held[name] = true
	return func() {
		l.mu.Lock()
		delete(l.held, name)
		l.mu.Unlock()
	}, true, nil
}
