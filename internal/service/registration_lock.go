package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RegistrationLocker serializa registros concurrentes sobre el mismo email.
// La funcion de liberacion devuelta es idempotente.
type RegistrationLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

var ErrLockUnavailable = errors.New("registration lock unavailable")

type keyLock struct {
	ch   chan struct{}
	refs int
}

type memoryRegistrationLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

// NewMemoryRegistrationLocker crea un locker por proceso.
func NewMemoryRegistrationLocker() RegistrationLocker {
	return &memoryRegistrationLocker{
		locks: make(map[string]*keyLock),
	}
}

func (l *memoryRegistrationLocker) Lock(ctx context.Context, key string) (func(), error) {
	key = normalizeEmail(key)

	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, fmt.Errorf("%w: %w", ErrLockUnavailable, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *memoryRegistrationLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

const redisUnlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type redisLockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisRegistrationLocker struct {
	client redisLockClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisRegistrationLocker comparte el lock entre replicas. El TTL acota
// cuanto sobrevive un lock huerfano si el proceso muere antes de liberarlo.
func NewRedisRegistrationLocker(client *redis.Client) RegistrationLocker {
	if client == nil {
		return nil
	}
	return &redisRegistrationLocker{
		client: client,
		prefix: "regs:lock:",
		ttl:    10 * time.Second,
		retry:  50 * time.Millisecond,
	}
}

func (l *redisRegistrationLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + normalizeEmail(key)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLockUnavailable, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrLockUnavailable, ctx.Err())
		case <-time.After(l.retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			_ = l.client.Eval(ctx, redisUnlockScript, []string{redisKey}, token).Err()
		})
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
