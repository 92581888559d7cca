package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestLoginLimiter_CountsOnlyFailures(t *testing.T) {
	l := NewLoginLimiter(time.Minute, 2).(*loginLimiter)
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	for i := 0; i < 10; i++ {
		if !l.Allow("a@b.com") {
			t.Fatalf("allow %d: checking the budget must not consume it", i)
		}
	}

	l.RecordFailure("a@b.com")
	if !l.Allow(" A@B.com ") {
		t.Fatalf("expected allow after a single failure")
	}
	l.RecordFailure(" A@B.com ")
	if l.Allow("a@b.com") {
		t.Fatalf("expected deny after two failures")
	}
	if !l.Allow("other@b.com") {
		t.Fatalf("other keys must not be affected")
	}

	l.now = func() time.Time { return base.Add(61 * time.Second) }
	if !l.Allow("a@b.com") {
		t.Fatalf("expected allow once the window slides")
	}
}

func TestLoginLimiter_ResetClearsFailures(t *testing.T) {
	l := NewLoginLimiter(time.Minute, 1).(*loginLimiter)
	l.RecordFailure("a@b.com")
	if l.Allow("a@b.com") {
		t.Fatalf("expected deny after failure")
	}
	l.Reset("A@b.com")
	if !l.Allow("a@b.com") {
		t.Fatalf("expected allow after reset")
	}
}

func TestLoginLimiter_DropsExpiredKeys(t *testing.T) {
	l := NewLoginLimiter(time.Minute, 3).(*loginLimiter)
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return base }

	l.RecordFailure("a@b.com")
	l.RecordFailure("c@b.com")
	if len(l.hits) != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", len(l.hits))
	}

	l.now = func() time.Time { return base.Add(2 * time.Minute) }
	if !l.Allow("a@b.com") {
		t.Fatalf("expected allow after window")
	}
	if _, ok := l.hits["a@b.com"]; ok {
		t.Fatalf("expected empty key to be removed")
	}
	if len(l.hits) != 0 {
		t.Fatalf("expected sweep to drop stale keys, got %d", len(l.hits))
	}
}

func TestNewLoginLimiter_Defaults(t *testing.T) {
	l := NewLoginLimiter(0, 0).(*loginLimiter)
	if l.max != 1 || l.window != time.Minute {
		t.Fatalf("unexpected defaults: max=%d window=%v", l.max, l.window)
	}
}

type mockRedisLimiterClient struct {
	count   int64
	missing bool
	getErr  error

	lastGetKey string
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	deleted    []string
}

func (m *mockRedisLimiterClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.lastGetKey = key
	cmd := redis.NewStringCmd(ctx)
	switch {
	case m.getErr != nil:
		cmd.SetErr(m.getErr)
	case m.missing:
		cmd.SetErr(redis.Nil)
	default:
		cmd.SetVal(strconv.FormatInt(m.count, 10))
	}
	return cmd
}

func (m *mockRedisLimiterClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.deleted = append(m.deleted, keys...)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func (m *mockRedisLimiterClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	m.count++
	cmd := redis.NewCmd(ctx)
	cmd.SetVal(m.count)
	return cmd
}

func TestRedisLoginLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisLoginLimiter
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open for nil limiter")
		}
		l.RecordFailure("user@example.com")
		l.Reset("user@example.com")
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := &redisLoginLimiter{client: &mockRedisLimiterClient{}, window: time.Minute, max: 3, prefix: "login:rl:"}
		if l.Allow("   ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("no failures recorded", func(t *testing.T) {
		mock := &mockRedisLimiterClient{missing: true}
		l := &redisLoginLimiter{client: mock, window: time.Minute, max: 1, prefix: "login:rl:"}
		if !l.Allow(" User@Example.com ") {
			t.Fatalf("expected allow when key is missing")
		}
		if mock.lastGetKey != "login:rl:user@example.com" {
			t.Fatalf("unexpected key normalization, got %q", mock.lastGetKey)
		}
	})

	t.Run("allow below max", func(t *testing.T) {
		l := &redisLoginLimiter{client: &mockRedisLimiterClient{count: 4}, window: time.Minute, max: 5, prefix: "login:rl:"}
		if !l.Allow("user@example.com") {
			t.Fatalf("expected allow when count < max")
		}
	})

	t.Run("deny at max", func(t *testing.T) {
		l := &redisLoginLimiter{client: &mockRedisLimiterClient{count: 5}, window: time.Minute, max: 5, prefix: "login:rl:"}
		if l.Allow("user@example.com") {
			t.Fatalf("expected deny when count reaches max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := &redisLoginLimiter{client: &mockRedisLimiterClient{getErr: errors.New("boom")}, window: time.Minute, max: 1, prefix: "login:rl:"}
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open on redis error")
		}
	})
}

func TestRedisLoginLimiter_RecordFailureAndReset(t *testing.T) {
	mock := &mockRedisLimiterClient{}
	l := &redisLoginLimiter{client: mock, window: 15 * time.Minute, max: 1, prefix: "login:rl:"}

	if !l.Allow("user@example.com") {
		t.Fatalf("expected allow before any failure")
	}
	l.RecordFailure(" User@Example.com ")
	if mock.lastScript != redisLoginFailureScript {
		t.Fatalf("expected failure script")
	}
	if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "login:rl:user@example.com" {
		t.Fatalf("unexpected keys %+v", mock.lastKeys)
	}
	if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 900 {
		t.Fatalf("expected TTL seconds=900, got %+v", mock.lastArgs)
	}
	if l.Allow("user@example.com") {
		t.Fatalf("expected deny after failure")
	}

	l.Reset("USER@example.com")
	if len(mock.deleted) != 1 || mock.deleted[0] != "login:rl:user@example.com" {
		t.Fatalf("expected reset to delete normalized key, got %+v", mock.deleted)
	}
}
