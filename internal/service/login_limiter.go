package service

import (
	"sync"
	"time"
)

// LoginLimiter cuenta intentos fallidos de login por clave (email normalizado).
// Un login exitoso limpia el contador.
type LoginLimiter interface {
	Allow(key string) bool
	RecordFailure(key string)
	Reset(key string)
}

type loginLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewLoginLimiter crea un limitador en memoria de ventana deslizante.
func NewLoginLimiter(window time.Duration, max int) LoginLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &loginLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Allow no consume cupo; solo informa si la clave sigue bajo el limite.
func (l *loginLimiter) Allow(key string) bool {
	key = normalizeEmail(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweepLocked(now)
	return len(l.pruneLocked(key, now)) < l.max
}

func (l *loginLimiter) RecordFailure(key string) {
	key = normalizeEmail(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweepLocked(now)
	l.hits[key] = append(l.pruneLocked(key, now), now)
}

func (l *loginLimiter) Reset(key string) {
	key = normalizeEmail(key)
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.hits, key)
}

// pruneLocked descarta intentos fuera de la ventana y borra la clave si queda vacia.
func (l *loginLimiter) pruneLocked(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	entries, ok := l.hits[key]
	if !ok {
		return nil
	}
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.hits, key)
		return nil
	}
	l.hits[key] = kept
	return kept
}

// sweepLocked recorre todo el mapa como maximo una vez por ventana.
func (l *loginLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key := range l.hits {
		l.pruneLocked(key, now)
	}
}
