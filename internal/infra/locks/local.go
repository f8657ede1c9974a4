package locks

import (
	"context"
	"fmt"
	"sync"
)

// Local блокировка по ключам внутри одного процесса
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocal создает локальный locker
func NewLocal() *Local {
	return &Local{slots: make(map[string]*slot)}
}

// WithLock берет все ключи, выполняет fn и отпускает ключи
func (l *Local) WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	keys = normalize(keys)
	if len(keys) == 0 {
		return ErrNoKeys
	}

	held := make([]string, 0, len(keys))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.release(held[i])
		}
	}()

	for _, key := range keys {
		if err := l.acquire(ctx, key); err != nil {
			return fmt.Errorf("%w: key=%s: %v", ErrAcquire, key, err)
		}
		held = append(held, key)
	}

	return fn(ctx)
}

func (l *Local) acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.unref(key, s)
		return ctx.Err()
	}
}

func (l *Local) release(key string) {
	l.mu.Lock()
	s := l.slots[key]
	l.mu.Unlock()

	<-s.ch
	l.unref(key, s)
}

func (l *Local) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
