package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SessionLocker gives one writer at a time exclusive access to a session.
// The returned unlock func is safe to call more than once.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID uuid.UUID) (unlock func(), err error)
}

// LocalLocker is an in-process SessionLocker
type LocalLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker creates an in-process session locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[uuid.UUID]*keyLock)}
}

// Lock blocks until the session is free or ctx is done
func (l *LocalLocker) Lock(ctx context.Context, sessionID uuid.UUID) (func(), error) {
	l.mu.Lock()
	k, ok := l.locks[sessionID]
	if !ok {
		k = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[sessionID] = k
	}
	k.refs++
	l.mu.Unlock()

	select {
	case k.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(sessionID, k)
		return nil, fmt.Errorf("failed to acquire session lock: %w", ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-k.ch
			l.release(sessionID, k)
		})
	}, nil
}

func (l *LocalLocker) release(sessionID uuid.UUID, k *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k.refs--
	if k.refs == 0 {
		delete(l.locks, sessionID)
	}
}

// held reports how many sessions have holders or waiters
func (l *LocalLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
