package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// UserLocks serializes work per user. Waiting respects context
// cancellation, and entries are dropped once nobody holds or waits on them.
type UserLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*userLock
}

type userLock struct {
	sem  *semaphore.Weighted
	refs int
}

func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[uuid.UUID]*userLock)}
}

// Lock blocks until the caller holds the lock for id or ctx is done.
func (l *UserLocks) Lock(ctx context.Context, id uuid.UUID) (unlock func(), err error) {
	l.mu.Lock()
	ul, ok := l.locks[id]
	if !ok {
		ul = &userLock{sem: semaphore.NewWeighted(1)}
		l.locks[id] = ul
	}
	ul.refs++
	l.mu.Unlock()

	if err := ul.sem.Acquire(ctx, 1); err != nil {
		l.release(id, ul)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ul.sem.Release(1)
			l.release(id, ul)
		})
	}, nil
}

func (l *UserLocks) release(id uuid.UUID, ul *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ul.refs--
	if ul.refs == 0 {
		delete(l.locks, id)
	}
}

// size reports how many users currently have an entry.
func (l *UserLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
