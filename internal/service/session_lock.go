package service

import (
	"context"
	"sync"
)

// SessionLocker grants exclusive ownership of one session for the duration of a turn.
// The returned func releases the lock.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID string) (func(), error)
}

// LocalLocker serializes turns within one process. A session's slot lives only
// while someone holds or waits for it.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*localSlot
}

type localSlot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*localSlot)}
}

func (l *LocalLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[sessionID]
	if !ok {
		slot = &localSlot{ch: make(chan struct{}, 1)}
		l.slots[sessionID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.ch
				l.drop(sessionID, slot)
			})
		}, nil
	case <-ctx.Done():
		l.drop(sessionID, slot)
		return nil, ctx.Err()
	}
}

func (l *LocalLocker) drop(sessionID string, slot *localSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, sessionID)
	}
}
