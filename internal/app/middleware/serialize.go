package middleware

import (
	"context"
	"sync"

	"homestay/internal/app/commands"
)

// SerializedCommand is implemented by commands whose whole dispatch,
// transaction commit included, must run one at a time per key.
type SerializedCommand interface {
	commands.Command
	SerializationKey() string
}

// KeyedLocks hands out one mutex per key. Commands with distinct keys do
// not contend.
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire blocks until the key's lock is held and returns the release func.
func (l *KeyedLocks) Acquire(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// Serialize holds the command's key lock across the rest of the pipeline.
// It must sit outside Transaction so read-check-insert sequences stay
// serialized until their unit of work has committed.
func Serialize(locks *KeyedLocks) CommandMiddleware {
	if locks == nil {
		locks = NewKeyedLocks()
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if sc, ok := cmd.(SerializedCommand); ok {
				if key := sc.SerializationKey(); key != "" {
					release := locks.Acquire(key)
					defer release()
				}
			}
			return nextFn(ctx, cmd)
		})
	}
}
