// Package lock serializes writers racing on the same record key. The memory
// locker covers single-process deployments; the Redis locker covers
// distributed ones.
package lock

import (
	"context"
	"hash/fnv"
	"sync"
)

// stripeCount bounds memory: keys hash onto a fixed set of mutexes instead of
// one mutex per key. Two keys sharing a stripe serialize needlessly, which is
// safe, just slower.
const stripeCount = 256

// MemoryLocker is a process-local key locker built on striped mutexes.
type MemoryLocker struct {
	stripes [stripeCount]sync.Mutex
}

// NewMemoryLocker creates a new MemoryLocker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{}
}

// Lock acquires the stripe for the key and returns the unlock closure. The
// context is accepted for interface symmetry; acquisition itself does not
// block on IO.
func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stripe := &l.stripes[stripeFor(key)]
	stripe.Lock()
	var once sync.Once
	return func() {
		once.Do(stripe.Unlock)
	}, nil
}

func stripeFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % stripeCount
}
