// Package rwspinlock provides a cache-line-padded reader/writer
// spinlock built on a single 32-bit atomic word, for protecting small,
// briefly-held critical sections (a handful of memory accesses) where
// parking a goroutine in the scheduler would cost more than busy-
// waiting a few iterations.
package rwspinlock

import (
	"runtime"
	"sync/atomic"
)

// wlocked is the exclusive-held flag; the remaining 31 bits count
// shared holders.
const wlocked = uint32(1) << 31

// cacheLinePad is sized generously (128 bytes) to cover both common
// 64-byte lines and the 128-byte lines some ARM cores use, so that two
// adjacent locks in a slice never share a line and contend on false
// sharing.
const cacheLinePad = 128 - 4

// RWSpinLock is a shared/exclusive spinlock. The zero value is a free,
// unlocked lock.
type RWSpinLock struct {
	state atomic.Uint32
	_     [cacheLinePad]byte
}

// backoff spins for a bounded, doubling number of iterations before
// falling back to yielding the processor. spin is incremented by the
// caller across retries.
func backoff(spin int) {
	if spin < 6 {
		for i := 0; i < 1<<uint(spin); i++ {
		}
		return
	}
	runtime.Gosched()
}

// RLock acquires a shared hold. The reader count is bumped eagerly and
// rolled back if a writer turns out to hold the lock, so the
// uncontended path is a single fetch-add.
func (l *RWSpinLock) RLock() {
	for spin := 0; ; spin++ {
		if l.state.Add(1)&wlocked == 0 {
			return
		}
		l.state.Add(^uint32(0))
		for l.state.Load()&wlocked != 0 {
			backoff(spin)
			spin++
		}
	}
}

// RUnlock releases a shared hold.
func (l *RWSpinLock) RUnlock() {
	l.state.Add(^uint32(0))
}

// Lock acquires an exclusive hold, waiting out both readers and any
// other writer.
func (l *RWSpinLock) Lock() {
	for spin := 0; !l.state.CompareAndSwap(0, wlocked); spin++ {
		backoff(spin)
	}
}

// Unlock releases an exclusive hold.
func (l *RWSpinLock) Unlock() {
	l.state.Store(0)
}
