package rwspinlock

import (
	"sync"
	"testing"
)

func TestMutualExclusion(t *testing.T) {
	var l RWSpinLock
	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				l.Lock()
				counter++
				l.Unlock()
			}
		}()
	}
	wg.Wait()
	if counter != 50*200 {
		t.Fatalf("counter = %d, want %d", counter, 50*200)
	}
}

func TestReadersConcurrentWritersExclusive(t *testing.T) {
	var l RWSpinLock
	l.RLock()
	l.RLock()
	l.RUnlock()
	l.RUnlock()

	l.Lock()
	l.Unlock()
}

func TestReadersNeverObserveWriter(t *testing.T) {
	var l RWSpinLock
	var shared [2]int
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				l.Lock()
				shared[0]++
				shared[1]++
				l.Unlock()
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				l.RLock()
				if shared[0] != shared[1] {
					panic("reader saw a half-applied write")
				}
				l.RUnlock()
			}
		}()
	}
	wg.Wait()
	if shared[0] != 4*500 || shared[1] != 4*500 {
		t.Fatalf("shared = %v, want both %d", shared, 4*500)
	}
}
