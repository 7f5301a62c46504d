package keylock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_SerializesSameKey(t *testing.T) {
	l := New()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("email:a@x.com")
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, l.Len(), "entries must be dropped after release")
}

func TestLock_DifferentKeysDoNotBlock(t *testing.T) {
	l := New()

	unlockA := l.Lock("code:1")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.Lock("code:2")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestLock_OverlappingSetsNoDeadlock(t *testing.T) {
	l := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			l.Lock("a", "b")()
		}()
		go func() {
			defer wg.Done()
			l.Lock("b", "a", "b")()
		}()
	}

	finished := make(chan struct{})
	go func() { wg.Wait(); close(finished) }()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock")
	}
	require.Equal(t, 0, l.Len())
}

func TestUnlock_Idempotent(t *testing.T) {
	l := New()
	unlock := l.Lock("k")
	unlock()
	unlock()
	assert.Equal(t, 0, l.Len())

	// still usable afterwards
	l.Lock("k")()
}
