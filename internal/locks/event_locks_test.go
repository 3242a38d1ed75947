package locks

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventLocksSerializePerEvent(t *testing.T) {
	locks := NewEventLocks()

	const workers = 50
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			locks.Lock(1)
			counter++
			locks.Unlock(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestEventLocksIndependentAcrossEvents(t *testing.T) {
	locks := NewEventLocks()
	locks.Lock(1)
	defer locks.Unlock(1)

	// Holding event 1 must not block event 2
	done := make(chan struct{})
	go func() {
		locks.Lock(2)
		locks.Unlock(2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on event 2 blocked by lock on event 1")
	}
}

func TestEventLocksUnlockUnknownEventIsNoop(t *testing.T) {
	locks := NewEventLocks()
	assert.NotPanics(t, func() { locks.Unlock(99) })
}
