package screenshot

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := newDebouncer(50 * time.Millisecond)

	var fired int32
	for i := 0; i < 5; i++ {
		d.add("same-key", func() {
			atomic.AddInt32(&fired, 1)
		})
	}

	time.Sleep(150 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("expected 1 firing for a burst, got %d", got)
	}
}

func TestDebouncer_IndependentKeys(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)

	var fired int32
	d.add("a", func() { atomic.AddInt32(&fired, 1) })
	d.add("b", func() { atomic.AddInt32(&fired, 1) })

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 2 {
		t.Errorf("expected both keys to fire, got %d", got)
	}
}

func TestDebouncer_StopAndWait(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)

	var fired int32
	d.add("pending", func() { atomic.AddInt32(&fired, 1) })

	d.stopAndWait(time.Second)

	// No new work after stop.
	d.add("late", func() { atomic.AddInt32(&fired, 1) })
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got > 1 {
		t.Errorf("timer fired after stop: %d", got)
	}
}
