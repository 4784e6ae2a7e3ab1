package timerq

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddFires(t *testing.T) {
	q := New()
	defer q.Stop()

	fired := make(chan struct{})
	q.Add(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestCancel(t *testing.T) {
	q := New()
	defer q.Stop()

	var fired atomic.Bool
	id := q.Add(50*time.Millisecond, func() { fired.Store(true) })
	assert.True(t, q.Cancel(id))

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())

	assert.False(t, q.Cancel(id), "second cancel reports not pending")
}

func TestStop(t *testing.T) {
	q := New()

	var fired atomic.Bool
	q.Add(50*time.Millisecond, func() { fired.Store(true) })
	q.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())
}
