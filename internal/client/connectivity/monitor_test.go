package connectivity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_CallbacksOnTransitionsOnly(t *testing.T) {
	m := New(false, logging.NewNop())

	var events []string
	m.Subscribe(func() { events = append(events, "a:on") }, func() { events = append(events, "a:off") })
	m.Subscribe(func() { events = append(events, "b:on") }, nil)

	m.SetOnline(false)
	m.SetOnline(true)
	m.SetOnline(true)
	m.SetOnline(false)

	assert.Equal(t, []string{"a:on", "b:on", "a:off"}, events)
	assert.False(t, m.IsOnline())
}

func TestMonitor_Unsubscribe(t *testing.T) {
	m := New(false, nil)

	calls := 0
	unsub := m.Subscribe(func() { calls++ }, nil)
	m.SetOnline(true)
	unsub()
	unsub()
	m.SetOnline(false)
	m.SetOnline(true)

	assert.Equal(t, 1, calls)
}

func TestMonitor_CallbackMayReadState(t *testing.T) {
	m := New(false, nil)

	var seen bool
	m.Subscribe(func() { seen = m.IsOnline() }, nil)
	m.SetOnline(true)

	assert.True(t, seen)
}

func TestMonitor_Watch(t *testing.T) {
	m := New(true, logging.NewNop())

	var fail atomic.Bool
	fail.Store(true)
	var probes atomic.Int32
	p := ProberFunc(func(ctx context.Context) error {
		probes.Add(1)
		if fail.Load() {
			return errors.New("down")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Watch(ctx, p, 10*time.Millisecond, time.Second)
		close(done)
	}()

	require.Eventually(t, func() bool { return !m.IsOnline() }, time.Second, 5*time.Millisecond)
	fail.Store(false)
	require.Eventually(t, m.IsOnline, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop")
	}
	assert.GreaterOrEqual(t, probes.Load(), int32(2))
}
