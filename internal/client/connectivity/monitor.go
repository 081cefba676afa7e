// Package connectivity tracks whether the API server is reachable and
// notifies subscribers about online/offline transitions.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/logging"
)

// Prober checks server reachability; nil means reachable.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) error

func (f ProberFunc) Probe(ctx context.Context) error { return f(ctx) }

type subscription struct {
	id        uint64
	onOnline  func()
	onOffline func()
}

// Monitor holds the binary online flag. The zero value is not usable; use New.
type Monitor struct {
	mu     sync.Mutex
	online bool
	nextID uint64
	subs   []subscription
	logger logging.Logger
}

func New(online bool, logger logging.Logger) *Monitor {
	return &Monitor{online: online, logger: logger}
}

func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers transition callbacks; either may be nil. The returned
// function removes the subscription and is safe to call more than once.
func (m *Monitor) Subscribe(onOnline, onOffline func()) (unsubscribe func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscription{id: id, onOnline: onOnline, onOffline: onOffline})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SetOnline records the current reachability. Callbacks run only when the
// value changes, in subscription order, without holding the lock.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := append([]subscription(nil), m.subs...)
	m.mu.Unlock()

	if m.logger != nil {
		mode := "offline"
		if online {
			mode = "online"
		}
		m.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}

	for _, s := range subs {
		if online && s.onOnline != nil {
			s.onOnline()
		}
		if !online && s.onOffline != nil {
			s.onOffline()
		}
	}
}

// Watch probes every interval until ctx is done and feeds the result into
// SetOnline. The first probe runs immediately.
func (m *Monitor) Watch(ctx context.Context, p Prober, interval, timeout time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		err := p.Probe(pctx)
		cancel()
		if ctx.Err() != nil {
			return
		}
		m.SetOnline(err == nil)
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
