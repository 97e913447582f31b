package revocation

import (
	"context"
	"sync"
	"time"

	"github.com/yndnr/tokmint-go/pkg/cmap"
)

// Memory is an in-process Store. Entries hold their deadline in Unix
// nanoseconds, or zero for one that never lapses. Lookups ignore expired
// entries and a background sweep removes them.
type Memory struct {
	entries *cmap.Map[string, int64]
	now     func() time.Time

	closeOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewMemory creates a memory store. A sweep of zero disables the
// background loop.
func NewMemory(shards int, sweep time.Duration) *Memory {
	m := &Memory{
		entries: cmap.NewWithShards[string, int64](shards),
		now:     time.Now,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	if sweep > 0 {
		go m.sweepLoop(sweep)
	} else {
		close(m.doneCh)
	}
	return m
}

// Revoke implements Store.
func (m *Memory) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if err := checkArgs(jti, ttl); err != nil {
		return err
	}
	if m.closed() {
		return ErrClosed
	}
	var deadline int64
	if ttl > 0 {
		deadline = m.now().Add(ttl).UnixNano()
	}
	m.entries.Set(jti, deadline)
	return nil
}

func live(deadline, now int64) bool {
	return deadline == 0 || deadline > now
}

// IsRevoked implements Store.
func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	if m.closed() {
		return false, ErrClosed
	}
	deadline, ok := m.entries.Get(jti)
	return ok && live(deadline, m.now().UnixNano()), nil
}

// Len implements Store.
func (m *Memory) Len(context.Context) (int, error) {
	now := m.now().UnixNano()
	n := 0
	m.entries.Range(func(_ string, deadline int64) bool {
		if live(deadline, now) {
			n++
		}
		return true
	})
	return n, nil
}

// Sweep removes expired entries and returns how many were dropped.
func (m *Memory) Sweep() int {
	now := m.now().UnixNano()
	return m.entries.Sweep(func(_ string, deadline int64) bool {
		return !live(deadline, now)
	})
}

// Close stops the sweep loop and rejects further use.
func (m *Memory) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopCh)
		<-m.doneCh
		m.entries.Clear()
	})
	return nil
}

func (m *Memory) closed() bool {
	select {
	case <-m.stopCh:
		return true
	default:
		return false
	}
}

func (m *Memory) sweepLoop(interval time.Duration) {
	defer close(m.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stopCh:
			return
		}
	}
}
