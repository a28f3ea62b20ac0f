package store

import (
	"context"
	"sync"
)

// Hub is an in-process shared store. Each handle returned by Open is a
// separate participant.
type Hub struct {
	mu      sync.Mutex
	values  map[string][]byte
	handles map[*Memory]struct{}
}

func NewHub() *Hub {
	return &Hub{
		values:  map[string][]byte{},
		handles: map[*Memory]struct{}{},
	}
}

// Open returns a new participant handle.
func (h *Hub) Open() *Memory {
	m := &Memory{hub: h, watchers: map[string]map[*slot]struct{}{}}
	h.mu.Lock()
	h.handles[m] = struct{}{}
	h.mu.Unlock()
	return m
}

// Memory is a handle on a Hub.
type Memory struct {
	hub *Hub

	mu       sync.Mutex
	watchers map[string]map[*slot]struct{}
	closed   bool
}

var _ Store = (*Memory)(nil)

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	if m.isClosed() {
		return ErrClosed
	}
	v := append([]byte(nil), value...)

	h := m.hub
	h.mu.Lock()
	h.values[key] = v
	others := make([]*Memory, 0, len(h.handles))
	for other := range h.handles {
		if other != m {
			others = append(others, other)
		}
	}
	h.mu.Unlock()

	for _, other := range others {
		other.deliver(key, v)
	}
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if m.isClosed() {
		return nil, ErrClosed
	}
	m.hub.mu.Lock()
	defer m.hub.mu.Unlock()
	v, ok := m.hub.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Watch(ctx context.Context, key string, fn func(value []byte)) error {
	s := newSlot()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.watchers[key] == nil {
		m.watchers[key] = map[*slot]struct{}{}
	}
	m.watchers[key][s] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.watchers[key], s)
		m.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return ErrClosed
		case v := <-s.ch:
			fn(v)
		}
	}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for _, slots := range m.watchers {
		for s := range slots {
			close(s.done)
		}
	}
	m.mu.Unlock()

	m.hub.mu.Lock()
	delete(m.hub.handles, m)
	m.hub.mu.Unlock()
	return nil
}

func (m *Memory) deliver(key string, v []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for s := range m.watchers[key] {
		s.put(v)
	}
}

func (m *Memory) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// slot holds at most one pending value; a newer value replaces an
// undelivered older one.
type slot struct {
	ch   chan []byte
	done chan struct{}
}

func newSlot() *slot {
	return &slot{ch: make(chan []byte, 1), done: make(chan struct{})}
}

func (s *slot) put(v []byte) {
	for {
		select {
		case s.ch <- v:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}
