package kv

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// Memory is an in-process Client. It honors TTLs lazily on access.
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

// MemoryOption configures a Memory client.
type MemoryOption func(*Memory)

// WithMemoryClock overrides the time source, used by tests to move time forward.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-memory client.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string, dst any) error {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || item.expired(m.now()) {
		return ErrKeyNotFound
	}
	return json.Unmarshal(item.value, dst)
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryItem{value: b, expiresAt: m.expiry(ttl)}
	return nil
}

func (m *Memory) Touch(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok || item.expired(m.now()) {
		return ErrKeyNotFound
	}
	item.expiresAt = m.expiry(ttl)
	m.items[key] = item
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// Sweep drops expired items and returns their keys.
func (m *Memory) Sweep() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	var removed []string
	for k, item := range m.items {
		if item.expired(now) {
			delete(m.items, k)
			removed = append(removed, k)
		}
	}
	return removed
}

// Len returns the number of stored items, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}
