package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/dmitrymomot/couchsession/core/kv"
	"github.com/dmitrymomot/couchsession/core/session"
)

// fakeClock is shared by the manager, the store and the memory client so
// expiry decisions agree.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: epoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type memoryFixture struct {
	client *kv.Memory
	store  *session.KVStore[testData]
	clock  *fakeClock
}

func newMemoryFixture(t *testing.T, cfg session.Config) memoryFixture {
	t.Helper()
	clock := newFakeClock()
	client := kv.NewMemory(kv.WithMemoryClock(clock.Now))
	return memoryFixture{
		client: client,
		store:  session.NewKVStore[testData](client, cfg, session.WithStoreClock(clock.Now)),
		clock:  clock,
	}
}

func sessionKey(id string) string {
	return "session::session::" + id
}

func principalKey(name string) string {
	return "session::principal::" + name
}
