package session

import (
	"context"
	"sync"
	"time"

	"sneakerfit-backend/internal/models"
)

type memoryEntry struct {
	session *models.Session
	expires time.Time
}

// sessionLock is a context-aware mutex; refs counts holders and waiters so the
// entry can be dropped once nobody needs it.
type sessionLock struct {
	ch   chan struct{}
	refs int
}

// MemoryStore holds sessions in process memory. Used when no Redis URL is
// configured and in tests.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]memoryEntry
	locks     map[string]*sessionLock
	ttl       time.Duration
	now       func() time.Time
	lastPurge time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	m := &MemoryStore{
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]*sessionLock),
		ttl:      ttl,
		now:      time.Now,
	}
	m.lastPurge = m.now()
	return m
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(e.expires) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	return e.session.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sessions[s.ID] = memoryEntry{session: s.Clone(), expires: now.Add(m.ttl)}

	// Sessions of clients that never come back are only reachable from here.
	if now.Sub(m.lastPurge) >= m.ttl {
		m.purgeExpired(now)
	}
	return nil
}

// purgeExpired drops expired sessions. Caller holds m.mu.
func (m *MemoryStore) purgeExpired(now time.Time) {
	for id, e := range m.sessions {
		if now.After(e.expires) {
			delete(m.sessions, id)
		}
	}
	m.lastPurge = now
}

func (m *MemoryStore) Lock(ctx context.Context, id string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sessionLock{ch: make(chan struct{}, 1)}
		m.locks[id] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(id, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			m.release(id, l)
		})
	}, nil
}

func (m *MemoryStore) release(id string, l *sessionLock) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	now := m.now()
	for _, e := range m.sessions {
		if !now.After(e.expires) {
			n++
		}
	}
	return n
}
