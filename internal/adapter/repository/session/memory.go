package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is the single-process fallback used when redis is not
// configured. Drafts and admin sessions share one keyspace, the way they
// share one redis database.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	logger  *zap.Logger
}

func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
		logger:  logger,
	}
}

func (m *MemoryStore) set(key string, data []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
}

// setNX stores data under key unless a live entry already holds it.
func (m *MemoryStore) setNX(key string, data []byte, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && (e.expiresAt.IsZero() || m.now().Before(e.expiresAt)) {
		return false
	}

	e := entry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return true
}

// delIfEqual removes key only while it still holds data.
func (m *MemoryStore) delIfEqual(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && string(e.data) == string(data) {
		delete(m.entries, key)
	}
}

func (m *MemoryStore) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return e.data, true
}

func (m *MemoryStore) del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// RunCleanup evicts expired entries every interval until ctx is done.
func (m *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("Session cleanup worker started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Session cleanup worker stopped")
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}

func (m *MemoryStore) evictExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	evicted := 0
	for key, e := range m.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.entries, key)
			evicted++
		}
	}

	if evicted > 0 {
		m.logger.Debug("Evicted expired sessions", zap.Int("count", evicted))
	}
	return evicted
}

// Drafts exposes the store as a ports.DraftRepository.
func (m *MemoryStore) Drafts() *MemoryDraftRepository {
	return &MemoryDraftRepository{store: m}
}

// AdminSessions exposes the store as a ports.AdminSessionRepository.
func (m *MemoryStore) AdminSessions() *MemoryAdminSessions {
	return &MemoryAdminSessions{store: m}
}

type MemoryDraftRepository struct {
	store *MemoryStore
}

// Save stores a JSON copy so later mutation of d never leaks into the store.
func (r *MemoryDraftRepository) Save(ctx context.Context, d *domain.BookingDraft, ttl time.Duration) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	r.store.set(draftPrefix+d.ID, b, ttl)
	return nil
}

func (r *MemoryDraftRepository) Get(ctx context.Context, id string) (*domain.BookingDraft, error) {
	data, ok := r.store.get(draftPrefix + id)
	if !ok {
		return nil, domain.ErrDraftNotFound
	}

	var d domain.BookingDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *MemoryDraftRepository) Delete(ctx context.Context, id string) error {
	r.store.del(draftPrefix + id)
	return nil
}

func (r *MemoryDraftRepository) Lock(ctx context.Context, id string, ttl time.Duration) (func(), error) {
	key := lockKey(id)
	token := []byte(uuid.New().String())
	if !r.store.setNX(key, token, ttl) {
		return nil, domain.ErrSessionBusy
	}
	return func() { r.store.delIfEqual(key, token) }, nil
}

type MemoryAdminSessions struct {
	store *MemoryStore
}

func (s *MemoryAdminSessions) Grant(ctx context.Context, token string, ttl time.Duration) error {
	s.store.set(adminPrefix+token, []byte("1"), ttl)
	return nil
}

func (s *MemoryAdminSessions) Valid(ctx context.Context, token string) (bool, error) {
	_, ok := s.store.get(adminPrefix + token)
	return ok, nil
}

func (s *MemoryAdminSessions) Revoke(ctx context.Context, token string) error {
	s.store.del(adminPrefix + token)
	return nil
}
