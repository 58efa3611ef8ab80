package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/greenshop/backend/internal/domain/cart"
	"github.com/greenshop/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL is how long an idle session survives
const DefaultSessionTTL = 30 * 24 * time.Hour

// RedisSessionStore implements cart.SessionStore using Redis.
// Sessions are stored as JSON with a sliding TTL refreshed on every load and save.
type RedisSessionStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisSessionStore creates a session store on an existing client
func NewRedisSessionStore(client redis.UniversalClient, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{
		client:    client,
		keyPrefix: "session:",
		ttl:       ttl,
	}
}

// Load reads a session and extends its TTL
func (s *RedisSessionStore) Load(ctx context.Context, id string) (*cart.Session, error) {
	data, err := s.client.GetEx(ctx, s.keyPrefix+id, s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session cart.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	session.Normalize()
	return &session, nil
}

// Save writes the session with a fresh TTL
func (s *RedisSessionStore) Save(ctx context.Context, session *cart.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

type sessionEntry struct {
	data      []byte
	expiresAt time.Time
}

// InMemorySessionStore implements cart.SessionStore in process memory.
// Sessions are stored serialized so callers never share mutable state with the store.
type InMemorySessionStore struct {
	mu        sync.RWMutex
	entries   map[string]sessionEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySessionStore creates an in-memory session store and starts its cleanup loop
func NewInMemorySessionStore(ttl, cleanupInterval time.Duration) *InMemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	s := &InMemorySessionStore{
		entries:  make(map[string]sessionEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop(cleanupInterval)
	return s
}

// Load returns a copy of the stored session and extends its TTL
func (s *InMemorySessionStore) Load(_ context.Context, id string) (*cart.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.entries, id)
		return nil, shared.ErrNotFound
	}
	e.expiresAt = time.Now().Add(s.ttl)
	s.entries[id] = e

	var session cart.Session
	if err := json.Unmarshal(e.data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	session.Normalize()
	return &session, nil
}

// Save stores a copy of the session
func (s *InMemorySessionStore) Save(_ context.Context, session *cart.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID] = sessionEntry{data: data, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

// Delete removes a session
func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Size returns the number of stored sessions
func (s *InMemorySessionStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemorySessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemorySessionStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemorySessionStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// Ensure both stores implement cart.SessionStore
var (
	_ cart.SessionStore = (*RedisSessionStore)(nil)
	_ cart.SessionStore = (*InMemorySessionStore)(nil)
)
