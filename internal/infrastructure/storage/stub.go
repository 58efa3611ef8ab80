package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	catalogapp "github.com/greenshop/backend/internal/application/catalog"
)

// StubObjectStorage keeps uploaded objects in memory.
// Used when no S3 backend is configured and in tests.
type StubObjectStorage struct {
	// BaseURL is the base URL of returned public URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]StubObject
}

// StubObject is an object held by StubObjectStorage
type StubObject struct {
	Data         []byte
	ContentType  string
	CacheControl string
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/static"
	}
	return &StubObjectStorage{
		BaseURL: baseURL,
		objects: make(map[string]StubObject),
	}
}

// Ensure StubObjectStorage implements ImageStorage
var _ catalogapp.ImageStorage = (*StubObjectStorage)(nil)

// Upload stores a copy of data under key
func (s *StubObjectStorage) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[key]; exists {
		return "", fmt.Errorf("%w: %s", catalogapp.ErrObjectExists, key)
	}
	s.objects[key] = StubObject{
		Data:         append([]byte(nil), data...),
		ContentType:  contentType,
		CacheControl: ImageCacheControl,
	}
	return PublicURL(s.BaseURL, key), nil
}

// Delete removes an object; deleting a missing key succeeds
func (s *StubObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Object returns a stored object
func (s *StubObjectStorage) Object(key string) (StubObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (s *StubObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
