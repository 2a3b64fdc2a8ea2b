package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	appfinance "github.com/sitefund/backend/internal/application/finance"
)

var _ appfinance.ObjectStorageService = (*InMemoryObjectStorage)(nil)

// storedObject holds one uploaded document
type storedObject struct {
	data        []byte
	contentType string
}

// InMemoryObjectStorage is a map-backed ObjectStorageService for local
// development and tests. Download URLs are fake and point nowhere.
type InMemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]storedObject
}

// NewInMemoryObjectStorage creates a new in-memory object storage
func NewInMemoryObjectStorage() *InMemoryObjectStorage {
	return &InMemoryObjectStorage{
		objects: make(map[string]storedObject),
	}
}

// Upload stores data under the given storage key
func (s *InMemoryObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return fmt.Errorf("storage key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[storageKey] = storedObject{data: buf, contentType: contentType}
	return nil
}

// GenerateDownloadURL generates a fake download URL for the stored object
func (s *InMemoryObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.objects[storageKey]; !ok {
		return "", time.Time{}, fmt.Errorf("object not found: %s", storageKey)
	}
	return "memory://" + storageKey, time.Now().Add(expiresIn), nil
}

// DeleteObject deletes an object from storage
func (s *InMemoryObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, storageKey)
	return nil
}

// ObjectExists checks if an object exists in storage
func (s *InMemoryObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.objects[storageKey]
	return ok, nil
}

// Object returns a stored object's data and content type (for tests)
func (s *InMemoryObjectStorage) Object(storageKey string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[storageKey]
	return obj.data, obj.contentType, ok
}
