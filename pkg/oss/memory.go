package oss

import (
	"context"
	"os"
	"sync"
)

// MemoryStorage keeps objects in process. Used by tests and local runs
// without MinIO.
type MemoryStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{Objects: make(map[string][]byte)}
}

func (m *MemoryStorage) PutFile(ctx context.Context, objectName, path, contentType string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return m.PutBytes(ctx, objectName, data, contentType)
}

func (m *MemoryStorage) PutBytes(_ context.Context, objectName string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectName] = append([]byte(nil), data...)
	return ObjectURL("memory://local", "ytgify", objectName), nil
}

func (m *MemoryStorage) Remove(_ context.Context, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectName)
	return nil
}

func (m *MemoryStorage) Has(objectName string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[objectName]
	return ok
}
