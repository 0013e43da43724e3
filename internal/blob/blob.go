// Package blob stores uploaded media in an object store and resolves the
// public URL of stored objects.
package blob

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Store uploads bytes and resolves their public URL.
type Store interface {
	UploadBlob(ctx context.Context, bucket, path string, data []byte, contentType string) error
	PublicURL(bucket, path string) string
}

func joinURL(base, bucket, path string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, strings.TrimLeft(path, "/"))
}

// Object is a stored blob of a MemoryStore.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps blobs in process. It is used in development mode and in
// tests.
type MemoryStore struct {
	base string

	mu      sync.Mutex
	objects map[string]Object
	failErr error
}

// NewMemoryStore returns an empty store whose URLs are rooted at base.
func NewMemoryStore(base string) *MemoryStore {
	return &MemoryStore{base: base, objects: make(map[string]Object)}
}

// Fail makes every following UploadBlob return err. A nil err clears the failure.
func (m *MemoryStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *MemoryStore) UploadBlob(_ context.Context, bucket, path string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return m.failErr
	}
	m.objects[bucket+"/"+path] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (m *MemoryStore) PublicURL(bucket, path string) string {
	return joinURL(m.base, bucket, path)
}

// Get returns a stored object.
func (m *MemoryStore) Get(bucket, path string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[bucket+"/"+path]
	return o, ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
