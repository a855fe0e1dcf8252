package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStorage: FileStorage in-memory untuk test. FailStore/FailDelete memaksa error.
type MemoryStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string

	FailStore  error
	FailDelete error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: map[string][]byte{}}
}

func (m *MemoryStorage) Store(ctx context.Context, dir string, up *Upload) (string, error) {
	if m.FailStore != nil {
		return "", storeErr("store", "", m.FailStore)
	}
	p, err := prepare(up, 0, WebPOptions{})
	if err != nil {
		return "", storeErr("store", "", err)
	}
	ref := "mem://" + objectKey("", dir, p.Name)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[ref] = p.Data
	return ref, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, ref string) error {
	if m.FailDelete != nil {
		return storeErr("delete", ref, m.FailDelete)
	}
	if !strings.HasPrefix(ref, "mem://") {
		return storeErr("delete", ref, errors.New("unknown ref"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, ref)
	m.deleted = append(m.deleted, ref)
	return nil
}

func (m *MemoryStorage) Has(ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[ref]
	return ok
}

// Refs: semua ref yang masih tersimpan (urut).
func (m *MemoryStorage) Refs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for k := range m.files {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *MemoryStorage) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
