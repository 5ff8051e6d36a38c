package storage

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// Memory is an in-process Store. It is what the CLI and tests use when no
// persistent backend is configured.
type Memory struct {
	entries *xsync.MapOf[string, []byte]
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{entries: xsync.NewMapOf[string, []byte]()}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.entries.Load(key)
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.entries.Store(key, clone(value))
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0, m.entries.Size())
	m.entries.Range(func(k string, _ []byte) bool {
		keys = append(keys, k)
		return true
	})
	return filterSorted(keys, prefix), nil
}

func (m *Memory) Close() error {
	m.entries.Clear()
	return nil
}
