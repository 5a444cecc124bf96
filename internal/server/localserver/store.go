package localserver

import (
	"sort"

	"github.com/yndnr/confstore-go/pkg/cmap"
)

// Store is a concurrency-safe in-memory key space.
type Store struct {
	data *cmap.Map[[]byte]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: cmap.New[[]byte]()}
}

// Get returns a copy of the value under key.
func (s *Store) Get(key string) ([]byte, bool) {
	v, ok := s.data.Get(key)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Put stores a copy of value under key.
func (s *Store) Put(key string, value []byte) {
	s.data.Set(key, append([]byte(nil), value...))
}

// Delete removes key and reports whether it existed.
func (s *Store) Delete(key string) bool {
	_, ok := s.data.Pop(key)
	return ok
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	keys := s.data.Keys()
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (s *Store) Len() int {
	return s.data.Count()
}
