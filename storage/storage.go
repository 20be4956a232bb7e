// Package storage persists decision table sources.
package storage

import (
	"context"
	"sort"
	"sync"
)

// NotFound is returned when a named spec doesn't exist.
type NotFound struct {
	Name string
}

func (e *NotFound) Error() string {
	return "spec '" + e.Name + "' not found"
}

// Storage is a persistence interface for spec sources (YAML or
// JSON) keyed by name.
type Storage interface {
	Open(ctx context.Context) error

	Close(ctx context.Context) error

	PutSpec(ctx context.Context, name string, src []byte) error

	// GetSpec returns a *NotFound if there's no such spec.
	GetSpec(ctx context.Context, name string) ([]byte, error)

	// RemSpec returns a *NotFound if there's no such spec.
	RemSpec(ctx context.Context, name string) error

	// ListSpecs returns the names in sorted order.
	ListSpecs(ctx context.Context) ([]string, error)
}

// MemStorage is an in-memory Storage.
type MemStorage struct {
	sync.RWMutex

	specs map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		specs: make(map[string][]byte),
	}
}

func (s *MemStorage) Open(ctx context.Context) error {
	return nil
}

func (s *MemStorage) Close(ctx context.Context) error {
	return nil
}

func (s *MemStorage) PutSpec(ctx context.Context, name string, src []byte) error {
	s.Lock()
	defer s.Unlock()
	s.specs[name] = append([]byte(nil), src...)
	return nil
}

func (s *MemStorage) GetSpec(ctx context.Context, name string) ([]byte, error) {
	s.RLock()
	defer s.RUnlock()
	src, have := s.specs[name]
	if !have {
		return nil, &NotFound{name}
	}
	return append([]byte(nil), src...), nil
}

func (s *MemStorage) RemSpec(ctx context.Context, name string) error {
	s.Lock()
	defer s.Unlock()
	if _, have := s.specs[name]; !have {
		return &NotFound{name}
	}
	delete(s.specs, name)
	return nil
}

func (s *MemStorage) ListSpecs(ctx context.Context) ([]string, error) {
	s.RLock()
	defer s.RUnlock()
	acc := make([]string, 0, len(s.specs))
	for name := range s.specs {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc, nil
}
