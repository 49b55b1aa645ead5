package application

import (
	"fmt"
	"sync"

	"mcdiscord/internal/repository"
)

type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

// memStore is an in-memory repository.ConfigStore with switchable failures.
type memStore struct {
	mu       sync.Mutex
	sections map[string]map[string]string
	failLoad bool
	failSave bool
	saves    int
}

func newMemStore() *memStore {
	return &memStore{sections: make(map[string]map[string]string)}
}

func (s *memStore) Load(section string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad {
		return nil, fmt.Errorf("%w: disk on fire", repository.ErrStoreUnavailable)
	}
	values := make(map[string]string, len(s.sections[section]))
	for k, v := range s.sections[section] {
		values[k] = v
	}
	return values, nil
}

func (s *memStore) Save(section string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return fmt.Errorf("%w: disk full", repository.ErrStoreUnavailable)
	}
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	s.sections[section] = copied
	s.saves++
	return nil
}

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// gatedStore blocks its first Save until release is closed.
type gatedStore struct {
	*memStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		memStore: newMemStore(),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (s *gatedStore) Save(section string, values map[string]string) error {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return s.memStore.Save(section, values)
}
