// Package testutil provides testing utilities for the fragment cache.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sternrassler/html-fragment-cache/pkg/cache"
)

// ErrBackendDown is the default error injected by FakeStore failures.
var ErrBackendDown = errors.New("backend unavailable")

type fakeEntry struct {
	value     []byte
	expiresAt time.Time
}

// FakeStore is an in-memory cache.Store with call tracking and failure
// injection. It only offers independent get/set calls, so it does not
// implement cache.Rememberer.
type FakeStore struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
	now     func() time.Time

	// Failure injection; nil means the operation succeeds.
	GetErr    error
	SetErr    error
	DeleteErr error
	FlushErr  error

	// Tracking
	GetCount    int
	SetCount    int
	DeleteCount int
	FlushCount  int
	LastTTL     time.Duration
}

// NewFakeStore creates an empty store using the wall clock.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		entries: make(map[string]fakeEntry),
		now:     time.Now,
	}
}

// SetClock replaces the clock used for expiry.
func (s *FakeStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailAll makes every operation return err (ErrBackendDown when nil).
func (s *FakeStore) FailAll(err error) {
	if err == nil {
		err = ErrBackendDown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetErr, s.SetErr, s.DeleteErr, s.FlushErr = err, err, err, err
}

// Get implements cache.Store.
func (s *FakeStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetCount++
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	e, ok := s.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, cache.ErrCacheMiss
	}
	return e.value, nil
}

// Set implements cache.Store.
func (s *FakeStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SetCount++
	s.LastTTL = ttl
	if s.SetErr != nil {
		return s.SetErr
	}
	if ttl <= 0 {
		return nil
	}
	s.entries[key] = fakeEntry{value: append([]byte(nil), value...), expiresAt: s.now().Add(ttl)}
	return nil
}

// Delete implements cache.Store.
func (s *FakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCount++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.entries, key)
	return nil
}

// Flush implements cache.Store.
func (s *FakeStore) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FlushCount++
	if s.FlushErr != nil {
		return s.FlushErr
	}
	s.entries = make(map[string]fakeEntry)
	return nil
}

// Driver implements cache.Describer.
func (s *FakeStore) Driver() string {
	return "fake"
}

// Has reports whether key holds a live entry, without counting as a Get.
func (s *FakeStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return ok && s.now().Before(e.expiresAt)
}

// Put stores value directly, bypassing tracking and failure injection.
func (s *FakeStore) Put(key string, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = fakeEntry{value: []byte(value), expiresAt: s.now().Add(ttl)}
}

// Len returns the number of stored entries, expired or not.
func (s *FakeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Reset clears entries, counters and injected failures.
func (s *FakeStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]fakeEntry)
	s.GetErr, s.SetErr, s.DeleteErr, s.FlushErr = nil, nil, nil, nil
	s.GetCount, s.SetCount, s.DeleteCount, s.FlushCount = 0, 0, 0, 0
	s.LastTTL = 0
}
