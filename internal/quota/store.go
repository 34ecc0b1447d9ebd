package quota

import (
	"context"
	"strconv"
	"sync"
)

//go:generate go tool mockgen -destination mock_store_test.go -package quota . Store

// Store is the persistent key/value store that owns quota records. Values are
// kept as text so a corrupted or foreign value can be told apart from a
// missing one.
type Store interface {
	// Get returns the raw stored value for accessCode. found is false when no
	// record exists.
	Get(ctx context.Context, accessCode string) (value string, found bool, err error)

	// Set writes remaining for accessCode, creating the record if needed.
	Set(ctx context.Context, accessCode string, remaining int) error
}

// MemoryStore is an in-process [Store]. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]string)}
}

// Get implements [Store].
func (s *MemoryStore) Get(ctx context.Context, accessCode string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.records[accessCode]
	return v, ok, nil
}

// Set implements [Store].
func (s *MemoryStore) Set(ctx context.Context, accessCode string, remaining int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.SetRaw(accessCode, strconv.Itoa(remaining))
	return nil
}

// SetRaw stores an arbitrary value, bypassing validation.
func (s *MemoryStore) SetRaw(accessCode, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[accessCode] = value
}
