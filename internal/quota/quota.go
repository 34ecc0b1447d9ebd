// Package quota meters how many simulations an access code may start.
//
// The limit is advisory. Records live in a store owned by the local client and
// nothing stops a caller from skipping the check, so quota is a soft limit and
// not a security boundary.
package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

const (
	// Sentinel is the remaining count reported when no record has been seen.
	Sentinel = -1

	// DefaultAllotment is the number of simulations a new access code gets.
	DefaultAllotment = 2
)

// ErrStorage wraps failures of the underlying [Store].
var ErrStorage = errors.New("quota storage failure")

// InitializeHook runs after a new access code has been given its allotment.
type InitializeHook func(ctx context.Context, accessCode string) error

// Manager owns the store and cache shared by every [Tracker].
type Manager struct {
	store        Store
	cache        Cache
	allotment    int
	onInitialize InitializeHook
	logger       *slog.Logger

	loads singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64
}

// ManagerOption configures a [Manager].
type ManagerOption func(*Manager)

// WithCache replaces the default [QueryCache].
func WithCache(cache Cache) ManagerOption {
	return func(m *Manager) { m.cache = cache }
}

// WithAllotment overrides [DefaultAllotment]. Values below 1 are ignored; a
// non-positive allotment could never be stored as an active record.
func WithAllotment(n int) ManagerOption {
	return func(m *Manager) {
		if n < 1 {
			m.logger.Warn("Ignoring non-positive quota allotment", "allotment", n, "using", m.allotment)
			return
		}
		m.allotment = n
	}
}

// WithInitializeHook registers fn to run when an access code is initialized.
func WithInitializeHook(fn InitializeHook) ManagerOption {
	return func(m *Manager) { m.onInitialize = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a Manager over store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:       store,
		cache:       NewQueryCache(),
		allotment:   DefaultAllotment,
		logger:      slog.Default(),
		generations: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Allotment is the starting number of simulations per access code.
func (m *Manager) Allotment() int {
	return m.allotment
}

// Tracker returns a tracker for accessCode. An empty code yields a tracker in
// the [PhaseUnknown] state that never touches the store.
func (m *Manager) Tracker(accessCode string) *Tracker {
	code := strings.TrimSpace(accessCode)
	return &Tracker{
		m:     m,
		code:  code,
		state: State{AccessCode: code, Remaining: Sentinel},
	}
}

func (m *Manager) generation(accessCode string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[accessCode]
}

// read returns the remaining count for accessCode, from the cache when
// possible. Concurrent misses for the same code share one store read.
func (m *Manager) read(ctx context.Context, accessCode string) (int, error) {
	if v, ok := m.cache.Get(accessCode); ok {
		return v, nil
	}

	gen := m.generation(accessCode)
	key := accessCode + "\x00" + strconv.FormatUint(gen, 10)

	v, err, _ := m.loads.Do(key, func() (any, error) {
		raw, found, err := m.store.Get(ctx, accessCode)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		if !found {
			return Sentinel, nil
		}
		return parseRemaining(raw), nil
	})
	if err != nil {
		return 0, err
	}

	remaining := v.(int)

	// A write that landed while the store read was in flight makes the
	// result stale, so only cache it if no write happened since.
	m.mu.Lock()
	if m.generations[accessCode] == gen {
		m.cache.Set(accessCode, remaining)
	}
	m.mu.Unlock()

	return remaining, nil
}

// write persists remaining and invalidates the cached read.
func (m *Manager) write(ctx context.Context, accessCode string, remaining int) error {
	if err := m.store.Set(ctx, accessCode, remaining); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	m.mu.Lock()
	m.generations[accessCode]++
	m.cache.Invalidate(accessCode)
	m.mu.Unlock()

	return nil
}

// initialize runs the hook, then writes the allotment. A failing hook leaves
// the record untouched so the next read retries the whole initialization.
func (m *Manager) initialize(ctx context.Context, accessCode string) error {
	if m.onInitialize != nil {
		if err := m.onInitialize(ctx, accessCode); err != nil {
			return fmt.Errorf("quota initialize hook: %w", err)
		}
	}

	if err := m.write(ctx, accessCode, m.allotment); err != nil {
		return err
	}

	m.logger.InfoContext(ctx, "Initialized quota for access code", "allotment", m.allotment)
	return nil
}

// parseRemaining maps a stored value to a remaining count. Anything that is
// not a non-negative whole number means "uninitialized".
func parseRemaining(raw string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return Sentinel
	}
	return int(f)
}
