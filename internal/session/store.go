// Package session keeps the local role-play sessions: the transcripts a user
// builds while practising, and the files they hand to the scorer.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mentorinc/rolecoach/internal/models"
)

// ErrSessionNotFound is returned when no session matches an ID.
var ErrSessionNotFound = errors.New("session not found")

// Session is one simulated conversation.
type Session struct {
	ID        string            `json:"id"`
	Scenario  models.Scenario   `json:"scenario"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Messages  models.Transcript `json:"messages"`
}

// Store persists sessions as JSON files in a directory.
type Store struct {
	dir string
	mu  sync.Mutex

	now func() time.Time
}

// NewStore creates a Store rooted at dir. The directory is created lazily.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the directory sessions are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Create starts a new session for scenario, seeded with the scenario brief as
// a system turn.
func (s *Store) Create(scenario models.Scenario) (*Session, error) {
	if scenario == "" {
		scenario = models.DefaultScenario
	}

	now := s.now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		Scenario:  scenario,
		CreatedAt: now,
		UpdatedAt: now,
		Messages: models.Transcript{
			{Role: models.RoleSystem, Text: scenario.Description()},
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session by ID. A unique ID prefix is accepted.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

// Append adds a turn to the end of a session.
func (s *Store) Append(id string, turn models.Turn) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(id)
	if err != nil {
		return nil, err
	}

	sess.Messages = append(sess.Messages, turn)
	sess.UpdatedAt = s.now().UTC()

	if err := s.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// List returns all sessions, most recently updated first. Unreadable files are
// skipped.
func (s *Store) List() ([]*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session directory: %w", err)
	}

	var sessions []*Session
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		sess, err := readSession(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

// Clear removes every stored session. It refuses to touch a directory that
// holds anything other than session files.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading session directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("session directory contains subdirectories - refusing to delete for safety")
		}
		if filepath.Ext(entry.Name()) != ".json" {
			return fmt.Errorf("session directory contains non-session files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(s.dir)
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *Store) save(sess *Session) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	if err := os.WriteFile(s.path(sess.ID), data, 0644); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

func (s *Store) load(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrSessionNotFound
	}

	sess, err := readSession(s.path(id))
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	matches, globErr := filepath.Glob(filepath.Join(s.dir, id+"*.json"))
	if globErr != nil || len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("session id %q is ambiguous (%d matches)", id, len(matches))
	}
	return readSession(matches[0])
}

func readSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", filepath.Base(path), err)
	}
	return &sess, nil
}
