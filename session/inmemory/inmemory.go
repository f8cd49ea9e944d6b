package inmemory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adhikar-ai/adhikar/models"
	"github.com/google/uuid"
)

// Store is a mutex-guarded session map with optional file durability. When a
// snapshot path is set, every mutating call flushes the whole map to disk
// before returning, so a restart resumes from the last completed mutation.
type Store struct {
	sessions     map[string]*models.Session
	snapshotPath string
	mu           sync.RWMutex
}

// NewStore creates a store, reloading state from snapshotPath when the file
// exists. An empty path disables persistence.
func NewStore(snapshotPath string) (*Store, error) {
	store := &Store{
		sessions:     make(map[string]*models.Session),
		snapshotPath: snapshotPath,
	}
	if snapshotPath != "" {
		if err := store.load(); err != nil {
			return nil, fmt.Errorf("failed to load session snapshot: %w", err)
		}
	}
	return store, nil
}

func (store *Store) Create() (models.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	sess := newSession()
	store.sessions[sess.ID] = sess
	if err := store.flush(); err != nil {
		return models.Session{}, err
	}
	return *sess, nil
}

func (store *Store) Get(id string) (models.Session, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	sess, ok := store.sessions[id]
	if !ok {
		return models.Session{}, false
	}
	return copySession(sess), true
}

func (store *Store) Append(id string, role models.Role, content string) (models.Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	sess, ok := store.sessions[id]
	if !ok {
		// defensive default: an unknown id gets a fresh session under it
		sess = newSession()
		sess.ID = id
		store.sessions[id] = sess
	}
	sess.History = append(sess.History, models.Turn{Role: role, Content: content})
	sess.LastActive = time.Now().UTC()
	if err := store.flush(); err != nil {
		return models.Session{}, err
	}
	return copySession(sess), nil
}

func (store *Store) History(id string) []models.Turn {
	store.mu.RLock()
	defer store.mu.RUnlock()
	sess, ok := store.sessions[id]
	if !ok {
		return nil
	}
	out := make([]models.Turn, len(sess.History))
	copy(out, sess.History)
	return out
}

func (store *Store) SetTitle(id, title string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	sess, ok := store.sessions[id]
	if !ok {
		return fmt.Errorf("unknown session: %s", id)
	}
	sess.Title = title
	return store.flush()
}

func (store *Store) Sweep(maxAge time.Duration) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	cutoff := time.Now().UTC().Add(-maxAge)
	evicted := 0
	for id, sess := range store.sessions {
		if sess.LastActive.Before(cutoff) {
			delete(store.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		_ = store.flush()
	}
	return evicted
}

func newSession() *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		ID:         uuid.NewString(),
		Title:      "New Chat",
		History:    []models.Turn{},
		CreatedAt:  now,
		LastActive: now,
	}
}

func copySession(sess *models.Session) models.Session {
	out := *sess
	out.History = make([]models.Turn, len(sess.History))
	copy(out.History, sess.History)
	return out
}

// flush writes the full session map to the snapshot file. Callers must hold
// the write lock. Timestamps serialize as RFC3339 via time.Time JSON encoding.
func (store *Store) flush() error {
	if store.snapshotPath == "" {
		return nil
	}
	data, err := json.Marshal(store.sessions)
	if err != nil {
		return err
	}
	tmp := store.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, store.snapshotPath)
}

func (store *Store) load() error {
	data, err := os.ReadFile(store.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			if dir := filepath.Dir(store.snapshotPath); dir != "." {
				return os.MkdirAll(dir, 0o755)
			}
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &store.sessions)
}
