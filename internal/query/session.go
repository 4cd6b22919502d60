package query

import (
	"sync"

	"ctm/internal/models"
	"ctm/internal/store"
)

// Session is the handle for one repository's loaded analysis. It starts
// Unloaded, becomes Loaded on the first successful ensureLoaded, and never
// reverts: the underlying unit is immutable, so any number of concurrent
// queries may read it without locking.
type Session struct {
	repoID string
	dir    string

	mu     sync.Mutex
	unit   *store.Unit
	byID   map[string]*models.CommitRecord
	loaded bool
}

// NewSession creates an unloaded session for a repo ID backed by the given
// storage directory.
func NewSession(dir, repoID string) *Session {
	return &Session{repoID: repoID, dir: dir}
}

// RepoID returns the repository identifier the session serves.
func (s *Session) RepoID() string { return s.repoID }

// Loaded reports whether the session has a store and index in memory.
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// ensureLoaded loads the persisted unit on first use. The mutex coalesces
// concurrent first calls: one loads from disk, the rest wait and reuse it.
// A failed load leaves the session unloaded; callers may retry.
func (s *Session) ensureLoaded() (*store.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.unit, nil
	}

	unit, err := store.Load(s.dir, s.repoID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.CommitRecord, len(unit.Store.Records))
	for i := range unit.Store.Records {
		r := &unit.Store.Records[i]
		byID[r.ID] = r
	}

	s.unit = unit
	s.byID = byID
	s.loaded = true
	return unit, nil
}

// record looks up a commit by ID in the loaded store. Only valid after a
// successful ensureLoaded.
func (s *Session) record(id string) *models.CommitRecord {
	return s.byID[id]
}
