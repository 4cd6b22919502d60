// Package store persists one analysis run as a three-artifact unit keyed by
// repo identifier: a human-inspectable commit store JSON, an opaque binary
// vector index, and a metadata sidecar that ties the two together.
package store

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ctm/internal/models"
	"ctm/internal/vectorindex"
)

// ErrStoreNotFound is returned when no analysis unit exists for a repo ID.
var ErrStoreNotFound = errors.New("repository analysis not found")

// CorruptIndexError reports persisted artifacts that disagree with each
// other. The unit must be re-created by a fresh analysis run.
type CorruptIndexError struct {
	RepoID string
	Reason string
}

func (e *CorruptIndexError) Error() string {
	return fmt.Sprintf("corrupt analysis unit %s: %s", e.RepoID, e.Reason)
}

// Sidecar is the metadata artifact used to consistency-check a unit at load
// time.
type Sidecar struct {
	RepoID       string `json:"repo_identifier"`
	Source       string `json:"source"`
	Dimension    int    `json:"dimension"`
	RecordCount  int    `json:"record_count"`
	IndexedCount int    `json:"indexed_count"`
	BuiltAt      string `json:"build_timestamp"`
}

// Unit is one loaded analysis: the commit store and, when any commit was
// embedded, its vector index.
type Unit struct {
	Meta  Sidecar
	Store *models.CommitStore
	Index *vectorindex.Index
}

// RepoID derives the stable identifier for a repository source (URL or
// local path): the first 12 hex digits of its md5.
func RepoID(source string) string {
	sum := md5.Sum([]byte(source))
	return hex.EncodeToString(sum[:])[:12]
}

func storePath(dir, id string) string { return filepath.Join(dir, id+"_store.json") }
func indexPath(dir, id string) string { return filepath.Join(dir, id+"_index.bin") }
func metaPath(dir, id string) string  { return filepath.Join(dir, id+"_meta.json") }

// Save writes the unit under dir. Artifacts land via rename and the sidecar
// is written last, so a half-written unit never looks loadable. idx may be
// nil when no commit carried an embedding.
func Save(dir string, cs *models.CommitStore, idx *vectorindex.Index) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage dir: %w", err)
	}

	id := cs.RepoID
	if err := writeJSON(storePath(dir, id), cs); err != nil {
		return err
	}

	meta := Sidecar{
		RepoID:      id,
		Source:      cs.Source,
		RecordCount: len(cs.Records),
		BuiltAt:     cs.BuiltAt,
	}
	if idx != nil {
		tmp := indexPath(dir, id) + ".tmp"
		if err := idx.WriteFile(tmp); err != nil {
			return err
		}
		if err := os.Rename(tmp, indexPath(dir, id)); err != nil {
			return fmt.Errorf("failed to publish index file: %w", err)
		}
		meta.Dimension = idx.Dimension()
		meta.IndexedCount = idx.Len()
	} else {
		// A stale index from a previous run must not survive a re-analysis
		// that produced none.
		os.Remove(indexPath(dir, id))
	}

	return writeJSON(metaPath(dir, id), &meta)
}

// Load reads and consistency-checks the unit for a repo ID. A missing unit
// returns ErrStoreNotFound; mutually inconsistent artifacts return a
// CorruptIndexError.
func Load(dir, repoID string) (*Unit, error) {
	var meta Sidecar
	if err := readJSON(metaPath(dir, repoID), &meta); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, repoID)
		}
		return nil, &CorruptIndexError{RepoID: repoID, Reason: err.Error()}
	}

	var cs models.CommitStore
	if err := readJSON(storePath(dir, repoID), &cs); err != nil {
		if os.IsNotExist(err) {
			return nil, &CorruptIndexError{RepoID: repoID, Reason: "sidecar present but store missing"}
		}
		return nil, &CorruptIndexError{RepoID: repoID, Reason: err.Error()}
	}

	if len(cs.Records) != meta.RecordCount {
		return nil, &CorruptIndexError{
			RepoID: repoID,
			Reason: fmt.Sprintf("store has %d records, sidecar says %d", len(cs.Records), meta.RecordCount),
		}
	}

	unit := &Unit{Meta: meta, Store: &cs}
	if meta.IndexedCount > 0 {
		idx, err := vectorindex.ReadFile(indexPath(dir, repoID))
		if err != nil {
			return nil, &CorruptIndexError{RepoID: repoID, Reason: err.Error()}
		}
		if idx.Len() != meta.IndexedCount {
			return nil, &CorruptIndexError{
				RepoID: repoID,
				Reason: fmt.Sprintf("index has %d vectors, sidecar says %d", idx.Len(), meta.IndexedCount),
			}
		}
		if idx.Dimension() != meta.Dimension {
			return nil, &CorruptIndexError{
				RepoID: repoID,
				Reason: fmt.Sprintf("index dimension %d, sidecar says %d", idx.Dimension(), meta.Dimension),
			}
		}
		unit.Index = idx
	}
	return unit, nil
}

// List returns the sidecars of every persisted analysis, newest first.
func List(dir string) ([]Sidecar, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read storage dir: %w", err)
	}

	var sidecars []Sidecar
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "_meta.json") {
			continue
		}
		var meta Sidecar
		if err := readJSON(filepath.Join(dir, e.Name()), &meta); err != nil {
			continue
		}
		sidecars = append(sidecars, meta)
	}
	sort.Slice(sidecars, func(i, j int) bool {
		return sidecars[i].BuiltAt > sidecars[j].BuiltAt
	})
	return sidecars, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to publish %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
