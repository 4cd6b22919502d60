package models

import "strings"

// ChangeKind classifies how a commit touched a file
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeModified ChangeKind = "modified"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeRenamed  ChangeKind = "renamed"
	ChangeUnknown  ChangeKind = "unknown"
)

// FileChange describes one file touched by a commit
type FileChange struct {
	Path         string     `json:"path"`
	OldPath      string     `json:"old_path,omitempty"`
	Kind         ChangeKind `json:"change_kind"`
	AddedLines   int        `json:"added_lines"`
	DeletedLines int        `json:"deleted_lines"`
}

// CommitRecord is one mined commit. Timestamp is an ISO-8601 string so
// time-range comparisons stay lexicographic, matching the persisted form.
type CommitRecord struct {
	ID            string       `json:"id"`
	AuthorName    string       `json:"author_name"`
	AuthorEmail   string       `json:"author_email"`
	Timestamp     string       `json:"timestamp"`
	Message       string       `json:"message"`
	Insertions    int          `json:"insertions"`
	Deletions     int          `json:"deletions"`
	FilesModified int          `json:"files_modified"`
	FileChanges   []FileChange `json:"file_changes"`

	// Embedding is attached at analysis time and persisted in the vector
	// index, never in the store JSON. Nil when embedding failed or was
	// skipped for this record.
	Embedding []float32 `json:"-"`
}

// EmbeddingText returns the text a commit is embedded from: the message
// followed by every changed file name.
func (r *CommitRecord) EmbeddingText() string {
	parts := make([]string, 0, len(r.FileChanges)+1)
	parts = append(parts, r.Message)
	for _, fc := range r.FileChanges {
		parts = append(parts, fc.Path)
	}
	return strings.Join(parts, " ")
}

// Malformed reports whether the record is missing fields every search
// depends on. Malformed records are skipped and counted, never fatal.
func (r *CommitRecord) Malformed() bool {
	return r.ID == "" || r.Timestamp == ""
}

// CommitStore is the immutable, ordered result of one analysis run.
// Record order is mining order, not chronological order.
type CommitStore struct {
	RepoID      string         `json:"repo_id"`
	Source      string         `json:"source"`
	BuiltAt     string         `json:"build_timestamp"`
	RecordCount int            `json:"record_count"`
	Records     []CommitRecord `json:"commits"`
}

// EmbeddedCount returns how many records carry an embedding.
func (s *CommitStore) EmbeddedCount() int {
	n := 0
	for i := range s.Records {
		if s.Records[i].Embedding != nil {
			n++
		}
	}
	return n
}
