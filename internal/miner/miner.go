// Package miner extracts commit history from a git repository by shelling
// out to git, the way the rest of the tool talks to git. It produces the
// raw records the analysis pipeline normalizes into a commit store.
package miner

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"ctm/internal/models"
)

// Field and record separators for the git log pretty format. Unit/record
// separator bytes cannot appear in commit metadata, unlike newlines.
const (
	recordSep = "\x1e"
	fieldSep  = "\x1f"
)

// IsGitRepo checks whether path is inside a git repository.
func IsGitRepo(path string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = path
	return cmd.Run() == nil
}

// IsRemote reports whether a source string names a remote repository
// rather than a local path.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, "git@") ||
		strings.HasPrefix(source, "ssh://")
}

// Clone clones a remote repository into a temporary directory and returns
// the path plus a cleanup function.
func Clone(url string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "ctm-repo-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	cmd := exec.Command("git", "clone", url, dir)
	if output, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to clone %s: %s: %w", url, strings.TrimSpace(string(output)), err)
	}
	return dir, cleanup, nil
}

// Mine extracts up to maxCommits commits from the repository at path, in
// git log order (newest first). Commits that fail to parse are skipped and
// counted; one bad commit never aborts the run.
func Mine(path string, maxCommits int) ([]models.CommitRecord, int, error) {
	if !IsGitRepo(path) {
		return nil, 0, fmt.Errorf("not a git repository: %s", path)
	}

	args := []string{
		"log",
		"--numstat",
		"--pretty=format:" + recordSep + "%H" + fieldSep + "%an" + fieldSep + "%ae" + fieldSep + "%aI" + fieldSep + "%B" + fieldSep,
	}
	if maxCommits > 0 {
		args = append(args, fmt.Sprintf("-n%d", maxCommits))
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = path
	output, err := cmd.Output()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read git log: %w", err)
	}

	kinds, err := changeKinds(path, maxCommits)
	if err != nil {
		return nil, 0, err
	}

	var records []models.CommitRecord
	skipped := 0
	for _, chunk := range strings.Split(string(output), recordSep) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		rec, ok := parseCommit(chunk, kinds)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// parseCommit parses one record chunk: five separated header fields
// followed by the numstat block.
func parseCommit(chunk string, kinds map[string]models.ChangeKind) (models.CommitRecord, bool) {
	parts := strings.Split(chunk, fieldSep)
	if len(parts) != 6 {
		return models.CommitRecord{}, false
	}

	rec := models.CommitRecord{
		ID:          parts[0],
		AuthorName:  parts[1],
		AuthorEmail: parts[2],
		Timestamp:   parts[3],
		Message:     strings.TrimSpace(parts[4]),
	}
	if rec.Malformed() {
		return models.CommitRecord{}, false
	}

	for _, line := range strings.Split(parts[5], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			continue
		}

		oldPath, newPath := splitRename(fields[2])
		fc := models.FileChange{
			Path:    newPath,
			OldPath: oldPath,
			Kind:    kindFor(kinds, rec.ID, newPath),
		}
		// Binary files show "-" instead of line counts.
		if n, err := strconv.Atoi(fields[0]); err == nil {
			fc.AddedLines = n
		}
		if n, err := strconv.Atoi(fields[1]); err == nil {
			fc.DeletedLines = n
		}
		rec.Insertions += fc.AddedLines
		rec.Deletions += fc.DeletedLines
		rec.FileChanges = append(rec.FileChanges, fc)
	}
	rec.FilesModified = len(rec.FileChanges)
	return rec, true
}

// changeKinds runs a name-status pass and maps commit/path pairs to their
// change kind. Numstat alone cannot distinguish an add from a rewrite.
func changeKinds(path string, maxCommits int) (map[string]models.ChangeKind, error) {
	args := []string{
		"log",
		"--name-status",
		"--pretty=format:" + recordSep + "%H",
	}
	if maxCommits > 0 {
		args = append(args, fmt.Sprintf("-n%d", maxCommits))
	}

	cmd := exec.Command("git", args...)
	cmd.Dir = path
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to read git name-status: %w", err)
	}

	kinds := make(map[string]models.ChangeKind)
	for _, chunk := range strings.Split(string(output), recordSep) {
		lines := strings.Split(strings.TrimSpace(chunk), "\n")
		if len(lines) == 0 || lines[0] == "" {
			continue
		}
		hash := strings.TrimSpace(lines[0])
		for _, line := range lines[1:] {
			fields := strings.Split(strings.TrimSpace(line), "\t")
			if len(fields) < 2 {
				continue
			}
			kind, target := statusKind(fields)
			kinds[hash+"\x00"+target] = kind
		}
	}
	return kinds, nil
}

func statusKind(fields []string) (models.ChangeKind, string) {
	status := fields[0]
	target := fields[len(fields)-1]
	switch {
	case strings.HasPrefix(status, "A"):
		return models.ChangeAdded, target
	case strings.HasPrefix(status, "M"):
		return models.ChangeModified, target
	case strings.HasPrefix(status, "D"):
		return models.ChangeDeleted, target
	case strings.HasPrefix(status, "R"):
		return models.ChangeRenamed, target
	default:
		return models.ChangeUnknown, target
	}
}

func kindFor(kinds map[string]models.ChangeKind, hash, path string) models.ChangeKind {
	if k, ok := kinds[hash+"\x00"+path]; ok {
		return k
	}
	return models.ChangeUnknown
}

// splitRename normalizes numstat rename notation. Both the inline form
// "dir/{old.go => new.go}" and the plain "old => new" occur.
func splitRename(path string) (oldPath, newPath string) {
	if open := strings.Index(path, "{"); open >= 0 {
		if end := strings.Index(path[open:], "}"); end >= 0 {
			inner := path[open+1 : open+end]
			if o, n, found := strings.Cut(inner, " => "); found {
				prefix, suffix := path[:open], path[open+end+1:]
				return cleanPath(prefix + o + suffix), cleanPath(prefix + n + suffix)
			}
		}
	}
	if o, n, found := strings.Cut(path, " => "); found {
		return cleanPath(o), cleanPath(n)
	}
	return "", path
}

func cleanPath(p string) string {
	return strings.ReplaceAll(p, "//", "/")
}
