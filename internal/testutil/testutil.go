// Package testutil provides git repository scaffolding for tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// TempGitRepo is a throwaway git repository with helpers for shaping a
// commit history.
type TempGitRepo struct {
	Path string
	T    *testing.T
}

// NewTempGitRepo creates a git repository in a temp directory with one
// initial commit.
func NewTempGitRepo(t *testing.T) *TempGitRepo {
	t.Helper()

	repo := &TempGitRepo{Path: t.TempDir(), T: t}
	repo.git("init")
	repo.git("config", "user.name", "Test User")
	repo.git("config", "user.email", "test@example.com")

	repo.CreateFile("README.md", "# Test Repository\n")
	repo.Commit("Initial commit")
	return repo
}

// CreateFile writes a file inside the repository.
func (r *TempGitRepo) CreateFile(name, content string) {
	r.T.Helper()
	path := filepath.Join(r.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		r.T.Fatalf("failed to create file: %v", err)
	}
}

// RemoveFile deletes a file from the repository.
func (r *TempGitRepo) RemoveFile(name string) {
	r.T.Helper()
	if err := os.Remove(filepath.Join(r.Path, name)); err != nil {
		r.T.Fatalf("failed to remove file: %v", err)
	}
}

// Commit stages everything and commits as the default test user.
func (r *TempGitRepo) Commit(message string) {
	r.T.Helper()
	r.git("add", "-A")
	r.git("commit", "-m", message)
}

// CommitAs stages everything and commits under a specific author.
func (r *TempGitRepo) CommitAs(name, email, message string) {
	r.T.Helper()
	r.git("add", "-A")
	r.gitEnv(
		[]string{"GIT_AUTHOR_NAME=" + name, "GIT_AUTHOR_EMAIL=" + email},
		"commit", "-m", message,
	)
}

// Rename moves a file with git mv so the change shows up as a rename.
func (r *TempGitRepo) Rename(from, to string) {
	r.T.Helper()
	r.git("mv", from, to)
}

func (r *TempGitRepo) git(args ...string) {
	r.T.Helper()
	r.gitEnv(nil, args...)
}

func (r *TempGitRepo) gitEnv(env []string, args ...string) {
	r.T.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	cmd.Env = append(os.Environ(), env...)
	if output, err := cmd.CombinedOutput(); err != nil {
		r.T.Fatalf("git %v failed: %v\n%s", args, err, output)
	}
}
