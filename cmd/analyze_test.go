package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ctm/internal/store"
	"ctm/internal/testutil"
)

func TestAnalyzeThenQuery(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	repo.CreateFile("parser.go", "package parser\n")
	repo.Commit("add parser skeleton")

	dir := t.TempDir()
	viper.Set("storage.dir", dir)
	defer viper.Set("storage.dir", "")

	// Reset flags
	analyzeNoEmbed = true
	analyzeMaxCommits = 0
	defer func() { analyzeNoEmbed = false }()

	if err := runAnalyze(nil, []string{repo.Path}); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	sidecars, err := store.List(dir)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sidecars) != 1 {
		t.Fatalf("expected 1 analysis, got %d", len(sidecars))
	}
	if sidecars[0].RepoID != store.RepoID(repo.Path) {
		t.Errorf("repo id = %q, want %q", sidecars[0].RepoID, store.RepoID(repo.Path))
	}

	queryMode = "keyword"
	queryTopK = 5
	queryJSON = false
	queryToon = false
	if err := runQuery(&cobra.Command{}, []string{sidecars[0].RepoID, "parser skeleton"}); err != nil {
		t.Fatalf("query failed: %v", err)
	}
}

func TestReposEmpty(t *testing.T) {
	viper.Set("storage.dir", t.TempDir())
	defer viper.Set("storage.dir", "")

	reposJSON = false
	reposToon = false
	if err := runRepos(nil, nil); err != nil {
		t.Fatalf("repos failed: %v", err)
	}
}
