package insights

import (
	"testing"

	"ctm/internal/models"
)

func TestSummarize(t *testing.T) {
	store := &models.CommitStore{
		RepoID:  "abc123def456",
		Source:  "https://example.com/repo.git",
		BuiltAt: "2025-08-01T12:00:00",
		Records: []models.CommitRecord{
			{
				ID: "c1", AuthorName: "Alice", Timestamp: "2024-01-10T10:00:00",
				Message: "implement parser module",
				FileChanges: []models.FileChange{
					{Path: "parser.go"}, {Path: "lexer.go"},
				},
			},
			{
				ID: "c2", AuthorName: "Alice", Timestamp: "2024-01-20T10:00:00",
				Message: "refactor parser internals",
				FileChanges: []models.FileChange{
					{Path: "parser.go"},
				},
			},
			{
				ID: "c3", AuthorName: "Bob", Timestamp: "2024-02-05T10:00:00",
				Message: "docs pass",
				FileChanges: []models.FileChange{
					{Path: "README.md"},
				},
			},
		},
	}

	s := Summarize(store, 2)

	if s.TotalCommits != 3 {
		t.Errorf("TotalCommits = %d, want 3", s.TotalCommits)
	}
	if s.UniqueAuthors != 2 {
		t.Errorf("UniqueAuthors = %d, want 2", s.UniqueAuthors)
	}
	if s.ActiveMonths != 2 {
		t.Errorf("ActiveMonths = %d, want 2", s.ActiveMonths)
	}
	if !s.SemanticAvailable || s.IndexedCommits != 2 {
		t.Errorf("semantic availability wrong: %v / %d", s.SemanticAvailable, s.IndexedCommits)
	}

	if len(s.TopContributors) != 2 || s.TopContributors[0].Author != "Alice" || s.TopContributors[0].Commits != 2 {
		t.Errorf("unexpected top contributors: %+v", s.TopContributors)
	}

	if len(s.MostModifiedFiles) == 0 || s.MostModifiedFiles[0].File != "parser.go" || s.MostModifiedFiles[0].Modifications != 2 {
		t.Errorf("unexpected hotlist: %+v", s.MostModifiedFiles)
	}

	if len(s.ActivityTimeline) != 2 || s.ActivityTimeline[0].Month != "2024-01" || s.ActivityTimeline[0].Commits != 2 {
		t.Errorf("unexpected timeline: %+v", s.ActivityTimeline)
	}

	// "parser" appears in two messages; short words like "docs" survive
	// only when longer than the cutoff.
	foundParser := false
	for _, kw := range s.CommonKeywords {
		if kw.Keyword == "parser" && kw.Frequency == 2 {
			foundParser = true
		}
		if len(kw.Keyword) <= 3 {
			t.Errorf("short keyword %q should have been dropped", kw.Keyword)
		}
	}
	if !foundParser {
		t.Errorf("expected parser keyword in %+v", s.CommonKeywords)
	}

	if s.RecentActiveAuthors != 2 {
		t.Errorf("RecentActiveAuthors = %d, want 2", s.RecentActiveAuthors)
	}
}

func TestSummarizeEmptyStore(t *testing.T) {
	s := Summarize(&models.CommitStore{RepoID: "empty"}, 0)

	if s.TotalCommits != 0 || s.UniqueAuthors != 0 {
		t.Errorf("unexpected counts for empty store: %+v", s)
	}
	if s.SemanticAvailable {
		t.Error("semantic search should be unavailable with nothing indexed")
	}
}
