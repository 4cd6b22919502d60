package search

import (
	"testing"

	"ctm/internal/models"
)

func testStore() *models.CommitStore {
	return &models.CommitStore{
		RepoID:      "test12345678",
		RecordCount: 4,
		Records: []models.CommitRecord{
			{
				ID:          "c1",
				AuthorName:  "Alice Smith",
				AuthorEmail: "alice@example.com",
				Timestamp:   "2024-03-15T10:00:00",
				Message:     "fix bug in parser",
				Insertions:  10,
				Deletions:   2,
				FileChanges: []models.FileChange{
					{Path: "parser/parser.go", Kind: models.ChangeModified, AddedLines: 10, DeletedLines: 2},
				},
				FilesModified: 1,
			},
			{
				ID:          "c2",
				AuthorName:  "Bob Jones",
				AuthorEmail: "bob@example.com",
				Timestamp:   "2024-05-01T09:30:00",
				Message:     "update readme",
				FileChanges: []models.FileChange{
					{Path: "README.md", Kind: models.ChangeModified},
				},
				FilesModified: 1,
			},
			{
				ID:          "c3",
				AuthorName:  "Alice Smith",
				AuthorEmail: "alice@example.com",
				Timestamp:   "2023-11-20T14:45:00",
				Message:     "debug logging for config loader",
				FileChanges: []models.FileChange{
					{Path: "config/config.py", Kind: models.ChangeAdded, AddedLines: 40},
					{Path: "main.py", Kind: models.ChangeModified, AddedLines: 3},
				},
				FilesModified: 2,
			},
			// Malformed: no timestamp. Every search must skip and count it.
			{ID: "c4", AuthorName: "Mallory", Message: "broken record"},
		},
	}
}

func TestKeywordScoring(t *testing.T) {
	store := testStore()

	results, skipped := Keyword(store, "parser", 10)
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 result, got %d", len(results))
	}
	if results[0].CommitID != "c1" {
		t.Errorf("commit = %s, want c1", results[0].CommitID)
	}
	// "parser" appears in the message and in parser/parser.go.
	if results[0].KeywordScore < 1 {
		t.Errorf("score = %d, want >= 1", results[0].KeywordScore)
	}
}

func TestKeywordSubstringMatch(t *testing.T) {
	// Substring scoring: "debug" contains no standalone token boundary
	// logic, so searching "logging" hits c3 but "bugs" hits nothing.
	store := testStore()

	results, _ := Keyword(store, "logging", 10)
	if len(results) != 1 || results[0].CommitID != "c3" {
		t.Fatalf("expected c3, got %+v", results)
	}
}

func TestKeywordDropsShortTokens(t *testing.T) {
	store := testStore()

	// Every token has length <= 3, so nothing can match.
	results, _ := Keyword(store, "fix in a bug", 10)
	if len(results) != 0 {
		t.Errorf("expected no results for short tokens, got %d", len(results))
	}
}

func TestKeywordTopK(t *testing.T) {
	store := testStore()

	results, _ := Keyword(store, "config parser readme", 1)
	if len(results) != 1 {
		t.Errorf("expected 1 result with topK=1, got %d", len(results))
	}
}

func TestKeywordTiesKeepInsertionOrder(t *testing.T) {
	store := &models.CommitStore{
		Records: []models.CommitRecord{
			{ID: "first", Timestamp: "2020-01-01T00:00:00", Message: "refactor widgets"},
			{ID: "second", Timestamp: "2024-01-01T00:00:00", Message: "refactor gadgets"},
		},
	}

	results, _ := Keyword(store, "refactor", 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].CommitID != "first" {
		t.Errorf("tie broken against insertion order: got %s first", results[0].CommitID)
	}
}

func TestAuthorByNameAndEmail(t *testing.T) {
	store := testStore()

	byName, skipped := Author(store, "alice")
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(byName) != 2 {
		t.Fatalf("expected 2 results for alice, got %d", len(byName))
	}
	// Newest first.
	if byName[0].CommitID != "c1" || byName[1].CommitID != "c3" {
		t.Errorf("results not newest-first: %s, %s", byName[0].CommitID, byName[1].CommitID)
	}

	byEmail, _ := Author(store, "bob@example")
	if len(byEmail) != 1 || byEmail[0].CommitID != "c2" {
		t.Errorf("expected c2 for email fragment, got %+v", byEmail)
	}
}

func TestFileCarriesOnlyMatches(t *testing.T) {
	store := testStore()

	results, _ := File(store, ".py")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.CommitID != "c3" {
		t.Errorf("commit = %s, want c3", r.CommitID)
	}
	if len(r.MatchingFiles) != 2 {
		t.Errorf("matching files = %d, want 2", len(r.MatchingFiles))
	}

	results, _ = File(store, "config")
	if len(results) != 1 || len(results[0].MatchingFiles) != 1 {
		t.Fatalf("expected single matching file for config, got %+v", results)
	}
	if results[0].MatchingFiles[0].Path != "config/config.py" {
		t.Errorf("matching file = %s", results[0].MatchingFiles[0].Path)
	}
}

func TestTimeRangeBoundaries(t *testing.T) {
	store := testStore()

	// Inclusive on both ends: a commit at 10:00 on the 15th is inside
	// [2024-03-15, 2024-03-15T23:59:59].
	results, _ := TimeRange(store, "2024-03-15", "2024-03-15T23:59:59")
	if len(results) != 1 || results[0].CommitID != "c1" {
		t.Fatalf("expected c1 inside range, got %+v", results)
	}

	results, _ = TimeRange(store, "2024-03-16", "2024-03-20")
	if len(results) != 0 {
		t.Errorf("expected no commits in 03-16..03-20, got %d", len(results))
	}
}

func TestTimeRangeNewestFirst(t *testing.T) {
	store := testStore()

	results, _ := TimeRange(store, "2023-01-01", "2024-12-31")
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Date > results[i-1].Date {
			t.Errorf("results not newest-first at %d", i)
		}
	}
	if results[0].Rank != 1 || results[2].Rank != 3 {
		t.Errorf("ranks not assigned in order: %d, %d", results[0].Rank, results[2].Rank)
	}
}
