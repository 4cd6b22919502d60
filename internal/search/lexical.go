// Package search implements the lexical and attribute scans over a commit
// store: keyword, author, file-path and time-range predicates. None of them
// need embeddings; they always read the loaded store directly.
//
// Every search skips malformed records instead of failing, and returns how
// many it skipped so callers can surface the count.
package search

import (
	"sort"
	"strings"

	"ctm/internal/models"
)

// minTokenLen is the cutoff below which keyword tokens are discarded.
const minTokenLen = 3

// keywordFileLimit caps how many file changes a keyword hit carries.
const keywordFileLimit = 3

// Keyword scores every commit by substring occurrences of the query tokens
// in its message and changed file names. Tokens of length <= 3 are dropped.
// Commits scoring 0 are excluded; ties keep store insertion order.
//
// Scoring counts substrings, not tokens, so "bug" also matches "debug".
// That is the long-standing behavior and callers rely on its recall.
func Keyword(store *models.CommitStore, query string, topK int) ([]models.QueryResult, int) {
	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if len(tok) > minTokenLen {
			tokens = append(tokens, tok)
		}
	}

	var results []models.QueryResult
	skipped := 0
	for i := range store.Records {
		r := &store.Records[i]
		if r.Malformed() {
			skipped++
			continue
		}

		text := strings.ToLower(r.EmbeddingText())
		score := 0
		for _, tok := range tokens {
			score += strings.Count(text, tok)
		}
		if score == 0 {
			continue
		}

		changes := r.FileChanges
		if len(changes) > keywordFileLimit {
			changes = changes[:keywordFileLimit]
		}
		results = append(results, models.QueryResult{
			CommitID:      r.ID,
			SourceMode:    models.ModeKeyword,
			Author:        r.AuthorName,
			Date:          r.Timestamp,
			Message:       r.Message,
			FilesModified: r.FilesModified,
			KeywordScore:  score,
			FileChanges:   changes,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].KeywordScore > results[j].KeywordScore
	})
	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}
	rank(results)
	return results, skipped
}

// Author returns commits whose author name or email contains the fragment,
// case-insensitively, newest first. No cap; callers trim for presentation.
func Author(store *models.CommitStore, fragment string) ([]models.QueryResult, int) {
	fragment = strings.ToLower(fragment)

	var results []models.QueryResult
	skipped := 0
	for i := range store.Records {
		r := &store.Records[i]
		if r.Malformed() {
			skipped++
			continue
		}
		if !strings.Contains(strings.ToLower(r.AuthorName), fragment) &&
			!strings.Contains(strings.ToLower(r.AuthorEmail), fragment) {
			continue
		}
		results = append(results, models.QueryResult{
			CommitID:      r.ID,
			SourceMode:    models.ModeAuthor,
			Author:        r.AuthorName,
			AuthorEmail:   r.AuthorEmail,
			Date:          r.Timestamp,
			Message:       r.Message,
			FilesModified: r.FilesModified,
			Insertions:    r.Insertions,
			Deletions:     r.Deletions,
		})
	}

	sortNewestFirst(results)
	rank(results)
	return results, skipped
}

// File returns commits that touched any path containing the fragment,
// case-insensitively, newest first. Each hit carries only the matching
// file changes, not the commit's full list.
func File(store *models.CommitStore, fragment string) ([]models.QueryResult, int) {
	fragment = strings.ToLower(fragment)

	var results []models.QueryResult
	skipped := 0
	for i := range store.Records {
		r := &store.Records[i]
		if r.Malformed() {
			skipped++
			continue
		}

		var matching []models.FileChange
		for _, fc := range r.FileChanges {
			if strings.Contains(strings.ToLower(fc.Path), fragment) {
				matching = append(matching, fc)
			}
		}
		if len(matching) == 0 {
			continue
		}
		results = append(results, models.QueryResult{
			CommitID:      r.ID,
			SourceMode:    models.ModeFile,
			Author:        r.AuthorName,
			Date:          r.Timestamp,
			Message:       r.Message,
			FilesModified: r.FilesModified,
			MatchingFiles: matching,
		})
	}

	sortNewestFirst(results)
	rank(results)
	return results, skipped
}

// TimeRange returns commits with start <= timestamp <= end, newest first.
// Bounds compare lexicographically, which is what ISO-8601 guarantees;
// no further date parsing happens here.
func TimeRange(store *models.CommitStore, start, end string) ([]models.QueryResult, int) {
	var results []models.QueryResult
	skipped := 0
	for i := range store.Records {
		r := &store.Records[i]
		if r.Malformed() {
			skipped++
			continue
		}
		if r.Timestamp < start || r.Timestamp > end {
			continue
		}
		results = append(results, models.QueryResult{
			CommitID:      r.ID,
			SourceMode:    models.ModeTimeRange,
			Author:        r.AuthorName,
			Date:          r.Timestamp,
			Message:       r.Message,
			FilesModified: r.FilesModified,
			Insertions:    r.Insertions,
			Deletions:     r.Deletions,
		})
	}

	sortNewestFirst(results)
	rank(results)
	return results, skipped
}

func sortNewestFirst(results []models.QueryResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Date > results[j].Date
	})
}

func rank(results []models.QueryResult) {
	for i := range results {
		results[i].Rank = i + 1
	}
}
