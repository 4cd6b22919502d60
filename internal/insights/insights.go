// Package insights derives store-level aggregates for summary reporting:
// contributor rankings, file hotlists, activity timelines and message
// keyword frequencies.
package insights

import (
	"sort"
	"strings"

	"ctm/internal/models"
)

const (
	topContributors = 10
	topFiles        = 10
	topKeywords     = 20
	recentWindow    = 30
	minKeywordLen   = 3
)

// Summarize computes the aggregates for one commit store. indexed is the
// number of commits in the vector index (0 when semantic search is
// unavailable).
func Summarize(store *models.CommitStore, indexed int) *models.Summary {
	s := &models.Summary{
		RepoID:            store.RepoID,
		Source:            store.Source,
		AnalyzedAt:        store.BuiltAt,
		TotalCommits:      len(store.Records),
		SemanticAvailable: indexed > 0,
		IndexedCommits:    indexed,
		SearchModes:       []string{"semantic", "keyword", "author", "file", "time_range"},
	}

	authorCounts := make(map[string]int)
	monthCounts := make(map[string]int)
	fileCounts := make(map[string]int)
	wordCounts := make(map[string]int)

	for i := range store.Records {
		r := &store.Records[i]
		authorCounts[r.AuthorName]++
		if len(r.Timestamp) >= 7 {
			monthCounts[r.Timestamp[:7]]++
		}
		for _, fc := range r.FileChanges {
			fileCounts[fc.Path]++
		}
		for _, word := range strings.Fields(strings.ToLower(r.Message)) {
			if len(word) > minKeywordLen {
				wordCounts[word]++
			}
		}
	}

	s.UniqueAuthors = len(authorCounts)
	s.ActiveMonths = len(monthCounts)
	s.TopContributors = topAuthors(authorCounts)
	s.MostModifiedFiles = topModified(fileCounts)
	s.ActivityTimeline = timeline(monthCounts)
	s.CommonKeywords = topWords(wordCounts)
	s.RecentActiveAuthors = recentAuthors(store.Records)
	return s
}

func topAuthors(counts map[string]int) []models.ContributorStat {
	stats := make([]models.ContributorStat, 0, len(counts))
	for author, n := range counts {
		stats = append(stats, models.ContributorStat{Author: author, Commits: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Commits != stats[j].Commits {
			return stats[i].Commits > stats[j].Commits
		}
		return stats[i].Author < stats[j].Author
	})
	if len(stats) > topContributors {
		stats = stats[:topContributors]
	}
	return stats
}

func topModified(counts map[string]int) []models.FileStat {
	stats := make([]models.FileStat, 0, len(counts))
	for file, n := range counts {
		stats = append(stats, models.FileStat{File: file, Modifications: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Modifications != stats[j].Modifications {
			return stats[i].Modifications > stats[j].Modifications
		}
		return stats[i].File < stats[j].File
	})
	if len(stats) > topFiles {
		stats = stats[:topFiles]
	}
	return stats
}

func timeline(counts map[string]int) []models.MonthStat {
	stats := make([]models.MonthStat, 0, len(counts))
	for month, n := range counts {
		stats = append(stats, models.MonthStat{Month: month, Commits: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Month < stats[j].Month
	})
	return stats
}

func topWords(counts map[string]int) []models.KeywordStat {
	stats := make([]models.KeywordStat, 0, len(counts))
	for word, n := range counts {
		stats = append(stats, models.KeywordStat{Keyword: word, Frequency: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Frequency != stats[j].Frequency {
			return stats[i].Frequency > stats[j].Frequency
		}
		return stats[i].Keyword < stats[j].Keyword
	})
	if len(stats) > topKeywords {
		stats = stats[:topKeywords]
	}
	return stats
}

// recentAuthors counts distinct authors among the newest commits by
// timestamp, regardless of mining order.
func recentAuthors(records []models.CommitRecord) int {
	byDate := make([]*models.CommitRecord, len(records))
	for i := range records {
		byDate[i] = &records[i]
	}
	sort.SliceStable(byDate, func(i, j int) bool {
		return byDate[i].Timestamp > byDate[j].Timestamp
	})
	if len(byDate) > recentWindow {
		byDate = byDate[:recentWindow]
	}

	seen := make(map[string]struct{})
	for _, r := range byDate {
		seen[r.AuthorName] = struct{}{}
	}
	return len(seen)
}
