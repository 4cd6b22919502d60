// Package query routes free-text and structured queries to the right search
// strategy, merges the hits and wraps them in a response envelope.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ctm/internal/embedder"
	"ctm/internal/insights"
	"ctm/internal/models"
	"ctm/internal/search"
	"ctm/internal/store"
)

// SearchExecutionError wraps an internal failure of a single search call.
type SearchExecutionError struct {
	Mode models.Mode
	Err  error
}

func (e *SearchExecutionError) Error() string {
	return fmt.Sprintf("%s search failed: %v", e.Mode, e.Err)
}

func (e *SearchExecutionError) Unwrap() error { return e.Err }

const (
	defaultTopK     = 10
	combinedPerMode = 5
	combinedLimit   = 10
)

// noResultSuggestions is attached to any non-summary response with zero
// hits, instead of an error.
var noResultSuggestions = []string{
	"Try a broader search term",
	"Use specific keywords from commit messages",
	"Search by author name or file extension",
	"Use summary mode to get a repository overview",
}

var loadFailureSuggestions = []string{
	"Run analyze on the repository first",
	"Check that the repository ID is correct",
}

// Router answers queries against persisted analyses. It holds one session
// per repository; sessions load lazily and stay read-only afterwards.
// The embedder may be nil, in which case semantic search degrades to empty
// results rather than failing.
type Router struct {
	dir   string
	embed embedder.Embedder

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRouter creates a router over the given storage directory.
func NewRouter(dir string, e embedder.Embedder) *Router {
	return &Router{
		dir:      dir,
		embed:    e,
		sessions: make(map[string]*Session),
	}
}

// Session returns the (possibly unloaded) session for a repo ID, creating
// it on first use.
func (rt *Router) Session(repoID string) *Session {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	s, ok := rt.sessions[repoID]
	if !ok {
		s = NewSession(rt.dir, repoID)
		rt.sessions[repoID] = s
	}
	return s
}

// Answer is the single entry point for every query. It always returns a
// response envelope; the error return carries the typed failure (store not
// found, corrupt unit, search execution) for callers that dispatch on it.
func (rt *Router) Answer(ctx context.Context, repoID, query string, mode models.Mode, topK int) (*models.Response, error) {
	resp := &models.Response{
		ID:        uuid.NewString(),
		Query:     query,
		RepoID:    repoID,
		Mode:      mode,
		Timestamp: time.Now().Format(time.RFC3339),
		Results:   []models.QueryResult{},
	}

	unit, err := rt.Session(repoID).ensureLoaded()
	if err != nil {
		resp.Error = fmt.Sprintf("repository analysis not available for %s: %v", repoID, err)
		resp.Suggestions = loadFailureSuggestions
		return resp, err
	}

	if topK <= 0 {
		topK = defaultTopK
	}
	if mode == models.ModeAuto || mode == "" {
		mode = Classify(query)
	}
	resp.Mode = mode

	sess := rt.Session(repoID)
	var execErr error

	switch mode {
	case models.ModeSemantic:
		resp.Results, execErr = rt.semantic(ctx, sess, unit, query, topK)

	case models.ModeKeyword:
		resp.Results, resp.SkippedRecords = search.Keyword(unit.Store, query, topK)

	case models.ModeAuthor:
		resp.Results, resp.SkippedRecords = search.Author(unit.Store, extractFragment(query))

	case models.ModeFile:
		resp.Results, resp.SkippedRecords = search.File(unit.Store, extractFragment(query))

	case models.ModeTimeRange:
		if start, end, ok := timeBounds(query); ok {
			resp.Results, resp.SkippedRecords = search.TimeRange(unit.Store, start, end)
		}

	case models.ModeSummary:
		resp.Summary = insights.Summarize(unit.Store, unit.Meta.IndexedCount)

	default:
		// Combined, and the fallback for any unrecognized mode.
		resp.Mode = models.ModeCombined
		resp.Results, resp.SkippedRecords, execErr = rt.combined(ctx, sess, unit, query)
	}

	if execErr != nil {
		execErr = &SearchExecutionError{Mode: resp.Mode, Err: execErr}
		resp.Error = execErr.Error()
		return resp, execErr
	}

	if resp.Results == nil {
		resp.Results = []models.QueryResult{}
	}
	resp.TotalResults = len(resp.Results)
	if resp.TotalResults == 0 && resp.Mode != models.ModeSummary {
		resp.Suggestions = noResultSuggestions
	}
	resp.RepositoryInfo = &models.RepositoryInfo{
		TotalCommits: len(unit.Store.Records),
		AnalyzedAt:   unit.Store.BuiltAt,
		Source:       unit.Store.Source,
	}
	return resp, nil
}

// semantic embeds the query and searches the vector index. A missing index
// or unreachable embedding model yields empty results, an expected state
// rather than a failure; a dimension disagreement is a real error.
func (rt *Router) semantic(ctx context.Context, sess *Session, unit *store.Unit, query string, topK int) ([]models.QueryResult, error) {
	if rt.embed == nil || unit.Index == nil {
		return nil, nil
	}

	vec, err := rt.embed.Embed(ctx, query)
	if err != nil {
		return nil, nil
	}

	hits, err := unit.Index.Search(vec, topK)
	if err != nil {
		return nil, err
	}

	results := make([]models.QueryResult, 0, len(hits))
	for _, h := range hits {
		r := sess.record(h.ID)
		if r == nil {
			continue
		}
		results = append(results, models.QueryResult{
			CommitID:      r.ID,
			Rank:          len(results) + 1,
			SourceMode:    models.ModeSemantic,
			Author:        r.AuthorName,
			Date:          r.Timestamp,
			Message:       r.Message,
			FilesModified: r.FilesModified,
			Similarity:    h.Score,
		})
	}
	return results, nil
}

// combined runs semantic and keyword search and merges them: semantic hits
// first, duplicates dropped by commit ID, capped at combinedLimit.
func (rt *Router) combined(ctx context.Context, sess *Session, unit *store.Unit, query string) ([]models.QueryResult, int, error) {
	semantic, err := rt.semantic(ctx, sess, unit, query, combinedPerMode)
	if err != nil {
		return nil, 0, err
	}
	keyword, skipped := search.Keyword(unit.Store, query, combinedPerMode)

	seen := make(map[string]struct{}, len(semantic)+len(keyword))
	merged := make([]models.QueryResult, 0, combinedLimit)
	for _, r := range append(semantic, keyword...) {
		if _, dup := seen[r.CommitID]; dup {
			continue
		}
		seen[r.CommitID] = struct{}{}
		r.Rank = len(merged) + 1
		merged = append(merged, r)
		if len(merged) == combinedLimit {
			break
		}
	}
	return merged, skipped, nil
}
