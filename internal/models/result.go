package models

// Mode selects a search strategy for the query router.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeSemantic  Mode = "semantic"
	ModeKeyword   Mode = "keyword"
	ModeAuthor    Mode = "author"
	ModeFile      Mode = "file"
	ModeTimeRange Mode = "time_range"
	ModeCombined  Mode = "combined"
	ModeSummary   Mode = "summary"
)

// QueryResult is one ranked hit. SourceMode tags which search produced it;
// the score fields are mode-specific and not comparable across modes.
type QueryResult struct {
	CommitID   string `json:"commit_id"`
	Rank       int    `json:"rank"`
	SourceMode Mode   `json:"source_mode"`

	// Display fields, shared by every mode.
	Author        string `json:"author"`
	AuthorEmail   string `json:"author_email,omitempty"`
	Date          string `json:"date"`
	Message       string `json:"message"`
	FilesModified int    `json:"files_modified"`

	// Mode-specific payload.
	Similarity    float64      `json:"similarity_score,omitempty"` // semantic
	KeywordScore  int          `json:"keyword_score,omitempty"`    // keyword
	Insertions    int          `json:"insertions,omitempty"`       // author, time_range
	Deletions     int          `json:"deletions,omitempty"`        // author, time_range
	FileChanges   []FileChange `json:"file_changes,omitempty"`     // keyword (first 3)
	MatchingFiles []FileChange `json:"matching_files,omitempty"`   // file
}

// ContributorStat is one author's commit count.
type ContributorStat struct {
	Author  string `json:"author"`
	Commits int    `json:"commits"`
}

// FileStat is one file's modification count.
type FileStat struct {
	File          string `json:"file"`
	Modifications int    `json:"modifications"`
}

// MonthStat is commit activity for one YYYY-MM month.
type MonthStat struct {
	Month   string `json:"month"`
	Commits int    `json:"commits"`
}

// KeywordStat is one commit-message keyword's frequency.
type KeywordStat struct {
	Keyword   string `json:"keyword"`
	Frequency int    `json:"frequency"`
}

// Summary holds the store-level aggregates returned by summary mode.
type Summary struct {
	RepoID              string            `json:"repo_id"`
	Source              string            `json:"source"`
	AnalyzedAt          string            `json:"analyzed_at"`
	TotalCommits        int               `json:"total_commits"`
	UniqueAuthors       int               `json:"unique_authors"`
	ActiveMonths        int               `json:"active_months"`
	RecentActiveAuthors int               `json:"recent_active_authors"`
	TopContributors     []ContributorStat `json:"top_contributors"`
	MostModifiedFiles   []FileStat        `json:"most_modified_files"`
	ActivityTimeline    []MonthStat       `json:"activity_timeline"`
	CommonKeywords      []KeywordStat     `json:"common_commit_keywords"`
	SemanticAvailable   bool              `json:"semantic_search_available"`
	IndexedCommits      int               `json:"total_commits_indexed"`
	SearchModes         []string          `json:"search_types"`
}

// RepositoryInfo is the store-level context attached to every response.
type RepositoryInfo struct {
	TotalCommits int    `json:"total_commits_available"`
	AnalyzedAt   string `json:"analysis_date"`
	Source       string `json:"source"`
}

// Response is the envelope the query router returns for every call.
// Errors are carried as a field, never as a panic through the router.
type Response struct {
	ID             string          `json:"id"`
	Query          string          `json:"query"`
	RepoID         string          `json:"repo_id"`
	Mode           Mode            `json:"search_type"`
	Timestamp      string          `json:"timestamp"`
	Results        []QueryResult   `json:"results"`
	TotalResults   int             `json:"total_results"`
	SkippedRecords int             `json:"skipped_records,omitempty"`
	Summary        *Summary        `json:"summary,omitempty"`
	Suggestions    []string        `json:"suggestions,omitempty"`
	Error          string          `json:"error,omitempty"`
	RepositoryInfo *RepositoryInfo `json:"repository_info,omitempty"`
}
