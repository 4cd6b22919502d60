package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ctm/internal/config"
	"ctm/internal/embedder"
	"ctm/internal/insights"
	"ctm/internal/miner"
	"ctm/internal/models"
	"ctm/internal/store"
	"ctm/internal/vectorindex"
)

var (
	analyzeMaxCommits int
	analyzeNoEmbed    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [source]",
	Short: "Mine a repository and build its search index",
	Long: `Analyze a repository's commit history and persist the result for querying.

The source is a local path (default ".") or a remote URL, which is cloned
to a temporary directory. Each run produces one immutable analysis unit:
a commit store, a vector index over embedded commit messages, and a
metadata sidecar, all keyed by a stable repository ID.

Example:
  ctm analyze .
  ctm analyze https://github.com/user/repo.git --max-commits 500`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&analyzeMaxCommits, "max-commits", 0, "Maximum commits to analyze (0 uses the configured default)")
	analyzeCmd.Flags().BoolVar(&analyzeNoEmbed, "no-embed", false, "Skip embedding generation")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	source := "."
	if len(args) > 0 {
		source = args[0]
	}

	path := source
	if miner.IsRemote(source) {
		fmt.Printf("Cloning %s...\n", source)
		dir, cleanup, err := miner.Clone(source)
		if err != nil {
			return err
		}
		defer cleanup()
		path = dir
	}

	maxCommits := analyzeMaxCommits
	if maxCommits == 0 {
		maxCommits = config.MaxCommits()
	}

	fmt.Printf("Mining commits from %s...\n", source)
	records, skipped, err := miner.Mine(path, maxCommits)
	if err != nil {
		return err
	}
	if skipped > 0 {
		fmt.Printf("Skipped %d unparsable commits\n", skipped)
	}
	fmt.Printf("Extracted %d commits\n", len(records))

	cs := &models.CommitStore{
		RepoID:      store.RepoID(source),
		Source:      source,
		BuiltAt:     time.Now().Format(time.RFC3339),
		RecordCount: len(records),
		Records:     records,
	}

	if !analyzeNoEmbed && config.EmbeddingsEnabled() {
		embedCommits(cmd.Context(), cs)
	}

	idx, err := buildIndex(cs)
	if err != nil {
		return err
	}

	dir := config.StorageDir()
	if err := store.Save(dir, cs, idx); err != nil {
		return err
	}

	summary := insights.Summarize(cs, indexLen(idx))
	fmt.Println()
	fmt.Println(titleStyle.Render("Analysis complete"))
	fmt.Printf("Repository ID: %s\n", cs.RepoID)
	fmt.Printf("Commits:       %d\n", summary.TotalCommits)
	fmt.Printf("Authors:       %d\n", summary.UniqueAuthors)
	fmt.Printf("Indexed:       %d commits for semantic search\n", summary.IndexedCommits)
	fmt.Println()
	fmt.Printf("Query with: ctm query %s \"your question\"\n", cs.RepoID)
	return nil
}

// embedCommits attaches embeddings to the mined records. Any failure here
// degrades the analysis to lexical-only search instead of aborting it.
func embedCommits(ctx context.Context, cs *models.CommitStore) {
	provider := config.EmbeddingProvider()
	if provider == "ollama" && !embedder.OllamaAvailable(config.OllamaURL()) {
		fmt.Println("Ollama not reachable, skipping embeddings (semantic search will be unavailable)")
		return
	}

	e, err := embedder.New(provider, config.EmbeddingModel(), config.OllamaURL())
	if err != nil {
		fmt.Printf("Embeddings unavailable: %v\n", err)
		return
	}

	fmt.Printf("Generating embeddings with %s...\n", e.Name())
	if ctx == nil {
		ctx = context.Background()
	}
	embedded, failed := embedder.EmbedStore(ctx, e, cs)
	fmt.Printf("Embedded %d commits", embedded)
	if failed > 0 {
		fmt.Printf(" (%d failed)", failed)
	}
	fmt.Println()
}

// buildIndex creates the vector index from every embedded record, in store
// order. An empty index is a valid outcome; a dimension mismatch is not.
func buildIndex(cs *models.CommitStore) (*vectorindex.Index, error) {
	var vectors [][]float32
	var ids []string
	for i := range cs.Records {
		if cs.Records[i].Embedding != nil {
			vectors = append(vectors, cs.Records[i].Embedding)
			ids = append(ids, cs.Records[i].ID)
		}
	}

	idx, err := vectorindex.Build(vectors, ids)
	if err != nil {
		if errors.Is(err, vectorindex.ErrEmptyIndex) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to build vector index: %w", err)
	}
	return idx, nil
}

func indexLen(idx *vectorindex.Index) int {
	if idx == nil {
		return 0
	}
	return idx.Len()
}
