package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"ctm/internal/config"
	"ctm/internal/embedder"
	"ctm/internal/models"
	engine "ctm/internal/query"
)

var (
	queryMode string
	queryTopK int
	queryJSON bool
	queryToon bool
)

var queryCmd = &cobra.Command{
	Use:   "query [repo-id] [question]",
	Short: "Ask a question about an analyzed repository",
	Long: `Query a previously analyzed repository. The question is routed to the
best search strategy automatically, or pinned with --mode:

  auto       classify the question (default)
  semantic   embedding similarity over commit messages
  keyword    keyword match over messages and file paths
  author     commits by author name or email
  file       commits touching a file
  time_range commits in a date range
  combined   semantic + keyword, merged
  summary    repository overview

Example:
  ctm query a1b2c3d4e5f6 "when was authentication added"
  ctm query a1b2c3d4e5f6 "who wrote the parser" --mode author`,
	Args: cobra.MinimumNArgs(2),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryMode, "mode", "auto", "Search mode (auto, semantic, keyword, author, file, time_range, combined, summary)")
	queryCmd.Flags().IntVar(&queryTopK, "top-k", 0, "Maximum results to return (0 uses the configured default)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Output as JSON")
	queryCmd.Flags().BoolVar(&queryToon, "toon", false, "Output as Toon (token-efficient format for LLMs)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	repoID := args[0]
	question := strings.Join(args[1:], " ")

	topK := queryTopK
	if topK == 0 {
		topK = config.DefaultTopK()
	}

	router := engine.NewRouter(config.StorageDir(), queryEmbedder())
	resp, err := router.Answer(cmd.Context(), repoID, question, models.Mode(queryMode), topK)
	if err != nil && resp == nil {
		return err
	}

	if queryToon {
		output, err := gotoon.Encode(resp)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	if queryJSON {
		output, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	printResponse(resp)
	return nil
}

// queryEmbedder builds the embedder used for semantic queries, or nil when
// embeddings are disabled or the backend is unreachable. The router treats
// a nil embedder as "semantic search unavailable".
func queryEmbedder() embedder.Embedder {
	if !config.EmbeddingsEnabled() {
		return nil
	}
	provider := config.EmbeddingProvider()
	if provider == "ollama" && !embedder.OllamaAvailable(config.OllamaURL()) {
		return nil
	}
	e, err := embedder.New(provider, config.EmbeddingModel(), config.OllamaURL())
	if err != nil {
		return nil
	}
	return e
}

func printResponse(resp *models.Response) {
	if resp.Error != "" {
		fmt.Println(errorStyle.Render("Error: " + resp.Error))
		printSuggestions(resp.Suggestions)
		return
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Query: %s", resp.Query)))
	fmt.Println(dimStyle.Render(fmt.Sprintf("Mode: %s", resp.Mode)))
	fmt.Println()

	if resp.Summary != nil {
		printSummary(resp.Summary)
		return
	}

	if resp.TotalResults == 0 {
		fmt.Println("No results found.")
		printSuggestions(resp.Suggestions)
		return
	}

	for _, r := range resp.Results {
		fmt.Printf("%d. %s\n", r.Rank, firstLine(r.Message))
		fmt.Printf("   %s  %s  %s", dimStyle.Render(shortID(r.CommitID)), r.Author, r.Date)
		if r.Similarity > 0 {
			fmt.Printf("  %s", scoreStyle.Render(fmt.Sprintf("%.3f", r.Similarity)))
		}
		if r.KeywordScore > 0 {
			fmt.Printf("  %s", scoreStyle.Render(fmt.Sprintf("matches: %d", r.KeywordScore)))
		}
		fmt.Println()
		for _, fc := range r.MatchingFiles {
			fmt.Printf("   - %s\n", fc.Path)
		}
		fmt.Println()
	}

	fmt.Printf("%d results", resp.TotalResults)
	if resp.SkippedRecords > 0 {
		fmt.Printf(" (%d malformed commits skipped)", resp.SkippedRecords)
	}
	fmt.Println()
}

func printSummary(s *models.Summary) {
	fmt.Println(titleStyle.Render("Repository summary"))
	fmt.Printf("Source:         %s\n", s.Source)
	fmt.Printf("Commits:        %d\n", s.TotalCommits)
	fmt.Printf("Authors:        %d (%d active recently)\n", s.UniqueAuthors, s.RecentActiveAuthors)
	fmt.Printf("Active months:  %d\n", s.ActiveMonths)
	fmt.Printf("Semantic index: %d commits\n", s.IndexedCommits)
	fmt.Println()

	if len(s.TopContributors) > 0 {
		fmt.Println("Top contributors:")
		for _, c := range s.TopContributors {
			fmt.Printf("  %4d  %s\n", c.Commits, c.Author)
		}
		fmt.Println()
	}

	if len(s.MostModifiedFiles) > 0 {
		fmt.Println("Most modified files:")
		for _, f := range s.MostModifiedFiles {
			fmt.Printf("  %4d  %s\n", f.Modifications, f.File)
		}
		fmt.Println()
	}

	if len(s.CommonKeywords) > 0 {
		words := make([]string, 0, len(s.CommonKeywords))
		for _, k := range s.CommonKeywords {
			words = append(words, k.Keyword)
		}
		fmt.Printf("Common keywords: %s\n", strings.Join(words, ", "))
	}
}

func printSuggestions(suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Suggestions:")
	for _, s := range suggestions {
		fmt.Printf("  - %s\n", s)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
