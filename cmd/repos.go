package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"

	"ctm/internal/config"
	"ctm/internal/store"
)

var (
	reposJSON bool
	reposToon bool
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List analyzed repositories",
	Long: `List every persisted analysis, newest first, with the repository ID
used by the query command.`,
	RunE: runRepos,
}

func init() {
	rootCmd.AddCommand(reposCmd)

	reposCmd.Flags().BoolVar(&reposJSON, "json", false, "Output as JSON")
	reposCmd.Flags().BoolVar(&reposToon, "toon", false, "Output as Toon (token-efficient format for LLMs)")
}

func runRepos(cmd *cobra.Command, args []string) error {
	sidecars, err := store.List(config.StorageDir())
	if err != nil {
		return err
	}

	if reposToon {
		output, err := gotoon.Encode(sidecars)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Println(output)
		return nil
	}

	if reposJSON {
		output, err := json.MarshalIndent(sidecars, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if len(sidecars) == 0 {
		fmt.Println("No analyzed repositories. Run: ctm analyze <path-or-url>")
		return nil
	}

	fmt.Println(titleStyle.Render("Analyzed repositories"))
	for _, sc := range sidecars {
		fmt.Printf("%s  %s\n", sc.RepoID, sc.Source)
		fmt.Printf("  %s\n", dimStyle.Render(fmt.Sprintf("%d commits, %d indexed, built %s", sc.RecordCount, sc.IndexedCount, sc.BuiltAt)))
	}
	return nil
}
