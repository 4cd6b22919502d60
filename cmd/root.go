package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "ctm",
	Short: "Codebase time machine: search a repository's commit history",
	Long: `ctm mines a repository's commit history, builds a hybrid search index
over it, and answers questions against that index:
  - semantic search over commit messages (via embeddings)
  - keyword, author, file and time-range search
  - repository summaries (contributors, hotspots, activity)

An analysis run is persisted once per repository and queried any number
of times without re-mining or re-embedding.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/ctm/config.toml)")
}

func initConfig() {
	// API keys may live in a .env next to the working directory.
	godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "ctm")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("storage.dir", "")
	viper.SetDefault("embeddings.enabled", true)
	viper.SetDefault("embeddings.provider", "ollama")
	viper.SetDefault("embeddings.model", "")
	viper.SetDefault("embeddings.ollama_url", "http://localhost:11434")
	viper.SetDefault("analyze.max_commits", 1000)
	viper.SetDefault("query.top_k", 10)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
