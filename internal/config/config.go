// Package config exposes typed accessors over viper-managed settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// StorageDir returns the directory analysis units are persisted under.
func StorageDir() string {
	if dir := viper.GetString("storage.dir"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "analysis_data"
	}
	return filepath.Join(home, ".local", "share", "ctm")
}

// EmbeddingsEnabled reports whether embedding generation is on.
func EmbeddingsEnabled() bool {
	return viper.GetBool("embeddings.enabled")
}

// EmbeddingProvider returns the configured embedding backend.
func EmbeddingProvider() string {
	return viper.GetString("embeddings.provider")
}

// EmbeddingModel returns the embedding model name.
func EmbeddingModel() string {
	return viper.GetString("embeddings.model")
}

// OllamaURL returns the Ollama API endpoint.
func OllamaURL() string {
	return viper.GetString("embeddings.ollama_url")
}

// MaxCommits returns the commit cap for one analysis run.
func MaxCommits() int {
	return viper.GetInt("analyze.max_commits")
}

// DefaultTopK returns how many results a query shows by default.
func DefaultTopK() int {
	return viper.GetInt("query.top_k")
}
