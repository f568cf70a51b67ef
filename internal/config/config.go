// Package config loads runtime configuration from the environment: where
// the note corpus lives, and how to reach the associator's chat backend.
package config

import "os"

// Config holds the handful of environment-tunable settings the CLI needs.
type Config struct {
	DocsDir      string
	LLMBaseURL   string
	LLMAPIKey    string
	LLMModelName string
}

// Load reads Config from the environment, defaulting DocsDir to
// "./SampleDocs" when DOCS_DIR is unset.
func Load() Config {
	docsDir := os.Getenv("DOCS_DIR")
	if docsDir == "" {
		docsDir = "./SampleDocs"
	}
	return Config{
		DocsDir:      docsDir,
		LLMBaseURL:   os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:    os.Getenv("LLM_API_KEY"),
		LLMModelName: os.Getenv("LLM_MODEL_NAME"),
	}
}
