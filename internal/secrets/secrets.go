// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves credentials for the pipeline. A secrets
// directory holds one file per key (file name is the key, trimmed contents
// the value); environment variables, including ones loaded from a .env
// file, take precedence over it.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EmbeddingAPIKey authenticates against a remote embeddings API.
const EmbeddingAPIKey = "embedding-api-key"

// Store maps key names to values.
type Store map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty store. Unreadable files are reported to warn and skipped.
func Load(dir string, warn io.Writer) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			store[name] = value
		}
	}
	return store, nil
}

// LoadEnv loads variables from the given .env files into the process
// environment without overriding ones already set. Missing files are
// ignored.
func LoadEnv(files ...string) error {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}
	return nil
}

// EnvName maps a key name to its environment variable under prefix:
// "embedding-api-key" with prefix "APP" becomes APP_EMBEDDING_API_KEY.
func EnvName(prefix, key string) string {
	name := strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	if prefix == "" {
		return name
	}
	return strings.ToUpper(prefix) + "_" + name
}

// Get returns the value for key, preferring the environment variable
// EnvName(prefix, key) over the store.
func (s Store) Get(prefix, key string) string {
	if v := strings.TrimSpace(os.Getenv(EnvName(prefix, key))); v != "" {
		return v
	}
	return s[key]
}
