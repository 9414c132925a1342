// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Store
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, EmbeddingAPIKey, "  sk-abc123  \n")
				writeFile(t, dir, "other", "value\n")
				return dir
			},
			want: Store{EmbeddingAPIKey: "sk-abc123", "other": "value"},
		},
		{
			name: "missing directory is empty",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			want: Store{},
		},
		{
			name: "skips empty files, dotfiles, and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, EmbeddingAPIKey, "key")
				writeFile(t, dir, "blank", " \n\t")
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
				return dir
			},
			want: Store{EmbeddingAPIKey: "key"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warn bytes.Buffer
			got, err := Load(tt.setup(t), &warn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, warn.String())
		})
	}
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "PREPRINT_CLASSIFIER_EMBEDDING_API_KEY", EnvName("preprint_classifier", EmbeddingAPIKey))
	assert.Equal(t, "EMBEDDING_API_KEY", EnvName("", EmbeddingAPIKey))
}

func TestGetPrefersEnvironment(t *testing.T) {
	store := Store{EmbeddingAPIKey: "from-file"}
	assert.Equal(t, "from-file", store.Get("SECRETS_TEST", EmbeddingAPIKey))

	t.Setenv("SECRETS_TEST_EMBEDDING_API_KEY", "from-env")
	assert.Equal(t, "from-env", store.Get("SECRETS_TEST", EmbeddingAPIKey))
	assert.Empty(t, Store{}.Get("SECRETS_TEST", "absent"))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SECRETS_LOADENV_A=one\nSECRETS_LOADENV_B=two\n"), 0o600))

	t.Setenv("SECRETS_LOADENV_B", "kept")
	// t.Setenv restores B; register A for cleanup as godotenv sets it directly.
	t.Cleanup(func() { os.Unsetenv("SECRETS_LOADENV_A") })

	require.NoError(t, LoadEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "one", os.Getenv("SECRETS_LOADENV_A"))
	assert.Equal(t, "kept", os.Getenv("SECRETS_LOADENV_B"))

	assert.NoError(t, LoadEnv(filepath.Join(dir, "none.env")))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
