// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperscraper/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, NCBIAPIKey, "  0123456789abcdef  \n")
				writeFile(t, dir, NCBIEmail, "user@example.com\n")
				return dir
			},
			want: map[string]string{
				NCBIAPIKey: "0123456789abcdef",
				NCBIEmail:  "user@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files, dotfiles and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, NCBIAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				return dir
			},
			want: map[string]string{
				NCBIAPIKey: "valid-key",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, NCBIEmail, "me@example.org")

	badPath := filepath.Join(dir, NCBIAPIKey)
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "me@example.org", got[NCBIEmail])
	assert.NotContains(t, got, NCBIAPIKey)
}

func TestApplyPubMed(t *testing.T) {
	secrets := map[string]string{NCBIAPIKey: "from-file", NCBIEmail: "file@example.org"}

	var cfg types.PubMedConfig
	ApplyPubMed(&cfg, secrets)
	assert.Equal(t, "from-file", cfg.APIKey)
	assert.Equal(t, "file@example.org", cfg.Email)

	cfg = types.PubMedConfig{APIKey: "from-env"}
	ApplyPubMed(&cfg, secrets)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "file@example.org", cfg.Email)

	cfg = types.PubMedConfig{}
	ApplyPubMed(&cfg, nil)
	assert.Empty(t, cfg.APIKey)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
