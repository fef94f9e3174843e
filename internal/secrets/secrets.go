// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads NCBI credentials from a directory of plain-text
// files. Each file holds one secret: the filename is the key and the
// trimmed contents are the value.
//
// Recognized keys: ncbi-api-key, ncbi-email.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paperscraper/pkg/types"
)

// DefaultDir is the secrets directory used when none is configured.
const DefaultDir = ".secrets"

// Secret file names.
const (
	NCBIAPIKey = "ncbi-api-key"
	NCBIEmail  = "ncbi-email"
)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// ApplyPubMed fills the API key and email of cfg from secrets. Values
// already set in cfg win.
func ApplyPubMed(cfg *types.PubMedConfig, secrets map[string]string) {
	if cfg.APIKey == "" {
		cfg.APIKey = secrets[NCBIAPIKey]
	}
	if cfg.Email == "" {
		cfg.Email = secrets[NCBIEmail]
	}
}
