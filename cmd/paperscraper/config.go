// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperscraper/internal/export"
	"github.com/pdiddy/paperscraper/internal/pubmed"
	"github.com/pdiddy/paperscraper/internal/secrets"
	"github.com/pdiddy/paperscraper/pkg/types"
)

// Config keys.
const (
	keyBaseURL    = "pubmed.base_url"
	keyAPIKey     = "pubmed.api_key"
	keyEmail      = "pubmed.email"
	keyTool       = "pubmed.tool"
	keyMaxResults = "pubmed.max_results"
	keyBatchSize  = "pubmed.batch_size"
	keyMaxRetries = "pubmed.max_retries"
	keyTimeout    = "http.timeout"
	keyUserAgent  = "http.user_agent"

	keyColumnSet       = "export.column_set"
	keyCustomColumns   = "export.custom_columns"
	keyIncludeAbstract = "export.include_abstract"
)

// bindConfig sets defaults and the extra environment names NCBI users
// already have.
func bindConfig(v *viper.Viper) {
	v.SetDefault(keyBaseURL, pubmed.DefaultBaseURL)
	v.SetDefault(keyTool, pubmed.DefaultTool)
	v.SetDefault(keyMaxResults, pubmed.DefaultMaxResults)
	v.SetDefault(keyBatchSize, pubmed.DefaultBatchSize)
	v.SetDefault(keyMaxRetries, pubmed.DefaultMaxRetries)
	v.SetDefault(keyTimeout, pubmed.DefaultTimeout)
	v.SetDefault(keyUserAgent, fmt.Sprintf("paperscraper/%s", version))
	v.SetDefault(keyColumnSet, string(export.SetDefault))
	v.SetDefault(keyCustomColumns, []string{})
	v.SetDefault(keyIncludeAbstract, false)

	_ = v.BindEnv(keyAPIKey, "PAPERSCRAPER_PUBMED_API_KEY", "NCBI_API_KEY")
	_ = v.BindEnv(keyEmail, "PAPERSCRAPER_PUBMED_EMAIL", "NCBI_EMAIL")
}

// settings is the shape of the config file. Environment variables and
// defaults bound in bindConfig are merged in by viper.
type settings struct {
	PubMed types.PubMedConfig `mapstructure:"pubmed"`
	HTTP   types.HTTPConfig   `mapstructure:"http"`
	Export types.ExportConfig `mapstructure:"export"`
}

// pubMedConfig resolves the client configuration. Precedence: command
// flags, then environment and config file, then secret files, then
// defaults.
func pubMedConfig(cmd *cobra.Command, v *viper.Viper, secretValues map[string]string) (types.PubMedConfig, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return types.PubMedConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg := s.PubMed
	cfg.HTTPConfig = s.HTTP
	secrets.ApplyPubMed(&cfg, secretValues)

	flags := cmd.Flags()
	if flags.Changed("batch-size") {
		cfg.BatchSize, _ = flags.GetInt("batch-size")
	}
	if flags.Changed("max-results") {
		cfg.MaxResults, _ = flags.GetInt("max-results")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("api-key") {
		cfg.APIKey, _ = flags.GetString("api-key")
	}
	if flags.Changed("email") {
		cfg.Email, _ = flags.GetString("email")
	}

	if cfg.BatchSize < 0 || cfg.BatchSize > pubmed.MaxBatchSize {
		return cfg, fmt.Errorf("batch size must be between 1 and %d, got %d", pubmed.MaxBatchSize, cfg.BatchSize)
	}
	if cfg.MaxResults < 0 {
		return cfg, fmt.Errorf("max results must not be negative, got %d", cfg.MaxResults)
	}
	if cfg.Timeout < 0 {
		return cfg, fmt.Errorf("timeout must not be negative, got %s", cfg.Timeout)
	}
	return cfg, nil
}
