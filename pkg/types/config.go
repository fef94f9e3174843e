package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout bounds each HTTP call, body read included. Every retry
	// attempt gets its own timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperscraper/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// PubMedConfig holds settings for the E-utilities client.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities root (default https://eutils.ncbi.nlm.nih.gov/entrez/eutils).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey raises NCBI's call budget from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Email and Tool identify the caller to NCBI, as its usage policy asks.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`
	Tool  string `json:"tool,omitempty" yaml:"tool,omitempty" mapstructure:"tool"`

	// MaxResults caps the identifiers returned by a search (default 10000).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// BatchSize is the number of identifiers fetched per call (default 200, max 500).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`

	// MaxRetries is the number of retries for a transient failure. 0
	// disables retries; a negative value selects the default (3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ExportConfig holds settings for the exporter and console renderer.
type ExportConfig struct {
	// ColumnSet selects a predefined column set: default, all, or minimal.
	ColumnSet string `json:"column_set" yaml:"column_set" mapstructure:"column_set"`

	// CustomColumns overrides ColumnSet with an explicit column list.
	CustomColumns []string `json:"custom_columns,omitempty" yaml:"custom_columns,omitempty" mapstructure:"custom_columns"`

	// IncludeAbstract appends the Abstract column.
	IncludeAbstract bool `json:"include_abstract" yaml:"include_abstract" mapstructure:"include_abstract"`
}
