// Package config resolves the runtime configuration: a .rmoflow config
// file searched from the working directory, overridable per key through
// RMOFLOW_ environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"rmoflow/pkg/app"
)

// Supabase holds the storage-bucket credentials when the supabase blob
// backend is selected.
type Supabase struct {
	ProjectID string `json:"projectId"`
	APIKey    string `json:"apiKey"`
	Bucket    string `json:"bucket"`
}

// Config is everything the process needs before sign-in.
type Config struct {
	// BasePath roots the local document tree, blobs, and user table.
	BasePath string `json:"path"`
	// BlobBackend selects where uploads land: "local" or "supabase".
	BlobBackend string   `json:"blobBackend"`
	Supabase    Supabase `json:"supabase"`
	// DuplicatePolicy is the default bulk-add duplicate handling.
	DuplicatePolicy app.DuplicatePolicy `json:"duplicatePolicy"`
}

const (
	BackendLocal    = "local"
	BackendSupabase = "supabase"
)

func Load() (*Config, error) {
	viper.SetDefault("path", "~/.rmoflow")
	viper.SetDefault("blobBackend", BackendLocal)
	viper.SetDefault("duplicatePolicy", string(app.DuplicateSkip))
	viper.SetConfigName(".rmoflow")
	viper.SetEnvPrefix("RMOFLOW")
	viper.AutomaticEnv()

	if override := os.Getenv("RMOFLOW_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	base, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: expand base path: %w", err)
	}

	cfg := &Config{
		BasePath:    base,
		BlobBackend: viper.GetString("blobBackend"),
		Supabase: Supabase{
			ProjectID: viper.GetString("supabase.projectId"),
			APIKey:    viper.GetString("supabase.apiKey"),
			Bucket:    viper.GetString("supabase.bucket"),
		},
		DuplicatePolicy: app.DuplicatePolicy(viper.GetString("duplicatePolicy")),
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.BlobBackend {
	case BackendLocal:
	case BackendSupabase:
		if c.Supabase.ProjectID == "" || c.Supabase.APIKey == "" || c.Supabase.Bucket == "" {
			return fmt.Errorf("config: supabase backend needs projectId, apiKey, and bucket")
		}
	default:
		return fmt.Errorf("config: unknown blob backend %q", c.BlobBackend)
	}
	switch c.DuplicatePolicy {
	case app.DuplicateSkip, app.DuplicateInsert:
	default:
		return fmt.Errorf("config: unknown duplicate policy %q", c.DuplicatePolicy)
	}
	return nil
}
