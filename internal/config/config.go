// Package config handles configuration directories, credential file
// paths and remote backend selection.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// AppName is the application directory name.
	AppName = "tasksync"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"
)

// Remote backend names accepted in Remote.
const (
	RemoteGoogleTasks = "googletasks"
	RemoteS3          = "s3"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// DataDir is where the local sqlite cache lives.
	DataDir string

	// Remote selects the remote backend: RemoteGoogleTasks or RemoteS3.
	Remote string

	// ListID is the Google Tasks list to sync against.
	// Empty means the account's default list.
	ListID string

	// S3 backend settings.
	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string // non-AWS endpoints (minio, localstack)
}

// New creates a Config rooted at the default or specified config
// directory, with remaining settings taken from the environment.
func New(configDir string) (*Config, error) {
	cfg := &Config{
		Dir:        configDir,
		DataDir:    filepath.Join(xdg.DataHome, AppName),
		Remote:     os.Getenv("TASKSYNC_REMOTE"),
		ListID:     os.Getenv("TASKSYNC_LIST"),
		S3Bucket:   os.Getenv("TASKSYNC_S3_BUCKET"),
		S3Prefix:   os.Getenv("TASKSYNC_S3_PREFIX"),
		S3Region:   os.Getenv("TASKSYNC_S3_REGION"),
		S3Endpoint: os.Getenv("TASKSYNC_S3_ENDPOINT"),
	}
	if cfg.Dir == "" {
		cfg.Dir = filepath.Join(xdg.ConfigHome, AppName)
	}
	if cfg.Remote == "" {
		cfg.Remote = RemoteGoogleTasks
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Remote {
	case RemoteGoogleTasks:
		return nil
	case RemoteS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("remote %q requires TASKSYNC_S3_BUCKET", c.Remote)
		}
		return nil
	default:
		return fmt.Errorf("unknown remote backend: %s", c.Remote)
	}
}

// ListOrDefault returns the configured Google Tasks list id, or the
// account default list when none is set.
func (c *Config) ListOrDefault() string {
	if c.ListID == "" {
		return "@default"
	}
	return c.ListID
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDirs creates the config and data directories if needed.
// The config directory holds credentials and is created with mode 0700.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.Dir, 0700); err != nil {
		return err
	}
	return os.MkdirAll(c.DataDir, 0755)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
