package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsToGoogleTasksRemote(t *testing.T) {
	t.Setenv("TASKSYNC_REMOTE", "")

	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Remote != RemoteGoogleTasks {
		t.Errorf("expected default remote %q, got %q", RemoteGoogleTasks, cfg.Remote)
	}
	if cfg.ListOrDefault() != "@default" {
		t.Errorf("expected the account default list, got %q", cfg.ListOrDefault())
	}
}

func TestS3RemoteRequiresBucket(t *testing.T) {
	t.Setenv("TASKSYNC_REMOTE", "s3")
	t.Setenv("TASKSYNC_S3_BUCKET", "")

	if _, err := New(t.TempDir()); err == nil {
		t.Fatal("expected an error for the s3 remote without a bucket")
	}

	t.Setenv("TASKSYNC_S3_BUCKET", "my-tasks")
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.S3Bucket != "my-tasks" {
		t.Errorf("expected bucket from env, got %q", cfg.S3Bucket)
	}
}

func TestUnknownRemoteRejected(t *testing.T) {
	t.Setenv("TASKSYNC_REMOTE", "carrier-pigeon")

	_, err := New(t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "carrier-pigeon") {
		t.Fatalf("expected an unknown-remote error, got %v", err)
	}
}

func TestCredentialPathsUnderConfigDir(t *testing.T) {
	t.Setenv("TASKSYNC_REMOTE", "")
	dir := t.TempDir()

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OAuthClientPath() != filepath.Join(dir, OAuthClientFile) {
		t.Errorf("unexpected oauth client path: %s", cfg.OAuthClientPath())
	}
	if cfg.TokenPath() != filepath.Join(dir, TokenFile) {
		t.Errorf("unexpected token path: %s", cfg.TokenPath())
	}
	if cfg.HasOAuthClient() || cfg.HasToken() {
		t.Error("expected no credential files in a fresh dir")
	}
}

func TestListFromEnv(t *testing.T) {
	t.Setenv("TASKSYNC_REMOTE", "")
	t.Setenv("TASKSYNC_LIST", "work-list")

	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListOrDefault() != "work-list" {
		t.Errorf("expected configured list, got %q", cfg.ListOrDefault())
	}
}
