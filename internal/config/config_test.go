package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "/conf")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend != BackendSQLite {
		t.Errorf("expected backend %q, got %q", BackendSQLite, cfg.Backend)
	}
	if cfg.Owner != "default-user" {
		t.Errorf("expected default owner, got %q", cfg.Owner)
	}
	if cfg.SQLitePath != "/conf/tasks.db" {
		t.Errorf("expected sqlite path under config dir, got %q", cfg.SQLitePath)
	}
	if cfg.CacheDir != "/conf/cache" || cfg.BridgeDir != "/conf/native" {
		t.Errorf("unexpected dirs: %q %q", cfg.CacheDir, cfg.BridgeDir)
	}
	if cfg.FirestoreDatabase != DefaultFirestoreDatabase {
		t.Errorf("expected database %q, got %q", DefaultFirestoreDatabase, cfg.FirestoreDatabase)
	}
	if cfg.BridgeInterval != 5*time.Second || cfg.VoiceTimeout != 5*time.Second {
		t.Errorf("unexpected durations: %v %v", cfg.BridgeInterval, cfg.VoiceTimeout)
	}
	if cfg.OAuthClientPath() != "/conf/oauth_client.json" || cfg.TokenPath() != "/conf/token.json" {
		t.Errorf("unexpected credential paths: %q %q", cfg.OAuthClientPath(), cfg.TokenPath())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	fsys := afero.NewMemMapFs()
	yaml := "backend: firestore\nowner: me@example.com\nfirestore:\n  project: demo\nvoice:\n  timeout: 8s\n"
	if err := afero.WriteFile(fsys, "/conf/config.yaml", []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VTASK_OWNER", "env-user")
	t.Setenv("VTASK_BRIDGE_INTERVAL", "250ms")

	cfg, err := Load(fsys, "/conf")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend != BackendFirestore || cfg.FirestoreProject != "demo" {
		t.Errorf("expected firestore/demo, got %q/%q", cfg.Backend, cfg.FirestoreProject)
	}
	if cfg.Owner != "env-user" {
		t.Errorf("expected env override, got %q", cfg.Owner)
	}
	if cfg.VoiceTimeout != 8*time.Second {
		t.Errorf("expected 8s, got %v", cfg.VoiceTimeout)
	}
	if cfg.BridgeInterval != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.BridgeInterval)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("VTASK_BACKEND", "postgres")
	if _, err := Load(afero.NewMemMapFs(), "/conf"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestTokenFiles(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "/conf")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HasToken() || cfg.HasOAuthClient() {
		t.Fatal("expected no credential files")
	}
	if err := cfg.EnsureDir(); err != nil {
		t.Fatal(err)
	}
	if err := cfg.WriteFile(cfg.TokenPath(), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if !cfg.HasToken() {
		t.Error("expected token to exist")
	}
	if err := cfg.RemoveToken(); err != nil {
		t.Fatal(err)
	}
	if cfg.HasToken() {
		t.Error("expected token to be removed")
	}
}
