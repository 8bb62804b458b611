package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "armada/configs"
)

func TestLoadSystemConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "armada.json")
	content := `{
		"cluster": "norcal-prod",
		"docker_registry": "registry.example.com:443",
		"git_base": "git@git.example.com:services",
		"api_endpoints": {"norcal-prod": "http://armada.example.com:8080"}
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	sc, err := LoadSystemConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cluster, err := sc.GetCluster()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cluster != "norcal-prod" {
		t.Errorf("unexpected cluster %q", cluster)
	}
	if sc.DockerRegistry != "registry.example.com:443" {
		t.Errorf("unexpected registry %q", sc.DockerRegistry)
	}
	if sc.APIEndpoints["norcal-prod"] == "" {
		t.Error("expected api endpoint for norcal-prod")
	}
}

func TestLoadSystemConfig_Missing(t *testing.T) {
	_, err := LoadSystemConfig(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestLoadSystemConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := LoadSystemConfig(path); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestGetCluster_Unset(t *testing.T) {
	sc := &SystemConfig{}
	if _, err := sc.GetCluster(); !errors.Is(err, ErrNoCluster) {
		t.Errorf("expected ErrNoCluster, got %v", err)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("OUTPUT_BACKEND", "s3")

	cfg := LoadConfig()
	if cfg.APIPort != "9999" {
		t.Errorf("expected API_PORT override, got %q", cfg.APIPort)
	}
	if cfg.OutputBackend != "s3" {
		t.Errorf("expected OUTPUT_BACKEND override, got %q", cfg.OutputBackend)
	}
}
