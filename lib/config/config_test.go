// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clinicdesk.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
base_url: https://ops.clinic.test
api_key: key-123
refresh_seconds: 10
`)

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if config.BaseURL != "https://ops.clinic.test" {
		t.Errorf("BaseURL = %q", config.BaseURL)
	}
	if config.APIKey != "key-123" {
		t.Errorf("APIKey = %q", config.APIKey)
	}
	if config.RefreshInterval() != 10*time.Second {
		t.Errorf("RefreshInterval = %v", config.RefreshInterval())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "base_url: https://file.clinic.test\n")
	t.Setenv("CLINICDESK_BASE_URL", "https://env.clinic.test")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if config.BaseURL != "https://env.clinic.test" {
		t.Errorf("BaseURL = %q, want env override", config.BaseURL)
	}
}

func TestLoadWithoutFileUsesEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("CLINICDESK_BASE_URL", "https://env-only.clinic.test")

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if config.BaseURL != "https://env-only.clinic.test" {
		t.Errorf("BaseURL = %q", config.BaseURL)
	}
}

func TestLoadFailsWithoutBaseURL(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("CLINICDESK_BASE_URL", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error when no base URL is configured")
	}
}

func TestRefreshIntervalDefault(t *testing.T) {
	if got := (Config{}).RefreshInterval(); got != 30*time.Second {
		t.Errorf("default RefreshInterval = %v, want 30s", got)
	}
}
