// Copyright 2026 The Clinicdesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads clinicdesk configuration.
//
// Configuration comes from a single YAML file specified by the
// CLINICDESK_CONFIG environment variable or the --config flag; there
// is no automatic discovery. A .env file in the working directory is
// loaded first (godotenv) so local development can keep credentials
// out of the shell profile, and a small set of CLINICDESK_* variables
// override file values.
//
// The login session (acting user + bearer token) lives in a separate
// file under the user config directory, written by "clinicdesk login"
// and read at startup; see [LoadSession].
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath is the environment variable naming the config file.
const EnvConfigPath = "CLINICDESK_CONFIG"

// Config is the clinicdesk client configuration.
type Config struct {
	// BaseURL is the ops backend root URL.
	BaseURL string `yaml:"base_url"`

	// APIKey is the backend's static API key header value.
	APIKey string `yaml:"api_key"`

	// RefreshSeconds is the board's backend poll interval. Defaults
	// to 30.
	RefreshSeconds int `yaml:"refresh_seconds"`

	// LogFile receives JSON log records. Empty disables file logging;
	// the TUI never logs to stderr (it would corrupt the alt screen).
	LogFile string `yaml:"log_file"`
}

// RefreshInterval returns the poll interval as a duration.
func (config Config) RefreshInterval() time.Duration {
	seconds := config.RefreshSeconds
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

// LoadDotenv loads a .env file from the working directory when one
// exists. A missing file is not an error.
func LoadDotenv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads the config file at path (or $CLINICDESK_CONFIG when path
// is empty) and applies environment overrides. An entirely absent
// config is allowed as long as the environment supplies the base URL.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	var config Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&config)

	if config.BaseURL == "" {
		return Config{}, fmt.Errorf("no base URL configured (set base_url in %s or CLINICDESK_BASE_URL)", EnvConfigPath)
	}
	return config, nil
}

// applyEnvOverrides applies CLINICDESK_* environment variables over
// file values.
func applyEnvOverrides(config *Config) {
	if value := os.Getenv("CLINICDESK_BASE_URL"); value != "" {
		config.BaseURL = value
	}
	if value := os.Getenv("CLINICDESK_API_KEY"); value != "" {
		config.APIKey = value
	}
	if value := os.Getenv("CLINICDESK_REFRESH_SECONDS"); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			config.RefreshSeconds = seconds
		}
	}
	if value := os.Getenv("CLINICDESK_LOG_FILE"); value != "" {
		config.LogFile = value
	}
}

// Session is the persisted login state.
type Session struct {
	// UserID is the acting user's backend ID.
	UserID int `yaml:"user_id"`

	// Token is the bearer token minted at login.
	Token string `yaml:"token"`
}

// sessionPath returns the session file location under the user config
// directory.
func sessionPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(configDir, "clinicdesk", "session.yaml"), nil
}

// LoadSession reads the persisted login session. Returns an error
// naming the login command when no session exists.
func LoadSession() (Session, error) {
	path, err := sessionPath()
	if err != nil {
		return Session{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, fmt.Errorf("no login session (run \"clinicdesk login\"): %w", err)
	}

	var session Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("parsing session %s: %w", path, err)
	}
	if session.Token == "" {
		return Session{}, fmt.Errorf("session %s has no token (run \"clinicdesk login\")", path)
	}
	return session, nil
}

// SaveSession writes the login session with owner-only permissions.
func SaveSession(session Session) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	data, err := yaml.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session %s: %w", path, err)
	}
	return nil
}
