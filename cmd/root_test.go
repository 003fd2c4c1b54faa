// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies environment variable and flag configuration

package cmd

import (
	"os"
	"testing"
	"time"
)

func resetFlags(t *testing.T) {
	t.Helper()
	apiURL, jsonOutput, configDir, pollInterval = "", false, t.TempDir(), 0
	t.Cleanup(func() {
		apiURL, jsonOutput, configDir, pollInterval = "", false, "", 0
	})
}

func TestLoadConfig_Default(t *testing.T) {
	os.Unsetenv("TICTACTOE_API_URL")
	resetFlags(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000" {
		t.Errorf("expected default URL http://localhost:8000, got %s", cfg.APIURL)
	}
	if cfg.ConfigDir != configDir {
		t.Errorf("expected config dir %s, got %s", configDir, cfg.ConfigDir)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("TICTACTOE_API_URL", "http://games.example.com")
	resetFlags(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.APIURL != "http://games.example.com" {
		t.Errorf("expected http://games.example.com, got %s", cfg.APIURL)
	}
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	t.Setenv("TICTACTOE_API_URL", "http://games.example.com")
	resetFlags(t)
	apiURL = "http://flag-override.example.com/"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.APIURL != "http://flag-override.example.com" {
		t.Errorf("expected flag to override env without trailing slash, got %s", cfg.APIURL)
	}
}

func TestLoadConfig_PollIntervalFlag(t *testing.T) {
	resetFlags(t)
	pollInterval = 250 * time.Millisecond

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("expected poll interval 250ms, got %s", cfg.PollInterval)
	}
}

func TestLoadConfig_RejectsUnknownTokenStore(t *testing.T) {
	t.Setenv("TICTACTOE_TOKEN_STORE", "keychain")
	resetFlags(t)

	if _, err := loadConfig(); err == nil {
		t.Error("expected an unknown token store to fail validation")
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}
