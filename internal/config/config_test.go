package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/muurk/customers/internal/api"
)

func TestGetConfigDir_XDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(dir, "customers"); got != want {
		t.Errorf("GetConfigDir() = %s, want %s", got, want)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("GetConfigPath() = %s, want config.yaml", path)
	}

	logPath, err := DefaultLogFile()
	if err != nil {
		t.Fatalf("DefaultLogFile() error = %v", err)
	}
	if filepath.Base(logPath) != "customers.log" {
		t.Errorf("DefaultLogFile() = %s, want customers.log", logPath)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %s, want %s", cfg.APIURL, DefaultAPIURL)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.NoticeDuration != 3*time.Second {
		t.Errorf("NoticeDuration = %v, want 3s", cfg.NoticeDuration)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_url: https://customers.example.com\ntimeout: 2s\nlive: true\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.APIURL != "https://customers.example.com" {
		t.Errorf("APIURL = %s", cfg.APIURL)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", cfg.Timeout)
	}
	if !cfg.Live {
		t.Error("Live = false, want true")
	}
	if cfg.NoticeDuration != DefaultNoticeDuration {
		t.Errorf("NoticeDuration = %v, want default", cfg.NoticeDuration)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
}

func TestLoad_UnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("version: 7\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config version") {
		t.Errorf("Load() error = %v, want unsupported version", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_url: [unterminated\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.APIURL = "http://10.0.0.5:8080"
	cfg.NoticeDuration = 5 * time.Second
	cfg.LogLevel = "debug"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Load() = %+v, want %+v", *loaded, *cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CUSTOMERS_API_URL", "http://api.internal:9000")
	t.Setenv("CUSTOMERS_TIMEOUT", "750ms")
	t.Setenv("CUSTOMERS_LIVE", "true")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.APIURL != "http://api.internal:9000" {
		t.Errorf("APIURL = %s", cfg.APIURL)
	}
	if cfg.Timeout != 750*time.Millisecond {
		t.Errorf("Timeout = %v, want 750ms", cfg.Timeout)
	}
	if !cfg.Live {
		t.Error("Live = false, want true")
	}
	if cfg.NoticeDuration != DefaultNoticeDuration {
		t.Errorf("NoticeDuration = %v, want default (unset env)", cfg.NoticeDuration)
	}
}

func TestApplyEnv_InvalidDuration(t *testing.T) {
	t.Setenv("CUSTOMERS_NOTICE_DURATION", "soon")

	if err := Default().ApplyEnv(); err == nil {
		t.Error("ApplyEnv() should fail on an invalid duration")
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "CUSTOMERS_DOTENV_PROBE"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	if got := os.Getenv(key); got != "from-file" {
		t.Errorf("%s = %q, want from-file", key, got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"https", func(c *Config) { c.APIURL = "https://x.example.com" }, ""},
		{"bad scheme", func(c *Config) { c.APIURL = "ftp://x.example.com" }, "scheme"},
		{"no host", func(c *Config) { c.APIURL = "http://" }, "missing host"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"negative notice", func(c *Config) { c.NoticeDuration = -time.Second }, "notice_duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		api  string
		want string
	}{
		{"http://localhost:3000", "ws://localhost:3000/api/customers/events"},
		{"https://customers.example.com", "wss://customers.example.com/api/customers/events"},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.APIURL = tt.api

		got, err := cfg.WebSocketURL("/api/customers/events")
		if err != nil {
			t.Fatalf("WebSocketURL() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("WebSocketURL(%s) = %s, want %s", tt.api, got, tt.want)
		}
	}
}

// The file defaults and a bare client agree
func TestDefault_MatchesClientDefaults(t *testing.T) {
	cfg := Default()
	client := api.NewClient(cfg.APIURL)

	if client.BaseURL != api.DefaultBaseURL {
		t.Errorf("BaseURL = %s, want %s", client.BaseURL, api.DefaultBaseURL)
	}
	if client.HTTPClient.Timeout != cfg.Timeout {
		t.Errorf("client timeout = %v, config timeout = %v", client.HTTPClient.Timeout, cfg.Timeout)
	}
}
