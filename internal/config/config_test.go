package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
instance:
  id: tracker-1
feed:
  url: ws://feed.example.com/ws/satellites/live/
  reconnect_delay: 5s
server:
  port: 8081
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Instance.ID != "tracker-1" {
		t.Errorf("Instance.ID = %q, want tracker-1", cfg.Instance.ID)
	}
	if cfg.Feed.URL != "ws://feed.example.com/ws/satellites/live/" {
		t.Errorf("Feed.URL = %q", cfg.Feed.URL)
	}
	if cfg.Feed.ReconnectDelay != 5*time.Second {
		t.Errorf("Feed.ReconnectDelay = %v, want 5s", cfg.Feed.ReconnectDelay)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("Server.Port = %d, want 8081", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "feed: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("SATTRACK_TEST_FEED", "ws://env.example.com/ws/")

	path := writeConfig(t, `
feed:
  url: ${SATTRACK_TEST_FEED}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Feed.URL != "ws://env.example.com/ws/" {
		t.Errorf("Feed.URL = %q, want env-expanded value", cfg.Feed.URL)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeConfig(t, `
instance:
  id: tracker-1
`)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}

	if cfg.Feed.URL != DefaultFeedURL {
		t.Errorf("Feed.URL = %q, want default %q", cfg.Feed.URL, DefaultFeedURL)
	}
	if cfg.Feed.ReconnectDelay != DefaultReconnectDelay {
		t.Errorf("Feed.ReconnectDelay = %v, want %v", cfg.Feed.ReconnectDelay, DefaultReconnectDelay)
	}
	if cfg.Feed.BufferSize != DefaultBufferSize {
		t.Errorf("Feed.BufferSize = %d, want %d", cfg.Feed.BufferSize, DefaultBufferSize)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Metrics.Port = %d, want %d", cfg.Metrics.Port, DefaultMetricsPort)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
}

func TestDefault_GeneratesInstanceID(t *testing.T) {
	a := Default()
	b := Default()

	if a.Instance.ID == "" {
		t.Error("Default() left Instance.ID empty")
	}
	if a.Instance.ID == b.Instance.ID {
		t.Error("expected unique instance ids")
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TrackerConfig)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *TrackerConfig) {},
		},
		{
			name:    "empty feed url",
			mutate:  func(c *TrackerConfig) { c.Feed.URL = "" },
			wantErr: "feed.url",
		},
		{
			name:    "http scheme rejected",
			mutate:  func(c *TrackerConfig) { c.Feed.URL = "http://localhost:8000/ws/" },
			wantErr: "scheme",
		},
		{
			name:    "zero reconnect delay",
			mutate:  func(c *TrackerConfig) { c.Feed.ReconnectDelay = 0 },
			wantErr: "reconnect_delay",
		},
		{
			name:    "zero buffer",
			mutate:  func(c *TrackerConfig) { c.Feed.BufferSize = 0 },
			wantErr: "buffer_size",
		},
		{
			name:    "bad server port",
			mutate:  func(c *TrackerConfig) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "bad metrics port",
			mutate:  func(c *TrackerConfig) { c.Metrics.Port = -1 },
			wantErr: "metrics.port",
		},
		{
			name: "port collision",
			mutate: func(c *TrackerConfig) {
				c.Metrics.Port = c.Server.Port
			},
			wantErr: "differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}
