package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

const validConfig = `
auth:
  jwt_secret: "0123456789abcdef0123456789abcdef"
email:
  smtp:
    host: mail.example.com
    port: 587
    from: chat@example.com
members:
  - id: u1
    display_name: Ada Lovelace
    email: ada@example.com
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.BaseURL != "http://0.0.0.0:8080" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Database.Path != "./data/pagechat.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Storage.AttachmentDir != "./data/attachments" {
		t.Errorf("Storage.AttachmentDir = %q", cfg.Storage.AttachmentDir)
	}
	if cfg.Chat.PollInterval != 4*time.Second {
		t.Errorf("Chat.PollInterval = %v, want default 4s", cfg.Chat.PollInterval)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadClampsPollInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		want     time.Duration
	}{
		{"below minimum", "500ms", 2 * time.Second},
		{"above maximum", "60s", 15 * time.Second},
		{"within range", "6s", 6 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validConfig+"\nchat:\n  poll_interval: "+tt.interval+"\n"))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Chat.PollInterval != tt.want {
				t.Errorf("Chat.PollInterval = %v, want %v", cfg.Chat.PollInterval, tt.want)
			}
		})
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{"missing secret", `
email:
  smtp:
    host: mail.example.com
    port: 587
    from: chat@example.com
`, "jwt_secret is required"},
		{"short secret", `
auth:
  jwt_secret: "short"
email:
  smtp:
    host: mail.example.com
    port: 587
    from: chat@example.com
`, "at least 32 characters"},
		{"missing smtp host", `
auth:
  jwt_secret: "0123456789abcdef0123456789abcdef"
email:
  smtp:
    port: 587
    from: chat@example.com
`, "smtp.host is required"},
		{"member without email", validConfig + `
  - id: u2
    display_name: No Email
`, "members[1].email is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.contents))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PAGECHAT_JWT_SECRET", "fedcba9876543210fedcba9876543210")
	t.Setenv("PAGECHAT_SMTP_PASSWORD", "hunter2")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.JWTSecret != "fedcba9876543210fedcba9876543210" {
		t.Errorf("JWTSecret not overridden from environment")
	}
	if cfg.Email.SMTP.Password != "hunter2" {
		t.Errorf("SMTP password not overridden from environment")
	}
}
