package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetConfigDefaultsWhenFileAbsent(t *testing.T) {
	c, err := GetConfig(filepath.Join(t.TempDir(), "no-such-config.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.CheckInterval != 24*time.Hour {
		t.Errorf("CheckInterval = %v, want 24h", c.CheckInterval)
	}
	if c.Email.Enabled {
		t.Error("email should be disabled by default")
	}
	if c.Desktop.Enabled {
		t.Error("desktop notifications should be disabled by default")
	}
	if c.DatabaseURI != "mongodb://localhost:27017" {
		t.Errorf("DatabaseURI = %q", c.DatabaseURI)
	}
	if c.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", c.MaxRetries)
	}
	if c.Cooldown != 24*time.Hour {
		t.Errorf("Cooldown = %v, want 24h", c.Cooldown)
	}
	if len(c.UserAgents) == 0 {
		t.Error("expected default user agent list")
	}
	if c.MaxPrice != 1000000 {
		t.Errorf("MaxPrice = %v, want 1000000", c.MaxPrice)
	}
}

func TestGetConfigParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
database_uri = "mongodb://db:27017"
log_level = "DEBUG"

[email]
enabled = true
smtp_host = "smtp.example.com"
smtp_port = 2525
sender = "alerts@example.com"
password = "secret"
recipient = "me@example.com"

[scraping]
max_retries = 5
request_timeout = "20s"
request_delay = "1s"

[notification]
cooldown_hours = 6

[scheduler]
check_interval = "1h"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := GetConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DatabaseURI != "mongodb://db:27017" {
		t.Errorf("DatabaseURI = %q", c.DatabaseURI)
	}
	if !c.Email.Enabled || c.Email.SMTPPort != 2525 {
		t.Errorf("email config not parsed: %+v", c.Email)
	}
	if c.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", c.MaxRetries)
	}
	if c.RequestTimeout != 20*time.Second {
		t.Errorf("RequestTimeout = %v", c.RequestTimeout)
	}
	if c.Cooldown != 6*time.Hour {
		t.Errorf("Cooldown = %v", c.Cooldown)
	}
	if c.CheckInterval != time.Hour {
		t.Errorf("CheckInterval = %v", c.CheckInterval)
	}
}

func TestGetConfigRejectsShortInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[scheduler]\ncheck_interval = \"5s\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := GetConfig(path); err == nil {
		t.Error("expected error for too-short check_interval")
	}
}

func TestGetConfigEmailRequiresHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[email]\nenabled = true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := GetConfig(path); err == nil {
		t.Error("expected error when email enabled without smtp_host")
	}
}
