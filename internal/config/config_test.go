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
	path := filepath.Join(t.TempDir(), "referee.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRefereeConfigDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
id = "referee.alpha"
addr = "127.0.0.1:9443"
base_path = "/api/"
max_channels = 16
shutdown_timeout = "250ms"
`)
	cfg, err := LoadRefereeConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ID != "referee.alpha" {
		t.Fatalf("unexpected id: %q", cfg.ID)
	}
	if cfg.Addr != "127.0.0.1:9443" {
		t.Fatalf("unexpected addr: %q", cfg.Addr)
	}
	if cfg.BasePath != "/api" {
		t.Fatalf("unexpected base path: %q", cfg.BasePath)
	}
	if cfg.MaxChannels != 16 {
		t.Fatalf("unexpected max channels: %d", cfg.MaxChannels)
	}
	if cfg.ShutdownTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected shutdown timeout: %v", cfg.ShutdownTimeout)
	}

	def := DefaultRefereeConfig()
	if len(cfg.CorsOrigins) != 1 || cfg.CorsOrigins[0] != def.CorsOrigins[0] {
		t.Fatalf("expected default cors origins, got %v", cfg.CorsOrigins)
	}
	if cfg.LogProfile != def.LogProfile {
		t.Fatalf("expected default log profile, got %q", cfg.LogProfile)
	}
}

func TestLoadRefereeConfigExplicitZeroOverridesDefault(t *testing.T) {
	path := writeConfig(t, `
max_channels = 0
cors_origins = []
`)
	cfg, err := LoadRefereeConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MaxChannels != 0 {
		t.Fatalf("expected unlimited channels, got %d", cfg.MaxChannels)
	}
	if len(cfg.CorsOrigins) != 0 {
		t.Fatalf("expected empty cors origins, got %v", cfg.CorsOrigins)
	}
}

func TestLoadRefereeConfigRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "empty id", content: `id = "  "`, want: "missing id"},
		{name: "empty addr", content: `addr = ""`, want: "missing addr"},
		{name: "relative base path", content: `base_path = "api"`, want: "base_path"},
		{name: "negative channels", content: `max_channels = -1`, want: "max_channels"},
		{name: "bad duration", content: `shutdown_timeout = "soon"`, want: "shutdown_timeout"},
		{name: "zero duration", content: `shutdown_timeout = "0s"`, want: "shutdown_timeout"},
		{name: "bad profile", content: `log_profile = "loud"`, want: "log profile"},
		{name: "unknown key", content: `listen = ":1"`, want: "unknown key"},
		{name: "syntax", content: `id = `, want: "load referee config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRefereeConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadRefereeConfigMissingFile(t *testing.T) {
	if _, err := LoadRefereeConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestTemplatesLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "referee.toml")
	if err := WriteTemplate(path, "referee", false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := LoadRefereeConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.ID != "referee" || cfg.Addr != ":9200" {
		t.Fatalf("unexpected template config: %+v", cfg)
	}
	if err := WriteTemplate(path, "referee", false); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	if err := WriteTemplate(path, "scenario", true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := Template("ghost"); err == nil {
		t.Fatal("expected unknown kind error")
	}
}

func TestLoadRefereeConfigTLSAndToken(t *testing.T) {
	path := writeConfig(t, `
api_token = " s3cret "
tls_cert_file = "certs/referee.crt"
tls_key_file = "/etc/referee/referee.key"
`)
	cfg, err := LoadRefereeConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIToken != "s3cret" {
		t.Fatalf("unexpected token: %q", cfg.APIToken)
	}
	if want := filepath.Join(filepath.Dir(path), "certs", "referee.crt"); cfg.TLSCertFile != want {
		t.Fatalf("cert path = %q, want %q", cfg.TLSCertFile, want)
	}
	if cfg.TLSKeyFile != "/etc/referee/referee.key" {
		t.Fatalf("unexpected key path: %q", cfg.TLSKeyFile)
	}

	if _, err := LoadRefereeConfig(writeConfig(t, `tls_cert_file = "a.crt"`)); err == nil {
		t.Fatal("expected error for cert without key")
	}
}
