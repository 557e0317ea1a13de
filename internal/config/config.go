package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/scorchedearth/internal/logging"
)

// RefereeConfig holds runtime settings for the referee HTTP node.
type RefereeConfig struct {
	ID              string
	Addr            string
	BasePath        string
	CorsOrigins     []string
	TrustedProxies  []string
	MaxChannels     int
	ShutdownTimeout time.Duration
	LogProfile      string
	APIToken        string
	TLSCertFile     string
	TLSKeyFile      string
}

// referee.toml key mapping to RefereeConfig.
type fileConfig struct {
	ID              string   `toml:"id"`
	Addr            string   `toml:"addr"`
	BasePath        string   `toml:"base_path"`
	CorsOrigins     []string `toml:"cors_origins"`
	TrustedProxies  []string `toml:"trusted_proxies"`
	MaxChannels     int      `toml:"max_channels"`
	ShutdownTimeout string   `toml:"shutdown_timeout"`
	LogProfile      string   `toml:"log_profile"`
	APIToken        string   `toml:"api_token"`
	TLSCertFile     string   `toml:"tls_cert_file"`
	TLSKeyFile      string   `toml:"tls_key_file"`
}

func DefaultRefereeConfig() RefereeConfig {
	return RefereeConfig{
		ID:              "referee",
		Addr:            ":9200",
		CorsOrigins:     []string{"http://localhost:3000"},
		TrustedProxies:  []string{"127.0.0.1", "::1"},
		MaxChannels:     1024,
		ShutdownTimeout: 5 * time.Second,
		LogProfile:      "runtime",
	}
}

// LoadRefereeConfig decodes path over DefaultRefereeConfig; keys absent from
// the file keep their defaults.
func LoadRefereeConfig(path string) (RefereeConfig, error) {
	cfg := DefaultRefereeConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return RefereeConfig{}, fmt.Errorf("load referee config (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return RefereeConfig{}, fmt.Errorf("load referee config (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("id") {
		cfg.ID = strings.TrimSpace(raw.ID)
	}
	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("base_path") {
		cfg.BasePath = strings.TrimRight(strings.TrimSpace(raw.BasePath), "/")
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = raw.CorsOrigins
	}
	if meta.IsDefined("trusted_proxies") {
		cfg.TrustedProxies = raw.TrustedProxies
	}
	if meta.IsDefined("max_channels") {
		cfg.MaxChannels = raw.MaxChannels
	}
	if meta.IsDefined("shutdown_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ShutdownTimeout))
		if err != nil {
			return RefereeConfig{}, fmt.Errorf("load referee config (%s): shutdown_timeout: %w", path, err)
		}
		cfg.ShutdownTimeout = d
	}
	if meta.IsDefined("log_profile") {
		cfg.LogProfile = strings.TrimSpace(raw.LogProfile)
	}
	if meta.IsDefined("api_token") {
		cfg.APIToken = strings.TrimSpace(raw.APIToken)
	}
	if meta.IsDefined("tls_cert_file") {
		cfg.TLSCertFile = resolvePath(path, raw.TLSCertFile)
	}
	if meta.IsDefined("tls_key_file") {
		cfg.TLSKeyFile = resolvePath(path, raw.TLSKeyFile)
	}

	if err := ValidateRefereeConfig(cfg); err != nil {
		return RefereeConfig{}, fmt.Errorf("load referee config (%s): %w", path, err)
	}
	return cfg, nil
}

func ValidateRefereeConfig(cfg RefereeConfig) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("referee config missing id")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("referee config missing addr")
	}
	if cfg.BasePath != "" && !strings.HasPrefix(cfg.BasePath, "/") {
		return fmt.Errorf("referee config base_path must start with /")
	}
	if cfg.MaxChannels < 0 {
		return fmt.Errorf("referee config max_channels must not be negative")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("referee config shutdown_timeout must be positive")
	}
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return fmt.Errorf("referee config tls_cert_file and tls_key_file must be set together")
	}
	if _, err := logging.ParseProfile(cfg.LogProfile); err != nil {
		return fmt.Errorf("referee config: %w", err)
	}
	return nil
}

// resolvePath makes a relative path relative to the config file's directory.
func resolvePath(configPath, raw string) string {
	p := strings.TrimSpace(raw)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}
