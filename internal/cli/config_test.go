package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KDB-USJP/BNDL-Lite/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	// Point the default location at an empty directory.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.AssetMode != "proxy" {
		t.Errorf("AssetMode = %q, want %q", cfg.AssetMode, "proxy")
	}
	if cfg.Cache.Backend != cacheBackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, cacheBackendFile)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL.Duration)
	}
	if cfg.Serve.Addr != defaultServeAddr {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, defaultServeAddr)
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")

	_, err := loadConfig(path)
	if err == nil {
		t.Fatal("loadConfig() should fail for a missing --config path")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeFileNotFound {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeFileNotFound)
	}
}

func TestLoadConfigFull(t *testing.T) {
	path := writeConfig(t, `
digits = 4
asset_mode = "bundle"

[names]
prefix1 = "studio"
suffix1 = "approved"

[cache]
backend = "redis"
ttl = "30m"
redis_url = "redis://localhost:6379/1"

[serve]
addr = ":9090"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.Digits != 4 {
		t.Errorf("Digits = %d, want 4", cfg.Digits)
	}
	if cfg.AssetMode != "bundle" {
		t.Errorf("AssetMode = %q, want %q", cfg.AssetMode, "bundle")
	}
	if cfg.Names.Prefix1 != "studio" || cfg.Names.Suffix1 != "approved" {
		t.Errorf("Names = %+v, want prefix1=studio suffix1=approved", cfg.Names)
	}
	if cfg.Cache.Backend != cacheBackendRedis {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, cacheBackendRedis)
	}
	if cfg.Cache.TTL.Duration != 30*time.Minute {
		t.Errorf("Cache.TTL = %v, want 30m", cfg.Cache.TTL.Duration)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("Cache.RedisURL = %q", cfg.Cache.RedisURL)
	}
	if cfg.Serve.Addr != ":9090" {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, ":9090")
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := writeConfig(t, "digits = 5\n")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.Digits != 5 {
		t.Errorf("Digits = %d, want 5", cfg.Digits)
	}

	// Unset fields keep their defaults.
	if cfg.AssetMode != "proxy" {
		t.Errorf("AssetMode = %q, want %q", cfg.AssetMode, "proxy")
	}
	if cfg.Cache.Backend != cacheBackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, cacheBackendFile)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL.Duration)
	}
}

func TestLoadConfigBadBackend(t *testing.T) {
	path := writeConfig(t, "[cache]\nbackend = \"memcached\"\n")

	_, err := loadConfig(path)
	if err == nil {
		t.Fatal("loadConfig() should reject an unknown cache backend")
	}
	if !strings.Contains(err.Error(), "unknown cache backend") {
		t.Errorf("error = %q, want mention of unknown cache backend", err)
	}
	if code := errors.GetCode(err); code != errors.ErrCodeInvalidInput {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeInvalidInput)
	}
}

func TestLoadConfigBadAssetMode(t *testing.T) {
	path := writeConfig(t, "asset_mode = \"inline\"\n")

	_, err := loadConfig(path)
	if err == nil {
		t.Fatal("loadConfig() should reject an unknown asset mode")
	}
	if code := errors.GetCode(err); code != errors.ErrCodeInvalidInput {
		t.Errorf("error code = %q, want %q", code, errors.ErrCodeInvalidInput)
	}
}

func TestLoadConfigBadTOML(t *testing.T) {
	path := writeConfig(t, "digits = [not toml\n")

	_, err := loadConfig(path)
	if err == nil {
		t.Fatal("loadConfig() should fail on malformed TOML")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want load config prefix", err)
	}
}

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		text    string
		want    time.Duration
		wantErr bool
	}{
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"1.5h", 90 * time.Minute, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var d duration
			err := d.UnmarshalText([]byte(tt.text))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("UnmarshalText(%q) should fail", tt.text)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalText(%q) error: %v", tt.text, err)
			}
			if d.Duration != tt.want {
				t.Errorf("UnmarshalText(%q) = %v, want %v", tt.text, d.Duration, tt.want)
			}
		})
	}
}

func TestNamesAffixes(t *testing.T) {
	n := NamesConfig{Prefix1: "studio", Prefix2: "v2", Suffix1: "final"}
	aff := n.Affixes()

	if aff.Prefix1 != "studio" || aff.Prefix2 != "v2" || aff.Suffix1 != "final" {
		t.Errorf("Affixes() = %+v", aff)
	}
}
