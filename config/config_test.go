package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestProcessConfigDefaults(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		viper.Reset()
		cfg := Config{}
		processConfigDefaults(&cfg)

		if cfg.StoreBackend != BackendSQLite {
			t.Errorf("Expected StoreBackend to be sqlite, got %s", cfg.StoreBackend)
		}
		if cfg.MinecraftDir != ".minecraft" {
			t.Errorf("Expected MinecraftDir to be .minecraft, got %s", cfg.MinecraftDir)
		}
		if cfg.UserAgent == "" {
			t.Error("Expected UserAgent to have a default value")
		}
		if cfg.LaunchDelayMin != 600*time.Millisecond || cfg.LaunchDelayMax != 1400*time.Millisecond {
			t.Errorf("Unexpected launch delay bounds %s..%s", cfg.LaunchDelayMin, cfg.LaunchDelayMax)
		}
		if cfg.LaunchSettleDelay != time.Second {
			t.Errorf("Expected settle delay 1s, got %s", cfg.LaunchSettleDelay)
		}
		if cfg.InstallDelayMin != 400*time.Millisecond || cfg.InstallDelayMax != time.Second {
			t.Errorf("Unexpected install delay bounds %s..%s", cfg.InstallDelayMin, cfg.InstallDelayMax)
		}
	})

	t.Run("respects existing values", func(t *testing.T) {
		viper.Reset()
		cfg := Config{
			StoreBackend:   " Redis ",
			UserAgent:      "custom-agent",
			SkinBaseURL:    "https://skins.example.com/",
			LaunchDelayMin: time.Millisecond,
			LaunchDelayMax: 2 * time.Millisecond,
		}
		processConfigDefaults(&cfg)

		if cfg.StoreBackend != BackendRedis {
			t.Errorf("Expected StoreBackend to be normalized to redis, got %q", cfg.StoreBackend)
		}
		if cfg.UserAgent != "custom-agent" {
			t.Errorf("Expected UserAgent to stay custom-agent, got %s", cfg.UserAgent)
		}
		if cfg.SkinBaseURL != "https://skins.example.com" {
			t.Errorf("Expected trailing slash trimmed, got %s", cfg.SkinBaseURL)
		}
		if cfg.LaunchDelayMax != 2*time.Millisecond {
			t.Errorf("Expected LaunchDelayMax to stay 2ms, got %s", cfg.LaunchDelayMax)
		}
	})
}

func TestValidateAndEnsureDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing launcher dir", func(t *testing.T) {
		cfg := Config{LauncherDir: "", StoreBackend: BackendSQLite}
		if err := validateAndEnsureDirectories(&cfg); err == nil {
			t.Error("Expected error for missing LauncherDir")
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := Config{LauncherDir: tmpDir, StoreBackend: "etcd"}
		if err := validateAndEnsureDirectories(&cfg); err == nil {
			t.Error("Expected error for unknown backend")
		}
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		cfg := Config{LauncherDir: tmpDir, StoreBackend: BackendPostgres}
		if err := validateAndEnsureDirectories(&cfg); err == nil {
			t.Error("Expected error for missing DATABASE_DSN")
		}
	})

	t.Run("inverted delay bounds", func(t *testing.T) {
		cfg := Config{
			LauncherDir:    tmpDir,
			StoreBackend:   BackendSQLite,
			LaunchDelayMin: 2 * time.Second,
			LaunchDelayMax: time.Second,
		}
		if err := validateAndEnsureDirectories(&cfg); err == nil {
			t.Error("Expected error for min delay above max delay")
		}
	})

	t.Run("creates directories", func(t *testing.T) {
		root := filepath.Join(tmpDir, "launcher")
		cfg := Config{LauncherDir: root, StoreBackend: BackendSQLite}
		if err := validateAndEnsureDirectories(&cfg); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		for _, dir := range []string{root, filepath.Join(root, "skins")} {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				t.Errorf("Directory %s was not created", dir)
			}
		}
		if cfg.DatabasePath != filepath.Join(root, "launcher.db") {
			t.Errorf("Unexpected DatabasePath %s", cfg.DatabasePath)
		}
		if cfg.SkinDir != filepath.Join(root, "skins") {
			t.Errorf("Unexpected SkinDir %s", cfg.SkinDir)
		}
	})
}
