package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mc-launcher/logger"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Supported persistence backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendRedis    = "redis"
)

const (
	defaultManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"
	defaultSkinBaseURL = "https://mc-heads.net"
	defaultUserAgent   = "mc-launcher/dev (offline)"
	defaultJavaPath    = "java"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a config file and/or environment variables.
type Config struct {
	LauncherDir  string `mapstructure:"LAUNCHER_DIR"`  // Launcher data root (database, skins)
	MinecraftDir string `mapstructure:"MINECRAFT_DIR"` // Game root; profile directories live under it
	JavaPath     string `mapstructure:"JAVA_PATH"`
	UserAgent    string `mapstructure:"USERAGENT"`

	StoreBackend  string `mapstructure:"STORE_BACKEND"`
	DatabaseDSN   string `mapstructure:"DATABASE_DSN"` // postgres / mysql only
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	ManifestURL string `mapstructure:"VERSION_MANIFEST_URL"`
	SkinBaseURL string `mapstructure:"SKIN_BASE_URL"`

	LaunchDelayMin    time.Duration `mapstructure:"LAUNCH_DELAY_MIN"`
	LaunchDelayMax    time.Duration `mapstructure:"LAUNCH_DELAY_MAX"`
	LaunchSettleDelay time.Duration `mapstructure:"LAUNCH_SETTLE_DELAY"`
	InstallDelayMin   time.Duration `mapstructure:"INSTALL_DELAY_MIN"`
	InstallDelayMax   time.Duration `mapstructure:"INSTALL_DELAY_MAX"`

	KeepOrphanedMods bool `mapstructure:"KEEP_ORPHANED_MODS"`

	// Optional S3-compatible skin bucket. R2 endpoints are used when R2AccountID is set.
	SkinBucket        string `mapstructure:"SKIN_BUCKET"`
	R2AccountID       string `mapstructure:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `mapstructure:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret string `mapstructure:"R2_ACCESS_KEY_SECRET"`
	SkinPublicURL     string `mapstructure:"SKIN_PUBLIC_URL"`

	DatabasePath string `mapstructure:"-"` // Not from env, derived
	SkinDir      string `mapstructure:"-"` // Not from env, derived
}

// envKeys lists every key bound to an environment variable of the same name.
var envKeys = []string{
	"LAUNCHER_DIR", "MINECRAFT_DIR", "JAVA_PATH", "USERAGENT",
	"STORE_BACKEND", "DATABASE_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"VERSION_MANIFEST_URL", "SKIN_BASE_URL",
	"LAUNCH_DELAY_MIN", "LAUNCH_DELAY_MAX", "LAUNCH_SETTLE_DELAY",
	"INSTALL_DELAY_MIN", "INSTALL_DELAY_MAX",
	"KEEP_ORPHANED_MODS",
	"SKIN_BUCKET", "R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_ACCESS_KEY_SECRET", "SKIN_PUBLIC_URL",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		logger.Log.Info("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	viper.AutomaticEnv()
	for _, key := range envKeys {
		if err := viper.BindEnv(key, key); err != nil {
			logger.Log.Warnw("Unable to bind env var", zap.String("key", key), zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}

	processConfigDefaults(&config)

	if err := validateAndEnsureDirectories(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// processConfigDefaults fills every unset value with its default.
func processConfigDefaults(config *Config) {
	if config.LauncherDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			config.LauncherDir = filepath.Join(home, ".mc-launcher")
		}
	}
	if config.MinecraftDir == "" {
		config.MinecraftDir = ".minecraft"
	}
	if config.JavaPath == "" {
		config.JavaPath = defaultJavaPath
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
		logger.Log.Warn("USERAGENT not set in config or environment, using default.")
	}
	config.StoreBackend = strings.ToLower(strings.TrimSpace(config.StoreBackend))
	if config.StoreBackend == "" {
		config.StoreBackend = BackendSQLite
	}
	if config.RedisAddr == "" {
		config.RedisAddr = "localhost:6379"
	}
	if config.ManifestURL == "" {
		config.ManifestURL = defaultManifestURL
	}
	if config.SkinBaseURL == "" {
		config.SkinBaseURL = defaultSkinBaseURL
	}
	config.SkinBaseURL = strings.TrimRight(config.SkinBaseURL, "/")

	if config.LaunchDelayMin == 0 && config.LaunchDelayMax == 0 {
		config.LaunchDelayMin = 600 * time.Millisecond
		config.LaunchDelayMax = 1400 * time.Millisecond
	}
	if config.LaunchSettleDelay == 0 {
		config.LaunchSettleDelay = time.Second
	}
	if config.InstallDelayMin == 0 && config.InstallDelayMax == 0 {
		config.InstallDelayMin = 400 * time.Millisecond
		config.InstallDelayMax = 1000 * time.Millisecond
	}
}

// validateAndEnsureDirectories checks cross-field rules, derives paths and
// creates the launcher data directories.
func validateAndEnsureDirectories(config *Config) error {
	if config.LauncherDir == "" {
		logger.Log.Error("LAUNCHER_DIR is not set")
		return fmt.Errorf("LAUNCHER_DIR is required")
	}

	switch config.StoreBackend {
	case BackendSQLite, BackendRedis:
	case BackendPostgres, BackendMySQL:
		if config.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s backend", config.StoreBackend)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", config.StoreBackend)
	}

	if config.LaunchDelayMin > config.LaunchDelayMax {
		return fmt.Errorf("LAUNCH_DELAY_MIN (%s) exceeds LAUNCH_DELAY_MAX (%s)", config.LaunchDelayMin, config.LaunchDelayMax)
	}
	if config.InstallDelayMin > config.InstallDelayMax {
		return fmt.Errorf("INSTALL_DELAY_MIN (%s) exceeds INSTALL_DELAY_MAX (%s)", config.InstallDelayMin, config.InstallDelayMax)
	}

	config.SkinDir = filepath.Join(config.LauncherDir, "skins")
	for _, dir := range []string{config.LauncherDir, config.SkinDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			logger.Log.Infow("Directory does not exist, creating it", zap.String("path", dir))
			if err := os.MkdirAll(dir, 0755); err != nil {
				logger.Log.Errorw("Failed to create directory", zap.String("path", dir), zap.Error(err))
				return err
			}
		} else if err != nil {
			logger.Log.Errorw("Failed to check directory", zap.String("path", dir), zap.Error(err))
			return err
		}
	}

	// Keep the database next to the rest of the launcher data for portability
	config.DatabasePath = filepath.Join(config.LauncherDir, "launcher.db")

	return nil
}
