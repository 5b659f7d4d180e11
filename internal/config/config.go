package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix for environment variable overrides (SCHEMA_VAULT_VAULT_DIR etc.)
const EnvPrefix = "SCHEMA_VAULT"

// VaultConfig holds the settings the backup manager re-reads on every
// operation. It is deliberately a value snapshot: the provider is the
// source of truth and may change between calls.
type VaultConfig struct {
	Enabled      bool   `mapstructure:"enabled" yaml:"enabled"`
	Root         string `mapstructure:"root" yaml:"root"`
	Dir          string `mapstructure:"dir" yaml:"dir"`
	MaxPerObject int    `mapstructure:"max_per_object" yaml:"max_per_object"`
	AutoCleanup  bool   `mapstructure:"auto_cleanup" yaml:"auto_cleanup"`
	CleanupDays  int    `mapstructure:"cleanup_days" yaml:"cleanup_days"`
}

// ResolvedDir returns the vault directory, resolving a relative Dir
// against Root
func (c VaultConfig) ResolvedDir() string {
	if filepath.IsAbs(c.Dir) {
		return c.Dir
	}
	root := c.Root
	if root == "" {
		root = "."
	}
	return filepath.Join(root, c.Dir)
}

// ArchiveConfig holds archive export settings
type ArchiveConfig struct {
	Compression string           `mapstructure:"compression" yaml:"compression"`
	Level       int              `mapstructure:"level" yaml:"level"`
	Encryption  EncryptionConfig `mapstructure:"encryption" yaml:"encryption"`
	S3          S3Config         `mapstructure:"s3" yaml:"s3"`
}

// EncryptionConfig defines archive encryption settings
type EncryptionConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	KeySource string `mapstructure:"key_source" yaml:"key_source"` // "env" or "file"
	KeyEnvVar string `mapstructure:"key_env_var" yaml:"key_env_var"`
	KeyPath   string `mapstructure:"key_path" yaml:"key_path"`
}

// S3Config defines the optional S3 archive target
type S3Config struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Region    string `mapstructure:"region" yaml:"region"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
}

// DatabaseConfig identifies the database used to resolve live definitions
type DatabaseConfig struct {
	Host     string        `mapstructure:"host" yaml:"host"`
	Port     int           `mapstructure:"port" yaml:"port"`
	Username string        `mapstructure:"username" yaml:"username"`
	Password string        `mapstructure:"password" yaml:"password"`
	Database string        `mapstructure:"database" yaml:"database"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DSN builds a go-sql-driver/mysql connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&timeout=%s",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Timeout)
}

// Provider reads configuration through viper. Values are re-read on
// every accessor call and never cached, since the backing file or
// environment may change externally.
type Provider struct {
	v *viper.Viper
}

// NewProvider creates a provider over the given viper instance; nil uses
// the global instance
func NewProvider(v *viper.Viper) *Provider {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)
	return &Provider{v: v}
}

// SetDefaults installs default values on a viper instance
func SetDefaults(v *viper.Viper) {
	v.SetDefault("vault.enabled", true)
	v.SetDefault("vault.root", ".")
	v.SetDefault("vault.dir", "schema-backups")
	v.SetDefault("vault.max_per_object", 10)
	v.SetDefault("vault.auto_cleanup", false)
	v.SetDefault("vault.cleanup_days", 90)

	v.SetDefault("vault.archive.compression", "gzip")
	v.SetDefault("vault.archive.level", 0)
	v.SetDefault("vault.archive.encryption.enabled", false)
	v.SetDefault("vault.archive.encryption.key_source", "env")
	v.SetDefault("vault.archive.encryption.key_env_var", "SCHEMA_VAULT_ARCHIVE_KEY")
	v.SetDefault("vault.archive.s3.enabled", false)
	v.SetDefault("vault.archive.s3.prefix", "schema-vault/")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.timeout", "30s")
}

// SetupEnv enables environment variable overrides on a viper instance
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Vault returns a fresh snapshot of the vault settings. Keys are read
// individually so flag, Set, and environment overrides all apply.
func (p *Provider) Vault() VaultConfig {
	return VaultConfig{
		Enabled:      p.v.GetBool("vault.enabled"),
		Root:         p.v.GetString("vault.root"),
		Dir:          p.v.GetString("vault.dir"),
		MaxPerObject: p.v.GetInt("vault.max_per_object"),
		AutoCleanup:  p.v.GetBool("vault.auto_cleanup"),
		CleanupDays:  p.v.GetInt("vault.cleanup_days"),
	}
}

// Archive returns a fresh snapshot of the archive settings
func (p *Provider) Archive() ArchiveConfig {
	cfg := ArchiveConfig{
		Compression: p.v.GetString("vault.archive.compression"),
		Level:       p.v.GetInt("vault.archive.level"),
		Encryption: EncryptionConfig{
			Enabled:   p.v.GetBool("vault.archive.encryption.enabled"),
			KeySource: p.v.GetString("vault.archive.encryption.key_source"),
			KeyEnvVar: p.v.GetString("vault.archive.encryption.key_env_var"),
			KeyPath:   p.v.GetString("vault.archive.encryption.key_path"),
		},
		S3: S3Config{
			Enabled:   p.v.GetBool("vault.archive.s3.enabled"),
			Bucket:    p.v.GetString("vault.archive.s3.bucket"),
			Region:    p.v.GetString("vault.archive.s3.region"),
			AccessKey: p.v.GetString("vault.archive.s3.access_key"),
			SecretKey: p.v.GetString("vault.archive.s3.secret_key"),
			Prefix:    p.v.GetString("vault.archive.s3.prefix"),
		},
	}
	if cfg.Compression == "" {
		cfg.Compression = "gzip"
	}
	return cfg
}

// Database returns a fresh snapshot of the database settings
func (p *Provider) Database() DatabaseConfig {
	cfg := DatabaseConfig{
		Host:     p.v.GetString("database.host"),
		Port:     p.v.GetInt("database.port"),
		Username: p.v.GetString("database.username"),
		Password: p.v.GetString("database.password"),
		Database: p.v.GetString("database.database"),
		Timeout:  p.v.GetDuration("database.timeout"),
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg
}

// WriteDefaultConfig writes a YAML config file populated with defaults.
// It refuses to overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	v := viper.New()
	SetDefaults(v)

	data, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return fmt.Errorf("failed to marshal default configuration: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
