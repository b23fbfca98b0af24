// File: internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/berrythewa/clipstash/internal/history"
	"github.com/berrythewa/clipstash/internal/types"
)

// ConfigPaths holds all relevant paths for the application
type ConfigPaths struct {
	BaseDir         string // Base directory for configuration
	ConfigFile      string // Path to the YAML config file
	DataDir         string // Directory for application data
	DBFile          string // Path to the history database
	FingerprintFile string // Cached device fingerprint for the storage key
	LogDir          string // Directory for log files
	SocketPath      string // Daemon IPC socket
}

// Config holds all application configuration
type Config struct {
	DeviceName string `json:"device_name" yaml:"device_name"`

	// Derived from the environment on every load, never persisted
	SystemPaths ConfigPaths `json:"system_paths" yaml:"-"`

	Log     LogConfig     `json:"log" yaml:"log"`
	History HistoryConfig `json:"history" yaml:"history"`
	Monitor MonitorConfig `json:"monitor" yaml:"monitor"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level             string `json:"level" yaml:"level"`
	Format            string `json:"format" yaml:"format"` // "auto", "json" or "console"
	EnableFileLogging bool   `json:"enable_file_logging" yaml:"enable_file_logging"`
}

// HistoryConfig holds the user-facing history settings
type HistoryConfig struct {
	MaxItems         int           `json:"max_items" yaml:"max_items"`
	MaxPinned        int           `json:"max_pinned" yaml:"max_pinned"`
	DetectSensitive  bool          `json:"detect_sensitive" yaml:"detect_sensitive"`
	SkipSensitive    bool          `json:"skip_sensitive" yaml:"skip_sensitive"`
	EnableCategories bool          `json:"enable_categories" yaml:"enable_categories"`
	EnableAutoDelete bool          `json:"enable_auto_delete" yaml:"enable_auto_delete"`
	AutoDeleteAfter  time.Duration `json:"auto_delete_after" yaml:"auto_delete_after"`
	EncryptStorage   bool          `json:"encrypt_storage" yaml:"encrypt_storage"`
	ExcludedApps     []string      `json:"excluded_apps" yaml:"excluded_apps"`
}

// MonitorConfig holds clipboard polling options
type MonitorConfig struct {
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`
	Debounce     time.Duration `json:"debounce" yaml:"debounce"` // 0 disables
	SuppressFor  time.Duration `json:"suppress_for" yaml:"suppress_for"`
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	DBPath                 string `json:"db_path" yaml:"db_path"`
	MaxPersistedImageBytes int    `json:"max_persisted_image_bytes" yaml:"max_persisted_image_bytes"`
}

// GetConfigPaths returns the platform-specific configuration paths
func GetConfigPaths() (*ConfigPaths, error) {
	baseDir := os.Getenv("CLIPSTASH_CONFIG_DIR")
	if baseDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		switch runtime.GOOS {
		case "darwin":
			baseDir = filepath.Join(configDir, "com.berrythewa.clipstash")
		default:
			baseDir = filepath.Join(configDir, "clipstash")
		}
	}

	dataDir := os.Getenv("CLIPSTASH_DATA_DIR")
	if dataDir == "" {
		var err error
		dataDir, err = defaultDataDir()
		if err != nil {
			return nil, err
		}
	}

	paths := &ConfigPaths{
		BaseDir:         baseDir,
		ConfigFile:      filepath.Join(baseDir, "config.yaml"),
		DataDir:         dataDir,
		DBFile:          filepath.Join(dataDir, "history.db"),
		FingerprintFile: filepath.Join(dataDir, "device.id"),
		LogDir:          filepath.Join(dataDir, "logs"),
		SocketPath:      defaultSocketPath(),
	}

	for _, dir := range []string{paths.BaseDir, paths.DataDir, paths.LogDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func defaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", "clipstash"), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "clipstash"), nil
		}
		return filepath.Join(homeDir, ".local", "share", "clipstash"), nil
	}
}

func defaultSocketPath() string {
	if path := os.Getenv("CLIPSTASH_SOCKET"); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("clipstash-%d.sock", os.Getuid()))
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	hostname, _ := os.Hostname()
	h := history.DefaultConfiguration()

	cfg := &Config{
		DeviceName: hostname,
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		History: HistoryConfig{
			MaxItems:         h.MaxItems,
			MaxPinned:        h.MaxPinned,
			DetectSensitive:  h.DetectSensitive,
			SkipSensitive:    h.SkipSensitive,
			EnableCategories: h.EnableCategories,
			EnableAutoDelete: h.EnableAutoDelete,
			AutoDeleteAfter:  h.AutoDeleteDuration,
			EncryptStorage:   h.EncryptStorage,
			ExcludedApps:     []string{},
		},
		Monitor: MonitorConfig{
			PollInterval: 500 * time.Millisecond,
			Debounce:     200 * time.Millisecond,
			SuppressFor:  time.Second,
		},
		Storage: StorageConfig{
			MaxPersistedImageBytes: 10 * 1024 * 1024,
		},
	}

	if paths, err := GetConfigPaths(); err == nil {
		cfg.SystemPaths = *paths
		cfg.Storage.DBPath = paths.DBFile
	}
	return cfg
}

// Load loads the configuration from the specified file or creates default if not exists
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		configPath = cfg.SystemPaths.ConfigFile
	}
	if configPath == "" {
		return nil, errors.New("no config path available")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.Save(configPath); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal over the defaults so missing keys keep their default
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.SystemPaths.ConfigFile = configPath
	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = cfg.SystemPaths.DBFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to the specified file
func (c *Config) Save(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects unknown enum values and clamps numeric settings into range
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
		c.Log.Level = strings.ToLower(c.Log.Level)
	case "":
		c.Log.Level = "info"
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "auto", "json", "console":
	case "", "text":
		c.Log.Format = "auto"
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	c.History.MaxItems = clampMaxItems(c.History.MaxItems)
	if c.History.MaxPinned <= 0 {
		c.History.MaxPinned = history.DefaultMaxPinned
	}
	if c.History.AutoDeleteAfter <= 0 {
		c.History.AutoDeleteAfter = history.DefaultAutoDeleteDuration
	}
	if c.Monitor.PollInterval < 50*time.Millisecond {
		c.Monitor.PollInterval = 50 * time.Millisecond
	}
	if c.Monitor.Debounce < 0 {
		c.Monitor.Debounce = 0
	}
	if c.Monitor.SuppressFor <= 0 {
		c.Monitor.SuppressFor = time.Second
	}
	if c.Storage.MaxPersistedImageBytes < 0 {
		c.Storage.MaxPersistedImageBytes = 0
	}
	return nil
}

// clampMaxItems rounds n up to the next allowed history size
func clampMaxItems(n int) int {
	if n <= 0 {
		return history.DefaultMaxItems
	}
	for _, allowed := range history.AllowedMaxItems {
		if n <= allowed {
			return allowed
		}
	}
	return history.AllowedMaxItems[len(history.AllowedMaxItems)-1]
}

// HistoryConfiguration projects the settings the history store acts on
func (c *Config) HistoryConfiguration() history.Configuration {
	return history.Configuration{
		MaxItems:           c.History.MaxItems,
		MaxPinned:          c.History.MaxPinned,
		DetectSensitive:    c.History.DetectSensitive,
		SkipSensitive:      c.History.SkipSensitive,
		EnableCategories:   c.History.EnableCategories,
		EnableAutoDelete:   c.History.EnableAutoDelete,
		AutoDeleteDuration: c.History.AutoDeleteAfter,
		SensitiveRetention: history.SensitiveRetention,
		ExcludedApps:       types.NewAppSet(c.History.ExcludedApps...),
		EncryptStorage:     c.History.EncryptStorage,
	}
}

// LogFile returns the log file path used when file logging is on
func (c *Config) LogFile() string {
	return filepath.Join(c.SystemPaths.LogDir, "clipstash.log")
}
