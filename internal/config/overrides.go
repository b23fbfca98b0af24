package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. CLIPSTASH_LOG_LEVEL.
const EnvPrefix = "CLIPSTASH"

// Override keys. Each is both a flag name and, upper-cased with the
// prefix, an environment variable.
const (
	KeyLogLevel     = "log-level"
	KeyLogFormat    = "log-format"
	KeyMaxItems     = "max-items"
	KeyPollInterval = "poll-interval"
	KeyEncrypt      = "encrypt"
	KeySocket       = "socket"
	KeyDBPath       = "db-path"
)

// NewViper returns a viper instance reading CLIPSTASH_* variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds a command's flags so explicitly set flags win over env.
//
// Precedence (lowest → highest): defaults → config file → CLIPSTASH_* env vars → flags
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// ApplyOverrides copies every override that was set into cfg.
func ApplyOverrides(cfg *Config, v *viper.Viper) error {
	if v.IsSet(KeyLogLevel) {
		cfg.Log.Level = v.GetString(KeyLogLevel)
	}
	if v.IsSet(KeyLogFormat) {
		cfg.Log.Format = v.GetString(KeyLogFormat)
	}
	if v.IsSet(KeyMaxItems) {
		cfg.History.MaxItems = v.GetInt(KeyMaxItems)
	}
	if v.IsSet(KeyPollInterval) {
		cfg.Monitor.PollInterval = v.GetDuration(KeyPollInterval)
	}
	if v.IsSet(KeyEncrypt) {
		cfg.History.EncryptStorage = v.GetBool(KeyEncrypt)
	}
	if v.IsSet(KeySocket) {
		cfg.SystemPaths.SocketPath = v.GetString(KeySocket)
	}
	if v.IsSet(KeyDBPath) {
		cfg.Storage.DBPath = v.GetString(KeyDBPath)
	}
	return cfg.Validate()
}
