package history

import (
	"time"

	"github.com/berrythewa/clipstash/internal/types"
)

const (
	DefaultMaxItems           = 30
	DefaultMaxPinned          = 10
	DefaultAutoDeleteDuration = 7 * 24 * time.Hour
	// SensitiveRetention bounds how long a flagged entry survives unpinned.
	SensitiveRetention = 24 * time.Hour
)

// AllowedMaxItems are the history sizes offered to users.
var AllowedMaxItems = []int{20, 30, 50, 100}

// Configuration is the part of the user settings the store acts on.
type Configuration struct {
	MaxItems           int
	MaxPinned          int
	DetectSensitive    bool
	SkipSensitive      bool
	EnableCategories   bool
	EnableAutoDelete   bool
	AutoDeleteDuration time.Duration
	SensitiveRetention time.Duration
	ExcludedApps       types.AppSet
	EncryptStorage     bool
}

// DefaultConfiguration returns the out-of-the-box settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxItems:           DefaultMaxItems,
		MaxPinned:          DefaultMaxPinned,
		DetectSensitive:    true,
		EnableCategories:   true,
		AutoDeleteDuration: DefaultAutoDeleteDuration,
		SensitiveRetention: SensitiveRetention,
		ExcludedApps:       types.AppSet{},
		EncryptStorage:     true,
	}
}

// IsAllowedMaxItems reports whether n is one of AllowedMaxItems.
func IsAllowedMaxItems(n int) bool {
	for _, v := range AllowedMaxItems {
		if v == n {
			return true
		}
	}
	return false
}

// Retention is the general age limit applied by the sweep, zero when auto
// delete is off.
func (c Configuration) Retention() time.Duration {
	if !c.EnableAutoDelete {
		return 0
	}
	return c.AutoDeleteDuration
}

func (c Configuration) normalized() Configuration {
	if c.MaxItems <= 0 {
		c.MaxItems = DefaultMaxItems
	}
	if c.MaxPinned <= 0 {
		c.MaxPinned = DefaultMaxPinned
	}
	if c.SensitiveRetention <= 0 {
		c.SensitiveRetention = SensitiveRetention
	}
	if c.AutoDeleteDuration < 0 {
		c.AutoDeleteDuration = 0
	}
	if c.ExcludedApps == nil {
		c.ExcludedApps = types.AppSet{}
	} else {
		c.ExcludedApps = c.ExcludedApps.Clone()
	}
	return c
}
