package types

import "time"

// MonitoringStatus represents the current state of clipboard monitoring
type MonitoringStatus struct {
	IsRunning       bool      `json:"is_running"`
	State           string    `json:"state"`
	Backend         string    `json:"backend"`
	LastChangeCount int64     `json:"last_change_count"`
	LastActivity    time.Time `json:"last_activity"`
	Captured        int       `json:"captured"`
	Ignored         int       `json:"ignored"`
	ErrorCount      int       `json:"error_count"`
	LastError       string    `json:"last_error,omitempty"`
}
