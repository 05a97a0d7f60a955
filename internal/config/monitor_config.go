package config

// MonitorConfig defines configuration for the monitoring loop
type MonitorConfig struct {
	SourcePath           string `json:"source_path" yaml:"source_path" validate:"required,startswith=/"`
	DestPath             string `json:"dest_path" yaml:"dest_path" validate:"required,startswith=/"`
	CheckIntervalSeconds int    `json:"check_interval_seconds,omitempty" yaml:"check_interval_seconds,omitempty" validate:"omitempty,min=1"`
	DeleteSource         bool   `json:"delete_source" yaml:"delete_source"`

	// StablePolls is the number of consecutive listings an entry's size must
	// stay identical before it is considered fully written. Minimum 2: a
	// single observation can never prove stability.
	StablePolls int `json:"stable_polls,omitempty" yaml:"stable_polls,omitempty" validate:"omitempty,min=2"`

	// MaxCycles limits the number of polling cycles; 0 means run indefinitely.
	MaxCycles int `json:"max_cycles,omitempty" yaml:"max_cycles,omitempty" validate:"omitempty,min=0"`

	// CopyWaitAttempts and CopyWaitSeconds bound how long the transfer engine
	// polls the destination for a copied entry to appear (alist copies are
	// asynchronous server-side).
	CopyWaitAttempts int `json:"copy_wait_attempts,omitempty" yaml:"copy_wait_attempts,omitempty" validate:"omitempty,min=1"`
	CopyWaitSeconds  int `json:"copy_wait_seconds,omitempty" yaml:"copy_wait_seconds,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		SourcePath:           "",
		DestPath:             "",
		CheckIntervalSeconds: 60,
		DeleteSource:         true,
		StablePolls:          2,
		MaxCycles:            0,
		CopyWaitAttempts:     10,
		CopyWaitSeconds:      5,
	}
}
