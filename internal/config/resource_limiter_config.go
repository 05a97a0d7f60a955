package config

// ResourceLimiterConfig holds configuration for the resource watchdog
type ResourceLimiterConfig struct {
	Enabled              bool    `json:"enabled" yaml:"enabled"`
	MaxMemoryMB          int64   `json:"max_memory_mb,omitempty" yaml:"max_memory_mb,omitempty" validate:"omitempty,min=1"`
	MaxGoroutines        int     `json:"max_goroutines,omitempty" yaml:"max_goroutines,omitempty" validate:"omitempty,min=1"`
	CheckIntervalSeconds int     `json:"check_interval_seconds,omitempty" yaml:"check_interval_seconds,omitempty" validate:"omitempty,min=1"`
	MemoryThreshold      float64 `json:"memory_threshold,omitempty" yaml:"memory_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
	SystemMemThreshold   float64 `json:"system_mem_threshold,omitempty" yaml:"system_mem_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
	CPUThreshold         float64 `json:"cpu_threshold,omitempty" yaml:"cpu_threshold,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// NewDefaultResourceLimiterConfig creates default resource limiter configuration
func NewDefaultResourceLimiterConfig() ResourceLimiterConfig {
	return ResourceLimiterConfig{
		Enabled:              false,
		MaxMemoryMB:          512,
		MaxGoroutines:        1000,
		CheckIntervalSeconds: 30,
		MemoryThreshold:      0.8,
		SystemMemThreshold:   0.9,
		CPUThreshold:         0.9,
	}
}
