package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/alistmover/internal/errorwrapper"
	"github.com/aleister1102/alistmover/internal/logger"
	"gopkg.in/yaml.v3"
)

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	AlistConfig           AlistConfig           `json:"alist,omitempty" yaml:"alist,omitempty"`
	MonitorConfig         MonitorConfig         `json:"monitor,omitempty" yaml:"monitor,omitempty"`
	NotificationConfig    NotificationConfig    `json:"notification,omitempty" yaml:"notification,omitempty"`
	LedgerConfig          LedgerConfig          `json:"ledger,omitempty" yaml:"ledger,omitempty"`
	LogConfig             logger.FileLogConfig  `json:"log,omitempty" yaml:"log,omitempty"`
	ResourceLimiterConfig ResourceLimiterConfig `json:"resource_limiter,omitempty" yaml:"resource_limiter,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		AlistConfig:           NewDefaultAlistConfig(),
		MonitorConfig:         NewDefaultMonitorConfig(),
		NotificationConfig:    NewDefaultNotificationConfig(),
		LedgerConfig:          NewDefaultLedgerConfig(),
		LogConfig:             logger.NewDefaultFileLogConfig(),
		ResourceLimiterConfig: NewDefaultResourceLimiterConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath and supports both
// JSON and YAML formats; YAML is preferred for .yaml/.yml extensions.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		return nil, errorwrapper.NewValidationError("config_file", providedPath, "no config file found")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to load config file content")
	}

	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to parse config content")
	}

	return cfg, nil
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

// parseJSONConfig parses JSON configuration
func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
