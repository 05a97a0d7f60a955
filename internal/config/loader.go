package config

import (
	"os"
	"path/filepath"
)

// ConfigPathEnvVar overrides the config search when set.
const ConfigPathEnvVar = "ALISTMOVER_CONFIG_PATH"

// GetConfigPath resolves the configuration file path. Priority: explicit
// flag value, environment variable, then config.yaml/config.json next to the
// working directory and the executable.
func GetConfigPath(configFilePathFlag string) string {
	// 1. Command-line flag (highest priority if provided directly to this function)
	if configFilePathFlag != "" {
		if _, err := os.Stat(configFilePathFlag); err == nil {
			return configFilePathFlag
		}
	}

	// 2. Environment variable
	envPath := os.Getenv(ConfigPathEnvVar)
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// 3. Default file names in cwd and executable directory
	cwd, errCwd := os.Getwd()
	exePath, errExe := os.Executable()
	exeDir := ""
	if errExe == nil {
		exeDir = filepath.Dir(exePath)
	}

	defaultFiles := []string{"config.yaml", "config.json"}
	locations := []string{}

	if errCwd == nil {
		locations = append(locations, cwd)
	}
	if exeDir != "" && exeDir != cwd {
		locations = append(locations, exeDir)
	}

	for _, location := range locations {
		for _, fileName := range defaultFiles {
			candidate := filepath.Join(location, fileName)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}

	return ""
}
