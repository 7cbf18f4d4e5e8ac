package config

import "os"

// Environment variable names for git-issue configuration.
const (
	EnvDir       = "GIT_ISSUE_DIR"        // Path to the store root
	EnvLogLevel  = "GIT_ISSUE_LOG_LEVEL"  // Override log.level
	EnvLogFormat = "GIT_ISSUE_LOG_FORMAT" // Override log.format
)

// ApplyEnvOverrides copies GIT_ISSUE_LOG_LEVEL and GIT_ISSUE_LOG_FORMAT into
// s in memory. These overrides are not persisted to the config file.
func ApplyEnvOverrides(s Store) {
	if level := os.Getenv(EnvLogLevel); level != "" {
		s.SetInMemory(KeyLogLevel, level)
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		s.SetInMemory(KeyLogFormat, format)
	}
}
