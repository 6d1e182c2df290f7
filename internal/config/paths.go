package config

import (
	"os"
	"path/filepath"
)

// ScribePath returns the root directory for Scribe data.
// It uses $SCRIBE_PATH if set, otherwise defaults to ~/.scribe.
func ScribePath() string {
	if v := os.Getenv("SCRIBE_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".scribe")
	}
	return filepath.Join(home, ".scribe")
}

// ConfigPath returns the path to the Scribe config file.
func ConfigPath() string {
	return filepath.Join(ScribePath(), "config.jsonc")
}

// DotenvPath returns the path to the Scribe .env file.
func DotenvPath() string {
	return filepath.Join(ScribePath(), ".env")
}

// ConversationsPath returns the directory holding persisted conversations.
func ConversationsPath() string {
	return filepath.Join(ScribePath(), "conversations")
}

// LogsPath returns the directory holding event audit logs.
func LogsPath() string {
	return filepath.Join(ScribePath(), "logs")
}
