package database

import (
	"os"
	"path/filepath"
)

// DefaultSQLitePath returns ~/.slotwise/slotwise.db.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".slotwise", "slotwise.db")
}

// EnsureDirectory creates the parent directory of path if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
