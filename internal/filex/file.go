// Package filex holds the few filesystem helpers the client needs to place
// its local cache.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// UserDataPath returns <user config dir>/<app>/<name>, falling back to the
// working directory when the platform has no config dir.
func UserDataPath(app, name string) string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		if base, err = os.Getwd(); err != nil {
			return name
		}
	}
	return filepath.Join(base, app, name)
}
