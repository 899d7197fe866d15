package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPermissionOctal is the default file and folder permission octal used
// throughout the application
const DefaultPermissionOctal os.FileMode = 0o770

var errPathIsDir = errors.New("path is a directory")

// Exists returns whether or not a file or path exists
func Exists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// Write writes selected data to a file atomically. The data is staged in a
// temporary file in the same directory and renamed over the target so readers
// never observe a partially written file.
func Write(file string, data []byte) error {
	if info, err := os.Stat(file); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s", errPathIsDir, file)
	}
	basePath := filepath.Dir(file)
	if err := os.MkdirAll(basePath, DefaultPermissionOctal); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(basePath, filepath.Base(file)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err = os.Rename(tmpName, file); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
