package files

import (
	"fmt"
	"os"
	"path/filepath"
)

// SaveFile replaces the file at filePath with data.
// If the destination directory doesn't exist, it will be created.
// The data is written to a temporary file in the same directory and renamed into place,
// so the previous contents stay intact until the new ones are complete.
func SaveFile(filePath string, data []byte) error {
	dirPath := filepath.Dir(filePath)
	// Create directories recursively
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dirPath, "."+filepath.Base(filePath)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return err
	}

	return os.Rename(tmpName, filePath)
}
