package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
)

// EnsureDir creates a directory and all necessary parent directories if they
// don't exist, using DirModeSecure permissions.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeSecure)
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// Exists reports whether path exists on the filesystem. Any stat error other
// than "not exist" is treated as absent; callers that need to distinguish
// should stat themselves.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ApplyPayloadPerms sets the cached payload permission policy on path.
// Windows does not carry POSIX permission bits, so the chmod is skipped there.
func ApplyPayloadPerms(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, PayloadFileMode)
}
