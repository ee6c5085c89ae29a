// Package fsutil provides utility functions and constants for file system operations.
package fsutil

// File and directory permission constants.
const (
	// PayloadFileMode is applied to every cached payload: owner read/write/
	// execute, group read/execute. Task payloads may be scripts, so the
	// execute bits stay on.
	PayloadFileMode = 0o750 // -rwxr-x---

	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--
	FileModeSecure  = 0o640 // -rw-r-----

	// Default directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x
	DirModeSecure  = 0o750 // drwxr-x---
	DirModePrivate = 0o700 // drwx------
)
