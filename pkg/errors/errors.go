// Package errors defines the shared error values for taskfetch. Callers
// classify failures with errors.Is against these sentinels instead of
// matching on message text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Common error types.
var (
	// Config errors.
	ErrNoSources        = fmt.Errorf("no source endpoints were provided")
	ErrEmptyConfigPath  = fmt.Errorf("config file path cannot be empty")
	ErrConfigParse      = fmt.Errorf("failed to parse config")
	ErrConfigValidation = fmt.Errorf("invalid configuration")

	// Download errors.
	ErrDownloadFailed = fmt.Errorf("download failed")
	ErrRequestSetup   = fmt.Errorf("request setup failed")

	// Integrity errors.
	ErrChecksumMismatch = fmt.Errorf("payload checksum mismatch")
	ErrInvalidChecksum  = fmt.Errorf("invalid checksum")
	ErrFileRead         = fmt.Errorf("failed to read file")

	// Cache errors.
	ErrCacheDirectory = fmt.Errorf("cache directory cannot be empty")
	ErrCacheClean     = fmt.Errorf("failed to clean cache")
	ErrInvalidPath    = fmt.Errorf("invalid path")

	// Manifest errors.
	ErrManifestInvalid   = fmt.Errorf("invalid manifest")
	ErrAgentVersionUnmet = fmt.Errorf("agent version does not satisfy manifest requirement")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
