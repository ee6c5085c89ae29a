// Package cache installs verified task payloads into a local cache directory.
// A cache entry is only ever written through a single atomic rename, so no
// reader can observe a partially written or corrupted file, and concurrent
// installs for the same destination are safe without locks.
package cache

import (
	"context"
	"os"
	"path/filepath"

	"github.com/glorpus-work/taskfetch/pkg/digest"
	"github.com/glorpus-work/taskfetch/pkg/errors"
	"github.com/glorpus-work/taskfetch/pkg/fsutil"
	"github.com/glorpus-work/taskfetch/pkg/model"
)

// Manager implements the download-verify-install protocol on top of a
// Downloader and a cache directory. Temp artifacts and destinations live in
// the same directory so the final rename stays on one volume.
type Manager struct {
	dl       Downloader
	cacheDir string
}

// NewManager creates a cache manager. cacheDir must be on the same volume as
// every destination passed to EnsureCached.
func NewManager(dl Downloader, cacheDir string) (*Manager, error) {
	if cacheDir == "" {
		return nil, errors.ErrCacheDirectory
	}
	if err := fsutil.EnsureDir(cacheDir); err != nil {
		return nil, errors.Wrap(err, "failed to create cache directory")
	}
	return &Manager{dl: dl, cacheDir: cacheDir}, nil
}

// Dir returns the cache directory path.
func (m *Manager) Dir() string {
	return m.cacheDir
}

// EnsureCached makes sure destination holds content matching file.Sha256 and
// returns destination. If the file is already cached with the right digest it
// returns immediately without any network access. Otherwise the payload is
// downloaded from the first source that serves it into a uniquely named temp
// file, verified, and renamed onto destination. On any failure the temp file
// is removed and destination is left exactly as it was.
func (m *Manager) EnsureCached(ctx context.Context, sources []string, destination string, file model.FileSpec) (string, error) {
	if err := file.Validate(); err != nil {
		return "", err
	}

	if fsutil.Exists(destination) {
		actual, err := digest.SHA256File(destination)
		if err != nil {
			return "", err
		}
		if actual == file.Sha256 {
			if err := fsutil.ApplyPayloadPerms(destination); err != nil {
				return "", errors.Wrap(err, "could not set payload permissions")
			}
			return destination, nil
		}
	}

	if len(sources) == 0 {
		return "", errors.Wrapf(errors.ErrNoSources, "cannot download payload %s", file.Filename)
	}

	tempPath, err := m.allocTempPath()
	if err != nil {
		return "", err
	}

	if err := m.dl.Fetch(ctx, sources, file.URI, tempPath); err != nil {
		_ = os.Remove(tempPath)
		return "", errors.Wrapf(err, "downloading the payload file %s failed", file.Filename)
	}

	actual, err := digest.SHA256File(tempPath)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", err
	}
	if actual != file.Sha256 {
		_ = os.Remove(tempPath)
		return "", errors.Wrapf(errors.ErrChecksumMismatch,
			"the downloaded file %s has a SHA that differs from the provided SHA", file.Filename)
	}

	if err := os.Rename(tempPath, destination); err != nil {
		_ = os.Remove(tempPath)
		return "", errors.Wrapf(err, "could not install %s", file.Filename)
	}
	return destination, nil
}

// EnsureManifest fetches every file of a manifest into the cache directory
// and returns a map from filename to installed path. Files already cached
// with the right digest are skipped.
func (m *Manager) EnsureManifest(ctx context.Context, sources []string, manifest model.Manifest) (map[string]string, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	installed := make(map[string]string, len(manifest.Files))
	for _, file := range manifest.Files {
		destination := filepath.Join(m.cacheDir, filepath.Base(file.Filename))
		path, err := m.EnsureCached(ctx, sources, destination, file)
		if err != nil {
			return nil, err
		}
		installed[file.Filename] = path
	}
	return installed, nil
}

// allocTempPath reserves a collision-resistant unique name inside the cache
// directory. Only the name is kept; the file itself is created by the
// transport, which treats "destination exists" as proof of a completed
// attempt.
func (m *Manager) allocTempPath() (string, error) {
	tmp, err := os.CreateTemp(m.cacheDir, "temp_payload_*")
	if err != nil {
		return "", errors.Wrap(err, "could not create temp file in cache directory")
	}
	tempPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "could not close temp file")
	}
	if err := os.Remove(tempPath); err != nil {
		return "", errors.Wrap(err, "could not remove temp file placeholder")
	}
	return tempPath, nil
}
