package cache

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/taskfetch/pkg/errors"
	"github.com/glorpus-work/taskfetch/pkg/fsutil"
)

// Info describes the current state of the payload cache.
type Info struct {
	Directory string
	Files     int
	TotalSize int64
}

// GetInfo walks the cache directory and reports file count and total size.
func (m *Manager) GetInfo() (*Info, error) {
	info := &Info{Directory: m.cacheDir}

	size, count, err := dirSizeAndFiles(m.cacheDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get cache info for %s", m.cacheDir)
	}
	info.Files = count
	info.TotalSize = size
	return info, nil
}

// Clean removes every cached payload (including stale temp artifacts left by
// crashed runs), recreates the empty cache directory and returns the number
// of bytes freed.
func (m *Manager) Clean() (int64, error) {
	size, _, err := dirSizeAndFiles(m.cacheDir)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCacheClean, err.Error())
	}

	if err := os.RemoveAll(m.cacheDir); err != nil {
		return 0, errors.Wrapf(errors.ErrCacheClean, "failed to remove %s: %v", m.cacheDir, err)
	}
	if err := fsutil.EnsureDir(m.cacheDir); err != nil {
		return size, errors.Wrapf(errors.ErrCacheClean, "failed to recreate %s: %v", m.cacheDir, err)
	}
	return size, nil
}

// dirSizeAndFiles calculates directory size and file count.
func dirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.Walk(dir, func(_ string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	return size, count, err
}
