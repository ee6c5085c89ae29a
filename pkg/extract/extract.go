// Package extract unpacks archive payloads (tar.gz, zip and friends) after
// they have been installed into the cache. Extraction never runs on
// unverified content; callers extract only what EnsureCached returned.
package extract

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	"github.com/glorpus-work/taskfetch/pkg/errors"
	"github.com/glorpus-work/taskfetch/pkg/fsutil"
)

// Extract unpacks the archive at archivePath into destDir, creating destDir
// if needed. Entries that would escape destDir are rejected.
func Extract(ctx context.Context, archivePath, destDir string) error {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return errors.Wrapf(err, "could not open archive %s", archivePath)
	}
	// Close the underlying archive filesystem when done (important on Windows)
	if closer, ok := fsys.(io.Closer); ok {
		defer closer.Close()
	}

	if err := fsutil.EnsureDir(destDir); err != nil {
		return errors.Wrap(err, "could not create extraction directory")
	}

	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == "." {
			return nil
		}
		target, err := safeJoin(destDir, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsutil.EnsureDir(target)
		}
		return copyEntry(fsys, path, target)
	})
}

func copyEntry(fsys fs.FS, path, target string) error {
	in, err := fsys.Open(path)
	if err != nil {
		return errors.Wrapf(err, "could not open archive entry %s", path)
	}
	defer func() { _ = in.Close() }()

	if err := fsutil.EnsureFileDir(target); err != nil {
		return errors.Wrapf(err, "could not create directory for %s", target)
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", target)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, "could not write %s", target)
	}
	return out.Close()
}

// safeJoin joins an archive entry name onto destDir, rejecting absolute
// paths and entries that climb out of the extraction directory.
func safeJoin(destDir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return "", errors.Wrapf(errors.ErrInvalidPath, "archive entry %s escapes the extraction directory", name)
	}
	return filepath.Join(destDir, clean), nil
}
