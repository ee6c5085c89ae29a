// Package digest computes content fingerprints for cached payloads. The
// installer uses it both as a cheap pre-check on existing cache entries and
// as the mandatory post-download verification.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"regexp"

	"github.com/glorpus-work/taskfetch/pkg/errors"
)

// chunkSize is the read granularity when streaming a file through the hash.
const chunkSize = 32 * 1024

var hexDigestRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// SHA256File streams the file at path through a SHA-256 accumulator and
// returns the digest as 64 lowercase hex characters. Identical content always
// yields an identical digest. A read failure before EOF is reported wrapped
// in errors.ErrFileRead.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(errors.ErrFileRead, "could not open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.Wrapf(errors.ErrFileRead, "error while reading %s: %v", path, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsValid reports whether s is a well-formed SHA-256 digest: exactly 64
// lowercase hex characters.
func IsValid(s string) bool {
	return hexDigestRe.MatchString(s)
}
