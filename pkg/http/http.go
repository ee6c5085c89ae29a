// Package http implements the outbound transport used to fetch payloads. It
// issues blocking GETs with separate connect and total timeouts and streams
// the response body to a file. Failures are split into two classes: setup
// failures (request construction, connection establishment) wrap
// errors.ErrRequestSetup, everything specific to the requested resource
// (HTTP status, body transfer, writing the file) wraps errors.ErrDownloadFailed.
package http

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/glorpus-work/taskfetch/pkg/errors"
	"github.com/glorpus-work/taskfetch/pkg/fsutil"
)

const defaultUserAgent = "taskfetch/1.0"

// Client handles HTTP operations against payload sources.
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient creates a transport client. connectTimeout bounds connection
// establishment, totalTimeout bounds the whole request including the body.
func NewClient(connectTimeout, totalTimeout time.Duration, userAgent string) *Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		client: &http.Client{
			Timeout: totalTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
			},
		},
		userAgent: userAgent,
	}
}

// DownloadFile fetches rawURL and writes the body to destPath. The body is
// streamed to a private temp file in destPath's directory and renamed onto
// destPath only once fully written, so destPath exists if and only if the
// download succeeded. Payload permissions are applied to the written file.
func (c *Client) DownloadFile(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return errors.Wrapf(errors.ErrRequestSetup, "failed to create request for %s: %v", rawURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrRequestSetup, "failed to connect to %s: %v", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s returned HTTP status %d: %w", rawURL, resp.StatusCode, errors.ErrDownloadFailed)
	}

	if err := writeBodyToFile(resp.Body, destPath); err != nil {
		return err
	}
	if err := fsutil.ApplyPayloadPerms(destPath); err != nil {
		return errors.Wrap(err, "could not set payload permissions")
	}
	return nil
}

func writeBodyToFile(body io.Reader, destPath string) error {
	if err := fsutil.EnsureFileDir(destPath); err != nil {
		return errors.Wrap(err, "could not create destination directory")
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), "dl-*.tmp")
	if err != nil {
		return errors.Wrapf(errors.ErrDownloadFailed, "could not create temp file: %v", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrapf(errors.ErrDownloadFailed, "could not write %s: %v", destPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.Wrapf(errors.ErrDownloadFailed, "could not sync %s: %v", destPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(errors.ErrDownloadFailed, "could not close %s: %v", destPath, err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(errors.ErrDownloadFailed, "could not finalize %s: %v", destPath, err)
	}
	return nil
}
