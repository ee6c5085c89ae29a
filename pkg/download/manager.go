package download

import (
	"context"
	"fmt"

	"github.com/glorpus-work/taskfetch/internal/logger"
	"github.com/glorpus-work/taskfetch/pkg/errors"
	"github.com/glorpus-work/taskfetch/pkg/fsutil"
	"github.com/glorpus-work/taskfetch/pkg/model"
)

// ManagerImpl fetches a payload by walking an ordered list of candidate
// sources and delegating each attempt to the Transport. Retry state lives
// entirely within one Fetch call.
type ManagerImpl struct {
	transport Transport
}

// NewManager creates a download manager on top of the given transport.
func NewManager(transport Transport) *ManagerImpl {
	return &ManagerImpl{transport: transport}
}

// Fetch tries each source in order, building the full URL as source +
// endpoint, until destPath exists. Source-local failures (HTTP status >= 400,
// transfer or file-write errors) are logged at warning level and the next
// source is tried. Setup-class failures abort the loop and propagate. When
// every source has been exhausted the most recent source-local diagnostic is
// carried in the returned error.
func (m *ManagerImpl) Fetch(ctx context.Context, sources []string, uri model.SourceURI, destPath string) error {
	endpoint := BuildEndpoint(uri.Path, uri.Params)

	var lastErr error
	for _, source := range sources {
		url := source + endpoint

		if err := m.transport.DownloadFile(ctx, url, destPath); err != nil {
			if errors.Is(err, errors.ErrRequestSetup) {
				return errors.Wrap(err, "downloading the payload failed")
			}
			// Source-side error, try the next candidate.
			logger.Warnf("Downloading the payload from source '%s' failed. Reason: %v", source, err)
			lastErr = err
		}

		if fsutil.Exists(destPath) {
			return nil
		}
	}

	if lastErr != nil {
		return fmt.Errorf("all sources exhausted, most recent error: %v: %w", lastErr, errors.ErrDownloadFailed)
	}
	return errors.Wrap(errors.ErrDownloadFailed, "all sources exhausted")
}
