//go:generate mockgen -destination=./mocks/download.go -package=mocks . Transport,Manager

package download

import (
	"context"

	"github.com/glorpus-work/taskfetch/pkg/model"
)

// Transport is the outbound HTTP capability the downloader delegates to. An
// implementation must stream the response body to destPath such that destPath
// exists if and only if the attempt succeeded, and must report setup-class
// failures (request construction, connection establishment) wrapped in
// errors.ErrRequestSetup so they can be told apart from resource-specific ones.
type Transport interface {
	DownloadFile(ctx context.Context, url, destPath string) error
}

// Manager defines the interface for fetching a payload from an ordered list
// of candidate sources.
type Manager interface {
	// Fetch tries each source in order until one delivers the payload to
	// destPath. Source-local failures are logged and the next source is
	// tried; setup-class failures abort immediately.
	Fetch(ctx context.Context, sources []string, uri model.SourceURI, destPath string) error
}
