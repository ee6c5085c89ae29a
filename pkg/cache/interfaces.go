//go:generate mockgen -destination=./mocks/cache.go -package=mocks . Downloader

package cache

import (
	"context"

	"github.com/glorpus-work/taskfetch/pkg/model"
)

// Downloader is the subset of the download manager used by the installer.
type Downloader interface {
	Fetch(ctx context.Context, sources []string, uri model.SourceURI, destPath string) error
}
