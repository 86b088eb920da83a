package driven

import (
	"context"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

// ReleaseSource discovers published versions of the helper.
type ReleaseSource interface {
	// LatestRelease returns the newest published release.
	// Any failure, including a non-success status, is a *domain.NetworkError.
	LatestRelease(ctx context.Context) (*domain.Release, error)

	// ResolveDownloadURL follows the asset redirect and returns the content URL.
	// An unknown asset id is a *domain.NetworkError.
	ResolveDownloadURL(ctx context.Context, assetID int64) (string, error)
}

// ProgressFunc receives bytes written so far and the expected total.
// Total is -1 when the size is unknown.
type ProgressFunc func(done, total int64)

// ArtifactFetcher downloads a file to disk.
type ArtifactFetcher interface {
	// Fetch streams url to dest, calling onProgress after every chunk.
	// dest exists only if Fetch returns nil.
	Fetch(ctx context.Context, url, dest string, onProgress ProgressFunc) error
}
