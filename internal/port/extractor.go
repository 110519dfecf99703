package port

import (
	"context"

	"github.com/bnema/showsaver/internal/domain"
)

// ProgressEvent is one raw per-stream notification from the extraction
// backend. Events are consumed once and never stored.
type ProgressEvent struct {
	Status             string
	DownloadedBytes    int64
	TotalBytes         int64
	TotalBytesEstimate int64
	Filename           string
	VideoCodec         string
	AudioCodec         string
}

// EventStatusDownloading tags events carrying byte counts for an
// in-flight stream; other statuses (e.g. "finished") are terminal
// markers and carry no progress.
const EventStatusDownloading = "downloading"

// Extractor resolves an episode URL to metadata and performs the actual
// media download, reporting raw progress through the supplied callback.
type Extractor interface {
	Resolve(ctx context.Context, url string) (*domain.EpisodeMeta, error)
	Download(ctx context.Context, url string, progress func(ProgressEvent)) (filePath string, err error)
}

// Browser lists the catalog's new-releases page.
type Browser interface {
	NewReleases(ctx context.Context) ([]domain.Release, error)
}
