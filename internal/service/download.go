package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/showsaver/internal/infrastructure/logger"
	"github.com/bnema/showsaver/internal/port"
)

// DownloadService runs the full acquisition pipeline for one URL:
// metadata resolution, season correction, the media download itself,
// placement into the library tree and the best-effort rescan
// notification. It is invoked only from the queue worker, one URL at a
// time.
type DownloadService struct {
	extractor port.Extractor
	corrector *Corrector
	library   port.LibraryNotifier
	showDir   string
	overrides map[string]string
	cleanup   bool
}

func NewDownloadService(
	extractor port.Extractor,
	corrector *Corrector,
	library port.LibraryNotifier,
	showDir string,
	overrides map[string]string,
	cleanup bool,
) *DownloadService {
	return &DownloadService{
		extractor: extractor,
		corrector: corrector,
		library:   library,
		showDir:   showDir,
		overrides: overrides,
		cleanup:   cleanup,
	}
}

// Process downloads the episode behind url and returns its final library
// path. Raw extractor events are folded through a StepTracker and
// reported via progress. Any returned error marks the job failed; rescan
// failures only warn.
func (s *DownloadService) Process(ctx context.Context, url string, progress func(ProgressUpdate)) (string, error) {
	meta, err := s.extractor.Resolve(ctx, url)
	if err != nil {
		return "", fmt.Errorf("resolve metadata: %w", err)
	}

	if corrected, correctedMeta := s.corrector.Correct(ctx, url, meta); corrected != "" {
		url = corrected
		meta = correctedMeta
	}

	tracker := NewStepTracker()
	tmpPath, err := s.extractor.Download(ctx, url, func(ev port.ProgressEvent) {
		if ev.Status != port.EventStatusDownloading || progress == nil {
			return
		}
		progress(tracker.Observe(ev))
	})
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}

	destPath, err := s.placeInLibrary(meta.Series, meta.SeasonNumber, tmpPath)
	if err != nil {
		return "", fmt.Errorf("copy to library: %w", err)
	}

	if s.library != nil && s.library.Enabled() && meta.Series != "" {
		if err := s.library.RescanSeries(ctx, meta.Series); err != nil {
			logger.Warn.Printf("library rescan for %s: %v", logger.SanitizeForLog(meta.Series), err)
		}
	}

	if s.cleanup {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logger.Warn.Printf("cleanup of %s: %v", tmpPath, err)
		}
	}

	return destPath, nil
}

// placeInLibrary copies the downloaded file to
// <showDir>/<series>/Season <n>/<filename>, applying the series name
// override to both the folder and the filename so on-disk naming matches
// the library catalog.
func (s *DownloadService) placeInLibrary(series string, season int, srcPath string) (string, error) {
	filename := filepath.Base(srcPath)
	if override, ok := s.overrides[series]; ok {
		filename = strings.Replace(filename, series, override, 1)
		series = override
	}

	destDir := filepath.Join(s.showDir, safePathComponent(series), fmt.Sprintf("Season %d", season))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create destination directory: %w", err)
	}

	destPath := filepath.Join(destDir, safePathComponent(filename))
	if err := copyFile(srcPath, destPath); err != nil {
		return "", err
	}

	logger.Info.Printf("copied episode to %s", destPath)
	return destPath, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck
		return fmt.Errorf("copy: %w", err)
	}
	return out.Close()
}
