package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/showsaver/internal/domain"
	"github.com/bnema/showsaver/internal/port"
)

// fakeExtractor resolves fixed metadata and "downloads" by writing a file
// into tmpDir, replaying scripted events through the progress callback.
type fakeExtractor struct {
	meta       *domain.EpisodeMeta
	resolveErr error
	events     []port.ProgressEvent
	tmpDir     string
	filename   string
	dlErr      error
	downloads  []string
}

func (f *fakeExtractor) Resolve(_ context.Context, _ string) (*domain.EpisodeMeta, error) {
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	return f.meta, nil
}

func (f *fakeExtractor) Download(_ context.Context, url string, progress func(port.ProgressEvent)) (string, error) {
	f.downloads = append(f.downloads, url)
	if f.dlErr != nil {
		return "", f.dlErr
	}
	for _, ev := range f.events {
		progress(ev)
	}
	path := filepath.Join(f.tmpDir, f.filename)
	if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeLibrary struct {
	enabled bool
	err     error
	rescans []string
}

func (f *fakeLibrary) Enabled() bool { return f.enabled }

func (f *fakeLibrary) RescanSeries(_ context.Context, series string) error {
	f.rescans = append(f.rescans, series)
	return f.err
}

func neverCorrect(extractor port.Extractor) *Corrector {
	return NewCorrector(&fakeProber{}, extractor, "", "")
}

func TestDownloadService_Process(t *testing.T) {
	tmpDir := t.TempDir()
	showDir := t.TempDir()

	extractor := &fakeExtractor{
		meta:     &domain.EpisodeMeta{Series: "Game Changer", SeasonNumber: 6, EpisodeNumber: 2, Title: "The Pilot"},
		tmpDir:   tmpDir,
		filename: "Game Changer - S06E02 - The Pilot WEBDL-1080p.mp4",
	}
	library := &fakeLibrary{enabled: true}
	svc := NewDownloadService(extractor, neverCorrect(extractor), library, showDir, nil, false)

	dest, err := svc.Process(context.Background(), "https://watch.example.tv/videos/the-pilot", nil)
	require.NoError(t, err)

	want := filepath.Join(showDir, "Game Changer", "Season 6", "Game Changer - S06E02 - The Pilot WEBDL-1080p.mp4")
	assert.Equal(t, want, dest)
	_, err = os.Stat(dest)
	assert.NoError(t, err, "episode should exist in the library tree")
	assert.Equal(t, []string{"Game Changer"}, library.rescans)
}

func TestDownloadService_Process_AppliesNameOverride(t *testing.T) {
	tmpDir := t.TempDir()
	showDir := t.TempDir()

	extractor := &fakeExtractor{
		meta:     &domain.EpisodeMeta{Series: "Very Important People", SeasonNumber: 2},
		tmpDir:   tmpDir,
		filename: "Very Important People - S02E01 - Premiere WEBDL-1080p.mp4",
	}
	library := &fakeLibrary{enabled: true}
	overrides := map[string]string{"Very Important People": "Very Important People (2023)"}
	svc := NewDownloadService(extractor, neverCorrect(extractor), library, showDir, overrides, false)

	dest, err := svc.Process(context.Background(), "https://watch.example.tv/videos/premiere", nil)
	require.NoError(t, err)

	// Override renames both the series folder and the file itself.
	want := filepath.Join(showDir, "Very Important People (2023)", "Season 2",
		"Very Important People (2023) - S02E01 - Premiere WEBDL-1080p.mp4")
	assert.Equal(t, want, dest)
}

func TestDownloadService_Process_ResolveFailure(t *testing.T) {
	extractor := &fakeExtractor{resolveErr: errors.New("unsupported url")}
	svc := NewDownloadService(extractor, neverCorrect(extractor), nil, t.TempDir(), nil, false)

	_, err := svc.Process(context.Background(), "https://watch.example.tv/videos/x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve metadata")
}

func TestDownloadService_Process_DownloadFailure(t *testing.T) {
	extractor := &fakeExtractor{
		meta:  &domain.EpisodeMeta{Series: "Game Changer", SeasonNumber: 1},
		dlErr: errors.New("http 500"),
	}
	library := &fakeLibrary{enabled: true}
	svc := NewDownloadService(extractor, neverCorrect(extractor), library, t.TempDir(), nil, false)

	_, err := svc.Process(context.Background(), "https://watch.example.tv/videos/x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download")
	assert.Empty(t, library.rescans, "no rescan after a failed download")
}

func TestDownloadService_Process_RescanFailureIsNotFatal(t *testing.T) {
	extractor := &fakeExtractor{
		meta:     &domain.EpisodeMeta{Series: "Game Changer", SeasonNumber: 1},
		tmpDir:   t.TempDir(),
		filename: "ep.mp4",
	}
	library := &fakeLibrary{enabled: true, err: errors.New("sonarr unreachable")}
	svc := NewDownloadService(extractor, neverCorrect(extractor), library, t.TempDir(), nil, false)

	_, err := svc.Process(context.Background(), "https://watch.example.tv/videos/x", nil)
	assert.NoError(t, err, "rescan failure must not fail the job")
}

func TestDownloadService_Process_CleanupRemovesTempFile(t *testing.T) {
	tmpDir := t.TempDir()
	extractor := &fakeExtractor{
		meta:     &domain.EpisodeMeta{Series: "Game Changer", SeasonNumber: 1},
		tmpDir:   tmpDir,
		filename: "ep.mp4",
	}
	svc := NewDownloadService(extractor, neverCorrect(extractor), nil, t.TempDir(), nil, true)

	dest, err := svc.Process(context.Background(), "https://watch.example.tv/videos/x", nil)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(tmpDir, "ep.mp4"))
	assert.True(t, os.IsNotExist(err), "temp artifact should be removed")
	_, err = os.Stat(dest)
	assert.NoError(t, err, "library copy must survive cleanup")
}

func TestDownloadService_Process_UsesCorrectedURL(t *testing.T) {
	tmpDir := t.TempDir()

	corrected := "https://watch.example.tv/dimension-20/season:3/videos/poppy-persona"
	extractor := &fakeExtractor{
		meta:     &domain.EpisodeMeta{Series: "Dimension 20: Main", SeasonNumber: 0},
		tmpDir:   tmpDir,
		filename: "ep.mp4",
	}
	prober := &fakeProber{responses: map[string]int{
		"https://watch.example.tv/dimension-20/season:3/videos/poppy-persona": 200,
	}}
	resolver := &fakeResolver{meta: map[string]*domain.EpisodeMeta{
		corrected: {Series: "Dimension 20: Main", SeasonNumber: 3},
	}}
	corrector := NewCorrector(prober, resolver, "Dimension 20:", "https://watch.example.tv/dimension-20")
	svc := NewDownloadService(extractor, corrector, nil, t.TempDir(), nil, false)

	dest, err := svc.Process(context.Background(), "https://watch.example.tv/videos/poppy-persona", nil)
	require.NoError(t, err)

	require.Len(t, extractor.downloads, 1)
	assert.Equal(t, corrected, extractor.downloads[0], "download must use the corrected url")
	assert.Contains(t, dest, filepath.Join("Dimension 20_ Main", "Season 3"))
}

func TestSafePathComponent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "Game Changer", "Game Changer"},
		{"separator replaced", "Show/Name", "Show_Name"},
		{"backslash replaced", `Show\Name`, "Show_Name"},
		{"colon replaced", "Dimension 20: Main", "Dimension 20_ Main"},
		{"control chars replaced", "Show\nName", "Show_Name"},
		{"unicode preserved", "Café 中文", "Café 中文"},
		{"empty falls back", "", "unknown"},
		{"only separators falls back", "///", "unknown"},
		{"dot dot falls back", "..", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safePathComponent(tt.input))
		})
	}
}
