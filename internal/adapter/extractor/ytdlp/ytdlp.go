// Package ytdlp drives the yt-dlp binary: metadata resolution, the media
// download with a machine-readable progress stream, and flat-playlist
// browsing of the catalog's new-releases page.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bnema/showsaver/internal/domain"
	"github.com/bnema/showsaver/internal/infrastructure/logger"
	"github.com/bnema/showsaver/internal/port"
)

// outputTemplate mirrors the Sonarr-friendly episode naming scheme the
// library tree expects.
const outputTemplate = "%(series)s - S%(season_number)02dE%(episode_number)02d - %(title)s WEBDL-1080p.%(ext)s"

// sponsorCategories are stripped from the final file via SponsorBlock
// chapter removal.
const sponsorCategories = "sponsor,selfpromo,interaction,intro,outro"

// progressPrefix marks progress lines on stdout; everything else on
// stdout belongs to --print output.
const progressPrefix = "dl:"

// progressTemplate makes yt-dlp emit one parseable line per progress
// tick: status|downloaded|total|total_estimate|filename|vcodec|acodec.
const progressTemplate = "download:" + progressPrefix +
	"%(progress.status)s|%(progress.downloaded_bytes)s|%(progress.total_bytes)s|" +
	"%(progress.total_bytes_estimate)s|%(progress.filename)s|%(info.vcodec)s|%(info.acodec)s"

type Extractor struct {
	binary         string
	configDir      string
	tmpDir         string
	newReleasesURL string
}

func New(configDir, tmpDir, newReleasesURL string) *Extractor {
	return &Extractor{
		binary:         "yt-dlp",
		configDir:      configDir,
		tmpDir:         tmpDir,
		newReleasesURL: newReleasesURL,
	}
}

// episodeInfo is the slice of yt-dlp's -J output this service cares
// about.
type episodeInfo struct {
	Series        string `json:"series"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Title         string `json:"title"`
}

func (e *Extractor) baseArgs() []string {
	return []string{
		"--no-warnings",
		"--usenetrc",
		"--netrc-location", e.configDir,
	}
}

func (e *Extractor) Resolve(ctx context.Context, url string) (*domain.EpisodeMeta, error) {
	logger.Info.Printf("resolving metadata for %s", logger.SanitizeForLog(url))

	args := append(e.baseArgs(), "-J", "--skip-download", url)
	cmd := exec.CommandContext(ctx, e.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp metadata: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var info episodeInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}

	return &domain.EpisodeMeta{
		Series:        info.Series,
		SeasonNumber:  info.SeasonNumber,
		EpisodeNumber: info.EpisodeNumber,
		Title:         info.Title,
	}, nil
}

// Download fetches the episode into the temp directory, streaming
// per-stream progress events to the callback, and returns the final file
// path as reported by yt-dlp after post-processing.
func (e *Extractor) Download(ctx context.Context, url string, progress func(port.ProgressEvent)) (string, error) {
	args := append(e.baseArgs(),
		"-P", e.tmpDir,
		"-o", outputTemplate,
		"--sponsorblock-remove", sponsorCategories,
		"--write-subs",
		"--embed-subs",
		"--newline",
		"--progress-template", progressTemplate,
		"--no-simulate",
		"--print", "after_move:filepath",
		url,
	)
	cmd := exec.CommandContext(ctx, e.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("yt-dlp stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start yt-dlp: %w", err)
	}

	var filePath string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if ev, ok := parseProgressLine(line); ok {
			if progress != nil {
				progress(ev)
			}
			continue
		}
		if line = strings.TrimSpace(line); line != "" {
			// Non-progress stdout is --print output: the final path.
			filePath = line
		}
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("yt-dlp download: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if scanErr != nil {
		return "", fmt.Errorf("read yt-dlp output: %w", scanErr)
	}
	if filePath == "" {
		return "", fmt.Errorf("yt-dlp reported no output file")
	}

	return filePath, nil
}

// parseProgressLine decodes one progress-template line. Unknown byte
// counts arrive as "NA" and read as zero.
func parseProgressLine(line string) (port.ProgressEvent, bool) {
	if !strings.HasPrefix(line, progressPrefix) {
		return port.ProgressEvent{}, false
	}

	fields := strings.Split(strings.TrimPrefix(line, progressPrefix), "|")
	if len(fields) != 7 {
		return port.ProgressEvent{}, false
	}

	return port.ProgressEvent{
		Status:             fields[0],
		DownloadedBytes:    parseBytes(fields[1]),
		TotalBytes:         parseBytes(fields[2]),
		TotalBytesEstimate: parseBytes(fields[3]),
		Filename:           fields[4],
		VideoCodec:         fields[5],
		AudioCodec:         fields[6],
	}, true
}

func parseBytes(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "NA" {
		return 0
	}
	// yt-dlp renders estimates as floats.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// playlistInfo is the flat-playlist shape of the new-releases page.
type playlistInfo struct {
	Entries []struct {
		ID         string  `json:"id"`
		Title      string  `json:"title"`
		URL        string  `json:"url"`
		WebpageURL string  `json:"webpage_url"`
		Thumbnail  string  `json:"thumbnail"`
		Duration   float64 `json:"duration"`
	} `json:"entries"`
}

func (e *Extractor) NewReleases(ctx context.Context) ([]domain.Release, error) {
	args := append(e.baseArgs(), "-J", "--flat-playlist", "--skip-download", e.newReleasesURL)
	cmd := exec.CommandContext(ctx, e.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp new releases: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var info playlistInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("parse new releases: %w", err)
	}

	releases := make([]domain.Release, 0, len(info.Entries))
	for _, entry := range info.Entries {
		url := entry.URL
		if url == "" {
			url = entry.WebpageURL
		}
		releases = append(releases, domain.Release{
			ID:        entry.ID,
			Title:     entry.Title,
			URL:       url,
			Thumbnail: entry.Thumbnail,
			Duration:  entry.Duration,
		})
	}
	return releases, nil
}

var (
	_ port.Extractor = (*Extractor)(nil)
	_ port.Browser   = (*Extractor)(nil)
)
