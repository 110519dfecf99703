package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/showsaver/internal/domain"
	"github.com/bnema/showsaver/internal/infrastructure/logger"
	"github.com/bnema/showsaver/internal/port"
)

// maxSeasonProbes bounds the candidate scan. Season numbering starts at 1
// and ascends, so the scan cost is proportional to the true season number.
const maxSeasonProbes = 99

// Corrector guesses the canonical URL for episodes whose catalog URL does
// not encode a season. The catalog's anthology series publishes episodes
// under /videos/{slug}, but re-resolution needs the season-qualified form
// {base}/season:{n}/videos/{slug}; candidates are probed in ascending
// season order and the first one that does not 404 wins.
type Corrector struct {
	prober    port.Prober
	extractor port.Extractor
	marker    string
	baseURL   string
}

// NewCorrector builds a corrector that applies to series whose resolved
// name contains marker, probing candidates under baseURL.
func NewCorrector(prober port.Prober, extractor port.Extractor, marker, baseURL string) *Corrector {
	return &Corrector{
		prober:    prober,
		extractor: extractor,
		marker:    marker,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// Correct returns the season-qualified URL and its re-resolved metadata,
// or ("", nil) when the series needs no correction or every candidate
// failed. Per-candidate transport errors are inconclusive and the scan
// moves on; only a confirmed 404 rules a candidate out.
func (c *Corrector) Correct(ctx context.Context, rawURL string, meta *domain.EpisodeMeta) (string, *domain.EpisodeMeta) {
	if c.marker == "" || !strings.Contains(meta.Series, c.marker) {
		return "", nil
	}

	logger.Info.Printf("attempting to correct url: %s", logger.SanitizeForLog(rawURL))

	slug := rawURL[strings.LastIndex(rawURL, "/")+1:]
	for i := 1; i <= maxSeasonProbes; i++ {
		candidate := fmt.Sprintf("%s/season:%d/videos/%s", c.baseURL, i, slug)

		status, err := c.prober.Head(ctx, candidate)
		if err != nil {
			// Inconclusive, keep scanning.
			continue
		}
		if status == http.StatusNotFound {
			continue
		}

		corrected, err := c.extractor.Resolve(ctx, candidate)
		if err != nil {
			logger.Warn.Printf("corrected url %s did not resolve: %v", logger.SanitizeForLog(candidate), err)
			continue
		}

		logger.Info.Printf("found corrected url: %s", logger.SanitizeForLog(candidate))
		return candidate, corrected
	}

	return "", nil
}
