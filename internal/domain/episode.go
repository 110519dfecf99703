package domain

// EpisodeMeta is the metadata the extractor resolves for one episode URL.
// Series, season and episode numbers drive both the destination path and
// the library rescan lookup.
type EpisodeMeta struct {
	Series        string
	SeasonNumber  int
	EpisodeNumber int
	Title         string
}

// Release is one entry on the catalog's new-releases page.
type Release struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
}
