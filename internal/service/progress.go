package service

import (
	"github.com/bnema/showsaver/internal/domain"
	"github.com/bnema/showsaver/internal/port"
)

// ProgressUpdate is the normalized per-job view derived from raw
// per-stream events. Percent resets when a new stage begins; Step and
// TotalSteps only ever grow.
type ProgressUpdate struct {
	Percent    int
	Step       int
	StepType   domain.StepType
	TotalSteps int
}

// StepTracker folds the raw progress events of a single job into a
// coherent step count. One episode may arrive as several sequential
// sub-downloads (video-only then audio-only, or one combined stream),
// and the number of stages is not known up front: a change of filename
// marks the start of a new stage, and a stage type is counted the first
// time it is seen.
type StepTracker struct {
	steps        []domain.StepType
	currentStep  int
	lastFilename string
}

func NewStepTracker() *StepTracker {
	return &StepTracker{}
}

// Observe consumes one event and returns the updated view. Stage
// detection is filename-based: two stages reusing the same filename are
// indistinguishable.
func (t *StepTracker) Observe(ev port.ProgressEvent) ProgressUpdate {
	stepType := classifyStream(ev.VideoCodec, ev.AudioCodec)

	if ev.Filename != t.lastFilename {
		t.lastFilename = ev.Filename
		if !t.seen(stepType) {
			t.steps = append(t.steps, stepType)
			t.currentStep = len(t.steps)
		}
	}

	total := ev.TotalBytes
	if total == 0 {
		total = ev.TotalBytesEstimate
	}
	percent := 0
	if total > 0 {
		percent = int(float64(ev.DownloadedBytes) / float64(total) * 100)
	}

	return ProgressUpdate{
		Percent:    percent,
		Step:       t.currentStep,
		StepType:   stepType,
		TotalSteps: max(len(t.steps), t.currentStep),
	}
}

func (t *StepTracker) seen(stepType domain.StepType) bool {
	for _, s := range t.steps {
		if s == stepType {
			return true
		}
	}
	return false
}

// classifyStream maps codec presence to a stage type. An absent codec is
// reported as "none" by the extractor; an empty value means the same.
func classifyStream(vcodec, acodec string) domain.StepType {
	hasVideo := vcodec != "" && vcodec != "none"
	hasAudio := acodec != "" && acodec != "none"

	switch {
	case hasVideo && !hasAudio:
		return domain.StepTypeVideo
	case hasAudio && !hasVideo:
		return domain.StepTypeAudio
	default:
		return domain.StepTypeCombined
	}
}
