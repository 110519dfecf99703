package domain

import (
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusQueued      JobStatus = "queued"
	JobStatusDownloading JobStatus = "downloading"
	JobStatusCompleted   JobStatus = "completed"
	JobStatusFailed      JobStatus = "failed"
)

// StepType describes the stream composition of one download stage.
type StepType string

const (
	StepTypeVideo    StepType = "video"
	StepTypeAudio    StepType = "audio"
	StepTypeCombined StepType = "video+audio"
)

// Job is one queued request to acquire a single episode. The store owns the
// canonical record; callers always operate on copies.
type Job struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Status      JobStatus  `json:"status"`
	QueuedAt    time.Time  `json:"queued_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Progress    int        `json:"progress"`
	Step        int        `json:"step"`
	StepType    StepType   `json:"step_type"`
	TotalSteps  int        `json:"total_steps"`
	FilePath    string     `json:"file_path,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// NewJob creates a queued job. The id is derived from the submission time
// plus the number of jobs created so far, which cannot collide at the
// submission rates this service sees.
func NewJob(url string, seq int) *Job {
	return &Job{
		ID:       fmt.Sprintf("%d_%d", time.Now().Unix(), seq),
		URL:      url,
		Status:   JobStatusQueued,
		QueuedAt: time.Now(),
	}
}

func (j *Job) MarkDownloading(now time.Time) {
	j.Status = JobStatusDownloading
	j.StartedAt = &now
}

func (j *Job) MarkCompleted(now time.Time, filePath string) {
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.FilePath = filePath
}

func (j *Job) MarkFailed(now time.Time, errMsg string) {
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = errMsg
}

func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Clone returns an independent copy, safe to hand to readers while the
// worker keeps mutating the canonical record.
func (j *Job) Clone() *Job {
	c := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		c.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
