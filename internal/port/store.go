package port

import "github.com/bnema/showsaver/internal/domain"

// JobStore is the single source of truth for job state. Implementations
// must be safe for one writer (the worker) and many readers, and must
// never expose the canonical records: every return value is a copy.
type JobStore interface {
	Create(url string) *domain.Job
	Get(id string) (*domain.Job, error)
	ListByStatus(status domain.JobStatus) []*domain.Job
	Update(id string, mutate func(*domain.Job)) (*domain.Job, error)
	AppendHistory(job *domain.Job)
	History() []*domain.Job
}
