package service

import (
	"strings"

	"github.com/bnema/showsaver/internal/domain"
	"github.com/bnema/showsaver/internal/infrastructure/logger"
	"github.com/bnema/showsaver/internal/port"
)

// QueueItem is the hand-off unit between submission and the worker. The
// job record itself stays in the store; only the id and url travel.
type QueueItem struct {
	ID  string
	URL string
}

// QueueSnapshot is a point-in-time read of the whole queue for the
// /queue endpoint.
type QueueSnapshot struct {
	Queued      []*domain.Job
	Downloading []*domain.Job
	Completed   []*domain.Job
	QueueSize   int
}

// QueueService admits jobs and answers status reads. It never performs
// acquisition work itself: the channel hands jobs to the single worker
// in strict submission order.
type QueueService struct {
	store port.JobStore
	queue chan QueueItem
}

func NewQueueService(store port.JobStore, capacity int) *QueueService {
	return &QueueService{
		store: store,
		queue: make(chan QueueItem, capacity),
	}
}

// Submit validates the URL, creates the job record and enqueues it.
// Returns the created job and the number of items waiting in the queue.
func (s *QueueService) Submit(url string) (*domain.Job, int, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, 0, domain.ErrEmptyURL
	}

	job := s.store.Create(url)

	select {
	case s.queue <- QueueItem{ID: job.ID, URL: url}:
	default:
		// The record stays visible as queued; the caller can retry.
		return nil, 0, domain.ErrQueueFull
	}

	logger.Info.Printf("queued job %s for %s", job.ID, logger.SanitizeForLog(url))
	return job, len(s.queue), nil
}

func (s *QueueService) Status(id string) (*domain.Job, error) {
	return s.store.Get(id)
}

func (s *QueueService) Snapshot() QueueSnapshot {
	queued := s.store.ListByStatus(domain.JobStatusQueued)
	return QueueSnapshot{
		Queued:      queued,
		Downloading: s.store.ListByStatus(domain.JobStatusDownloading),
		Completed:   s.store.History(),
		QueueSize:   len(queued),
	}
}

// Dequeue exposes the receive side of the queue to the worker.
func (s *QueueService) Dequeue() <-chan QueueItem {
	return s.queue
}
