package memory

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bnema/showsaver/internal/domain"
	"github.com/bnema/showsaver/internal/port"
)

// historyLimit caps the completed-or-failed history to the most recent
// entries, most recent last.
const historyLimit = 10

// Store keeps all job state in process memory behind a single lock. The
// queue, status map and history are intentionally not persisted: a
// process restart loses them, and only the filesystem artifacts written
// by the download pipeline survive.
type Store struct {
	mu      sync.Mutex
	jobs    map[string]*domain.Job
	history []*domain.Job
	created int
}

func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*domain.Job),
	}
}

func (s *Store) Create(url string) *domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := domain.NewJob(url, s.created)
	s.created++
	s.jobs[job.ID] = job
	return job.Clone()
}

func (s *Store) Get(id string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job.Clone(), nil
}

func (s *Store) ListByStatus(status domain.JobStatus) []*domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*domain.Job, 0)
	for _, job := range s.jobs {
		if job.Status == status {
			list = append(list, job.Clone())
		}
	}
	// Map iteration order is random; present jobs in submission order.
	// The id suffix is the creation sequence, which breaks ties within
	// the same second.
	sort.Slice(list, func(i, j int) bool {
		if list[i].QueuedAt.Equal(list[j].QueuedAt) {
			return jobSeq(list[i].ID) < jobSeq(list[j].ID)
		}
		return list[i].QueuedAt.Before(list[j].QueuedAt)
	})
	return list
}

func jobSeq(id string) int {
	_, suffix, ok := strings.Cut(id, "_")
	if !ok {
		return 0
	}
	seq, _ := strconv.Atoi(suffix)
	return seq
}

// Update applies mutate to the canonical record under the lock and
// returns a copy of the result. The mutator must not block or perform
// I/O; the lock serializes it against every reader.
func (s *Store) Update(id string, mutate func(*domain.Job)) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	mutate(job)
	return job.Clone(), nil
}

func (s *Store) AppendHistory(job *domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, job.Clone())
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}

func (s *Store) History() []*domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]*domain.Job, 0, len(s.history))
	for _, job := range s.history {
		list = append(list, job.Clone())
	}
	return list
}

var _ port.JobStore = (*Store)(nil)
