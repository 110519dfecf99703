package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/showsaver/internal/adapter/storage/memory"
	"github.com/bnema/showsaver/internal/domain"
)

// fakeDownloader scripts per-URL outcomes and records processing order.
type fakeDownloader struct {
	mu      sync.Mutex
	order   []string
	fail    map[string]error
	updates []ProgressUpdate
}

func newFakeDownloader() *fakeDownloader {
	return &fakeDownloader{
		fail: make(map[string]error),
	}
}

func (f *fakeDownloader) Process(_ context.Context, url string, progress func(ProgressUpdate)) (string, error) {
	f.mu.Lock()
	f.order = append(f.order, url)
	f.mu.Unlock()

	for _, u := range f.updates {
		progress(u)
	}

	if err, ok := f.fail[url]; ok {
		return "", err
	}
	return "/tvshows/Show/Season 1/ep.mp4", nil
}

func (f *fakeDownloader) processed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

func waitForStatus(t *testing.T, store *memory.Store, id string, want domain.JobStatus) *domain.Job {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		job, err := store.Get(id)
		require.NoError(t, err)
		if job.Status == want {
			return job
		}
		select {
		case <-deadline:
			t.Fatalf("job %s never reached %s (last: %s)", id, want, job.Status)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestWorker_CompletesJob(t *testing.T) {
	store := memory.NewStore()
	queue := NewQueueService(store, 8)
	downloader := newFakeDownloader()
	worker := NewWorker(queue, store, downloader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	job, _, err := queue.Submit("https://watch.example.tv/videos/ep-1")
	require.NoError(t, err)

	got := waitForStatus(t, store, job.ID, domain.JobStatusCompleted)
	assert.NotNil(t, got.StartedAt)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, "/tvshows/Show/Season 1/ep.mp4", got.FilePath)
	assert.Empty(t, got.Error)

	history := store.History()
	require.Len(t, history, 1)
	assert.Equal(t, job.ID, history[0].ID)
}

func TestWorker_FailedJobDoesNotBlockNext(t *testing.T) {
	store := memory.NewStore()
	queue := NewQueueService(store, 8)
	downloader := newFakeDownloader()
	downloader.fail["https://watch.example.tv/videos/broken"] = errors.New("extraction failed: 403")
	worker := NewWorker(queue, store, downloader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	bad, _, err := queue.Submit("https://watch.example.tv/videos/broken")
	require.NoError(t, err)
	good, _, err := queue.Submit("https://watch.example.tv/videos/fine")
	require.NoError(t, err)

	failed := waitForStatus(t, store, bad.ID, domain.JobStatusFailed)
	assert.Contains(t, failed.Error, "extraction failed")
	assert.NotNil(t, failed.CompletedAt)

	waitForStatus(t, store, good.ID, domain.JobStatusCompleted)

	// Both terminal jobs land in history, failure included.
	history := store.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.JobStatusFailed, history[0].Status)
	assert.Equal(t, domain.JobStatusCompleted, history[1].Status)
}

func TestWorker_ProcessesInSubmissionOrder(t *testing.T) {
	store := memory.NewStore()
	queue := NewQueueService(store, 8)
	downloader := newFakeDownloader()
	worker := NewWorker(queue, store, downloader, nil)

	urls := []string{
		"https://watch.example.tv/videos/a",
		"https://watch.example.tv/videos/b",
		"https://watch.example.tv/videos/c",
	}
	var last *domain.Job
	for _, u := range urls {
		job, _, err := queue.Submit(u)
		require.NoError(t, err)
		last = job
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	waitForStatus(t, store, last.ID, domain.JobStatusCompleted)
	assert.Equal(t, urls, downloader.processed())
}

func TestWorker_ProgressUpdatesReachStore(t *testing.T) {
	store := memory.NewStore()
	queue := NewQueueService(store, 8)
	downloader := newFakeDownloader()
	downloader.updates = []ProgressUpdate{
		{Percent: 10, Step: 1, StepType: domain.StepTypeVideo, TotalSteps: 1},
		{Percent: 95, Step: 2, StepType: domain.StepTypeAudio, TotalSteps: 2},
	}
	worker := NewWorker(queue, store, downloader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	job, _, err := queue.Submit("https://watch.example.tv/videos/ep-1")
	require.NoError(t, err)

	got := waitForStatus(t, store, job.ID, domain.JobStatusCompleted)
	assert.Equal(t, 95, got.Progress)
	assert.Equal(t, 2, got.Step)
	assert.Equal(t, domain.StepTypeAudio, got.StepType)
	assert.Equal(t, 2, got.TotalSteps)
}

func TestWorker_PublishesEvents(t *testing.T) {
	store := memory.NewStore()
	queue := NewQueueService(store, 8)
	downloader := newFakeDownloader()
	bus := NewEventBus()
	worker := NewWorker(queue, store, downloader, bus)

	job, _, err := queue.Submit("https://watch.example.tv/videos/ep-1")
	require.NoError(t, err)

	ch := bus.Subscribe(job.ID)
	defer bus.Unsubscribe(job.ID, ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker.Start(ctx)

	var seen []domain.JobStatus
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			seen = append(seen, ev.Status)
			if ev.Status == domain.JobStatusCompleted {
				assert.Equal(t, domain.JobStatusDownloading, seen[0])
				return
			}
		case <-deadline:
			t.Fatalf("never saw completed event, saw %v", seen)
		}
	}
}
