package service

import (
	"context"
	"time"

	"github.com/bnema/showsaver/internal/domain"
	"github.com/bnema/showsaver/internal/infrastructure/logger"
	"github.com/bnema/showsaver/internal/port"
)

// Downloader is the collaborator the worker hands each dequeued URL to.
// Satisfied by DownloadService.
type Downloader interface {
	Process(ctx context.Context, url string, progress func(ProgressUpdate)) (string, error)
}

// JobPublisher receives a job snapshot on every state change. Satisfied
// by EventBus.
type JobPublisher interface {
	Publish(jobID string, job *domain.Job)
}

// Worker is the single background loop that drains the queue. Jobs run
// strictly one at a time in submission order; a failing job is recorded
// and the loop moves on, it never stops the worker.
type Worker struct {
	queue      *QueueService
	store      port.JobStore
	downloader Downloader
	events     JobPublisher
}

func NewWorker(queue *QueueService, store port.JobStore, downloader Downloader, events JobPublisher) *Worker {
	return &Worker{
		queue:      queue,
		store:      store,
		downloader: downloader,
		events:     events,
	}
}

// Start launches the loop. It is owned by the process entry point and
// stops when ctx is cancelled; the in-flight job, if any, is abandoned
// with the process.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *Worker) run(ctx context.Context) {
	logger.Info.Printf("download worker started")
	for {
		select {
		case <-ctx.Done():
			logger.Info.Printf("download worker shutting down")
			return
		case item := <-w.queue.Dequeue():
			w.process(ctx, item)
		}
	}
}

func (w *Worker) process(ctx context.Context, item QueueItem) {
	job, err := w.store.Update(item.ID, func(j *domain.Job) {
		j.MarkDownloading(time.Now())
	})
	if err != nil {
		logger.Error.Printf("job %s vanished before processing: %v", item.ID, err)
		return
	}
	w.publish(job)

	destPath, err := w.downloader.Process(ctx, item.URL, func(u ProgressUpdate) {
		updated, updateErr := w.store.Update(item.ID, func(j *domain.Job) {
			j.Progress = u.Percent
			j.Step = u.Step
			j.StepType = u.StepType
			j.TotalSteps = u.TotalSteps
		})
		if updateErr == nil {
			w.publish(updated)
		}
	})

	if err != nil {
		logger.Error.Printf("job %s failed: %v", item.ID, err)
		job, updateErr := w.store.Update(item.ID, func(j *domain.Job) {
			j.MarkFailed(time.Now(), err.Error())
		})
		if updateErr != nil {
			return
		}
		w.store.AppendHistory(job)
		w.publish(job)
		return
	}

	job, updateErr := w.store.Update(item.ID, func(j *domain.Job) {
		j.MarkCompleted(time.Now(), destPath)
	})
	if updateErr != nil {
		return
	}
	w.store.AppendHistory(job)
	w.publish(job)
	logger.Info.Printf("job %s completed: %s", item.ID, destPath)
}

func (w *Worker) publish(job *domain.Job) {
	if w.events != nil {
		w.events.Publish(job.ID, job)
	}
}
