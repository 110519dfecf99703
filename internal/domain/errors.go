package domain

import "errors"

var (
	ErrNotFound  = errors.New("job not found")
	ErrEmptyURL  = errors.New("url cannot be empty")
	ErrQueueFull = errors.New("download queue is full")
)
