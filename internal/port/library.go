package port

import "context"

// LibraryNotifier asks the library manager to rescan a series after an
// episode lands on disk. Notification failures are warnings, never fatal
// to the job that triggered them.
type LibraryNotifier interface {
	Enabled() bool
	RescanSeries(ctx context.Context, series string) error
}
