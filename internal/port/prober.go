package port

import "context"

// Prober issues a HEAD request and reports the response status code.
// Used only by the URL corrector's candidate scan.
type Prober interface {
	Head(ctx context.Context, url string) (int, error)
}
