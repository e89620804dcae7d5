package port

import "context"

// Fetcher retrieves raw content for a source reference (URL, file path, glob).
// Implementations return an empty string rather than partial content on
// failure; the error carries the cause for logging.
type Fetcher interface {
	Fetch(ctx context.Context, sourceRef string) (string, error)
}
