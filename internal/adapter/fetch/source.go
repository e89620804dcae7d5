package fetch

import (
	"context"
	"strings"
)

// SourceFetcher routes a source reference to the right fetcher: web references
// go over HTTP, everything else is treated as a local path or glob.
type SourceFetcher struct {
	http *HTTPFetcher
	file *FileFetcher
}

// NewSourceFetcher creates the routing fetcher.
func NewSourceFetcher(http *HTTPFetcher, file *FileFetcher) *SourceFetcher {
	return &SourceFetcher{http: http, file: file}
}

// Fetch dispatches on the shape of the reference.
func (f *SourceFetcher) Fetch(ctx context.Context, sourceRef string) (string, error) {
	switch {
	case strings.HasPrefix(sourceRef, "http://"), strings.HasPrefix(sourceRef, "https://"):
		return f.http.Fetch(ctx, sourceRef)
	case strings.HasPrefix(sourceRef, "www."):
		return f.http.Fetch(ctx, "https://"+sourceRef)
	default:
		return f.file.Fetch(ctx, sourceRef)
	}
}
