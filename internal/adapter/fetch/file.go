package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileFetcher reads local files. A source reference may be a single path or a
// doublestar glob pattern (**/*.md); glob matches are concatenated in sorted
// path order with blank-line separators.
type FileFetcher struct {
	root string
}

// NewFileFetcher creates a fetcher resolving relative references under root.
func NewFileFetcher(root string) *FileFetcher {
	if root == "" {
		root = "."
	}
	return &FileFetcher{root: root}
}

// Fetch reads the referenced file or glob.
func (f *FileFetcher) Fetch(_ context.Context, sourceRef string) (string, error) {
	ref := strings.TrimPrefix(sourceRef, "file://")
	if !filepath.IsAbs(ref) {
		ref = filepath.Join(f.root, ref)
	}

	if !strings.ContainsAny(ref, "*?[{") {
		data, err := os.ReadFile(ref)
		if err != nil {
			return "", fmt.Errorf("failed to read %q: %w", ref, err)
		}
		return string(data), nil
	}

	matches, err := doublestar.FilepathGlob(ref)
	if err != nil {
		return "", fmt.Errorf("invalid glob %q: %w", ref, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no files match %q", ref)
	}

	var parts []string
	for _, match := range matches {
		data, err := os.ReadFile(match)
		if err != nil {
			return "", fmt.Errorf("failed to read %q: %w", match, err)
		}
		parts = append(parts, string(data))
	}
	return strings.Join(parts, "\n\n"), nil
}
