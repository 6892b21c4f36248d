package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

var errLimitReached = errors.New("search limit reached")

// Search walks root and returns files whose root-relative path matches the
// doublestar pattern. Symlinks are not followed; denylisted directories and
// .git are skipped.
func (p *Provider) Search(ctx context.Context, root, pattern string, limit int) (*SearchResult, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern: %s", pattern)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	validated, err := p.validate(root)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(validated); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	var (
		mu        sync.Mutex
		matches   []string
		truncated bool
	)

	deny := p.sandbox.denyRoots()
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, validated, func(path string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if path == validated {
				return err
			}
			return nil
		}

		if d.IsDir() {
			if path != validated && (d.Name() == ".git" || denied(deny, path)) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(validated, path)
		if err != nil {
			return nil
		}
		ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel))
		if !ok {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		if len(matches) >= limit {
			truncated = true
			return errLimitReached
		}
		matches = append(matches, rel)
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	sort.Strings(matches)
	if matches == nil {
		matches = []string{}
	}
	return &SearchResult{Root: validated, Matches: matches, Truncated: truncated}, nil
}

func denied(deny denySet, path string) bool {
	_, ok := deny.match(path)
	return ok
}
