// Package discovery finds model files below a set of input directories.
package discovery

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/specialistvlad/subgraphdumper/internal/ctxlog"
)

// DefaultPatterns matches every model format the bundled loader reads.
var DefaultPatterns = []string{"**.hcl"}

// ErrInvalidPattern indicates a glob pattern could not be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// Result lists the model files found and the paths that could not be read.
type Result struct {
	Models     []string
	Unreadable []string
}

// FindModels walks every directory in dirs and returns the files whose
// slash-separated path matches at least one pattern. A directory or file
// that cannot be accessed is reported in Unreadable instead of failing the
// walk. Models are sorted and deduplicated.
func FindModels(ctx context.Context, dirs []string, patterns []string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	matchers, err := compileGlobs(patterns)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	res := &Result{}
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				logger.Warn("Path could not be read.", "path", path, "error", err)
				res.Unreadable = append(res.Unreadable, path)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			slashed := filepath.ToSlash(path)
			if !matchAny(matchers, slashed) {
				return nil
			}
			if _, ok := seen[slashed]; ok {
				return nil
			}
			seen[slashed] = struct{}{}
			res.Models = append(res.Models, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(res.Models)
	logger.Debug("Model discovery finished.", "models", len(res.Models), "unreadable", len(res.Unreadable))
	return res, nil
}

// compileGlobs compiles a slice of glob pattern strings into matchers.
func compileGlobs(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		matcher, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Join(ErrInvalidPattern, err)
		}
		matchers = append(matchers, matcher)
	}
	return matchers, nil
}

func matchAny(matchers []glob.Glob, path string) bool {
	for _, m := range matchers {
		if m.Match(path) {
			return true
		}
	}
	return false
}
