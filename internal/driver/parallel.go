package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"moveck/internal/trace"
)

// BodyFileExt is the suffix of body files picked up from directories.
const BodyFileExt = ".toml"

// ListBodyFiles returns the sorted list of body files under dir.
// The project config file is skipped.
func ListBodyFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, BodyFileExt) && d.Name() != ConfigFileName {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// deterministic order
	sort.Strings(files)
	return files, nil
}

// ExpandTargets turns command-line targets into a list of body files.
// Directories are walked; files are taken as given.
func ExpandTargets(targets []string) ([]string, error) {
	var files []string
	for _, t := range targets {
		st, err := os.Stat(t)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			files = append(files, t)
			continue
		}
		found, err := ListBodyFiles(t)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// AnalyzeFiles analyzes paths in parallel. Results are in input order.
// The error is non-nil only when ctx is cancelled.
func AnalyzeFiles(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, span := trace.StartSpan(ctx, trace.ScopeDriver, "analyze_files")
	span.WithExtra("files", strconv.Itoa(len(paths))).
		WithExtra("jobs", strconv.Itoa(jobs))
	defer span.End("")

	for _, p := range paths {
		emit(opts.Progress, Event{File: p, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, p := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = AnalyzeFile(gctx, p, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	emit(opts.Progress, Event{Status: StatusDone})
	return results, nil
}
