package compare

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"difftree/internal/hash"
	"difftree/internal/pathset"
	"difftree/internal/snapshot"
)

// Progress is told how many common files will be hashed, then gets one
// FileDone per file once both sides are hashed.
type Progress interface {
	Start(total int)
	FileDone(path string)
}

// Options controls content comparison of common files.
type Options struct {
	Hash hash.Options
	// Workers > 1 hashes common files concurrently.
	Workers int
	// StrictTypes fills Result.TypeMismatches.
	StrictTypes bool
	Progress    Progress
	Logger      *slog.Logger
}

// Result classifies the paths of two snapshots from A's point of view.
// "Missing" means present in B only.
type Result struct {
	ExclusiveDirs pathset.Set
	CommonDirs    pathset.Set
	MissingDirs   pathset.Set

	ExclusiveFiles pathset.Set
	CommonFiles    pathset.Set
	MissingFiles   pathset.Set

	// ContentDiffering is the subset of CommonFiles whose digests differ.
	ContentDiffering pathset.Set

	// TypeMismatches holds paths that are a dir on one side and a file on
	// the other. Only filled with Options.StrictTypes.
	TypeMismatches pathset.Set
}

func (r *Result) HasDifferences() bool {
	return r.ExclusiveDirs.Len() > 0 || r.MissingDirs.Len() > 0 ||
		r.ExclusiveFiles.Len() > 0 || r.MissingFiles.Len() > 0 ||
		r.ContentDiffering.Len() > 0 || r.TypeMismatches.Len() > 0
}

// Classify runs the set algebra only; ContentDiffering is left empty.
func Classify(a, b *snapshot.Snapshot) *Result {
	return &Result{
		ExclusiveDirs:    a.Dirs.Difference(b.Dirs),
		CommonDirs:       a.Dirs.Intersection(b.Dirs),
		MissingDirs:      b.Dirs.Difference(a.Dirs),
		ExclusiveFiles:   a.Files.Difference(b.Files),
		CommonFiles:      a.Files.Intersection(b.Files),
		MissingFiles:     b.Files.Difference(a.Files),
		ContentDiffering: pathset.New(),
		TypeMismatches:   pathset.New(),
	}
}

// Compare classifies both snapshots and hashes every common file on each
// side. The first hashing error aborts the comparison and no result is
// returned.
func Compare(ctx context.Context, a, b *snapshot.Snapshot, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts.Hash = opts.Hash.Normalize()
	if _, err := opts.Hash.Algorithm.New(); err != nil {
		return nil, err
	}

	result := Classify(a, b)

	if opts.StrictTypes {
		result.TypeMismatches = a.Dirs.Intersection(b.Files).Union(a.Files.Intersection(b.Dirs))
	}

	common := result.CommonFiles.Sorted()
	logger.Debug("comparing file contents",
		"files", len(common),
		"algorithm", opts.Hash.Algorithm,
		"workers", max(opts.Workers, 1))

	if opts.Progress != nil {
		opts.Progress.Start(len(common))
	}

	var differing []string
	var err error
	if opts.Workers > 1 {
		differing, err = diffParallel(ctx, a, b, common, opts, logger)
	} else {
		differing, err = diffSequential(ctx, a, b, common, opts, logger)
	}
	if err != nil {
		return nil, err
	}

	result.ContentDiffering = pathset.New(differing...)
	return result, nil
}

func diffSequential(ctx context.Context, a, b *snapshot.Snapshot, paths []string, opts Options, logger *slog.Logger) ([]string, error) {
	var differing []string
	for _, p := range paths {
		same, err := sameContent(ctx, a, b, p, opts, logger)
		if err != nil {
			return nil, err
		}
		if !same {
			differing = append(differing, p)
		}
	}
	return differing, nil
}

func diffParallel(ctx context.Context, a, b *snapshot.Snapshot, paths []string, opts Options, logger *slog.Logger) ([]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	var mu sync.Mutex
	var differing []string

	for _, p := range paths {
		p := p
		g.Go(func() error {
			same, err := sameContent(ctx, a, b, p, opts, logger)
			if err != nil {
				return err
			}
			if !same {
				mu.Lock()
				differing = append(differing, p)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return differing, nil
}

func sameContent(ctx context.Context, a, b *snapshot.Snapshot, p string, opts Options, logger *slog.Logger) (bool, error) {
	sumA, err := hash.HashFile(ctx, a.FS, p, opts.Hash)
	if err != nil {
		return false, err
	}
	sumB, err := hash.HashFile(ctx, b.FS, p, opts.Hash)
	if err != nil {
		return false, err
	}

	if opts.Progress != nil {
		opts.Progress.FileDone(p)
	}

	if sumA != sumB {
		logger.Debug("content differs", "path", p, "a", sumA, "b", sumB)
		return false, nil
	}
	return true, nil
}
