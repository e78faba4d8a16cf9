package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"difftree/internal/fserr"
	"difftree/internal/pathset"
)

// WalkResult holds the normalized root-relative paths found under a root.
// Dirs and Files are disjoint.
type WalkResult struct {
	Dirs  pathset.Set
	Files pathset.Set
}

// Walk descends the whole of fsys, starting at its root. Every subdirectory
// is recorded in Dirs and every other entry in Files. A symlink that resolves
// to a directory counts as a directory but is not followed.
//
// Any error aborts the walk; no partial result is returned.
func Walk(ctx context.Context, fsys billy.Filesystem, exclusions []string) (*WalkResult, error) {
	result := &WalkResult{
		Dirs:  pathset.New(),
		Files: pathset.New(),
	}

	err := util.Walk(fsys, ".", func(path string, info os.FileInfo, err error) error {
		if path == "." {
			if err != nil {
				return fserr.New(fsys.Root(), fserr.InvalidArgument, err)
			}
			if !info.IsDir() {
				return fserr.New(fsys.Root(), fserr.InvalidArgument, nil)
			}
			return nil
		}

		if err != nil {
			return fserr.FromIO(filepath.Join(fsys.Root(), path), err)
		}

		if err := ctx.Err(); err != nil {
			return fserr.New(filepath.Join(fsys.Root(), path), fserr.Cancelled, err)
		}

		relPath := Normalize(path)
		isDir := info.IsDir()

		if info.Mode()&os.ModeSymlink != 0 {
			// Dangling links stay files, hashing reports them later.
			if target, err := fsys.Stat(path); err == nil && target.IsDir() {
				isDir = true
			}
		}

		if shouldExclude(relPath, isDir, exclusions) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if isDir {
			result.Dirs.Add(relPath)
		} else {
			result.Files.Add(relPath)
		}

		return nil
	})

	if err != nil {
		var pe *fserr.PathError
		if !errors.As(err, &pe) {
			err = fserr.FromIO(fsys.Root(), err)
		}
		return nil, err
	}

	return result, nil
}

// Normalize cleans a relative path and renders it with forward slashes and
// without a leading "./", so paths from two independently rooted trees
// compare equal.
func Normalize(path string) string {
	p := filepath.ToSlash(filepath.Clean(path))
	p = strings.TrimPrefix(p, "./")
	return strings.TrimPrefix(p, "/")
}

func shouldExclude(relPath string, isDir bool, exclusions []string) bool {
	for _, pattern := range exclusions {
		// Handle directory exclusions (patterns ending with /)
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			// Check if the current path or any parent matches the directory pattern
			parts := strings.Split(relPath, "/")
			if !isDir {
				parts = parts[:len(parts)-1]
			}
			for _, part := range parts {
				if matched, _ := filepath.Match(dirPattern, part); matched {
					return true
				}
			}
		} else {
			// Handle file pattern exclusions
			matched, err := filepath.Match(pattern, filepath.Base(relPath))
			if err == nil && matched {
				return true
			}
			// Also try matching against the full relative path for patterns with /
			if strings.Contains(pattern, "/") {
				matched, err := filepath.Match(pattern, relPath)
				if err == nil && matched {
					return true
				}
			}
		}
	}
	return false
}
