// Package snapshot captures the directory and file paths found under one root
// at the start of a comparison.
package snapshot

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/go-git/go-billy/v5"
	mt "github.com/txaty/go-merkletree"

	"difftree/internal/hash"
	"difftree/internal/pathset"
	"difftree/internal/walker"
)

// EntryKind tags a listed path.
type EntryKind string

const (
	KindDir  EntryKind = "dir"
	KindFile EntryKind = "file"
)

// Entry is one line of a snapshot listing.
type Entry struct {
	Kind EntryKind
	Path string
}

// Snapshot is the immutable result of walking one root. FS is rooted at Root
// and is used later to read file content.
type Snapshot struct {
	Root  string
	FS    billy.Filesystem
	Dirs  pathset.Set
	Files pathset.Set
}

// Summary is the per-root count line.
type Summary struct {
	Root      string
	DirCount  int
	FileCount int
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: %d dirs, %d files", s.Root, s.DirCount, s.FileCount)
}

// Build walks fsys and records what it finds under the display name root.
func Build(ctx context.Context, root string, fsys billy.Filesystem, exclusions []string) (*Snapshot, error) {
	result, err := walker.Walk(ctx, fsys, exclusions)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Root:  root,
		FS:    fsys,
		Dirs:  result.Dirs,
		Files: result.Files,
	}, nil
}

func (s *Snapshot) Summary() Summary {
	return Summary{
		Root:      s.Root,
		DirCount:  s.Dirs.Len(),
		FileCount: s.Files.Len(),
	}
}

// ListSorted returns every dir in sorted order followed by every file in
// sorted order.
func (s *Snapshot) ListSorted() []Entry {
	entries := make([]Entry, 0, s.Dirs.Len()+s.Files.Len())
	for _, p := range s.Dirs.Sorted() {
		entries = append(entries, Entry{Kind: KindDir, Path: p})
	}
	for _, p := range s.Files.Sorted() {
		entries = append(entries, Entry{Kind: KindFile, Path: p})
	}
	return entries
}

type entryBlock []byte

func (b entryBlock) Serialize() ([]byte, error) { return b, nil }

// Fingerprint is a merkle root over the sorted listing. It depends only on
// the set of paths and their kinds, not on file content or the root name.
func (s *Snapshot) Fingerprint() (string, error) {
	entries := s.ListSorted()

	// go-merkletree needs at least two leaves
	switch len(entries) {
	case 0:
		sum, err := hash.XXHashFunc([]byte("empty-tree"))
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(sum), nil
	case 1:
		sum, err := hash.XXHashFunc(entries[0].bytes())
		if err != nil {
			return "", err
		}
		return hex.EncodeToString(sum), nil
	}

	blocks := make([]mt.DataBlock, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, entryBlock(e.bytes()))
	}

	tree, err := mt.New(&mt.Config{
		HashFunc: hash.XXHashFunc,
		Mode:     mt.ModeTreeBuild,
	}, blocks)
	if err != nil {
		return "", fmt.Errorf("failed to build merkle tree: %w", err)
	}

	return hex.EncodeToString(tree.Root), nil
}

func (e Entry) bytes() []byte {
	return []byte(string(e.Kind) + "\x00" + e.Path)
}
