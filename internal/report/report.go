// Package report renders a comparison as the line-oriented text report:
// one "<tag> <path>" line per entry, grouped under a header per category.
package report

import (
	"fmt"
	"io"
	"strings"

	"difftree/internal/compare"
	"difftree/internal/pathset"
	"difftree/internal/snapshot"
)

// Entry tags. Scripts parse these; do not rename.
const (
	TagDir           = "dir"
	TagFile          = "file"
	TagExclusiveDir  = "exclusive_dir"
	TagCommonDir     = "common_dir"
	TagMissingDir    = "missing_dir"
	TagExclusiveFile = "exclusive_file"
	TagCommonFile    = "common_file"
	TagMissingFile   = "missing_file"
	TagDiffFile      = "diff_file"
	TagTypeMismatch  = "type_mismatch"
)

type Options struct {
	// List prints every dir and file of each tree after its summary line.
	List bool
	// TypeMismatches appends the type_mismatch section.
	TypeMismatches bool
}

type section struct {
	header string
	tag    string
	paths  pathset.Set
}

// Format builds the full report. Entries within a section are sorted.
func Format(a, b *snapshot.Snapshot, result *compare.Result, opts Options) string {
	var sb strings.Builder

	for _, snap := range []*snapshot.Snapshot{a, b} {
		sb.WriteString(snap.Summary().String())
		sb.WriteString("\n")
		if opts.List {
			for _, e := range snap.ListSorted() {
				fmt.Fprintf(&sb, "%s %s\n", e.Kind, e.Path)
			}
		}
	}

	sections := []section{
		{fmt.Sprintf("The following directories are only in %s:", a.Root), TagExclusiveDir, result.ExclusiveDirs},
		{fmt.Sprintf("The following directories are common to %s and %s:", a.Root, b.Root), TagCommonDir, result.CommonDirs},
		{fmt.Sprintf("The following directories are in missing in %s:", a.Root), TagMissingDir, result.MissingDirs},
		{fmt.Sprintf("The following files are only in %s:", a.Root), TagExclusiveFile, result.ExclusiveFiles},
		{fmt.Sprintf("The following files are common to %s and %s:", a.Root, b.Root), TagCommonFile, result.CommonFiles},
		{fmt.Sprintf("The following files are in missing in %s:", a.Root), TagMissingFile, result.MissingFiles},
		{fmt.Sprintf("The following files have a different checksum in %s:", b.Root), TagDiffFile, result.ContentDiffering},
	}
	if opts.TypeMismatches {
		sections = append(sections, section{
			fmt.Sprintf("The following paths are a directory in one of %s and %s and a file in the other:", a.Root, b.Root),
			TagTypeMismatch,
			result.TypeMismatches,
		})
	}

	for _, s := range sections {
		sb.WriteString("\n")
		sb.WriteString(s.header)
		sb.WriteString("\n")
		for _, p := range s.paths.Sorted() {
			fmt.Fprintf(&sb, "%s %s\n", s.tag, p)
		}
	}

	return sb.String()
}

// Write renders the report to w in one write.
func Write(w io.Writer, a, b *snapshot.Snapshot, result *compare.Result, opts Options) error {
	if _, err := io.WriteString(w, Format(a, b, result, opts)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
