package hash

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"io"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/go-git/go-billy/v5"

	"difftree/internal/fserr"
)

// DefaultChunkSize is the read size used when none (or a non-positive one)
// is configured.
const DefaultChunkSize = 8 * 1024 * 1024

// Options selects the algorithm and read size for HashFile.
type Options struct {
	Algorithm Algorithm
	ChunkSize int
}

// DefaultOptions returns sha256 with 8 MiB reads.
func DefaultOptions() Options {
	return Options{Algorithm: DefaultAlgorithm, ChunkSize: DefaultChunkSize}
}

// Normalize fills in defaults for unset or non-positive values.
func (o Options) Normalize() Options {
	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return o
}

// HashFile computes the hex digest of a regular file in fsys, reading at most
// opts.ChunkSize bytes at a time. The context is checked between chunks.
// Errors name the file by its location under fsys.Root().
func HashFile(ctx context.Context, fsys billy.Filesystem, path string, opts Options) (string, error) {
	opts = opts.Normalize()
	fullPath := filepath.Join(fsys.Root(), path)

	info, err := fsys.Stat(path)
	if err != nil {
		return "", fserr.FromIO(fullPath, err)
	}
	if info.IsDir() {
		return "", fserr.New(fullPath, fserr.IsDirectory, nil)
	}
	if !info.Mode().IsRegular() {
		return "", fserr.New(fullPath, fserr.NotRegularFile, nil)
	}

	h, err := opts.Algorithm.New()
	if err != nil {
		return "", err
	}

	file, err := fsys.Open(path)
	if err != nil {
		return "", fserr.FromIO(fullPath, err)
	}
	defer file.Close()

	// The buffer is capped at the file size plus one byte to observe EOF.
	bufSize := opts.ChunkSize
	if size := info.Size(); size >= 0 && int64(bufSize) > size+1 {
		bufSize = int(size + 1)
	}
	buf := make([]byte, bufSize)

	for {
		if err := ctx.Err(); err != nil {
			return "", fserr.New(fullPath, fserr.Cancelled, err)
		}

		n, err := file.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fserr.New(fullPath, fserr.IOError, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// XXHashFunc is a custom hash function adapter for go-merkletree
// It converts []byte input to xxHash []byte output
func XXHashFunc(data []byte) ([]byte, error) {
	sum := xxhash.Sum64(data)

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, sum)
	return buf, nil
}
